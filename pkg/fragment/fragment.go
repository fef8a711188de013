package fragment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/3leaps/treedump/pkg/member"
	"github.com/3leaps/treedump/pkg/rdfio"
)

// ErrCacheFull is returned by Insert when accepting the member would reach
// capacity. It is never fatal: the fragmentation engine recovers by
// flushing every fragment and retrying the insert once.
var ErrCacheFull = errors.New("fragment: cache full")

// Fragment is a single time-bucket: a bounded in-memory write-behind cache
// of members backed by a file on disk, following the state machine
// EMPTY -> BUFFERED -> PERSISTED -> SEALED -> DELETED.
type Fragment struct {
	Filename string
	Boundary Boundary

	dir      string
	capacity int
	cache    []member.Member
	size     int
}

// New creates (truncating if present) the fragment's backing file and
// returns an empty fragment with the given capacity and boundary.
func New(dir, filename string, boundary Boundary, capacity int) (*Fragment, error) {
	f := &Fragment{Filename: filename, Boundary: boundary, dir: dir, capacity: capacity}
	file, err := os.Create(f.path())
	if err != nil {
		return nil, fmt.Errorf("fragment: create %q: %w", f.path(), err)
	}
	return f, file.Close()
}

func (f *Fragment) path() string { return filepath.Join(f.dir, f.Filename) }

// Size is the number of members ever accepted by Insert, independent of
// whether they have been flushed.
func (f *Fragment) Size() int { return f.size }

// CacheLen is the number of members currently buffered in memory.
func (f *Fragment) CacheLen() int { return len(f.cache) }

// Insert buffers a clone of m. It returns ErrCacheFull, without mutating
// state, when appending would bring the cache to capacity; the caller must
// flush and retry.
func (f *Fragment) Insert(m member.Member) error {
	if len(f.cache)+1 >= f.capacity {
		return ErrCacheFull
	}
	f.cache = append(f.cache, m.Clone())
	f.size++
	return nil
}

// Flush appends every cached member's triples to the file and clears the
// cache. A no-op, succeeding, when the cache is already empty.
func (f *Fragment) Flush() error {
	if len(f.cache) == 0 {
		return nil
	}
	file, err := os.OpenFile(f.path(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("fragment: flush %q: %w", f.path(), err)
	}
	defer file.Close()

	enc := rdfio.NewEncoder(file)
	for _, m := range f.cache {
		for _, t := range m.Properties {
			if err := enc.Encode(t); err != nil {
				return fmt.Errorf("fragment: flush %q: %w", f.path(), err)
			}
		}
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("fragment: flush %q: %w", f.path(), err)
	}
	f.cache = f.cache[:0]
	return nil
}

// AppendRelations serializes and appends each relation's triples to the
// file, without touching the member cache.
func (f *Fragment) AppendRelations(rels []Relation) error {
	if len(rels) == 0 {
		return nil
	}
	file, err := os.OpenFile(f.path(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("fragment: append relations %q: %w", f.path(), err)
	}
	defer file.Close()

	enc := rdfio.NewEncoder(file)
	for _, r := range rels {
		for _, t := range r.Triples() {
			if err := enc.Encode(t); err != nil {
				return fmt.Errorf("fragment: append relations %q: %w", f.path(), err)
			}
		}
	}
	return enc.Flush()
}

// ClearFile deletes the backing file. Valid only for an empty fragment
// (size 0), as used during rebalance.
func (f *Fragment) ClearFile() error {
	if f.size != 0 {
		return fmt.Errorf("fragment: clear_file called on non-empty fragment %q (size=%d)", f.Filename, f.size)
	}
	if err := os.Remove(f.path()); err != nil {
		return fmt.Errorf("fragment: clear_file %q: %w", f.path(), err)
	}
	return nil
}

// Split flushes self, then creates two new sub-fragments covering the
// lower and upper halves of the boundary, and appends LESS_THAN /
// GREATER_THAN_OR_EQUAL relations from self to each. Split children are
// named with a fresh UUID, distinguishing them from the numbered first-row
// fragments.
func (f *Fragment) Split(dateField, serverAddress string) (left, right *Fragment, err error) {
	if err := f.Flush(); err != nil {
		return nil, nil, err
	}

	mid := f.Boundary.Midpoint()
	left, err = New(f.dir, uuid.NewString()+".ttl", Boundary{Lower: f.Boundary.Lower, Upper: mid}, f.capacity)
	if err != nil {
		return nil, nil, err
	}
	right, err = New(f.dir, uuid.NewString()+".ttl", Boundary{Lower: mid, Upper: f.Boundary.Upper}, f.capacity)
	if err != nil {
		return nil, nil, err
	}

	currentIRI := serverAddress + f.Filename
	rels := []Relation{
		{
			CurrentNodeIRI: currentIRI,
			Node:           serverAddress + left.Filename,
			Operator:       LessThanRelation,
			HasValue:       true,
			Value:          mid,
			Path:           dateField,
		},
		{
			CurrentNodeIRI: currentIRI,
			Node:           serverAddress + right.Filename,
			Operator:       GreaterThanOrEqualToRelation,
			HasValue:       true,
			Value:          mid,
			Path:           dateField,
		},
	}
	if err := f.AppendRelations(rels); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}
