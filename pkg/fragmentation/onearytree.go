package fragmentation

import (
	"fmt"
	"io"

	"github.com/3leaps/treedump/pkg/fragment"
	"github.com/3leaps/treedump/pkg/member"
	"github.com/3leaps/treedump/pkg/report"
)

// OneAryTree partitions [lowest, highest] into n equal, contiguous
// intervals, each a leaf fragment, with a single root fragment (0.ttl)
// holding boundary relations to every surviving leaf.
type OneAryTree struct {
	dir           string
	serverAddress string
	dateField     string
	cacheCapacity int

	leaves []*fragment.Fragment // stable, construction order - never reordered
	root   *fragment.Fragment

	survivors []*fragment.Fragment // populated by rebalance; nil until Finalize runs
}

// NewOneAryTree creates the root fragment and n leaf fragments covering
// [lowest, highest], with the outermost leaves' boundaries clamped to the
// open sentinels.
func NewOneAryTree(dir, serverAddress, dateField string, lowest, highest int64, n, cacheCapacity int) (*OneAryTree, error) {
	if n < 2 {
		return nil, fmt.Errorf("fragmentation: n_fragment_first_row must be >= 2, got %d", n)
	}
	increment := ceilDiv(highest-lowest, int64(n))

	leaves := make([]*fragment.Fragment, n)
	for i := 0; i < n; i++ {
		lower := lowest + int64(i)*increment
		upper := lowest + int64(i+1)*increment
		if i == 0 {
			lower = fragment.MinTime
		}
		if i == n-1 {
			upper = fragment.MaxTime
		}
		f, err := fragment.New(dir, fmt.Sprintf("%d.ttl", i+1), fragment.Boundary{Lower: lower, Upper: upper}, cacheCapacity)
		if err != nil {
			return nil, err
		}
		leaves[i] = f
	}

	root, err := fragment.New(dir, "0.ttl", fragment.Boundary{Lower: fragment.MinTime, Upper: fragment.MaxTime}, cacheCapacity)
	if err != nil {
		return nil, err
	}

	return &OneAryTree{
		dir:           dir,
		serverAddress: serverAddress,
		dateField:     dateField,
		cacheCapacity: cacheCapacity,
		leaves:        leaves,
		root:          root,
	}, nil
}

// destination returns the index of the first leaf whose boundary contains
// date, or -1 if none does.
func (e *OneAryTree) destination(date int64) int {
	for i, f := range e.leaves {
		if f.Boundary.Contains(date) {
			return i
		}
	}
	return -1
}

func (e *OneAryTree) Insert(m member.Member) error {
	idx := e.destination(m.Date)
	if idx < 0 {
		return ErrNoDestination
	}
	return insertWithRetry(e.leaves, idx, m)
}

func (e *OneAryTree) rebalance() error {
	survivors := make([]*fragment.Fragment, 0, len(e.leaves))
	for _, f := range e.leaves {
		if f.Size() == 0 {
			if err := f.ClearFile(); err != nil {
				return err
			}
			continue
		}
		survivors = append(survivors, f)
	}
	e.survivors = survivors
	return nil
}

func (e *OneAryTree) writeRoot() error {
	current := e.serverAddress + "0.ttl"
	var rels []fragment.Relation
	for _, f := range e.survivors {
		if f.Boundary.Upper < fragment.MaxTime {
			rels = append(rels, fragment.Relation{
				CurrentNodeIRI: current,
				Node:           e.serverAddress + f.Filename,
				Operator:       fragment.LessThanRelation,
				HasValue:       true,
				Value:          f.Boundary.Upper,
				Path:           e.dateField,
			})
		}
		if f.Boundary.Lower > fragment.MinTime {
			rels = append(rels, fragment.Relation{
				CurrentNodeIRI: current,
				Node:           e.serverAddress + f.Filename,
				Operator:       fragment.GreaterThanOrEqualToRelation,
				HasValue:       true,
				Value:          f.Boundary.Lower,
				Path:           e.dateField,
			})
		}
	}
	return e.root.AppendRelations(rels)
}

func (e *OneAryTree) Finalize() (report.Report, error) {
	if err := flushAll(e.leaves); err != nil {
		return nil, err
	}
	if err := e.rebalance(); err != nil {
		return nil, err
	}
	if err := e.writeRoot(); err != nil {
		return nil, err
	}
	return buildReport(e.survivors), nil
}

func (e *OneAryTree) MaxCacheSize() int { return e.cacheCapacity }

func (e *OneAryTree) Fragments() []*fragment.Fragment {
	if e.survivors != nil {
		return e.survivors
	}
	return e.leaves
}

func (e *OneAryTree) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "topology: one-ary tree, %d leaf fragments, %d survived rebalance\n", len(e.leaves), len(e.Fragments()))
}
