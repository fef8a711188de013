// Package fragmentation routes assembled members into time-bucketed
// fragments and finalizes one of three topologies: a one-ary tree, a
// linked list, or a randomly-routed balanced tree. The three share a
// single contract (Engine) rather than a class hierarchy; LINKED_LIST is
// expressed by embedding OneAryTree and overriding its finalize step (and
// its summary line), per the polymorphism-by-composition guidance this was designed against.
package fragmentation

import (
	"errors"
	"io"
	"sync"

	"github.com/3leaps/treedump/pkg/fragment"
	"github.com/3leaps/treedump/pkg/member"
	"github.com/3leaps/treedump/pkg/report"
)

// ErrNoDestination is returned when a member's date falls outside every
// active fragment's boundary. Redesigned from the original silent
// fall-back-to-fragment-0 behavior. The outermost first-row leaves are
// clamped to MinTime/MaxTime, so a date outside [lowest_date, highest_date]
// still lands in the first or last leaf; a miss therefore signals a
// boundary-construction inconsistency and is surfaced as a fatal error
// instead of silently misrouting the member.
var ErrNoDestination = errors.New("fragmentation: no fragment boundary contains member date")

// Engine is the contract every fragmentation topology implements.
type Engine interface {
	// Insert routes m into a destination fragment, retrying once after a
	// global flush if the destination's cache is full.
	Insert(m member.Member) error
	// Finalize flushes and, where the topology defers them to this point,
	// rebalances and writes root and topology-specific relations (Tree
	// writes its relations at construction), then returns the run's report.
	Finalize() (report.Report, error)
	MaxCacheSize() int
	Fragments() []*fragment.Fragment
	PrintSummary(w io.Writer)
}

func flushAll(fragments []*fragment.Fragment) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(fragments))
	for _, f := range fragments {
		wg.Add(1)
		go func(f *fragment.Fragment) {
			defer wg.Done()
			if err := f.Flush(); err != nil {
				errCh <- err
			}
		}(f)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

func insertWithRetry(fragments []*fragment.Fragment, idx int, m member.Member) error {
	if err := fragments[idx].Insert(m); err != nil {
		if !errors.Is(err, fragment.ErrCacheFull) {
			return err
		}
		if err := flushAll(fragments); err != nil {
			return err
		}
		return fragments[idx].Insert(m)
	}
	return nil
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func buildReport(fragments []*fragment.Fragment) report.Report {
	rep := report.New()
	for _, f := range fragments {
		rep.Add(f.Filename, f.Size(), f.Boundary)
	}
	return rep
}
