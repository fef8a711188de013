package fragmentation

import (
	"fmt"
	"io"
	"math/rand"
	"sync"

	"github.com/3leaps/treedump/pkg/fragment"
	"github.com/3leaps/treedump/pkg/member"
	"github.com/3leaps/treedump/pkg/report"
)

// Tree builds the ONE_ARY_TREE first row, writes the central root
// immediately against that row, then repeatedly splits every current leaf
// depth times. The deepest round of children is the permanent, fixed
// insertion destination set: unlike ONE_ARY_TREE/LINKED_LIST, TREE never
// rebalances (only those two topologies' finalize drops empty fragments),
// and a member's destination is chosen uniformly at random among every
// leaf whose boundary contains its date, since sibling boundaries overlap
// at split points.
type Tree struct {
	dir           string
	serverAddress string
	dateField     string
	cacheCapacity int

	root         *fragment.Fragment
	leaves       []*fragment.Fragment
	internal     []*fragment.Fragment // parents retained on disk, never inserted into
	firstRowSize int
	depth        int

	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewTree constructs the topology and performs every split round up
// front; rng supplies the uniform-at-random destination tie-break among
// overlapping leaves and need not be seeded deterministically.
func NewTree(dir, serverAddress, dateField string, lowest, highest int64, n, depth, cacheCapacity int, rng *rand.Rand) (*Tree, error) {
	base, err := NewOneAryTree(dir, serverAddress, dateField, lowest, highest, n, cacheCapacity)
	if err != nil {
		return nil, err
	}

	current := serverAddress + "0.ttl"
	var rootRels []fragment.Relation
	for _, f := range base.leaves {
		if f.Boundary.Upper < fragment.MaxTime {
			rootRels = append(rootRels, fragment.Relation{
				CurrentNodeIRI: current,
				Node:           serverAddress + f.Filename,
				Operator:       fragment.LessThanRelation,
				HasValue:       true,
				Value:          f.Boundary.Upper,
				Path:           dateField,
			})
		}
		if f.Boundary.Lower > fragment.MinTime {
			rootRels = append(rootRels, fragment.Relation{
				CurrentNodeIRI: current,
				Node:           serverAddress + f.Filename,
				Operator:       fragment.GreaterThanOrEqualToRelation,
				HasValue:       true,
				Value:          f.Boundary.Lower,
				Path:           dateField,
			})
		}
	}
	if err := base.root.AppendRelations(rootRels); err != nil {
		return nil, err
	}

	toSplit := append([]*fragment.Fragment(nil), base.leaves...)
	var internal []*fragment.Fragment
	for d := 0; d < depth; d++ {
		next, err := splitRound(toSplit, dateField, serverAddress)
		if err != nil {
			return nil, err
		}
		internal = append(internal, toSplit...)
		toSplit = next
	}

	return &Tree{
		dir:           dir,
		serverAddress: serverAddress,
		dateField:     dateField,
		cacheCapacity: cacheCapacity,
		root:          base.root,
		leaves:        toSplit,
		internal:      internal,
		firstRowSize:  n,
		depth:         depth,
		rng:           rng,
	}, nil
}

// splitRound splits every fragment in toSplit concurrently, returning the
// flattened slice of children in the same order as their parents in
// toSplit, each parent's pair as left then right.
func splitRound(toSplit []*fragment.Fragment, dateField, serverAddress string) ([]*fragment.Fragment, error) {
	type result struct {
		left, right *fragment.Fragment
		err         error
	}
	results := make([]result, len(toSplit))
	var wg sync.WaitGroup
	for i, f := range toSplit {
		wg.Add(1)
		go func(i int, f *fragment.Fragment) {
			defer wg.Done()
			left, right, err := f.Split(dateField, serverAddress)
			results[i] = result{left: left, right: right, err: err}
		}(i, f)
	}
	wg.Wait()

	next := make([]*fragment.Fragment, 0, len(toSplit)*2)
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		next = append(next, r.left, r.right)
	}
	return next, nil
}

func (e *Tree) candidates(date int64) []int {
	var out []int
	for i, f := range e.leaves {
		if f.Boundary.Contains(date) {
			out = append(out, i)
		}
	}
	return out
}

func (e *Tree) Insert(m member.Member) error {
	candidates := e.candidates(m.Date)
	if len(candidates) == 0 {
		return ErrNoDestination
	}
	e.rngMu.Lock()
	idx := candidates[e.rng.Intn(len(candidates))]
	e.rngMu.Unlock()
	return insertWithRetry(e.leaves, idx, m)
}

func (e *Tree) Finalize() (report.Report, error) {
	if err := flushAll(e.leaves); err != nil {
		return nil, err
	}
	return buildReport(e.leaves), nil
}

func (e *Tree) MaxCacheSize() int { return e.cacheCapacity }

func (e *Tree) Fragments() []*fragment.Fragment { return e.leaves }

func (e *Tree) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "topology: tree, %d first-row fragments, depth %d, %d leaf fragments, %d internal\n",
		e.firstRowSize, e.depth, len(e.leaves), len(e.internal))
}
