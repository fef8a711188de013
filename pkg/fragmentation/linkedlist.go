package fragmentation

import (
	"fmt"
	"io"

	"github.com/3leaps/treedump/pkg/fragment"
	"github.com/3leaps/treedump/pkg/report"
)

// LinkedList is a OneAryTree whose leaves are re-linked into a forward
// chain at finalize time: each surviving leaf points to the next
// survivor using that next leaf's original (pre-widen) boundary, and every
// leaf's own boundary is then widened to cover the whole time range so
// list traversal never needs the root's help again. Insert is inherited
// unchanged from OneAryTree - routing still uses the original tight
// boundaries, since widening only matters for the published metadata.
type LinkedList struct {
	*OneAryTree
}

// NewLinkedList builds the same first-row layout as NewOneAryTree; the
// widening and forward-linking happen in Finalize.
func NewLinkedList(dir, serverAddress, dateField string, lowest, highest int64, n, cacheCapacity int) (*LinkedList, error) {
	base, err := NewOneAryTree(dir, serverAddress, dateField, lowest, highest, n, cacheCapacity)
	if err != nil {
		return nil, err
	}
	return &LinkedList{OneAryTree: base}, nil
}

func (e *LinkedList) Finalize() (report.Report, error) {
	if err := flushAll(e.leaves); err != nil {
		return nil, err
	}
	if err := e.rebalance(); err != nil {
		return nil, err
	}

	for i := 0; i < len(e.survivors)-1; i++ {
		cur := e.survivors[i]
		next := e.survivors[i+1]
		currentIRI := e.serverAddress + cur.Filename

		var rels []fragment.Relation
		if next.Boundary.Upper < fragment.MaxTime {
			rels = append(rels, fragment.Relation{
				CurrentNodeIRI: currentIRI,
				Node:           e.serverAddress + next.Filename,
				Operator:       fragment.LessThanRelation,
				HasValue:       true,
				Value:          next.Boundary.Upper,
				Path:           e.dateField,
			})
		}
		if next.Boundary.Lower > fragment.MinTime {
			rels = append(rels, fragment.Relation{
				CurrentNodeIRI: currentIRI,
				Node:           e.serverAddress + next.Filename,
				Operator:       fragment.GreaterThanOrEqualToRelation,
				HasValue:       true,
				Value:          next.Boundary.Lower,
				Path:           e.dateField,
			})
		}
		if err := cur.AppendRelations(rels); err != nil {
			return nil, err
		}
	}

	if len(e.survivors) > 0 {
		rootRel := []fragment.Relation{{
			CurrentNodeIRI: e.serverAddress + "0.ttl",
			Node:           e.serverAddress + e.survivors[0].Filename,
		}}
		if err := e.root.AppendRelations(rootRel); err != nil {
			return nil, err
		}
	}

	// Widen after relations are generated: the forward links above need
	// each leaf's original tight boundary.
	for _, f := range e.survivors {
		f.Boundary = fragment.Boundary{Lower: fragment.MinTime, Upper: fragment.MaxTime}
	}

	return buildReport(e.survivors), nil
}

func (e *LinkedList) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "topology: linked list, %d leaf fragments, %d survived rebalance\n", len(e.leaves), len(e.Fragments()))
}
