// Package fragment implements a single time-bucket fragment document: its
// bounded write-behind member cache, its backing file, and the TREE
// relation triples that point into and out of it.
package fragment

import (
	"fmt"
	"math"
)

// Sentinel bounds denoting an open end of a boundary.
const (
	MinTime int64 = math.MinInt64
	MaxTime int64 = math.MaxInt64
)

// Boundary is an inclusive-at-both-ends time range.
type Boundary struct {
	Lower int64
	Upper int64
}

// Contains reports whether d falls inside the boundary. Both ends are
// inclusive, so a date equal to a split point can match two adjacent
// boundaries - callers that need a single destination (ONE_ARY_TREE,
// LINKED_LIST) must pick the first match; TREE picks uniformly at random
// among all matches.
func (b Boundary) Contains(d int64) bool {
	return b.Lower <= d && d <= b.Upper
}

// String renders the boundary using the sentinel names where applicable,
// for plan output and log fields.
func (b Boundary) String() string {
	return fmt.Sprintf("[%s, %s]", formatBound(b.Lower), formatBound(b.Upper))
}

func formatBound(v int64) string {
	switch v {
	case MinTime:
		return "MIN_TIME"
	case MaxTime:
		return "MAX_TIME"
	default:
		return fmt.Sprintf("%d", v)
	}
}

// Midpoint computes the split point used by Split: lower + (upper-lower)/2
// (the floor of the two ends' mean), without overflow when either end is a
// sentinel-sized value.
func (b Boundary) Midpoint() int64 {
	return (b.Lower >> 1) + (b.Upper >> 1) + (b.Lower & b.Upper & 1)
}
