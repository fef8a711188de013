// Package member assembles individual members from an ordered triple
// stream and reports when each one is complete.
package member

import "github.com/knakk/rdf"

// Member is the unit of work the rest of the pipeline operates on: every
// triple accumulated for one member, plus the Unix-seconds timestamp
// extracted from its date field.
//
// Properties preserves source-document order, including triples whose
// subject is not ID (sub-resources linked to the member).
type Member struct {
	ID         string
	Date       int64
	Properties []rdf.Triple
}

// Clone returns a deep-enough copy of m suitable for handing to a fragment
// cache that may outlive the assembler's own buffer reuse.
func (m Member) Clone() Member {
	props := make([]rdf.Triple, len(m.Properties))
	copy(props, m.Properties)
	return Member{ID: m.ID, Date: m.Date, Properties: props}
}
