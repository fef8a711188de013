// Package rdfio adapts github.com/knakk/rdf's term and triple types to the
// flat, line-oriented Turtle subset this system's data dumps and fragment
// documents are written in: one `<subject> <predicate> <object> .` (or
// blank-node/literal variant) statement per line, optional `@prefix`
// directives, no nested collections or predicate/object lists.
//
// The member dumps this system ingests are machine-generated (see the
// original dahcc benchmark export this was built against), so a full
// Turtle grammar - collections, blank node property lists, reification -
// is never produced. Reading and writing this subset directly, rather than
// going through a general-purpose streaming parser, keeps the member
// assembler's hot path simple and keeps control over literal lexical forms,
// which matters here: dates must round-trip through the exact
// "%Y-%m-%dT%H:%M:%S.%f" layout the rest of the system expects, not
// whatever a generic decoder infers.
package rdfio

import (
	"fmt"
	"strings"

	"github.com/knakk/rdf"
)

// RawIRI returns the unbracketed IRI string for t, and true if t is a URI
// term. Blank nodes and literals report false.
func RawIRI(t rdf.Term) (string, bool) {
	u, ok := t.(*rdf.URI)
	if !ok {
		return "", false
	}
	return u.URI, true
}

// Literal returns t's value/lang/datatype when t is a literal term.
func Literal(t rdf.Term) (*rdf.Literal, bool) {
	l, ok := t.(*rdf.Literal)
	return l, ok
}

// NewDateTimeLiteral builds a typed xsd:dateTime literal whose lexical form
// is exactly layout-formatted, rather than delegating to rdf.NewLiteral
// (which would pick Go's default time formatting).
func NewDateTimeLiteral(lexical string) *rdf.Literal {
	return &rdf.Literal{Value: lexical, DataType: rdf.XSDDateTime}
}

// serializeTerm renders a term using this system's lexical conventions,
// deliberately not delegating to Term.String(): the upstream Literal.String
// drops the datatype suffix for string-valued literals (i.e. every literal
// we construct, since we always carry the lexical form as a Go string),
// which would corrupt the exact round-trip this system's report and
// relation invariants depend on.
func serializeTerm(t rdf.Term) (string, error) {
	switch v := t.(type) {
	case *rdf.URI:
		return "<" + v.URI + ">", nil
	case *rdf.Blank:
		return "_:" + v.ID, nil
	case *rdf.Literal:
		lex := fmt.Sprint(v.Value)
		quoted := quoteLexical(lex)
		if v.Lang != "" {
			return quoted + "@" + v.Lang, nil
		}
		if v.DataType != nil && v.DataType.URI != rdf.XSDString.URI {
			return quoted + "^^<" + v.DataType.URI + ">", nil
		}
		return quoted, nil
	default:
		return "", fmt.Errorf("rdfio: unsupported term type %T", t)
	}
}

func quoteLexical(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// SerializeTriple renders t as a single Turtle-subset statement line,
// without a trailing newline.
func SerializeTriple(t rdf.Triple) (string, error) {
	s, err := serializeTerm(t.Subj)
	if err != nil {
		return "", err
	}
	p, err := serializeTerm(t.Pred)
	if err != nil {
		return "", err
	}
	o, err := serializeTerm(t.Obj)
	if err != nil {
		return "", err
	}
	return s + " " + p + " " + o + " .", nil
}
