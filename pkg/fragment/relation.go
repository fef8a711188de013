package fragment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/knakk/rdf"

	"github.com/3leaps/treedump/pkg/rdfio"
)

const (
	treeNS = "https://w3id.org/tree#"
	rdfNS  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	treeRelation = treeNS + "relation"
	treeNode     = treeNS + "node"
	treeValue    = treeNS + "value"
	treePath     = treeNS + "path"
	rdfType      = rdfNS + "type"
)

// Operator names a TREE relation kind. The zero value, OperatorNone, emits
// a relation with no rdf:type triple - used for the LINKED_LIST's
// unconstrained root-to-leaf-1 link.
type Operator int

const (
	OperatorNone Operator = iota
	LessThanRelation
	GreaterThanOrEqualToRelation
)

func (o Operator) iri() string {
	switch o {
	case LessThanRelation:
		return treeNS + "LessThanRelation"
	case GreaterThanOrEqualToRelation:
		return treeNS + "GreaterThanOrEqualToRelation"
	default:
		return ""
	}
}

// Relation is one TREE relation edge from a current node to a target node,
// optionally qualified by an operator, a date value, and a path IRI.
type Relation struct {
	CurrentNodeIRI string
	Node           string
	Operator       Operator
	HasValue       bool
	Value          int64 // Unix seconds; meaningful only when HasValue
	Path           string
}

// Triples serializes r into the TREE relation shape: a blank node per
// relation, linked from CurrentNodeIRI via tree:relation, carrying
// whichever of rdf:type / tree:node / tree:value / tree:path apply.
func (r Relation) Triples() []rdf.Triple {
	relID := rdf.NewBlankUnsafe(uuid.NewString())
	cur := rdf.NewURIUnsafe(r.CurrentNodeIRI)

	out := []rdf.Triple{
		{Subj: cur, Pred: rdf.NewURIUnsafe(treeRelation), Obj: relID},
	}
	if op := r.Operator.iri(); op != "" {
		out = append(out, rdf.Triple{Subj: relID, Pred: rdf.NewURIUnsafe(rdfType), Obj: rdf.NewURIUnsafe(op)})
	}
	if r.Node != "" {
		out = append(out, rdf.Triple{Subj: relID, Pred: rdf.NewURIUnsafe(treeNode), Obj: rdf.NewURIUnsafe(r.Node)})
	}
	if r.HasValue {
		lexical := time.Unix(r.Value, 0).UTC().Format("2006-01-02T15:04:05.000000")
		out = append(out, rdf.Triple{Subj: relID, Pred: rdf.NewURIUnsafe(treeValue), Obj: rdfio.NewDateTimeLiteral(lexical)})
	}
	if r.Path != "" {
		out = append(out, rdf.Triple{Subj: relID, Pred: rdf.NewURIUnsafe(treePath), Obj: rdf.NewURIUnsafe(r.Path)})
	}
	return out
}

// ParseRelations reconstructs the set of relations encoded in triples,
// grouping by blank-node relation id, so that a document's relation
// triples can be read back into the relations that produced them. The
// split test uses it on a split parent's file.
func ParseRelations(triples []rdf.Triple) ([]Relation, error) {
	type partial struct {
		current  string
		operator Operator
		node     string
		hasValue bool
		value    int64
		path     string
	}
	byID := map[string]*partial{}
	order := []string{}

	relIDOf := map[string]string{} // blank node id -> current node iri, once seen via tree:relation

	for _, t := range triples {
		pred, _ := rdfio.RawIRI(t.Pred)
		switch pred {
		case treeRelation:
			blank, ok := t.Obj.(*rdf.Blank)
			if !ok {
				return nil, fmt.Errorf("fragment: tree:relation object is not a blank node: %v", t.Obj)
			}
			cur, _ := rdfio.RawIRI(t.Subj)
			relIDOf[blank.ID] = cur
			if _, exists := byID[blank.ID]; !exists {
				byID[blank.ID] = &partial{current: cur}
				order = append(order, blank.ID)
			}
		}
	}

	for _, t := range triples {
		blank, ok := t.Subj.(*rdf.Blank)
		if !ok {
			continue
		}
		p, exists := byID[blank.ID]
		if !exists {
			continue
		}
		pred, _ := rdfio.RawIRI(t.Pred)
		switch pred {
		case rdfType:
			op, _ := rdfio.RawIRI(t.Obj)
			switch op {
			case treeNS + "LessThanRelation":
				p.operator = LessThanRelation
			case treeNS + "GreaterThanOrEqualToRelation":
				p.operator = GreaterThanOrEqualToRelation
			}
		case treeNode:
			node, _ := rdfio.RawIRI(t.Obj)
			p.node = node
		case treeValue:
			lit, ok := rdfio.Literal(t.Obj)
			if !ok {
				return nil, fmt.Errorf("fragment: tree:value object is not a literal")
			}
			parsed, err := time.Parse("2006-01-02T15:04:05.999999999", fmt.Sprint(lit.Value))
			if err != nil {
				return nil, fmt.Errorf("fragment: tree:value %q: %w", lit.Value, err)
			}
			p.hasValue = true
			p.value = parsed.Unix()
		case treePath:
			path, _ := rdfio.RawIRI(t.Obj)
			p.path = path
		}
	}

	out := make([]Relation, 0, len(order))
	for _, id := range order {
		p := byID[id]
		out = append(out, Relation{
			CurrentNodeIRI: p.current,
			Node:           p.node,
			Operator:       p.operator,
			HasValue:       p.hasValue,
			Value:          p.value,
			Path:           p.path,
		})
	}
	return out, nil
}
