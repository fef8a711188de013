package rdfio

import (
	"bufio"
	"io"

	"github.com/knakk/rdf"
)

// Encoder writes triples as Turtle-subset statement lines, one per call to
// Encode, buffering writes the way the teacher's record writers do.
type Encoder struct {
	w   *bufio.Writer
	err error
}

// NewEncoder wraps w in a buffered Turtle-subset writer.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode serializes and writes a single triple, followed by a newline.
func (e *Encoder) Encode(t rdf.Triple) error {
	if e.err != nil {
		return e.err
	}
	line, err := SerializeTriple(t)
	if err != nil {
		e.err = err
		return err
	}
	if _, err := e.w.WriteString(line); err != nil {
		e.err = err
		return err
	}
	if err := e.w.WriteByte('\n'); err != nil {
		e.err = err
		return err
	}
	return nil
}

// Flush pushes any buffered bytes to the underlying writer.
func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}
