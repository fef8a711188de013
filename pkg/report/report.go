// Package report builds and persists the machine-readable summary of a
// finalized fragmentation run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/3leaps/treedump/pkg/fragment"
)

// Entry is one fragment's summary row. NMember is a pointer so that a
// zero-member fragment serializes as null rather than 0 - though in
// practice a surviving fragment never has zero members, since empty
// fragments are deleted during rebalance before the report is built.
type Entry struct {
	NMember  *int             `json:"n_member"`
	Boundary fragment.Boundary `json:"boundary"`
}

// Report is the filename -> summary mapping written to report.json.
type Report map[string]Entry

// New returns an empty report.
func New() Report {
	return Report{}
}

// Add records one fragment's final size and boundary.
func (r Report) Add(filename string, size int, boundary fragment.Boundary) {
	var n *int
	if size != 0 {
		v := size
		n = &v
	}
	r[filename] = Entry{NMember: n, Boundary: boundary}
}

// WriteFile marshals r as deterministic (key-sorted) JSON to
// <outDir>/report.json, superseding any report left by a prior run.
func (r Report) WriteFile(outDir string) error {
	path := filepath.Join(outDir, "report.json")
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: write %q: %w", path, err)
	}
	return nil
}
