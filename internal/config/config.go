// Package config loads and validates the fragmenter's JSON config file,
// and resolves it together with CLI flags into the fixed inputs the
// pipeline needs for one run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// SchemaRule is one entry of the config file's schema array.
type SchemaRule struct {
	SubjectKind string `json:"subject_kind"`
	LinkedIRI   string `json:"linked_iri,omitempty"`
	Predicate   string `json:"predicate"`
	ObjectKind  string `json:"object_kind,omitempty"`
}

// File is the decoded shape of config.json.
type File struct {
	MemberURLRegex string       `json:"member_url_regex"`
	Schema         []SchemaRule `json:"schema"`
	NMembers       uint64       `json:"n_members"`
	DateField      string       `json:"date_field"`
	HighestDate    string       `json:"highest_date"`
	LowestDate     string       `json:"lowest_date"`
	ServerAddress  string       `json:"server_address"`
}

// FileDateLayout is the layout config.json's highest_date/lowest_date are
// parsed with - distinct from member.DateLayout, which also carries
// fractional seconds. The two were parsed with separate calls in the
// system this was ported from and that distinction survives here.
const FileDateLayout = "2006-01-02T15:04:05"

// Load reads, schema-validates, and decodes path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	if err := ValidateRaw(data); err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", path, err)
	}
	return &f, nil
}
