package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/3leaps/treedump/pkg/schema"
)

// Topology names the fragmentation strategy selected on the CLI.
type Topology string

const (
	OneAryTree Topology = "oneAryTree"
	LinkedList Topology = "linkedList"
	Tree       Topology = "tree"
)

// Resolved is the fully validated, typed set of inputs the pipeline needs
// for one run: the config file's contents plus every CLI flag, merged and
// range-checked.
type Resolved struct {
	MemberRegex   *regexp.Regexp
	SchemaRules   []schema.Rule
	NMembers      uint64
	DateField     string
	HighestDate   int64
	LowestDate    int64
	ServerAddress string

	FrequencyNotification uint
	NFragmentFirstRow     uint
	Depth                 uint
	HasDepth              bool
	OutputPath            string
	DataDumpPath          string
	LargeFile             bool
	Fragmentation         Topology
	TreeID                string

	CacheCapacity int
}

// CLIFlags carries every flag value parsed off the command line, prior to
// being merged with the config file into a Resolved.
type CLIFlags struct {
	FrequencyNotification uint
	NFragmentFirstRow     uint
	Depth                 uint
	HasDepth              bool
	OutputPath            string
	DataDumpPath          string
	LargeFile             bool
	Fragmentation         string
	TreeID                string
}

// Resolve merges a loaded config File with CLI flags into a Resolved,
// compiling the member regex, translating schema rules, parsing the two
// date bounds, and computing cache_capacity = max(1, n_members /
// (n_fragments * 20)).
func Resolve(f *File, flags CLIFlags) (*Resolved, error) {
	if flags.NFragmentFirstRow < 2 {
		return nil, fmt.Errorf("config: n_fragment_first_row must be >= 2, got %d", flags.NFragmentFirstRow)
	}

	topology := Topology(flags.Fragmentation)
	switch topology {
	case OneAryTree, LinkedList, Tree:
	default:
		return nil, fmt.Errorf("config: unsupported fragmentation topology %q", flags.Fragmentation)
	}
	if topology == Tree && (!flags.HasDepth || flags.Depth < 1) {
		return nil, fmt.Errorf("config: depth is required and must be >= 1 when fragmentation is %q", Tree)
	}

	re, err := regexp.Compile(f.MemberURLRegex)
	if err != nil {
		return nil, fmt.Errorf("config: member_url_regex: %w", err)
	}

	rules := make([]schema.Rule, len(f.Schema))
	for i, s := range f.Schema {
		var kind schema.SubjectKind
		switch s.SubjectKind {
		case "MEMBER_SUBJECT":
			kind = schema.MemberSubject
		case "LINKED_SUBJECT":
			kind = schema.LinkedSubject
			if s.LinkedIRI == "" {
				return nil, fmt.Errorf("config: schema[%d]: linked_iri is required for LINKED_SUBJECT", i)
			}
		default:
			return nil, fmt.Errorf("config: schema[%d]: unsupported subject_kind %q", i, s.SubjectKind)
		}
		rules[i] = schema.Rule{Kind: kind, LinkedIRI: s.LinkedIRI, Predicate: s.Predicate, ObjectKind: s.ObjectKind}
	}

	hi, err := time.Parse(FileDateLayout, f.HighestDate)
	if err != nil {
		return nil, fmt.Errorf("config: highest_date: %w", err)
	}
	lo, err := time.Parse(FileDateLayout, f.LowestDate)
	if err != nil {
		return nil, fmt.Errorf("config: lowest_date: %w", err)
	}
	if lo.After(hi) {
		return nil, fmt.Errorf("config: lowest_date %s must not be after highest_date %s", f.LowestDate, f.HighestDate)
	}

	cacheCapacity := int(f.NMembers) / (int(flags.NFragmentFirstRow) * 20)
	if cacheCapacity < 1 {
		cacheCapacity = 1
	}

	return &Resolved{
		MemberRegex:   re,
		SchemaRules:   rules,
		NMembers:      f.NMembers,
		DateField:     f.DateField,
		HighestDate:   hi.Unix(),
		LowestDate:    lo.Unix(),
		ServerAddress: f.ServerAddress,

		FrequencyNotification: flags.FrequencyNotification,
		NFragmentFirstRow:     flags.NFragmentFirstRow,
		Depth:                 flags.Depth,
		HasDepth:              flags.HasDepth,
		OutputPath:            flags.OutputPath,
		DataDumpPath:          flags.DataDumpPath,
		LargeFile:             flags.LargeFile,
		Fragmentation:         topology,
		TreeID:                flags.TreeID,

		CacheCapacity: cacheCapacity,
	}, nil
}
