package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/treedump/pkg/schema"
)

func baseFile() *File {
	return &File{
		MemberURLRegex: `^http://example\.org/member/\d+$`,
		Schema: []SchemaRule{
			{SubjectKind: "MEMBER_SUBJECT", Predicate: "http://example.org/ns#date"},
			{SubjectKind: "LINKED_SUBJECT", LinkedIRI: "http://example.org/ns#org", Predicate: "http://example.org/ns#name"},
		},
		NMembers:      20000,
		DateField:     "date",
		HighestDate:   "2020-01-02T00:00:00",
		LowestDate:    "2020-01-01T00:00:00",
		ServerAddress: "http://myTree.org/tree#",
	}
}

func baseFlags() CLIFlags {
	return CLIFlags{
		FrequencyNotification: 1000,
		NFragmentFirstRow:     1000,
		OutputPath:            "./generated",
		Fragmentation:         "oneAryTree",
		TreeID:                "http://myTree.org/tree#",
	}
}

func TestResolveComputesCacheCapacity(t *testing.T) {
	r, err := Resolve(baseFile(), baseFlags())
	require.NoError(t, err)
	assert.Equal(t, 1, r.CacheCapacity) // 20000 / (1000*20) = 1
}

func TestResolveCacheCapacityFloorsAtOne(t *testing.T) {
	f := baseFile()
	f.NMembers = 1
	r, err := Resolve(f, baseFlags())
	require.NoError(t, err)
	assert.Equal(t, 1, r.CacheCapacity)
}

func TestResolveRejectsSmallFirstRow(t *testing.T) {
	flags := baseFlags()
	flags.NFragmentFirstRow = 1
	_, err := Resolve(baseFile(), flags)
	assert.Error(t, err)
}

func TestResolveRequiresDepthForTreeTopology(t *testing.T) {
	flags := baseFlags()
	flags.Fragmentation = "tree"
	_, err := Resolve(baseFile(), flags)
	assert.Error(t, err)

	flags.HasDepth = true
	flags.Depth = 2
	r, err := Resolve(baseFile(), flags)
	require.NoError(t, err)
	assert.Equal(t, Tree, r.Fragmentation)
}

func TestResolveTranslatesSchemaRules(t *testing.T) {
	r, err := Resolve(baseFile(), baseFlags())
	require.NoError(t, err)
	require.Len(t, r.SchemaRules, 2)
	assert.Equal(t, schema.MemberSubject, r.SchemaRules[0].Kind)
	assert.Equal(t, schema.LinkedSubject, r.SchemaRules[1].Kind)
	assert.Equal(t, "http://example.org/ns#org", r.SchemaRules[1].LinkedIRI)
}

func TestResolveRejectsLowestAfterHighest(t *testing.T) {
	f := baseFile()
	f.LowestDate, f.HighestDate = f.HighestDate, f.LowestDate
	_, err := Resolve(f, baseFlags())
	assert.Error(t, err)
}
