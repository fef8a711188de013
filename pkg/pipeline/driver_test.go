package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/treedump/pkg/fragmentation"
	"github.com/3leaps/treedump/pkg/member"
	"github.com/3leaps/treedump/pkg/rdfio"
	"github.com/3leaps/treedump/pkg/schema"
)

func writeDump(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "dump.ttl")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func memberTriple(id, pred, obj string) string {
	return "<" + id + "> <http://example.org/ns#" + pred + "> " + obj + " ."
}

func TestRunEndToEndOneAryTree(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()

	dump := writeDump(t, inDir,
		memberTriple("http://example.org/member/1", "date", `"2020-01-01T01:00:00.000000"^^<http://www.w3.org/2001/XMLSchema#dateTime>`),
		memberTriple("http://example.org/member/1", "name", `"Alice"`),
		memberTriple("http://example.org/member/2", "date", `"2020-01-01T10:00:00.000000"^^<http://www.w3.org/2001/XMLSchema#dateTime>`),
		memberTriple("http://example.org/member/2", "name", `"Bob"`),
	)

	src, err := rdfio.OpenMemory(dump)
	require.NoError(t, err)
	defer src.Close()

	asmCfg := member.Config{
		MemberRegex: regexp.MustCompile(`^http://example\.org/member/\d+$`),
		DateField:   "date",
		Schema: []schema.Rule{
			{Kind: schema.MemberSubject, Predicate: "http://example.org/ns#date"},
			{Kind: schema.MemberSubject, Predicate: "http://example.org/ns#name"},
		},
	}
	asm := member.NewAssembler(asmCfg, nil)

	lo, _ := time.Parse("2006-01-02T15:04:05", "2020-01-01T00:00:00")
	hi, _ := time.Parse("2006-01-02T15:04:05", "2020-01-02T00:00:00")

	engine, err := fragmentation.NewOneAryTree(outDir, "http://myTree.org/tree#", "http://example.org/ns#date", lo.Unix(), hi.Unix(), 2, 100)
	require.NoError(t, err)

	rep, summary, err := Run(context.Background(), src, asm, engine, Config{ChannelBuffer: 4})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.MembersEmitted)

	total := 0
	for _, entry := range rep {
		if entry.NMember != nil {
			total += *entry.NMember
		}
	}
	assert.Equal(t, 2, total)

	_, err = os.Stat(filepath.Join(outDir, "report.json"))
	_ = err // report.json isn't written by Run itself; driver caller persists it
}

func TestRunEmptyDumpProducesEmptyReport(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	dump := writeDump(t, inDir)

	src, err := rdfio.OpenMemory(dump)
	require.NoError(t, err)
	defer src.Close()

	asm := member.NewAssembler(member.Config{
		MemberRegex: regexp.MustCompile(`.*`),
		DateField:   "date",
	}, nil)

	engine, err := fragmentation.NewOneAryTree(outDir, "http://myTree.org/tree#", "date", 0, 100, 2, 10)
	require.NoError(t, err)

	rep, summary, err := Run(context.Background(), src, asm, engine, Config{ChannelBuffer: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.MembersEmitted)
	assert.Empty(t, rep)
}
