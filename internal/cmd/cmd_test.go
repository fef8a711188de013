package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigJSON = `{
  "member_url_regex": "^http://example\\.org/member/\\d+$",
  "schema": [
    {"subject_kind": "MEMBER_SUBJECT", "predicate": "http://example.org/ns#date"}
  ],
  "n_members": 100,
  "date_field": "date",
  "highest_date": "2020-01-02T00:00:00",
  "lowest_date": "2020-01-01T00:00:00",
  "server_address": "http://myTree.org/tree#"
}`

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(testConfigJSON), 0o644))
	return path
}

func TestSetVersionInfoUpdatesRootVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "abcdef", "2026-01-01")
	assert.Equal(t, "1.2.3", versionInfo.Version)
	assert.Contains(t, rootCmd.Version, "1.2.3")
	assert.Contains(t, rootCmd.Version, "abcdef")
}

func TestRunPlanValidatesConfigWithoutWritingFragments(t *testing.T) {
	dir := t.TempDir()
	cfgFile = writeTestConfig(t, dir)
	defer func() { cfgFile = "" }()

	planNFragmentFirstRow = 2
	planDepth = 0
	planDepthSet = false
	planTopology = "oneAryTree"

	err := runPlan(planCmd, nil)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1) // only config.json, no fragment files
}

func TestRunPlanRejectsMissingDepthForTree(t *testing.T) {
	dir := t.TempDir()
	cfgFile = writeTestConfig(t, dir)
	defer func() { cfgFile = "" }()

	planNFragmentFirstRow = 2
	planDepthSet = false
	planTopology = "tree"

	err := runPlan(planCmd, nil)
	assert.Error(t, err)
}

func TestRunFragmentEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfgFile = writeTestConfig(t, dir)
	defer func() { cfgFile = "" }()

	dumpPath := filepath.Join(dir, "dump.ttl")
	dump := `<http://example.org/member/1> <http://example.org/ns#date> "2020-01-01T01:00:00.000000"^^<http://www.w3.org/2001/XMLSchema#dateTime> .
`
	require.NoError(t, os.WriteFile(dumpPath, []byte(dump), 0o644))

	outDir := filepath.Join(dir, "generated")
	fragFrequencyNotification = 1000
	fragNFragmentFirstRow = 2
	fragDepthSet = false
	fragOutputPath = outDir
	fragDataDumpPath = dumpPath
	fragLargeFile = false
	fragTopology = "oneAryTree"
	fragTreeID = "http://myTree.org/tree#"

	err := runFragment(fragmentCmd, nil)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outDir, "report.json"))
	assert.NoError(t, err)
}
