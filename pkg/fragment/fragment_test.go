package fragment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knakk/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/treedump/pkg/member"
	"github.com/3leaps/treedump/pkg/rdfio"
)

func memberAt(id string, date int64) member.Member {
	return member.Member{
		ID:   id,
		Date: date,
		Properties: []rdf.Triple{
			{Subj: rdf.NewURIUnsafe(id), Pred: rdf.NewURIUnsafe("http://example.org/ns#date"), Obj: rdf.NewLiteralUnsafe("x")},
		},
	}
}

func TestInsertReturnsCacheFullAtCapacity(t *testing.T) {
	dir := t.TempDir()
	f, err := New(dir, "1.ttl", Boundary{Lower: 0, Upper: 100}, 2)
	require.NoError(t, err)

	require.NoError(t, f.Insert(memberAt("http://example.org/m/1", 1)))
	err = f.Insert(memberAt("http://example.org/m/2", 2))
	assert.ErrorIs(t, err, ErrCacheFull)
	assert.Equal(t, 1, f.Size())
}

func TestFlushWritesAndClearsCache(t *testing.T) {
	dir := t.TempDir()
	f, err := New(dir, "1.ttl", Boundary{Lower: 0, Upper: 100}, 10)
	require.NoError(t, err)

	require.NoError(t, f.Insert(memberAt("http://example.org/m/1", 1)))
	require.NoError(t, f.Insert(memberAt("http://example.org/m/2", 2)))
	require.Equal(t, 2, f.CacheLen())

	require.NoError(t, f.Flush())
	assert.Equal(t, 0, f.CacheLen())
	assert.Equal(t, 2, f.Size())

	content, err := os.ReadFile(filepath.Join(dir, "1.ttl"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "http://example.org/m/1")
	assert.Contains(t, string(content), "http://example.org/m/2")
}

func TestClearFileRejectsNonEmptyFragment(t *testing.T) {
	dir := t.TempDir()
	f, err := New(dir, "1.ttl", Boundary{Lower: 0, Upper: 100}, 10)
	require.NoError(t, err)
	require.NoError(t, f.Insert(memberAt("http://example.org/m/1", 1)))

	err = f.ClearFile()
	assert.Error(t, err)
}

func TestClearFileDeletesEmptyFragment(t *testing.T) {
	dir := t.TempDir()
	f, err := New(dir, "1.ttl", Boundary{Lower: 0, Upper: 100}, 10)
	require.NoError(t, err)

	require.NoError(t, f.ClearFile())
	_, err = os.Stat(filepath.Join(dir, "1.ttl"))
	assert.True(t, os.IsNotExist(err))
}

func TestSplitProducesTwoChildrenAndRelations(t *testing.T) {
	dir := t.TempDir()
	f, err := New(dir, "1.ttl", Boundary{Lower: 0, Upper: 100}, 10)
	require.NoError(t, err)
	require.NoError(t, f.Insert(memberAt("http://example.org/m/1", 10)))

	left, right, err := f.Split("http://example.org/ns#date", "http://myTree.org/tree#")
	require.NoError(t, err)

	assert.Equal(t, int64(0), left.Boundary.Lower)
	assert.Equal(t, int64(50), left.Boundary.Upper)
	assert.Equal(t, int64(50), right.Boundary.Lower)
	assert.Equal(t, int64(100), right.Boundary.Upper)
	assert.NotEqual(t, left.Filename, right.Filename)
	assert.NotEqual(t, "1.ttl", left.Filename)

	src, err := rdfio.OpenMemory(filepath.Join(dir, "1.ttl"))
	require.NoError(t, err)
	defer src.Close()

	var triples []rdf.Triple
	for {
		tr, err := src.Next()
		if err != nil {
			break
		}
		triples = append(triples, tr)
	}

	rels, err := ParseRelations(triples)
	require.NoError(t, err)
	require.Len(t, rels, 2)
}
