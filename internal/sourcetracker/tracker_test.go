package sourcetracker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

func TestTrackSource_AppendsAndLists(t *testing.T) {
	tr := New(t.TempDir())

	require.NoError(t, tr.TrackSource(knowledge.KnowledgeSource{SourceID: "s1", PathOrURL: "a.md", SourceType: knowledge.SourceFile, ChunkCount: 3}))
	require.NoError(t, tr.TrackSource(knowledge.KnowledgeSource{SourceID: "s2", PathOrURL: "b.md", SourceType: knowledge.SourceFile, ChunkCount: 1}))

	sources, err := tr.ListSources()
	require.NoError(t, err)
	require.Len(t, sources, 2)
	require.Equal(t, "a.md", sources[0].PathOrURL)
	require.Equal(t, "b.md", sources[1].PathOrURL)
}

func TestListSources_MissingFileIsEmpty(t *testing.T) {
	tr := New(t.TempDir())
	sources, err := tr.ListSources()
	require.NoError(t, err)
	require.Empty(t, sources)
}

func TestClear_IsIdempotent(t *testing.T) {
	tr := New(t.TempDir())
	require.NoError(t, tr.TrackSource(knowledge.KnowledgeSource{SourceID: "s1"}))
	require.NoError(t, tr.Clear())
	require.NoError(t, tr.Clear())

	sources, err := tr.ListSources()
	require.NoError(t, err)
	require.Empty(t, sources)
}

func TestWriteStats_RoundTrip(t *testing.T) {
	tr := New(t.TempDir())
	stats := knowledge.BaseStats{BaseName: "kb1", TotalChunks: 5, TotalSources: 2}
	require.NoError(t, tr.WriteStats(stats))

	got, err := tr.ReadStats()
	require.NoError(t, err)
	require.Equal(t, stats, got)
}

func TestReadStats_MissingFileIsZeroValue(t *testing.T) {
	tr := New(t.TempDir())
	got, err := tr.ReadStats()
	require.NoError(t, err)
	require.Equal(t, knowledge.BaseStats{}, got)
}
