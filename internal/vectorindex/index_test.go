package vectorindex

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	dir := t.TempDir()
	idx, err := Open(filepath.Join(dir, "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func chunkWith(id, sourceID string, position int, embedding []float32) knowledge.Chunk {
	return knowledge.Chunk{
		ID:        id,
		SourceID:  sourceID,
		Position:  position,
		Text:      "hello world",
		Embedding: embedding,
		Metadata: knowledge.ChunkMetadata{
			ContentType: "text", FileType: "text", Language: knowledge.LanguageEnglish,
			SourcePath: "a.txt", FileName: "a.txt", ContentHash: "abc",
			ByteRange: knowledge.ByteRange{Start: 0, End: 11}, CharCount: 11,
			Tags: []string{"docs"}, CreatedAt: 1000, UpdatedAt: 1000,
			SplitterUsed: knowledge.SplitterText,
		},
	}
}

func TestUpsertAndSearch_RoundTrip(t *testing.T) {
	idx := newTestIndex(t)

	c := chunkWith("c1", "s1", 0, []float32{1, 0, 0, 0})
	require.NoError(t, idx.UpsertChunks([]knowledge.Chunk{c}))

	results, err := idx.Search([]float32{1, 0, 0, 0}, 1, Filters{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "c1", results[0].Chunk.ID)
	require.InDelta(t, 1.0, results[0].Score, 1e-4)
}

func TestSearch_FilterCorrectness(t *testing.T) {
	idx := newTestIndex(t)

	c1 := chunkWith("c1", "s1", 0, []float32{1, 0, 0, 0})
	c1.Metadata.FileType = "code"
	c2 := chunkWith("c2", "s2", 0, []float32{0.9, 0.1, 0, 0})
	c2.Metadata.FileType = "text"

	require.NoError(t, idx.UpsertChunks([]knowledge.Chunk{c1, c2}))

	results, err := idx.Search([]float32{1, 0, 0, 0}, 10, Filters{FileType: []string{"text"}})
	require.NoError(t, err)
	for _, r := range results {
		require.Equal(t, "text", r.Chunk.Metadata.FileType)
	}
}

func TestReset_Determinism(t *testing.T) {
	idx := newTestIndex(t)
	c := chunkWith("c1", "s1", 0, []float32{1, 0, 0, 0})
	require.NoError(t, idx.UpsertChunks([]knowledge.Chunk{c}))

	require.NoError(t, idx.Reset())
	stats, err := idx.Stats()
	require.NoError(t, err)
	require.Zero(t, stats.TotalChunks)
	require.Zero(t, stats.TotalSources)

	// dimensions can change after reset
	c2 := chunkWith("c2", "s2", 0, []float32{1, 0})
	require.NoError(t, idx.UpsertChunks([]knowledge.Chunk{c2}))
	stats, err = idx.Stats()
	require.NoError(t, err)
	require.Equal(t, 2, stats.Dimensions)
}

func TestUpsertChunks_DimensionMismatchAfterFirstWriteFails(t *testing.T) {
	idx := newTestIndex(t)
	c := chunkWith("c1", "s1", 0, []float32{1, 0, 0, 0})
	require.NoError(t, idx.UpsertChunks([]knowledge.Chunk{c}))

	bad := chunkWith("c2", "s2", 0, []float32{1, 0})
	err := idx.UpsertChunks([]knowledge.Chunk{bad})
	require.Error(t, err)
}

func TestStats_EmptyIndex(t *testing.T) {
	idx := newTestIndex(t)
	stats, err := idx.Stats()
	require.NoError(t, err)
	require.Zero(t, stats.TotalChunks)
	require.Zero(t, stats.TotalSources)
}
