package workspace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

func TestSaveAndLoadBaseConfig_RoundTrip(t *testing.T) {
	layout := NewLayout(t.TempDir())
	store := NewBaseStore(layout)

	cfg := DefaultBaseConfig("kb1")
	require.NoError(t, store.SaveBaseConfig(cfg))

	exists, err := store.Exists("kb1")
	require.NoError(t, err)
	require.True(t, exists)

	got, err := store.LoadBaseConfig("kb1")
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}

func TestValidate_RejectsBadConfig(t *testing.T) {
	cfg := DefaultBaseConfig("kb1")
	cfg.Embedding.Provider = "nonsense"
	require.ErrorIs(t, Validate(cfg), ErrInvalidProvider)

	cfg = DefaultBaseConfig("kb1")
	cfg.Embedding.Dimensions = 0
	require.ErrorIs(t, Validate(cfg), ErrInvalidDimensions)

	cfg = DefaultBaseConfig("kb1")
	cfg.ChunkOverlap = cfg.ChunkSize
	require.ErrorIs(t, Validate(cfg), ErrInvalidOverlap)
}

func TestExists_FalseForUnknownBase(t *testing.T) {
	store := NewBaseStore(NewLayout(t.TempDir()))
	exists, err := store.Exists("ghost")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestBaseStore_LoadReturnsEmbeddingOnly(t *testing.T) {
	layout := NewLayout(t.TempDir())
	store := NewBaseStore(layout)
	cfg := DefaultBaseConfig("kb1")
	require.NoError(t, store.SaveBaseConfig(cfg))

	emb, err := store.Load("kb1")
	require.NoError(t, err)
	require.Equal(t, cfg.Embedding, emb)
	var _ knowledge.EmbeddingConfig = emb
}
