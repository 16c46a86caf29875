package embedengine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/ragctl/internal/embed"
	"github.com/mvp-joe/ragctl/internal/knowledge"
)

type memStore struct {
	configs map[string]knowledge.EmbeddingConfig
}

func newMemStore() *memStore { return &memStore{configs: make(map[string]knowledge.EmbeddingConfig)} }

func (m *memStore) Exists(base string) (bool, error) {
	_, ok := m.configs[base]
	return ok, nil
}

func (m *memStore) Load(base string) (knowledge.EmbeddingConfig, error) {
	cfg, ok := m.configs[base]
	if !ok {
		return knowledge.EmbeddingConfig{}, errors.New("not found")
	}
	return cfg, nil
}

func TestEngine_FirstLearnAdoptsRequestedConfig(t *testing.T) {
	store := newMemStore()
	e := New(store, DefaultFactory)

	cfg := knowledge.EmbeddingConfig{Provider: "trigram", Model: "trigram-v1", Dimensions: 32, Normalize: true}
	p, err := e.Resolve("kb1", cfg)
	require.NoError(t, err)
	require.Equal(t, 32, p.Dimensions())
}

func TestEngine_ConsistencyGuardRejectsMismatch(t *testing.T) {
	store := newMemStore()
	store.configs["kb1"] = knowledge.EmbeddingConfig{Provider: "trigram", Model: "trigram-v1", Dimensions: 384}
	e := New(store, DefaultFactory)

	_, err := e.Resolve("kb1", knowledge.EmbeddingConfig{Provider: "trigram", Model: "trigram-v1", Dimensions: 768})
	require.Error(t, err)

	var kerr *knowledge.Error
	require.True(t, errors.As(err, &kerr))
	require.Equal(t, knowledge.KindErrConfig, kerr.Kind)
	require.ErrorIs(t, err, knowledge.ErrConfig)
}

func TestEngine_CachesProviderPerBase(t *testing.T) {
	store := newMemStore()
	e := New(store, DefaultFactory)
	cfg := knowledge.EmbeddingConfig{Provider: "trigram", Model: "trigram-v1", Dimensions: 16, Normalize: true}

	p1, err := e.Resolve("kb1", cfg)
	require.NoError(t, err)
	p2, err := e.Resolve("kb1", cfg)
	require.NoError(t, err)
	require.Same(t, p1, p2)
}

func TestEngine_EmbedChunksPreservesOrder(t *testing.T) {
	store := newMemStore()
	e := New(store, DefaultFactory)
	cfg := knowledge.EmbeddingConfig{Provider: "trigram", Model: "trigram-v1", Dimensions: 16, Normalize: true}

	chunks := []knowledge.Chunk{
		{ID: "a", Text: "alpha content about rockets"},
		{ID: "b", Text: "beta content about cooking"},
	}
	out, err := e.EmbedChunks(context.Background(), "kb1", cfg, chunks)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "a", out[0].ID)
	require.Len(t, out[0].Embedding, 16)
	require.NotEqual(t, out[0].Embedding, out[1].Embedding)
	_ = embed.ModePassage
}
