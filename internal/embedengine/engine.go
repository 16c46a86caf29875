// Package embedengine implements the per-base provider cache and the
// config-consistency guard described in spec §4.4: exactly one provider
// instance per base, refusing to proceed when a request's
// (provider, model, dimensions) disagrees with what's already durable.
package embedengine

import (
	"context"
	"fmt"
	"sync"

	"github.com/mvp-joe/ragctl/internal/embed"
	"github.com/mvp-joe/ragctl/internal/knowledge"
)

// ConfigStore is the narrow slice of base-config persistence the engine
// needs: whether a base already has a durable config, and a way to read it.
// internal/workspace implements this; the engine only depends on the
// interface so it never imports the workspace package.
type ConfigStore interface {
	Exists(base string) (bool, error)
	Load(base string) (knowledge.EmbeddingConfig, error)
}

// Factory builds a concrete Provider for an EmbeddingConfig. DefaultFactory
// covers the trigram, localhttp and remotehttp providers.
type Factory func(cfg knowledge.EmbeddingConfig) (embed.Provider, error)

// Engine is the embedding engine (C5). It is safe for concurrent use; the
// provider cache is a concurrent map keyed by base name.
type Engine struct {
	store    ConfigStore
	factory  Factory
	mu       sync.Mutex
	cache    map[string]embed.Provider
}

func New(store ConfigStore, factory Factory) *Engine {
	return &Engine{store: store, factory: factory, cache: make(map[string]embed.Provider)}
}

// Resolve returns the cached provider for base, validating requested
// against whatever configuration is already durable for that base. When no
// config exists yet, requested becomes authoritative and the caller (the
// orchestrator) is responsible for persisting it.
func (e *Engine) Resolve(base string, requested knowledge.EmbeddingConfig) (embed.Provider, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exists, err := e.store.Exists(base)
	if err != nil {
		return nil, knowledge.NewError(knowledge.KindErrConfig, "checking existing base config", err)
	}

	effective := requested
	if exists {
		stored, err := e.store.Load(base)
		if err != nil {
			return nil, knowledge.NewError(knowledge.KindErrConfig, "loading stored base config", err)
		}
		if err := checkConsistency(stored, requested); err != nil {
			return nil, err
		}
		effective = stored
	}

	if p, ok := e.cache[base]; ok {
		return p, nil
	}

	provider, err := e.factory(effective)
	if err != nil {
		return nil, knowledge.NewError(knowledge.KindErrEmbedding, "constructing embedding provider", err)
	}
	if provider.Dimensions() != effective.Dimensions {
		return nil, knowledge.NewError(knowledge.KindErrConfig,
			fmt.Sprintf("provider reports %d dimensions, config declares %d", provider.Dimensions(), effective.Dimensions), nil)
	}

	e.cache[base] = provider
	return provider, nil
}

// checkConsistency refuses any request whose (provider, model, dimensions)
// doesn't match what's already durable, with a message pointing at the
// reconciliation path (clean + relearn).
func checkConsistency(stored, requested knowledge.EmbeddingConfig) error {
	if stored.Provider != requested.Provider || stored.Model != requested.Model || stored.Dimensions != requested.Dimensions {
		return knowledge.NewError(knowledge.KindErrConfig, fmt.Sprintf(
			"embedding config mismatch: base is configured with provider=%s model=%s dimensions=%d, "+
				"requested provider=%s model=%s dimensions=%d — run clean and relearn to change embedding configuration",
			stored.Provider, stored.Model, stored.Dimensions,
			requested.Provider, requested.Model, requested.Dimensions), nil)
	}
	return nil
}

// EmbedTexts embeds a batch of plain strings for base, in order.
func (e *Engine) EmbedTexts(ctx context.Context, base string, requested knowledge.EmbeddingConfig, texts []string, mode embed.Mode) ([][]float32, error) {
	provider, err := e.Resolve(base, requested)
	if err != nil {
		return nil, err
	}
	batchSize := requested.BatchSize
	if batchSize <= 0 {
		batchSize = embed.DefaultBatchSize
	}
	return embed.WithProgress(ctx, provider, texts, mode, batchSize, nil)
}

// EmbedChunks embeds the Text field of each chunk, in order, and returns new
// Chunk values with Embedding populated. Metadata is otherwise untouched.
func (e *Engine) EmbedChunks(ctx context.Context, base string, requested knowledge.EmbeddingConfig, chunks []knowledge.Chunk) ([]knowledge.Chunk, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vecs, err := e.EmbedTexts(ctx, base, requested, texts, embed.ModePassage)
	if err != nil {
		return nil, err
	}

	out := make([]knowledge.Chunk, len(chunks))
	for i, c := range chunks {
		c.Embedding = vecs[i]
		out[i] = c
	}
	return out, nil
}

// Close tears down every cached provider; intended for process teardown,
// per the cache's "evicted only by process teardown" design note.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var firstErr error
	for _, p := range e.cache {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.cache = make(map[string]embed.Provider)
	return firstErr
}
