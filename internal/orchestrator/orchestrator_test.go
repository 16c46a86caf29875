package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/ragctl/internal/collab"
	"github.com/mvp-joe/ragctl/internal/embedengine"
	"github.com/mvp-joe/ragctl/internal/progress"
	"github.com/mvp-joe/ragctl/internal/workspace"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, workspace.Layout) {
	t.Helper()
	root := t.TempDir()
	layout := workspace.NewLayout(root)
	baseStore := workspace.NewBaseStore(layout)
	engine := embedengine.New(baseStore, embedengine.DefaultFactory)
	t.Cleanup(func() { _ = engine.Close() })

	o := New(layout, baseStore, engine, collab.FakeTemplateRenderer{}, collab.FakeLLMClient{}, progress.NoOpSink{})
	return o, layout
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// TestLearnThenAsk_FindsRelevantChunk covers the baseline end-to-end path:
// learn a small corpus with the trigram provider, then ask a question whose
// answer should be backed by exactly the file that mentions it.
func TestLearnThenAsk_FindsRelevantChunk(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	corpus := t.TempDir()

	writeFile(t, corpus, "onboarding.md", "# Onboarding\n\nNew engineers should set up their laptop using the bootstrap script in tools/setup.sh before their first day.")
	writeFile(t, corpus, "billing.md", "# Billing\n\nInvoices are generated monthly and sent to the finance team for review.")

	ctx := context.Background()
	stats, err := o.Learn(ctx, LearnRequest{Base: "docs", Path: corpus})
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalSources)
	require.Greater(t, stats.TotalChunks, 0)

	resp, err := o.Ask(ctx, AskRequest{Base: "docs", Query: "How do new engineers set up their laptop?"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Sources)
	require.Equal(t, "onboarding.md", resp.Sources[0].Source)
}

// TestLearn_UTF8Resilience exercises a corpus with emoji and accented
// Portuguese text, asserting no chunk boundary splits a multi-byte rune.
func TestLearn_UTF8Resilience(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	corpus := t.TempDir()
	writeFile(t, corpus, "notas.md", "# Notas 📚\n\nA configuração do ambiente requer atenção às dependências e à documentação técnica. 🚀✨ "+
		"Repita: configuração, documentação, dependências. 🎉")

	ctx := context.Background()
	stats, err := o.Learn(ctx, LearnRequest{Base: "notas", Path: corpus})
	require.NoError(t, err)
	require.Greater(t, stats.TotalChunks, 0)

	report, err := o.Stats("notas")
	require.NoError(t, err)
	require.Equal(t, stats.TotalChunks, report.IndexChunkCount)
}

// TestAsk_LowConfidenceWhenCorpusUnrelated asserts that a query with no
// semantic match in the corpus comes back flagged low_confidence, and — since
// nothing clears minRelevanceScore — with the canonical "could not find"
// answer and no sources, without ever reaching the template/LLM collaborators.
func TestAsk_LowConfidenceWhenCorpusUnrelated(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	corpus := t.TempDir()
	writeFile(t, corpus, "recipes.md", "# Recipes\n\nThis document describes how to bake sourdough bread with a long cold ferment.")

	ctx := context.Background()
	_, err := o.Learn(ctx, LearnRequest{Base: "kitchen", Path: corpus})
	require.NoError(t, err)

	resp, err := o.Ask(ctx, AskRequest{Base: "kitchen", Query: "quantum chromodynamics gauge boson propagator"})
	require.NoError(t, err)
	require.True(t, resp.LowConfidence)
	require.Empty(t, resp.Sources)
	require.Equal(t, noRelevantChunksAnswer, resp.Answer)
}

// TestEmbeddingConsistencyGuard_RejectsMismatchedRelearn asserts that
// changing a base's embedding dimensionality out from under an existing
// index (without an intervening clean) is rejected rather than silently
// re-indexed at a new dimensionality, whether the mismatch is caught by the
// embedding engine's config guard or the vector index's fixed-dimension
// check on upsert.
func TestEmbeddingConsistencyGuard_RejectsMismatchedRelearn(t *testing.T) {
	o, layout := newTestOrchestrator(t)
	corpus := t.TempDir()
	writeFile(t, corpus, "a.md", "first pass content about widgets and gadgets")

	ctx := context.Background()
	_, err := o.Learn(ctx, LearnRequest{Base: "guarded", Path: corpus})
	require.NoError(t, err)

	baseStore := workspace.NewBaseStore(layout)
	cfg, err := baseStore.LoadBaseConfig("guarded")
	require.NoError(t, err)
	cfg.Embedding.Dimensions = cfg.Embedding.Dimensions + 16
	require.NoError(t, baseStore.SaveBaseConfig(cfg))

	freshEngine := embedengine.New(baseStore, embedengine.DefaultFactory)
	t.Cleanup(func() { _ = freshEngine.Close() })
	freshOrchestrator := New(layout, baseStore, freshEngine, collab.FakeTemplateRenderer{}, collab.FakeLLMClient{}, progress.NoOpSink{})

	_, err = freshOrchestrator.Learn(ctx, LearnRequest{Base: "guarded", Path: corpus})
	require.Error(t, err)
}

// TestDeriveDefaultFilters asserts Ask's default-filter derivation: a
// code-shaped query prefers Code(_) file types, and a query in a detectable
// natural language prefers documents in that same language.
func TestDeriveDefaultFilters(t *testing.T) {
	codeFilters := deriveDefaultFilters("func main() { return }")
	require.NotEmpty(t, codeFilters.FileType)

	ptFilters := deriveDefaultFilters("qual é a configuração e a documentação do ambiente")
	require.Equal(t, []string{"portuguese"}, ptFilters.Language)

	blank := deriveDefaultFilters("xyz")
	require.True(t, blank.IsZero())
}

// TestClean_IsIdempotent asserts clean on a never-learned-into-index base,
// and clean called twice, both succeed without error (P4).
func TestClean_IsIdempotent(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	require.NoError(t, o.Clean("never-learned"))
	require.NoError(t, o.Clean("never-learned"))
}

// TestLearn_MissingPathFails asserts Learn surfaces a clear IO error rather
// than silently producing an empty base when the given path doesn't exist.
func TestLearn_MissingPathFails(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	ctx := context.Background()
	_, err := o.Learn(ctx, LearnRequest{Base: "broken", Path: missing})
	require.Error(t, err)
}
