// Package orchestrator wires the workspace, chunking, embedding, vector
// index, and source-tracking packages into the four base-level operations a
// caller actually performs: learn, ask, clean, stats. It owns the per-base
// locking discipline and the failure-isolation rules the lower packages
// don't know about, the way the teacher's internal/indexer.Indexer composes
// its discovery/embedding/storage collaborators behind one Index() call.
package orchestrator

import (
	"time"

	"github.com/mvp-joe/ragctl/internal/chunk"
	"github.com/mvp-joe/ragctl/internal/collab"
	"github.com/mvp-joe/ragctl/internal/embedengine"
	"github.com/mvp-joe/ragctl/internal/progress"
	"github.com/mvp-joe/ragctl/internal/sourcetracker"
	"github.com/mvp-joe/ragctl/internal/vectorindex"
	"github.com/mvp-joe/ragctl/internal/workspace"
)

// Tuning constants for the learn and ask flows. These aren't user-
// configurable per spec scope; they're fixed operational thresholds.
const (
	// chunkEmbedBatchSize is how many chunks are embedded and upserted per
	// round during learn, independent of the embedding engine's own
	// provider-level HTTP batch size.
	chunkEmbedBatchSize = 50

	// sourceFailureAbortRatio: if more than half the discovered sources
	// fail to ingest (read, parse, chunk, embed or index), learn returns an
	// aggregated error without flushing or writing stats; chunks of the
	// sources that succeeded stay upserted and tracked.
	sourceFailureAbortRatio = 0.5

	// minRelevanceScore filters out near-zero-similarity hits before they
	// ever reach the LLM context window.
	minRelevanceScore = 0.1

	// lowConfidenceThreshold marks a RagResponse as low_confidence when the
	// best hit still scores below this bar.
	lowConfidenceThreshold = 0.35

	// snippetMaxChars bounds how much of a chunk's text is echoed back in a
	// RagSourceRef.Snippet.
	snippetMaxChars = 320

	defaultTopK = 5

	httpFetchTimeout = 30 * time.Second
)

// Orchestrator composes one workspace's collaborators. It is safe for
// concurrent use across different bases; within a base, learn and clean
// serialize via exclusiveLock.
type Orchestrator struct {
	layout    workspace.Layout
	baseStore *workspace.BaseStore
	engine    *embedengine.Engine
	pipeline  *chunk.Pipeline
	renderer  collab.TemplateRenderer
	llm       collab.LLMClient
	sink      progress.Sink
}

// New builds an Orchestrator. renderer and llm may be the collab.Fake*
// implementations when no real template/LLM backend is configured yet.
func New(layout workspace.Layout, baseStore *workspace.BaseStore, engine *embedengine.Engine, renderer collab.TemplateRenderer, llm collab.LLMClient, sink progress.Sink) *Orchestrator {
	if sink == nil {
		sink = progress.NoOpSink{}
	}
	return &Orchestrator{
		layout:    layout,
		baseStore: baseStore,
		engine:    engine,
		pipeline:  chunk.NewPipeline(),
		renderer:  renderer,
		llm:       llm,
		sink:      sink,
	}
}

func (o *Orchestrator) emit(e progress.Event) {
	o.sink.OnEvent(e)
}

func (o *Orchestrator) openIndex(base string) (*vectorindex.Index, error) {
	if err := o.baseStore.EnsureBaseDirs(base); err != nil {
		return nil, err
	}
	return vectorindex.Open(o.layout.IndexDBPath(base))
}
