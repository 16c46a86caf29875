package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/ragctl/internal/chunk"
	"github.com/mvp-joe/ragctl/internal/content"
	"github.com/mvp-joe/ragctl/internal/knowledge"
	"github.com/mvp-joe/ragctl/internal/progress"
	"github.com/mvp-joe/ragctl/internal/sourcetracker"
	"github.com/mvp-joe/ragctl/internal/workspace"
)

const sampleSize = 4096

// LearnRequest names the source a learn pass ingests: exactly one of Path
// (a directory, a single file, or a .zip archive) or URL is set.
type LearnRequest struct {
	Base     string
	Path     string
	URL      string
	Excludes []string
	Includes []string
}

// sourceFailure records one source's ingestion failure for the learn
// summary; the pass isolates failures per-source rather than aborting on
// the first one, only bailing out if too large a fraction fail.
type sourceFailure struct {
	Path string
	Err  error
}

// Learn runs the full discover -> parse -> chunk -> embed -> index pass for
// one base, creating the base (with default config) on first use.
func (o *Orchestrator) Learn(ctx context.Context, req LearnRequest) (knowledge.BaseStats, error) {
	start := time.Now()
	lock := newExclusiveLock(o.layout.BaseDir(req.Base))
	if err := lock.acquire(); err != nil {
		return knowledge.BaseStats{}, err
	}
	defer lock.release()

	cfg, err := o.ensureBaseConfig(req.Base)
	if err != nil {
		return knowledge.BaseStats{}, err
	}

	requestedEmbedding := cfg.Embedding
	if _, err := o.engine.Resolve(req.Base, requestedEmbedding); err != nil {
		return knowledge.BaseStats{}, err
	}

	sources, err := o.collectSources(req)
	if err != nil {
		return knowledge.BaseStats{}, err
	}

	o.emit(progress.Event{Phase: progress.PhaseDiscover, Current: len(sources), Total: len(sources), Elapsed: time.Since(start)})

	idx, err := o.openIndex(req.Base)
	if err != nil {
		return knowledge.BaseStats{}, err
	}
	defer idx.Close()

	tracker := sourcetracker.New(o.layout.BaseDir(req.Base))

	var failures []sourceFailure

	opts := chunk.Options{
		TargetSize: cfg.ChunkSize,
		Overlap:    cfg.ChunkOverlap,
	}

	for i, src := range sources {
		chunks, byteCount, err := o.ingestOne(ctx, src, opts)
		if err != nil {
			failures = append(failures, sourceFailure{Path: src.label, Err: err})
			o.emit(progress.Event{Phase: progress.PhaseParse, Current: i + 1, Total: len(sources), Message: fmt.Sprintf("skipped %s: %v", src.label, err)})
			continue
		}

		sourceID := uuid.NewString()
		for j := range chunks {
			chunks[j].SourceID = sourceID
		}

		if err := o.embedAndIndex(ctx, req.Base, requestedEmbedding, idx, chunks); err != nil {
			failures = append(failures, sourceFailure{Path: src.label, Err: err})
			continue
		}

		if err := tracker.TrackSource(knowledge.KnowledgeSource{
			SourceID:   sourceID,
			PathOrURL:  src.label,
			SourceType: src.kind,
			IndexedAt:  time.Now().UTC().Format(time.RFC3339),
			ChunkCount: len(chunks),
			ByteCount:  byteCount,
		}); err != nil {
			return knowledge.BaseStats{}, fmt.Errorf("orchestrator: track source: %w", err)
		}

		o.emit(progress.Event{Phase: progress.PhaseIndex, Current: i + 1, Total: len(sources), Elapsed: time.Since(start)})
	}

	if len(sources) > 0 && float64(len(failures)) > sourceFailureAbortRatio*float64(len(sources)) {
		return knowledge.BaseStats{}, knowledge.NewError(knowledge.KindErrIO,
			fmt.Sprintf("aborting learn: %d of %d sources failed to ingest", len(failures), len(sources)), failureSummary(failures))
	}

	if err := idx.Flush(); err != nil {
		return knowledge.BaseStats{}, fmt.Errorf("orchestrator: flush index: %w", err)
	}

	existing, _ := tracker.ListSources()
	stats := knowledge.BaseStats{
		BaseName:          req.Base,
		LastLearnAt:       time.Now().UTC().Format(time.RFC3339),
		TotalSources:      len(existing),
		TotalChunks:       sumChunkCounts(existing),
		TotalBytes:        sumByteCounts(existing),
		EmbeddingProvider: requestedEmbedding.Provider,
		EmbeddingModel:    requestedEmbedding.Model,
	}
	if err := tracker.WriteStats(stats); err != nil {
		return knowledge.BaseStats{}, fmt.Errorf("orchestrator: write stats: %w", err)
	}

	return stats, nil
}

func (o *Orchestrator) ensureBaseConfig(base string) (knowledge.BaseConfig, error) {
	exists, err := o.baseStore.Exists(base)
	if err != nil {
		return knowledge.BaseConfig{}, err
	}
	if exists {
		return o.baseStore.LoadBaseConfig(base)
	}

	cfg := defaultBaseConfigFn(base)
	if err := o.baseStore.SaveBaseConfig(cfg); err != nil {
		return knowledge.BaseConfig{}, err
	}
	return cfg, nil
}

// defaultBaseConfigFn is a package variable so tests can override the
// default provider without touching workspace.DefaultBaseConfig's trigram
// default.
var defaultBaseConfigFn = workspace.DefaultBaseConfig

// ingestSource is one unit of work discovered for a learn pass: either a
// filesystem file or a single URL fetch.
type ingestSource struct {
	label   string
	kind    knowledge.SourceKind
	absPath string
	url     string
	data    []byte // set for zip entries, which are virtually extracted rather than read from disk
}

func (o *Orchestrator) collectSources(req LearnRequest) ([]ingestSource, error) {
	if req.URL != "" {
		return []ingestSource{{label: req.URL, kind: knowledge.SourceURL, url: req.URL}}, nil
	}

	info, err := os.Stat(req.Path)
	if err != nil {
		return nil, knowledge.NewError(knowledge.KindErrIO, fmt.Sprintf("stat %s", req.Path), err)
	}

	if !info.IsDir() {
		if strings.EqualFold(filepath.Ext(req.Path), ".zip") {
			entries, err := extractZipEntries(req.Path)
			if err != nil {
				return nil, err
			}
			sources := make([]ingestSource, 0, len(entries))
			for _, e := range entries {
				sources = append(sources, ingestSource{label: req.Path + "!" + e.Name, kind: knowledge.SourceZip, data: e.Data})
			}
			return sources, nil
		}
		return []ingestSource{{label: req.Path, kind: knowledge.SourceFile, absPath: req.Path}}, nil
	}

	disc, err := newDiscoverer(req.Excludes, req.Includes)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: compile discovery patterns: %w", err)
	}
	files, err := disc.Discover(req.Path)
	if err != nil {
		return nil, knowledge.NewError(knowledge.KindErrIO, fmt.Sprintf("discovering files under %s", req.Path), err)
	}

	sources := make([]ingestSource, 0, len(files))
	for _, f := range files {
		sources = append(sources, ingestSource{label: f.RelPath, kind: knowledge.SourceFile, absPath: f.AbsPath})
	}
	return sources, nil
}

// ingestOne reads, detects, parses, and chunks one source, returning its
// chunks (with SourceID still empty — the caller stamps it) and raw byte
// count.
func (o *Orchestrator) ingestOne(ctx context.Context, src ingestSource, opts chunk.Options) ([]knowledge.Chunk, int64, error) {
	var raw []byte
	var err error
	path := src.absPath

	switch src.kind {
	case knowledge.SourceURL:
		raw, err = fetchURL(ctx, src.url, httpFetchTimeout)
		path = src.url
	case knowledge.SourceZip:
		raw = src.data
		path = src.label
	default:
		raw, err = os.ReadFile(src.absPath)
	}
	if err != nil {
		return nil, 0, knowledge.NewError(knowledge.KindErrIO, fmt.Sprintf("reading %s", src.label), err)
	}

	sample := raw
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	ct, lang := content.Detect(path, sample)

	text, err := parseToText(ct, raw, src.absPath)
	if err != nil {
		return nil, 0, err
	}

	opts.Path = src.label
	chunks, err := o.pipeline.Process(ct, lang, text, "", opts)
	if err != nil {
		return nil, 0, knowledge.NewError(knowledge.KindErrChunking, fmt.Sprintf("chunking %s", src.label), err)
	}

	for i := range chunks {
		chunks[i].Metadata.FileSizeBytes = int64(len(raw))
		chunks[i].Metadata.FileLineCount = strings.Count(text, "\n") + 1
	}

	return chunks, int64(len(raw)), nil
}

// embedAndIndex embeds a source's chunks in fixed-size rounds and upserts
// each round as soon as it's embedded, so a large source's progress is
// visible incrementally rather than as one silent batch.
func (o *Orchestrator) embedAndIndex(ctx context.Context, base string, embeddingCfg knowledge.EmbeddingConfig, idx indexWriter, chunks []knowledge.Chunk) error {
	for start := 0; start < len(chunks); start += chunkEmbedBatchSize {
		end := start + chunkEmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		embedded, err := o.engine.EmbedChunks(ctx, base, embeddingCfg, batch)
		if err != nil {
			return err
		}
		o.emit(progress.Event{Phase: progress.PhaseEmbed, Current: end, Total: len(chunks)})

		if err := idx.UpsertChunks(embedded); err != nil {
			return err
		}
		if progress.ShouldEmitIndexProgress(end, len(chunks), end == len(chunks)) {
			o.emit(progress.Event{Phase: progress.PhaseIndex, Current: end, Total: len(chunks)})
		}
	}
	return nil
}

// indexWriter is the narrow slice of *vectorindex.Index the learn flow
// needs.
type indexWriter interface {
	UpsertChunks(chunks []knowledge.Chunk) error
}

func sumChunkCounts(sources []knowledge.KnowledgeSource) int {
	var n int
	for _, s := range sources {
		n += s.ChunkCount
	}
	return n
}

func sumByteCounts(sources []knowledge.KnowledgeSource) int64 {
	var n int64
	for _, s := range sources {
		n += s.ByteCount
	}
	return n
}

func failureSummary(failures []sourceFailure) error {
	if len(failures) == 0 {
		return nil
	}
	var b strings.Builder
	for i, f := range failures {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %v", f.Path, f.Err)
	}
	return fmt.Errorf("%s", b.String())
}
