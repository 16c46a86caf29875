// Package chunk implements the three splitter strategies (semantic text,
// syntax-aware code, grapheme-safe fallback) and the pipeline that dispatches
// between them, enforces size bounds, and enriches chunk metadata.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

// Default size constants from the chunking design; BaseConfig overrides
// TargetSize/Overlap, MaxSize stays fixed at four times the default target
// unless the caller passes one explicitly.
const (
	DefaultTargetSize = 512
	DefaultMaxSize    = 2048
	DefaultOverlap    = 64
	DefaultMinSize    = 64
)

// Options controls a single Split call. When left zero, MaxSize falls back
// to DefaultMaxSize and MinSize to one eighth of TargetSize.
type Options struct {
	TargetSize int
	MaxSize    int
	MinSize    int
	Overlap    int
	Path       string
}

func (o Options) withDefaults() Options {
	if o.TargetSize <= 0 {
		o.TargetSize = DefaultTargetSize
	}
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultMaxSize
	}
	if o.MinSize <= 0 {
		o.MinSize = o.TargetSize * DefaultMinSize / DefaultTargetSize
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	return o
}

// Splitter produces an ordered list of chunks from text, never breaking
// Unicode scalar boundaries and respecting the configured target size.
type Splitter interface {
	Split(text string, sourceID string, opts Options) ([]knowledge.Chunk, error)
}

// newChunk stamps a Chunk with a fresh ID, the given position, and the
// pieces of metadata every splitter must fill in. byteRange and lineRange
// are splitter-specific; the caller supplies them.
func newChunk(sourceID string, position int, text string, opts Options, used knowledge.SplitterUsed, byteRange knowledge.ByteRange, lineRange *knowledge.LineRange) knowledge.Chunk {
	now := time.Now().Unix()
	sum := sha256.Sum256([]byte(text))
	meta := knowledge.ChunkMetadata{
		SourcePath:   opts.Path,
		FileName:     filepath.Base(opts.Path),
		ContentHash:  hex.EncodeToString(sum[:]),
		ByteRange:    byteRange,
		LineRange:    lineRange,
		CharCount:    len([]rune(text)),
		Tags:         tagsFromPath(opts.Path),
		CreatedAt:    now,
		UpdatedAt:    now,
		SplitterUsed: used,
	}
	return knowledge.Chunk{
		ID:       uuid.NewString(),
		SourceID: sourceID,
		Position: position,
		Text:     text,
		Metadata: meta,
	}
}

// tagsFromPath derives short tags from path segments, e.g. "docs/api/auth.md"
// yields ["docs", "api"].
func tagsFromPath(path string) []string {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(filepath.ToSlash(path))
	if dir == "." || dir == "/" {
		return nil
	}
	var tags []string
	for _, seg := range strings.Split(dir, "/") {
		seg = strings.TrimSpace(seg)
		if seg != "" && seg != "." {
			tags = append(tags, seg)
		}
	}
	return tags
}
