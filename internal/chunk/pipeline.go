package chunk

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

// Pipeline dispatches text to the right Splitter by ContentType, then runs
// size enforcement and metadata enrichment, satisfying spec §4.2's single
// contract regardless of which splitter actually ran.
type Pipeline struct {
	text     *textSplitter
	fallback *fallbackSplitter
}

// NewPipeline constructs a Pipeline. There is no per-instance state to
// configure; Options are supplied per call.
func NewPipeline() *Pipeline {
	return &Pipeline{text: newTextSplitter(), fallback: newFallbackSplitter()}
}

// Process detects nothing itself — ct is the already-detected content type
// (see internal/content) — and produces the ordered chunk sequence for one
// source, with splitter failures isolated to a returned error the caller
// can treat as a skip-this-source warning.
func (p *Pipeline) Process(ct knowledge.ContentType, lang knowledge.Language, text string, sourceID string, opts Options) ([]knowledge.Chunk, error) {
	opts = opts.withDefaults()

	splitter, used := p.selectSplitter(ct)

	chunks, err := splitter.Split(text, sourceID, opts)
	if err != nil {
		// a splitter error on a single source is isolated: retry once
		// through the fallback splitter before giving up entirely.
		chunks, err = p.fallback.Split(text, sourceID, opts)
		if err != nil {
			return nil, fmt.Errorf("chunk pipeline: %s splitter and fallback both failed: %w", used, err)
		}
	}

	fileType := ct.String()
	for i := range chunks {
		chunks[i].Metadata.ContentType = ct.String()
		chunks[i].Metadata.FileType = fileType
		chunks[i].Metadata.Language = lang
		if ct.Kind == knowledge.KindCode {
			chunks[i].Metadata.ProgrammingLanguage = ct.Lang
		}
	}

	return enforceSize(chunks, opts), nil
}

func (p *Pipeline) selectSplitter(ct knowledge.ContentType) (Splitter, string) {
	switch ct.Kind {
	case knowledge.KindCode:
		return newCodeSplitter(ct.Lang), "code"
	case knowledge.KindUnknown:
		return p.fallback, "fallback"
	default:
		return p.text, "text"
	}
}

// enforceSize merges chunks smaller than MinSize into the previous chunk
// and recursively re-splits any chunk still exceeding MaxSize through the
// fallback splitter, then renumbers Position to stay contiguous.
func enforceSize(chunks []knowledge.Chunk, opts Options) []knowledge.Chunk {
	if len(chunks) == 0 {
		return chunks
	}

	merged := make([]knowledge.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if len(merged) > 0 && c.Metadata.CharCount < opts.MinSize {
			prev := &merged[len(merged)-1]
			prev.Text += "\n\n" + c.Text
			prev.Metadata.CharCount = len([]rune(prev.Text))
			prev.Metadata.ByteRange.End = c.Metadata.ByteRange.End
			if prev.Metadata.LineRange != nil && c.Metadata.LineRange != nil {
				prev.Metadata.LineRange.End = c.Metadata.LineRange.End
			}
			continue
		}
		merged = append(merged, c)
	}

	final := make([]knowledge.Chunk, 0, len(merged))
	for _, c := range merged {
		if c.Metadata.CharCount <= opts.MaxSize {
			final = append(final, c)
			continue
		}
		resplit, err := (&fallbackSplitter{}).Split(c.Text, c.SourceID, opts)
		if err != nil || len(resplit) == 0 {
			final = append(final, c)
			continue
		}
		for i := range resplit {
			resplit[i].Metadata.ContentType = c.Metadata.ContentType
			resplit[i].Metadata.FileType = c.Metadata.FileType
			resplit[i].Metadata.Language = c.Metadata.Language
			resplit[i].Metadata.ProgrammingLanguage = c.Metadata.ProgrammingLanguage
			resplit[i].Metadata.SourcePath = c.Metadata.SourcePath
			resplit[i].Metadata.FileName = c.Metadata.FileName
		}
		final = append(final, resplit...)
	}

	for i := range final {
		final[i].Position = i
	}
	return final
}

// stripHTMLTags is a minimal tag stripper, not a full HTML parser. Nothing
// in the module calls it: the orchestrator's parse step extracts Html text
// with golang.org/x/net/html.
func stripHTMLTags(text string) string {
	var b strings.Builder
	inTag := false
	for _, r := range text {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
