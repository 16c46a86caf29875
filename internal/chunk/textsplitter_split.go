package chunk

import (
	"strings"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

// Split implements Splitter for prose-like content: paragraphs are packed
// greedily up to TargetSize, oversized paragraphs are recursively split by
// sentence/whitespace/hard-cut, and adjacent chunks share an Overlap-rune
// suffix/prefix so retrieval doesn't lose context at a chunk boundary.
func (s *textSplitter) Split(text string, sourceID string, opts Options) ([]knowledge.Chunk, error) {
	opts = opts.withDefaults()
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	pieces := s.splitIntoPieces(text)

	type unit struct {
		text      string
		startByte int
		endByte   int
	}
	var units []unit
	for _, p := range pieces {
		if p.isCode || len([]rune(p.text)) <= opts.MaxSize {
			units = append(units, unit{p.text, p.startByte, p.endByte})
			continue
		}
		for _, sub := range splitOversized(p.text, opts.TargetSize, opts.MaxSize) {
			off := strings.Index(p.text, sub)
			start := p.startByte
			end := p.endByte
			if off >= 0 {
				start = p.startByte + off
				end = start + len(sub)
			}
			units = append(units, unit{sub, start, end})
		}
	}

	var chunks []knowledge.Chunk
	var buf strings.Builder
	bufRunes := 0
	bufStart := -1
	bufEnd := -1
	var overlapPrefix string

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		body := buf.String()
		if overlapPrefix != "" {
			body = overlapPrefix + body
		}
		chunks = append(chunks, newChunk(sourceID, len(chunks), body, opts, knowledge.SplitterText,
			knowledge.ByteRange{Start: bufStart, End: bufEnd}, nil))
		overlapPrefix = takeOverlapSuffix(body, opts.Overlap)
		buf.Reset()
		bufRunes = 0
		bufStart = -1
	}

	for _, u := range units {
		uRunes := len([]rune(u.text))
		if bufRunes > 0 && bufRunes+uRunes > opts.TargetSize {
			flush()
		}
		if bufStart < 0 {
			bufStart = u.startByte
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(u.text)
		bufRunes += uRunes
		bufEnd = u.endByte
	}
	flush()

	return enforceSize(chunks, opts), nil
}
