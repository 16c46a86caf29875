package chunk

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

// fallbackSplitter iterates grapheme clusters (not bytes, not runes) so that
// multi-codepoint emoji and combining-mark sequences are never split across
// a chunk boundary. Used for Unknown content and whenever a preferred
// splitter errors.
type fallbackSplitter struct{}

func newFallbackSplitter() *fallbackSplitter { return &fallbackSplitter{} }

func (s *fallbackSplitter) Split(text string, sourceID string, opts Options) ([]knowledge.Chunk, error) {
	opts = opts.withDefaults()
	if text == "" {
		return nil, nil
	}

	type cluster struct {
		text  string
		start int
		end   int
	}
	var clusters []cluster
	state := -1
	pos := 0
	remaining := text
	for len(remaining) > 0 {
		c, rest, _, newState := uniseg.StepString(remaining, state)
		state = newState
		clusters = append(clusters, cluster{text: c, start: pos, end: pos + len(c)})
		pos += len(c)
		remaining = rest
	}

	var chunks []knowledge.Chunk
	var buf []cluster
	lastSpaceAt := -1 // index into buf, just past the most recent whitespace cluster

	// flushFrom emits buf[:upto] as a chunk and carries buf[upto:] into the
	// next buffer, so the cut lands on the most recent whitespace boundary
	// instead of hard-cutting mid-word. upto <= 0 means no boundary was seen
	// recently enough, so the whole buffer is flushed as-is.
	flushFrom := func(upto int) {
		if len(buf) == 0 {
			return
		}
		cut := len(buf)
		if upto > 0 && upto < len(buf) {
			cut = upto
		}
		head := buf[:cut]
		var b strings.Builder
		for _, c := range head {
			b.WriteString(c.text)
		}
		chunks = append(chunks, newChunk(sourceID, len(chunks), b.String(), opts, knowledge.SplitterFallback,
			knowledge.ByteRange{Start: head[0].start, End: head[len(head)-1].end}, nil))

		rest := append([]cluster(nil), buf[cut:]...)
		buf = rest
		lastSpaceAt = -1
		for i, c := range buf {
			if strings.TrimSpace(c.text) == "" {
				lastSpaceAt = i + 1
			}
		}
	}

	for _, c := range clusters {
		if len(buf) > 0 && len(buf) >= opts.TargetSize {
			flushFrom(lastSpaceAt)
		}
		buf = append(buf, c)
		if strings.TrimSpace(c.text) == "" {
			lastSpaceAt = len(buf)
		}
	}
	flushFrom(lastSpaceAt)

	return enforceSize(chunks, opts), nil
}
