package chunk

import (
	"regexp"
	"strings"
)

// textSplitter implements the Splitter contract for Text/Markdown/Html/Pdf
// content: paragraph boundaries are preferred, then sentence boundaries,
// then whitespace, then a hard cut — mirroring the teacher's
// splitByParagraphs/splitLargeParagraph cascade in chunker.go, generalized
// from a fixed markdown-header pass to arbitrary prose.
type textSplitter struct{}

func newTextSplitter() *textSplitter { return &textSplitter{} }

// piece is one paragraph-level unit of text with its byte offsets in the
// original source. Fenced code blocks are captured as a single atomic
// piece so they are never split mid-block when it can be avoided.
type piece struct {
	text       string
	startByte  int
	endByte    int
	isCode     bool
}

var fencedBlock = regexp.MustCompile("(?s)```.*?```")

func (s *textSplitter) splitIntoPieces(text string) []piece {
	var pieces []piece
	fences := fencedBlock.FindAllStringIndex(text, -1)

	pos := 0
	consume := func(segment string, base int) {
		for _, para := range splitOnBlankLines(segment) {
			if strings.TrimSpace(para.text) == "" {
				continue
			}
			pieces = append(pieces, piece{
				text:      para.text,
				startByte: base + para.start,
				endByte:   base + para.end,
			})
		}
	}

	for _, fence := range fences {
		if fence[0] > pos {
			consume(text[pos:fence[0]], pos)
		}
		pieces = append(pieces, piece{
			text:      text[fence[0]:fence[1]],
			startByte: fence[0],
			endByte:   fence[1],
			isCode:    true,
		})
		pos = fence[1]
	}
	if pos < len(text) {
		consume(text[pos:], pos)
	}
	return pieces
}

type span struct {
	text  string
	start int
	end   int
}

// splitOnBlankLines splits on runs of two-or-more newlines, the paragraph
// boundary, and reports the byte offsets of each paragraph relative to the
// input segment.
func splitOnBlankLines(segment string) []span {
	var spans []span
	start := 0
	i := 0
	for i < len(segment) {
		if segment[i] == '\n' {
			j := i
			for j < len(segment) && segment[j] == '\n' {
				j++
			}
			if j-i >= 2 {
				spans = append(spans, span{text: segment[start:i], start: start, end: i})
				start = j
				i = j
				continue
			}
		}
		i++
	}
	if start < len(segment) {
		spans = append(spans, span{text: segment[start:], start: start, end: len(segment)})
	}
	return spans
}

var sentenceBoundary = regexp.MustCompile(`[.!?]+\s+`)

// splitOversized breaks a single piece's text that exceeds maxSize, trying
// sentence boundaries, then whitespace, then a hard UTF-8-safe cut.
func splitOversized(text string, targetSize, maxSize int) []string {
	if len([]rune(text)) <= maxSize {
		return []string{text}
	}

	if locs := sentenceBoundary.FindAllStringIndex(text, -1); len(locs) > 0 {
		var out []string
		last := 0
		for _, loc := range locs {
			seg := text[last:loc[1]]
			if len([]rune(seg)) > 0 {
				out = append(out, seg)
			}
			last = loc[1]
		}
		if last < len(text) {
			out = append(out, text[last:])
		}
		return packToSize(out, targetSize, maxSize, " ")
	}

	words := strings.Fields(text)
	if len(words) > 1 {
		return packToSize(words, targetSize, maxSize, " ")
	}

	return hardCut(text, maxSize)
}

// packToSize greedily packs a sequence of pieces (sentences or words) into
// strings no longer than maxSize runes, preferring to fill close to
// targetSize before starting a new piece.
func packToSize(pieces []string, targetSize, maxSize int, sep string) []string {
	var out []string
	var buf strings.Builder
	bufLen := 0

	flush := func() {
		if buf.Len() > 0 {
			out = append(out, strings.TrimSpace(buf.String()))
			buf.Reset()
			bufLen = 0
		}
	}

	for _, p := range pieces {
		pLen := len([]rune(p))
		if pLen > maxSize {
			flush()
			out = append(out, hardCut(p, maxSize)...)
			continue
		}
		if bufLen > 0 && bufLen+pLen > targetSize {
			flush()
		}
		if bufLen > 0 {
			buf.WriteString(sep)
			bufLen += len([]rune(sep))
		}
		buf.WriteString(p)
		bufLen += pLen
	}
	flush()
	return out
}

// hardCut cuts text into maxSize-rune segments without regard to word
// boundaries, always on a rune boundary so output is valid UTF-8.
func hardCut(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = 1
	}
	runes := []rune(text)
	var out []string
	for i := 0; i < len(runes); i += maxSize {
		end := i + maxSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}

// takeOverlapSuffix returns up to overlap runes from the end of text, used
// to seed the next chunk so adjacent chunks share trailing/leading context.
func takeOverlapSuffix(text string, overlap int) string {
	runes := []rune(text)
	if overlap <= 0 || len(runes) == 0 {
		return ""
	}
	if overlap >= len(runes) {
		return text
	}
	return string(runes[len(runes)-overlap:])
}
