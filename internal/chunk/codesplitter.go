package chunk

import (
	"strings"

	"github.com/mvp-joe/ragctl/internal/knowledge"
	"github.com/mvp-joe/ragctl/internal/chunk/parsers"
)

// codeSplitter prefers boundaries at top-level declarations (function,
// class, struct, impl) using tree-sitter; a declaration larger than MaxSize
// is split by greedy line-based packing instead. Chunks it splits itself
// record LineRange; a language with no grammar is handed to the fallback
// splitter, whose chunks carry no LineRange.
type codeSplitter struct {
	lang knowledge.ProgrammingLanguage
}

func newCodeSplitter(lang knowledge.ProgrammingLanguage) *codeSplitter {
	return &codeSplitter{lang: lang}
}

func (s *codeSplitter) Split(text string, sourceID string, opts Options) ([]knowledge.Chunk, error) {
	opts = opts.withDefaults()
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	grammar := parsers.Language(s.lang)
	if grammar == nil {
		return newFallbackSplitter().Split(text, sourceID, opts)
	}

	decls, err := parsers.ExtractDeclarations(grammar, []byte(text))
	if err != nil || len(decls) == 0 {
		return lineSplit(text, sourceID, opts, 1)
	}

	var chunks []knowledge.Chunk
	lines := strings.Split(text, "\n")

	for _, d := range decls {
		if len([]rune(d.Text)) <= opts.MaxSize {
			lr := knowledge.LineRange{Start: d.StartLine, End: d.EndLine}
			chunks = append(chunks, newChunk(sourceID, len(chunks), d.Text, opts, knowledge.SplitterCode,
				knowledge.ByteRange{Start: d.StartByte, End: d.EndByte}, &lr))
			continue
		}
		sub, subErr := lineSplitRange(lines, d.StartLine, d.EndLine, d.StartByte, sourceID, opts, len(chunks))
		if subErr != nil {
			continue
		}
		chunks = append(chunks, sub...)
	}

	return enforceSize(chunks, opts), nil
}

// lineSplit greedily packs whole lines into chunks up to TargetSize runes,
// used when no declaration boundaries were found at all (e.g. a script with
// no top-level function).
func lineSplit(text string, sourceID string, opts Options, startLine int) ([]knowledge.Chunk, error) {
	lines := strings.Split(text, "\n")
	return lineSplitRange(lines, startLine, startLine+len(lines)-1, 0, sourceID, opts, 0)
}

// lineSplitRange packs lines[startLine-1:endLine] (1-indexed, inclusive)
// into chunks, used both as the no-declaration fallback and as the
// over-max-declaration fallback. baseByte is the byte offset of the start
// of startLine within the original source, used to keep ByteRange accurate.
func lineSplitRange(lines []string, startLine, endLine, baseByte int, sourceID string, opts Options, startPosition int) ([]knowledge.Chunk, error) {
	var chunks []knowledge.Chunk
	var buf strings.Builder
	bufRunes := 0
	bufStartLine := startLine
	bufStartByte := baseByte
	curLine := startLine
	byteCursor := baseByte

	flush := func(endAt int) {
		if buf.Len() == 0 {
			return
		}
		lr := knowledge.LineRange{Start: bufStartLine, End: endAt}
		chunks = append(chunks, newChunk(sourceID, startPosition+len(chunks), buf.String(), opts, knowledge.SplitterCode,
			knowledge.ByteRange{Start: bufStartByte, End: byteCursor}, &lr))
		buf.Reset()
		bufRunes = 0
	}

	for i := startLine; i <= endLine && i-1 < len(lines); i++ {
		line := lines[i-1]
		lRunes := len([]rune(line)) + 1
		if bufRunes > 0 && bufRunes+lRunes > opts.TargetSize {
			flush(curLine - 1)
			bufStartLine = i
			bufStartByte = byteCursor
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(line)
		bufRunes += lRunes
		byteCursor += len(line) + 1
		curLine = i
	}
	if byteCursor > baseByte {
		byteCursor-- // last line has no trailing newline within range
	}
	flush(endLine)

	return chunks, nil
}
