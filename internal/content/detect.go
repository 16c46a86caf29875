// Package content classifies a byte sample plus an optional path into a
// knowledge.ContentType and a natural-language knowledge.Language, the way
// the teacher's indexer dispatches on file extension before falling back to
// content heuristics.
package content

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

const heuristicSampleSize = 4096
const languageSampleSize = 1024

var extensionTable = map[string]knowledge.ContentType{
	".rs":       knowledge.Code(knowledge.ProgLangRust),
	".ts":       knowledge.Code(knowledge.ProgLangTypeScript),
	".tsx":      knowledge.Code(knowledge.ProgLangTypeScript),
	".js":       knowledge.Code(knowledge.ProgLangJavaScript),
	".jsx":      knowledge.Code(knowledge.ProgLangJavaScript),
	".mjs":      knowledge.Code(knowledge.ProgLangJavaScript),
	".py":       knowledge.Code(knowledge.ProgLangPython),
	".go":       knowledge.Code(knowledge.ProgLangGo),
	".md":       knowledge.Markdown,
	".markdown": knowledge.Markdown,
	".html":     knowledge.Html,
	".htm":      knowledge.Html,
	".pdf":      knowledge.Pdf,
	".json":     knowledge.Json,
	".yaml":     knowledge.Yaml,
	".yml":      knowledge.Yaml,
}

var fencedCodeMarker = regexp.MustCompile("(?m)^```")
var headingMarker = regexp.MustCompile("(?m)^#{1,6}\\s")
var linkMarker = regexp.MustCompile(`\[[^\]]*\]\([^)]*\)`)

// Detect classifies a source. path may be empty (e.g. for URL content);
// sample should be the first few KiB of the source, not the whole file.
func Detect(path string, sample []byte) (knowledge.ContentType, knowledge.Language) {
	ct := detectContentType(path, sample)
	lang := detectLanguage(sample)
	return ct, lang
}

func detectContentType(path string, sample []byte) knowledge.ContentType {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := extensionTable[ext]; ok && ext != ".txt" {
		return ct
	}
	return heuristicContentType(sample)
}

func heuristicContentType(sample []byte) knowledge.ContentType {
	if len(sample) > heuristicSampleSize {
		sample = sample[:heuristicSampleSize]
	}
	trimmed := bytes.TrimSpace(sample)
	if len(trimmed) == 0 {
		return knowledge.Text
	}

	if bytes.HasPrefix(trimmed, []byte("#!")) {
		return knowledge.Code(knowledge.ProgLangUnknown)
	}

	lower := bytes.ToLower(trimmed)
	if bytes.HasPrefix(lower, []byte("<!doctype")) || bytes.HasPrefix(lower, []byte("<html")) {
		return knowledge.Html
	}

	if looksLikeMarkdown(string(sample)) {
		return knowledge.Markdown
	}

	return knowledge.Text
}

// looksLikeMarkdown counts markdown marker density: headings, fenced code
// blocks, and inline links. A prevalence of any one of these over a small
// sample is taken as evidence of Markdown.
func looksLikeMarkdown(sample string) bool {
	headings := len(headingMarker.FindAllString(sample, -1))
	fences := len(fencedCodeMarker.FindAllString(sample, -1))
	links := len(linkMarker.FindAllString(sample, -1))
	lines := strings.Count(sample, "\n") + 1

	score := headings*3 + fences*2 + links
	return score > 0 && score*10 >= lines
}

// reference trigram-frequency profile for each supported natural language,
// built from common function-word trigrams. Profiles are intentionally
// small and approximate — this is a cheap filter, not a language model.
var languageProfiles = map[knowledge.Language]map[string]float64{
	knowledge.LanguagePortuguese: {
		"que": 1, "ção": 1, "ões": 1, " de ": 1, " do ": 1, " da ": 1, "ão ": 1, "com ": 1,
	},
	knowledge.LanguageEnglish: {
		"the": 1, "ing": 1, "and": 1, " of ": 1, " to ": 1, "tion": 1, "ment": 1,
	},
	knowledge.LanguageSpanish: {
		"que": 1, "ión": 1, " de ": 1, " el ": 1, " la ": 1, "ado ": 1, "mente": 1,
	},
}

const languageConfidenceFloor = 2.0

// DetectLanguage exposes the natural-language classifier standalone, for
// callers that need to classify a string outside of a full Detect pass —
// the orchestrator's Ask path uses it to derive a default language filter
// from the query text itself.
func DetectLanguage(sample []byte) knowledge.Language {
	return detectLanguage(sample)
}

func detectLanguage(sample []byte) knowledge.Language {
	if len(sample) > languageSampleSize {
		sample = sample[:languageSampleSize]
	}
	text := strings.ToLower(string(sample))
	if len(strings.TrimSpace(text)) == 0 {
		return knowledge.LanguageUnknown
	}

	var best knowledge.Language = knowledge.LanguageUnknown
	var bestScore float64

	for lang, profile := range languageProfiles {
		var score float64
		for marker := range profile {
			score += float64(strings.Count(text, marker))
		}
		if score > bestScore {
			bestScore = score
			best = lang
		}
	}

	if bestScore < languageConfidenceFloor {
		return knowledge.LanguageUnknown
	}
	return best
}
