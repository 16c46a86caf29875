package content

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

func TestDetect_ExtensionTakesPrecedence(t *testing.T) {
	ct, _ := Detect("main.go", []byte("package main\n"))
	require.Equal(t, knowledge.Code(knowledge.ProgLangGo), ct)

	ct, _ = Detect("README.md", []byte("# Title\n"))
	require.Equal(t, knowledge.Markdown, ct)

	ct, _ = Detect("notes.rs", []byte("fn main() {}"))
	require.Equal(t, knowledge.Code(knowledge.ProgLangRust), ct)
}

func TestDetect_ShebangHeuristic(t *testing.T) {
	ct, _ := Detect("script.txt", []byte("#!/usr/bin/env bash\necho hi\n"))
	require.Equal(t, knowledge.KindCode, ct.Kind)
}

func TestDetect_HtmlHeuristic(t *testing.T) {
	ct, _ := Detect("", []byte("<!DOCTYPE html><html><body>hi</body></html>"))
	require.Equal(t, knowledge.Html, ct)
}

func TestDetect_MarkdownHeuristic(t *testing.T) {
	sample := []byte("# Heading one\n\nSome text with a [link](http://example.com).\n\n```go\ncode\n```\n")
	ct, _ := Detect("", sample)
	require.Equal(t, knowledge.Markdown, ct)
}

func TestDetect_PlainTextFallback(t *testing.T) {
	ct, _ := Detect("", []byte("just a normal sentence with nothing special in it at all"))
	require.Equal(t, knowledge.Text, ct)
}

func TestDetect_NaturalLanguage(t *testing.T) {
	_, lang := Detect("a.md", []byte("Gamedex é um aplicativo brasileiro para gerenciar coleção de games, com acentuação completa."))
	require.Equal(t, knowledge.LanguagePortuguese, lang)

	_, lang = Detect("a.md", []byte("The quick brown fox is an example of a sentence mentioning the management of the documentation."))
	require.Equal(t, knowledge.LanguageEnglish, lang)
}

func TestDetect_EmptySampleIsUnknownLanguage(t *testing.T) {
	_, lang := Detect("a.md", nil)
	require.Equal(t, knowledge.LanguageUnknown, lang)
}
