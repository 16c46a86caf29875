package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

func TestPipeline_TextSplitter_ProducesOrderedChunks(t *testing.T) {
	p := NewPipeline()
	text := strings.Repeat("A paragraph about the project with enough words to matter. ", 40) +
		"\n\n" + strings.Repeat("Another unrelated paragraph discussing something else entirely. ", 40)

	chunks, err := p.Process(knowledge.Markdown, knowledge.LanguageEnglish, text, uuid.NewString(), Options{TargetSize: 200, MaxSize: 400, Overlap: 10})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		require.Equal(t, i, c.Position)
		require.True(t, utf8.ValidString(c.Text))
	}
}

func TestPipeline_UTF8Resilience(t *testing.T) {
	p := NewPipeline()
	text := "Gamedex é um aplicativo 🎮 com acentuação completa: ã, õ, ç."

	chunks, err := p.Process(knowledge.Text, knowledge.LanguagePortuguese, text, uuid.NewString(), Options{TargetSize: 16, MaxSize: 32})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	for _, c := range chunks {
		require.True(t, utf8.ValidString(c.Text))
	}
}

func TestPipeline_EmptyInputProducesNoChunks(t *testing.T) {
	p := NewPipeline()
	chunks, err := p.Process(knowledge.Text, knowledge.LanguageUnknown, "", uuid.NewString(), Options{})
	require.NoError(t, err)
	require.Empty(t, chunks)
}

func TestPipeline_UnknownContentUsesFallback(t *testing.T) {
	p := NewPipeline()
	chunks, err := p.Process(knowledge.Unknown, knowledge.LanguageUnknown, "some arbitrary bytes as text", uuid.NewString(), Options{TargetSize: 10})
	require.NoError(t, err)
	for _, c := range chunks {
		require.Equal(t, knowledge.SplitterFallback, c.Metadata.SplitterUsed)
	}
}

func TestEnforceSize_MergesUndersizedChunks(t *testing.T) {
	sourceID := uuid.NewString()
	chunks := []knowledge.Chunk{
		{SourceID: sourceID, Text: strings.Repeat("x", 100), Metadata: knowledge.ChunkMetadata{CharCount: 100}},
		{SourceID: sourceID, Text: "tiny", Metadata: knowledge.ChunkMetadata{CharCount: 4}},
	}
	out := enforceSize(chunks, Options{TargetSize: 512, MaxSize: 2048, MinSize: 64})
	require.Len(t, out, 1)
	require.Contains(t, out[0].Text, "tiny")
}
