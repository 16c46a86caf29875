package trigram

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/ragctl/internal/embed"
)

func TestProvider_Deterministic(t *testing.T) {
	p := New("trigram-v1", 64, true)
	ctx := context.Background()

	a, err := p.Embed(ctx, []string{"Gamedex é um aplicativo para gerenciar jogos"}, embed.ModePassage)
	require.NoError(t, err)
	b, err := p.Embed(ctx, []string{"Gamedex é um aplicativo para gerenciar jogos"}, embed.ModePassage)
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Len(t, a[0], 64)
}

func TestProvider_Normalized(t *testing.T) {
	p := New("trigram-v1", 32, true)
	vecs, err := p.Embed(context.Background(), []string{"some meaningful content about games"}, embed.ModePassage)
	require.NoError(t, err)

	var norm float64
	for _, v := range vecs[0] {
		norm += float64(v) * float64(v)
	}
	require.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}

func TestProvider_DifferentTextsDiffer(t *testing.T) {
	p := New("trigram-v1", 64, true)
	ctx := context.Background()
	a, _ := p.Embed(ctx, []string{"alpha beta gamma document about rockets"}, embed.ModePassage)
	b, _ := p.Embed(ctx, []string{"completely unrelated text concerning cooking recipes"}, embed.ModePassage)
	require.NotEqual(t, a, b)
}

func TestProvider_EmptyTextIsZeroVector(t *testing.T) {
	p := New("trigram-v1", 16, true)
	vecs, err := p.Embed(context.Background(), []string{""}, embed.ModePassage)
	require.NoError(t, err)
	for _, v := range vecs[0] {
		require.Zero(t, v)
	}
}
