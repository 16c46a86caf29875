package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	dims int
}

func (f *fakeProvider) Name() string    { return "fake" }
func (f *fakeProvider) Model() string   { return "fake-model" }
func (f *fakeProvider) Dimensions() int { return f.dims }
func (f *fakeProvider) Close() error    { return nil }

func (f *fakeProvider) Embed(_ context.Context, texts []string, _ Mode) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dims)
		out[i][0] = float32(i)
	}
	return out, nil
}

func TestWithProgress_PreservesOrderAcrossBatches(t *testing.T) {
	p := &fakeProvider{dims: 4}
	texts := make([]string, 25)
	for i := range texts {
		texts[i] = "text"
	}

	progressCh := make(chan BatchProgress, 10)
	vecs, err := WithProgress(context.Background(), p, texts, ModePassage, 10, progressCh)
	require.NoError(t, err)
	require.Len(t, vecs, 25)

	for i, v := range vecs {
		require.Equal(t, float32(i%10), v[0])
	}
}

func TestWithProgress_EmptyInput(t *testing.T) {
	p := &fakeProvider{dims: 4}
	vecs, err := WithProgress(context.Background(), p, nil, ModePassage, 10, nil)
	require.NoError(t, err)
	require.Empty(t, vecs)
}
