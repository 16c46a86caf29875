// Package embed defines the embedding Provider contract shared by the
// deterministic-trigram, local-HTTP, and remote-HTTP implementations, plus
// the batching helper the embedding engine drives them through.
package embed

import "context"

// Mode distinguishes how a provider should treat the text it's embedding,
// mirroring providers (OpenAI, local models) that encode queries and
// passages asymmetrically.
type Mode int

const (
	ModePassage Mode = iota
	ModeQuery
)

// Provider turns a batch of strings into fixed-dimension vectors. Dimensions
// is an immutable property of a constructed instance.
type Provider interface {
	Name() string
	Model() string
	Dimensions() int
	Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error)
	Close() error
}
