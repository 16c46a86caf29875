// Package trigram implements the deterministic-local embedding provider:
// character-trigram encoding with stop-word filtering and sqrt-scaled term
// frequencies, hash-projected into a fixed dimensionality and L2-normalized.
// Zero network, fully deterministic for a given input — intended for
// offline/dev flows, grounded on the teacher's character-frequency idiom in
// its content-classification code and chunker.go's token-estimation style.
package trigram

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/mvp-joe/ragctl/internal/embed"
)

const ProviderName = "trigram"

// stopWords is a small, language-agnostic high-frequency-word list;
// filtering these out keeps trigram vectors from being dominated by
// function words shared across unrelated documents.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "to": true, "and": true,
	"in": true, "is": true, "it": true, "for": true, "on": true, "with": true,
	"de": true, "a ": true, "o": true, "que": true, "um": true, "uma": true,
	"el": true, "la": true, "los": true, "las": true, "y": true, "en": true,
}

// Provider is the deterministic-local embedding implementation.
type Provider struct {
	model      string
	dimensions int
	normalize  bool
}

// New constructs a trigram Provider. model is a free-form label persisted
// in BaseConfig (e.g. "trigram-v1"); dimensions is the base's configured
// vector length.
func New(model string, dimensions int, normalize bool) *Provider {
	if model == "" {
		model = "trigram-v1"
	}
	return &Provider{model: model, dimensions: dimensions, normalize: normalize}
}

func (p *Provider) Name() string     { return ProviderName }
func (p *Provider) Model() string    { return p.model }
func (p *Provider) Dimensions() int  { return p.dimensions }
func (p *Provider) Close() error     { return nil }

func (p *Provider) Embed(_ context.Context, texts []string, _ embed.Mode) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = p.embedOne(text)
	}
	return out, nil
}

func (p *Provider) embedOne(text string) []float32 {
	vec := make([]float64, p.dimensions)
	words := tokenize(text)

	for _, word := range words {
		if stopWords[word] {
			continue
		}
		for _, tri := range trigrams(word) {
			bucket := hashTo(tri, p.dimensions)
			vec[bucket] += 1
		}
	}

	// sqrt-scaled term frequency dampens runaway weight from repeated
	// trigrams in long inputs.
	for i, v := range vec {
		if v > 0 {
			vec[i] = math.Sqrt(v)
		}
	}

	out := make([]float32, p.dimensions)
	if p.normalize {
		var norm float64
		for _, v := range vec {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			return out
		}
		for i, v := range vec {
			out[i] = float32(v / norm)
		}
		return out
	}

	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// trigrams returns the character 3-grams of a word, padded with boundary
// markers so short words (length < 3) still contribute at least one gram.
func trigrams(word string) []string {
	padded := "^" + word + "$"
	runes := []rune(padded)
	if len(runes) < 3 {
		return []string{padded}
	}
	var out []string
	for i := 0; i+3 <= len(runes); i++ {
		out = append(out, string(runes[i:i+3]))
	}
	return out
}

func hashTo(s string, dimensions int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	if dimensions <= 0 {
		dimensions = 1
	}
	return int(h.Sum32()) % dimensions
}
