// Package localhttp implements the local-model-over-HTTP embedding
// provider, generalizing the teacher's internal/embed/client/local.go
// health-checked HTTP client to the spec's {model, prompt} -> {embedding}
// wire contract. One HTTP call per input text (the local daemon contract
// has no batch endpoint), issued sequentially to preserve order.
package localhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/mvp-joe/ragctl/internal/embed"
)

const ProviderName = "local-http"

// Config configures a Provider instance.
type Config struct {
	Endpoint      string // base URL, e.g. http://localhost:11434
	Model         string
	Dimensions    int
	Normalize     bool
	Timeout       time.Duration
	MaxRetries    int
}

// Provider is the local-model-over-HTTP embedding implementation.
type Provider struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Provider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *Provider) Name() string    { return ProviderName }
func (p *Provider) Model() string   { return p.cfg.Model }
func (p *Provider) Dimensions() int { return p.cfg.Dimensions }
func (p *Provider) Close() error    { return nil }

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (p *Provider) Embed(ctx context.Context, texts []string, _ embed.Mode) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := p.embedOneWithRetry(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (p *Provider) embedOneWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * 100 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		vec, err := p.embedOne(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("localhttp: embed failed after %d attempts: %w", p.cfg.MaxRetries, lastErr)
}

func (p *Provider) embedOne(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: p.cfg.Model, Prompt: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("localhttp: embeddings endpoint returned %d", resp.StatusCode)
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("localhttp: decode response: %w", err)
	}
	if p.cfg.Dimensions > 0 && len(decoded.Embedding) != p.cfg.Dimensions {
		return nil, fmt.Errorf("localhttp: provider returned %d dims, base expects %d", len(decoded.Embedding), p.cfg.Dimensions)
	}

	if p.cfg.Normalize {
		normalize(decoded.Embedding)
	}
	return decoded.Embedding, nil
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i, v := range vec {
		vec[i] = float32(float64(v) / norm)
	}
}
