// Package remotehttp implements the remote-model-over-HTTP embedding
// provider: bearer-token auth, optional organization header, one HTTP call
// per batch with an OpenAI-style {data: [{embedding}]} response shape that
// preserves input order.
package remotehttp

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

const ProviderName = "remote-http"

// Config configures a Provider instance.
type Config struct {
	APIBase        string
	APIKey         string
	Organization   string
	Model          string
	Dimensions     int
	Normalize      bool
	Timeout        time.Duration
	MaxRetries     int
}

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
	return &Provider{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (p *Provider) Name() string    { return ProviderName }
func (p *Provider) Model() string   { return p.cfg.Model }
func (p *Provider) Dimensions() int { return p.cfg.Dimensions }
func (p *Provider) Close() error    { return nil }

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedDatum struct {
	Embedding []float32 `json:"embedding"`
}

type embedResponse struct {
	Data []embedDatum `json:"data"`
}

func (p *Provider) Embed(ctx context.Context, texts []string, _ embed.Mode) ([][]float32, error) {
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
		vecs, err := p.embedBatch(ctx, texts)
		if err == nil {
			return vecs, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("remotehttp: embed batch failed after %d attempts: %w", p.cfg.MaxRetries, lastErr)
}

func (p *Provider) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: p.cfg.Model, Input: texts})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIBase+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	if p.cfg.Organization != "" {
		req.Header.Set("OpenAI-Organization", p.cfg.Organization)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, fmt.Errorf("remotehttp: transient status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remotehttp: embeddings endpoint returned %d", resp.StatusCode)
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("remotehttp: decode response: %w", err)
	}
	if len(decoded.Data) != len(texts) {
		return nil, fmt.Errorf("remotehttp: expected %d embeddings, got %d", len(texts), len(decoded.Data))
	}

	out := make([][]float32, len(decoded.Data))
	for i, d := range decoded.Data {
		if p.cfg.Dimensions > 0 && len(d.Embedding) != p.cfg.Dimensions {
			return nil, fmt.Errorf("remotehttp: provider returned %d dims, base expects %d", len(d.Embedding), p.cfg.Dimensions)
		}
		if p.cfg.Normalize {
			normalize(d.Embedding)
		}
		out[i] = d.Embedding
	}
	return out, nil
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
