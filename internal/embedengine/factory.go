package embedengine

import (
	"fmt"

	"github.com/mvp-joe/ragctl/internal/embed"
	"github.com/mvp-joe/ragctl/internal/embed/localhttp"
	"github.com/mvp-joe/ragctl/internal/embed/remotehttp"
	"github.com/mvp-joe/ragctl/internal/embed/trigram"
	"github.com/mvp-joe/ragctl/internal/knowledge"
)

// DefaultFactory switches on cfg.Provider the way the teacher's
// embed/factory.go switches on its Config.Provider field, generalized from
// one local-HTTP variant to the spec's three-provider set.
func DefaultFactory(cfg knowledge.EmbeddingConfig) (embed.Provider, error) {
	switch cfg.Provider {
	case "trigram", "":
		return trigram.New(cfg.Model, cfg.Dimensions, cfg.Normalize), nil

	case "local-http":
		endpoint, _ := cfg.ProviderConfig["endpoint"].(string)
		return localhttp.New(localhttp.Config{
			Endpoint:   endpoint,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Normalize:  cfg.Normalize,
		}), nil

	case "remote-http":
		apiBase, _ := cfg.ProviderConfig["api_base"].(string)
		apiKey, _ := cfg.ProviderConfig["api_key"].(string)
		org, _ := cfg.ProviderConfig["organization"].(string)
		return remotehttp.New(remotehttp.Config{
			APIBase:      apiBase,
			APIKey:       apiKey,
			Organization: org,
			Model:        cfg.Model,
			Dimensions:   cfg.Dimensions,
			Normalize:    cfg.Normalize,
		}), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
