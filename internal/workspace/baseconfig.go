package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

// sentinel validation errors, mirroring the teacher's
// internal/config/validate.go family (ErrInvalidProvider, ErrInvalidDimensions, ...).
var (
	ErrInvalidProvider   = errors.New("invalid embedding provider")
	ErrInvalidDimensions = errors.New("invalid embedding dimensions")
	ErrInvalidChunkSize  = errors.New("invalid chunk_size")
	ErrInvalidOverlap    = errors.New("invalid chunk_overlap")
	ErrEmptyModel        = errors.New("embedding model must not be empty")
	ErrEmptyName         = errors.New("base name must not be empty")
)

var validProviders = map[string]bool{"trigram": true, "local-http": true, "remote-http": true}

// Validate aggregates every validation failure into a single joined error,
// the way the teacher's Validate(cfg) collects []error before returning.
func Validate(cfg knowledge.BaseConfig) error {
	var errs []error
	if cfg.Name == "" {
		errs = append(errs, ErrEmptyName)
	}
	if !validProviders[cfg.Embedding.Provider] {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidProvider, cfg.Embedding.Provider))
	}
	if cfg.Embedding.Model == "" {
		errs = append(errs, ErrEmptyModel)
	}
	if cfg.Embedding.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidDimensions, cfg.Embedding.Dimensions))
	}
	if cfg.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidChunkSize, cfg.ChunkSize))
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidOverlap, cfg.ChunkOverlap))
	}
	return errors.Join(errs...)
}

// DefaultBaseConfig returns sensible defaults for a newly created base,
// mirroring the teacher's config.Default() shape (provider, model,
// dimensions, chunk sizing).
func DefaultBaseConfig(name string) knowledge.BaseConfig {
	return knowledge.BaseConfig{
		Name: name,
		Embedding: knowledge.EmbeddingConfig{
			Provider:   "trigram",
			Model:      "trigram-v1",
			Dimensions: 384,
			Normalize:  true,
			BatchSize:  100,
		},
		ChunkSize:        512,
		ChunkOverlap:     64,
		MaxContextTokens: 4096,
	}
}

// BaseStore persists and loads per-base config.yaml files and implements
// embedengine.ConfigStore so the embedding engine's consistency guard can
// consult durable config without importing this package.
type BaseStore struct {
	layout Layout
}

func NewBaseStore(layout Layout) *BaseStore { return &BaseStore{layout: layout} }

func (s *BaseStore) Exists(base string) (bool, error) {
	_, err := os.Stat(s.layout.BaseConfigPath(base))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LoadBaseConfig reads and parses a base's config.yaml in full.
func (s *BaseStore) LoadBaseConfig(base string) (knowledge.BaseConfig, error) {
	data, err := os.ReadFile(s.layout.BaseConfigPath(base))
	if err != nil {
		return knowledge.BaseConfig{}, fmt.Errorf("workspace: read base config: %w", err)
	}
	var cfg knowledge.BaseConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return knowledge.BaseConfig{}, fmt.Errorf("workspace: parse base config: %w", err)
	}
	return cfg, nil
}

// Load returns only the embedding half, satisfying embedengine.ConfigStore.
func (s *BaseStore) Load(base string) (knowledge.EmbeddingConfig, error) {
	cfg, err := s.LoadBaseConfig(base)
	if err != nil {
		return knowledge.EmbeddingConfig{}, err
	}
	return cfg.Embedding, nil
}

// SaveBaseConfig writes config.yaml atomically (temp file + rename in the
// same directory), the way every other write-after-create path in this
// workspace works.
func (s *BaseStore) SaveBaseConfig(cfg knowledge.BaseConfig) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("workspace: invalid base config: %w", err)
	}

	dir := s.layout.BaseDir(cfg.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("workspace: create base dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("workspace: marshal base config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("workspace: create temp config file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("workspace: write temp config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("workspace: close temp config file: %w", err)
	}
	if err := os.Rename(tmpPath, s.layout.BaseConfigPath(cfg.Name)); err != nil {
		return fmt.Errorf("workspace: rename config file into place: %w", err)
	}
	return nil
}

// DeleteBaseConfig removes config.yaml entirely; a missing file is not an
// error. Clean does not call it, so config.yaml survives a clean.
func (s *BaseStore) DeleteBaseConfig(base string) error {
	if err := os.Remove(s.layout.BaseConfigPath(base)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("workspace: delete base config: %w", err)
	}
	return nil
}

// EnsureBaseDirs creates the base directory and its index subdirectory.
func (s *BaseStore) EnsureBaseDirs(base string) error {
	if err := os.MkdirAll(s.layout.IndexDir(base), 0o755); err != nil {
		return fmt.Errorf("workspace: create base directories: %w", err)
	}
	return nil
}

// BaseDirSize walks a base's directory and sums file sizes, used by the
// stats flow to report on-disk size.
func (s *BaseStore) BaseDirSize(base string) (int64, error) {
	var total int64
	err := filepath.Walk(s.layout.BaseDir(base), func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}
