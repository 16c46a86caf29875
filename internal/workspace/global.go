package workspace

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// GlobalConfig is the workspace-wide config.yaml: the active embedding
// provider and a reference to its credentials (never the credential value
// itself — that's read from the environment at provider-construction time).
type GlobalConfig struct {
	ActiveEmbeddingProvider string `mapstructure:"active_embedding_provider"`
	ProviderCredsRef        string `mapstructure:"provider_creds_ref"`
}

// LoadGlobalConfig reads <root>/config.yaml with viper, the way the
// teacher's internal/config/loader.go reads its project config: env
// variables prefixed RAG_ override file values, and a missing file is
// tolerated (defaults apply).
func LoadGlobalConfig(layout Layout) (GlobalConfig, error) {
	v := viper.New()
	v.SetConfigFile(layout.GlobalConfigPath())
	v.SetConfigType("yaml")

	v.SetEnvPrefix("RAG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("active_embedding_provider", "trigram")
	v.SetDefault("provider_creds_ref", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return GlobalConfig{}, fmt.Errorf("workspace: read global config: %w", err)
		}
	}

	var cfg GlobalConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return GlobalConfig{}, fmt.Errorf("workspace: unmarshal global config: %w", err)
	}
	return cfg, nil
}
