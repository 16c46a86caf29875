// Package cli wires the orchestrator into a cobra command tree: learn, ask,
// clean, and stats, grounded on the teacher's internal/cli/root.go init
// pattern (persistent --config/--verbose flags bound through viper) and its
// one-subcommand-per-file layout (clean.go, index.go, ...).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvp-joe/ragctl/internal/collab"
	"github.com/mvp-joe/ragctl/internal/embedengine"
	"github.com/mvp-joe/ragctl/internal/orchestrator"
	"github.com/mvp-joe/ragctl/internal/progress"
	"github.com/mvp-joe/ragctl/internal/workspace"
)

var (
	workspaceRoot string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "ragctl manages local retrieval-augmented knowledge bases",
	Long: `ragctl learns a directory, URL, or zip archive into a named knowledge
base, then answers questions against it using embedding-based retrieval.`,
}

// Execute adds all child commands to the root command and runs it. Called
// by main.main(); errors print to stderr and exit(1), the cobra idiom.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&workspaceRoot, "workspace", "", "workspace root (default is $HOME/.ragctl)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose progress output")

	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if workspaceRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		workspaceRoot = home + "/.ragctl"
	}
}

// newOrchestrator builds an Orchestrator wired to the configured workspace
// root, with the real progress bar sink in verbose mode and a no-op sink
// otherwise. The template renderer and LLM client are the deterministic
// fakes until a real collaborator is configured — spec scope stops at the
// collaborator interface, not a concrete backend.
func newOrchestrator() (*orchestrator.Orchestrator, error) {
	layout := workspace.NewLayout(workspaceRoot)
	if err := os.MkdirAll(layout.KnowledgeDir(), 0o755); err != nil {
		return nil, fmt.Errorf("cli: prepare workspace: %w", err)
	}

	baseStore := workspace.NewBaseStore(layout)
	engine := embedengine.New(baseStore, embedengine.DefaultFactory)

	var sink progress.Sink = progress.NoOpSink{}
	if verbose {
		sink = progress.NewBarSink()
	}

	return orchestrator.New(layout, baseStore, engine, collab.FakeTemplateRenderer{}, collab.FakeLLMClient{}, sink), nil
}
