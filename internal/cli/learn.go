package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/ragctl/internal/orchestrator"
)

var (
	learnExcludes []string
	learnIncludes []string
	learnURL      string
)

var learnCmd = &cobra.Command{
	Use:   "learn <base> [path]",
	Short: "Ingest a directory, file, zip archive, or URL into a knowledge base",
	Long: `Learn discovers sources under path (or fetches --url), parses, chunks, and
embeds them, and upserts the result into the named base's vector index.

A base learned into for the first time adopts default embedding
configuration; subsequent learn runs must keep the same provider, model,
and dimensionality unless the base is cleaned first.

Examples:
  ragctl learn docs ./docs
  ragctl learn docs ./docs --exclude "*.generated.go"
  ragctl learn changelog --url https://example.com/changelog
`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLearn,
}

func init() {
	rootCmd.AddCommand(learnCmd)
	learnCmd.Flags().StringSliceVar(&learnExcludes, "exclude", nil, "additional glob patterns to exclude")
	learnCmd.Flags().StringSliceVar(&learnIncludes, "include", nil, "glob patterns to restrict discovery to (default: everything not excluded)")
	learnCmd.Flags().StringVar(&learnURL, "url", "", "learn a single URL instead of a filesystem path")
}

func runLearn(cmd *cobra.Command, args []string) error {
	base := args[0]
	var path string
	if len(args) == 2 {
		path = args[1]
	}
	if path == "" && learnURL == "" {
		return fmt.Errorf("learn requires either a path argument or --url")
	}

	o, err := newOrchestrator()
	if err != nil {
		return err
	}

	stats, err := o.Learn(context.Background(), orchestrator.LearnRequest{
		Base:     base,
		Path:     path,
		URL:      learnURL,
		Excludes: learnExcludes,
		Includes: learnIncludes,
	})
	if err != nil {
		return err
	}

	fmt.Printf("learned %d sources, %d chunks into base %q\n", stats.TotalSources, stats.TotalChunks, base)
	return nil
}
