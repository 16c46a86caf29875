package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats <base>",
	Short: "Show a base's source, chunk, and disk-size summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	base := args[0]

	o, err := newOrchestrator()
	if err != nil {
		return err
	}

	report, err := o.Stats(base)
	if err != nil {
		return err
	}

	if statsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("base:        %s\n", base)
	fmt.Printf("last learn:  %s\n", report.LastLearnAt)
	fmt.Printf("sources:     %d\n", report.TotalSources)
	fmt.Printf("chunks:      %d (index reports %d)\n", report.TotalChunks, report.IndexChunkCount)
	fmt.Printf("provider:    %s / %s (%d dims)\n", report.EmbeddingProvider, report.EmbeddingModel, report.IndexDimensions)
	fmt.Printf("disk bytes:  %d\n", report.DiskBytes)
	return nil
}
