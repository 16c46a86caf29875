package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <base>",
	Short: "Drop a base's vector index, source log, and stats, keeping its config",
	Long: `Clean removes everything a learn pass built for a base — the vector index
file, the source log, and stats.json — while leaving config.yaml in place,
so the next learn reuses the same embedding configuration instead of
silently drifting to a new default.

Clean is idempotent: running it against a base with nothing to clean
succeeds without error.
`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	base := args[0]

	o, err := newOrchestrator()
	if err != nil {
		return err
	}

	if err := o.Clean(base); err != nil {
		return err
	}

	fmt.Printf("cleaned base %q\n", base)
	return nil
}
