package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/ragctl/internal/knowledge"
	"github.com/mvp-joe/ragctl/internal/orchestrator"
)

var (
	askTopK      int
	askJSON      bool
	askFileTypes []string
	askLanguages []string
)

var askCmd = &cobra.Command{
	Use:   "ask <base> <query>",
	Short: "Ask a question against a learned knowledge base",
	Args:  cobra.ExactArgs(2),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().IntVar(&askTopK, "top-k", 5, "number of chunks to retrieve")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full response as JSON, including diagnostics")
	askCmd.Flags().StringSliceVar(&askFileTypes, "file-type", nil, "restrict retrieval to these file types")
	askCmd.Flags().StringSliceVar(&askLanguages, "language", nil, "restrict retrieval to these natural languages")
}

func runAsk(cmd *cobra.Command, args []string) error {
	base, query := args[0], args[1]

	o, err := newOrchestrator()
	if err != nil {
		return err
	}

	resp, err := o.Ask(context.Background(), orchestrator.AskRequest{
		Base:    base,
		Query:   query,
		TopK:    askTopK,
		Filters: knowledgeFilters(),
	})
	if err != nil {
		return err
	}

	if askJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	body, err := resp.MarshalUserJSON()
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	if resp.LowConfidence {
		fmt.Fprintln(os.Stderr, "warning: low confidence — the retrieved context may not answer this question well")
	}
	return nil
}

func knowledgeFilters() knowledge.SearchFilters {
	return knowledge.SearchFilters{
		FileType: askFileTypes,
		Language: askLanguages,
	}
}
