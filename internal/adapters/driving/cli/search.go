package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// previewLength is how many characters of a chunk are shown per result.
const previewLength = 200

var (
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Retrieve the chunks nearest a query",
	Long: `Embeds the query and returns the nearest chunks from the vector index,
ranked by Euclidean distance (lower is closer). No answer is generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", domain.DefaultTopK, "number of chunks to retrieve")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	ctx := cmd.Context()
	if err := ensureIndex(ctx); err != nil {
		return fmt.Errorf("loading index: %w", err)
	}

	results, err := retrievalService.Retrieve(ctx, query, searchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, results)
	}

	cmd.Printf("\nSearching for: %s\n", query)
	cmd.Println(strings.Repeat("-", 50))
	printResults(cmd, results)
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printResults writes ranked chunks as "[i] Score: d.dd" followed by a
// preview of the chunk text.
func printResults(cmd *cobra.Command, results []domain.RetrievalResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Printf("\nFound %d matches:\n\n", len(results))
	for i := range results {
		cmd.Printf("[%d] Score: %.2f\n", i+1, results[i].Distance)
		if results[i].Title != "" {
			cmd.Printf("    %s\n", results[i].Title)
		}
		cmd.Printf("%s...\n\n", preview(results[i].Text, previewLength))
	}
}

// preview cuts text to at most n characters.
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
