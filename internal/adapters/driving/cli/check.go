package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured AI providers respond",
	Long: `Pings the embedding provider and, when one is configured, the LLM.
Use it after setting an API key to confirm the key and model are accepted.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	if providerCheck == nil {
		return errors.New("provider check not configured")
	}

	results := providerCheck(cmd.Context())
	if len(results) == 0 {
		cmd.Println("No providers configured.")
		return nil
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			cmd.Printf("  %-9s %s (%s): FAILED: %v\n", r.Role, r.Provider, r.Model, r.Err)
			continue
		}
		cmd.Printf("  %-9s %s (%s): OK\n", r.Role, r.Provider, r.Model)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d providers failed", failed, len(results))
	}
	return nil
}
