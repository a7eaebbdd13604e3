package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently asked questions",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of questions")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	records, err := answerService.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No questions asked yet.")
		return nil
	}

	for i := range records {
		cmd.Printf("%s  %s\n", records[i].CreatedAt.Local().Format("2006-01-02 15:04:05"), records[i].Query)
		if len(records[i].DocumentIDs) > 0 {
			cmd.Printf("    Documents: %s\n", strings.Join(records[i].DocumentIDs, ", "))
		}
	}
	return nil
}
