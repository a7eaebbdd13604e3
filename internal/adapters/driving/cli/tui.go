package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/newsrag/internal/adapters/driving/tui"
)

var tuiTopK int

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Ask questions in a full-screen terminal interface.

The index is loaded from the document store on start.

Controls:
  Enter        - Ask the typed question
  n            - New question
  ↑/k, ↓/j     - Move through sources
  PgUp/PgDn    - Scroll the answer
  Esc, q       - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiTopK, "top-k", "n", 0, "chunks to retrieve per question (default from settings)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	ports := tui.NewPorts(answerService, retrievalService)
	if err := tui.Run(cmd.Context(), ports, tuiTopK); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
