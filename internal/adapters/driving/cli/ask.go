package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed news",
	Long: `Retrieves the chunks nearest the question and asks the configured LLM to
answer from them. Without an LLM only the retrieved context is shown.

Without a question argument, questions are read from stdin one per line.
On a terminal a "> " prompt is shown; an empty line exits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "n", 0, "number of chunks to retrieve (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output answers as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	ctx := cmd.Context()
	if err := ensureIndex(ctx); err != nil {
		return fmt.Errorf("loading index: %w", err)
	}

	if len(args) == 1 {
		return askOne(ctx, cmd, args[0])
	}

	in := cmd.InOrStdin()
	interactive := isTerminal(in)
	if interactive {
		cmd.Println("Ready! Enter a question (press enter with no input to exit).")
	}

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			cmd.Print("\n> ")
		}
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			if interactive {
				cmd.Println("done")
				return nil
			}
			continue
		}
		if err := askOne(ctx, cmd, question); err != nil {
			if !interactive {
				return err
			}
			cmd.PrintErrf("Error: %v\n", err)
		}
	}
	return scanner.Err()
}

func askOne(ctx context.Context, cmd *cobra.Command, question string) error {
	answer, err := answerService.Ask(ctx, question, askTopK)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, answer)
	}
	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	if answer.Text == "" {
		cmd.Println("No LLM configured; showing retrieved context.")
		printResults(cmd, answer.Results)
		return
	}

	cmd.Println()
	cmd.Println(answer.Text)

	if len(answer.Sources) > 0 {
		cmd.Println("\nSources:")
		for i, src := range answer.Sources {
			title := src.Title
			if title == "" {
				title = src.DocumentID
			}
			if src.Available {
				cmd.Printf("  [%d] %s (%s)\n", i+1, title, src.DocumentID)
			} else {
				cmd.Printf("  [%d] %s (%s, no longer available)\n", i+1, title, src.DocumentID)
			}
		}
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
