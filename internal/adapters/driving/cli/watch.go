package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/newsrag/internal/connectors/filesystem"
	"github.com/custodia-labs/newsrag/internal/core/domain"
)

var watchInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files as they appear in a directory",
	Long: `Watches a directory tree and keeps the corpus in step with it.

New files are ingested. A changed file replaces the documents previously
read from it, and a removed file deletes them. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "ingest existing files before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchInitial {
		stats, _, err := ingestPath(ctx, cmd, args[0])
		if err != nil {
			return err
		}
		cmd.Printf("Ingested %d existing documents (%d chunks)\n", stats.Documents, stats.Chunks)
	}

	connector := filesystem.New(args[0])
	defer connector.Close()

	changes, err := connector.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", args[0], err)
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	for change := range changes {
		if err := applyChange(ctx, cmd, change); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			if !errors.Is(err, domain.ErrInvalidInput) && !errors.Is(err, domain.ErrUnsupportedType) {
				return err
			}
			cmd.PrintErrf("Skipping %s: %v\n", change.Document.URI, err)
		}
	}
	return nil
}

// applyChange mirrors one file change into the document store.
func applyChange(ctx context.Context, cmd *cobra.Command, change domain.RawDocumentChange) error {
	uri := change.Document.URI

	switch change.Type {
	case domain.ChangeDeleted:
		removed, err := removeBySource(ctx, uri)
		if err != nil {
			return err
		}
		if removed > 0 {
			cmd.Printf("- %s: %d documents removed\n", uri, removed)
		}
		return nil

	case domain.ChangeUpdated:
		if _, err := removeBySource(ctx, uri); err != nil {
			return err
		}
	}

	stats, err := documentService.Import(ctx, &change.Document, 0)
	if err != nil {
		return err
	}
	cmd.Printf("+ %s: %d documents (%d chunks)\n", uri, stats.Documents, stats.Chunks)
	return nil
}

// removeBySource deletes every document read from uri.
func removeBySource(ctx context.Context, uri string) (int, error) {
	docs, err := documentService.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list documents: %w", err)
	}

	removed := 0
	for i := range docs {
		if docs[i].Source != uri {
			continue
		}
		if err := documentService.Delete(ctx, docs[i].ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return removed, fmt.Errorf("failed to delete %s: %w", docs[i].ID, err)
		}
		removed++
	}
	return removed, nil
}
