package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/newsrag/internal/connectors/filesystem"
	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// stdinSource is the Source recorded for documents read from stdin.
const stdinSource = "stdin"

var (
	ingestLimit int
	ingestTitle string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Add news files to the corpus",
	Long: `Reads files or directories, splits them into documents and indexes them.

Supported formats: wikinews JSON arrays of {"title", "text"} records,
plain text, Markdown, HTML and PDF. Hidden files are skipped.

Use "-" to read a single document from stdin; --title is then required.

Examples:
  newsrag ingest dataset/my_wikinews_subset.json --limit 100
  newsrag ingest ~/news
  curl -s https://example.com/story.txt | newsrag ingest - --title "Story"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVarP(&ingestLimit, "limit", "l", 0, "maximum documents taken from each file (0 = all)")
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "title for the document read from stdin")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := cmd.Context()
	var total domain.IngestStats
	var failed int

	for _, path := range args {
		if path == "-" {
			stats, err := ingestStdin(ctx, cmd.InOrStdin())
			if err != nil {
				return err
			}
			total = addStats(total, stats)
			continue
		}

		stats, fileErrs, err := ingestPath(ctx, cmd, path)
		total = addStats(total, stats)
		failed += fileErrs
		if err != nil {
			return err
		}
	}

	cmd.Printf("Ingested %d documents (%d chunks)", total.Documents, total.Chunks)
	if total.Skipped > 0 {
		cmd.Printf(", skipped %d", total.Skipped)
	}
	cmd.Println()

	if failed > 0 && total.Documents == 0 {
		return fmt.Errorf("%d files could not be ingested", failed)
	}
	return nil
}

func ingestStdin(ctx context.Context, in io.Reader) (domain.IngestStats, error) {
	var stats domain.IngestStats
	title := strings.TrimSpace(ingestTitle)
	if title == "" {
		return stats, errors.New("--title is required when reading from stdin")
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return stats, fmt.Errorf("reading stdin: %w", err)
	}

	_, chunks, err := documentService.Add(ctx, domain.Document{
		Title:    title,
		Text:     string(data),
		Source:   stdinSource,
		MIMEType: "text/plain",
	})
	if err != nil {
		return stats, fmt.Errorf("ingest stdin: %w", err)
	}
	stats.Documents = 1
	stats.Chunks = chunks
	return stats, nil
}

// ingestPath imports every file under path. Files that cannot be read or
// normalised are reported and counted; other errors stop the run.
func ingestPath(ctx context.Context, cmd *cobra.Command, path string) (domain.IngestStats, int, error) {
	var stats domain.IngestStats
	var failed int

	connector := filesystem.New(path)
	defer connector.Close()

	docs, errs := connector.Scan(ctx)
	for docs != nil || errs != nil {
		select {
		case raw, ok := <-docs:
			if !ok {
				docs = nil
				continue
			}
			fileStats, err := documentService.Import(ctx, &raw, ingestLimit)
			stats = addStats(stats, fileStats)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrUnsupportedType) {
					cmd.PrintErrf("Skipping %s: %v\n", raw.URI, err)
					failed++
					continue
				}
				drainScan(docs, errs)
				return stats, failed, fmt.Errorf("ingest %s: %w", raw.URI, err)
			}
			if fileStats.Documents > 0 {
				cmd.Printf("  %s: %d documents\n", raw.URI, fileStats.Documents)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			cmd.PrintErrf("Warning: %v\n", err)
			failed++
		}
	}
	return stats, failed, nil
}

// drainScan lets an abandoned scan finish so its goroutine exits.
func drainScan(docs <-chan domain.RawDocument, errs <-chan error) {
	if docs != nil {
		go func() {
			for range docs {
			}
		}()
	}
	if errs != nil {
		go func() {
			for range errs {
			}
		}()
	}
}

func addStats(a, b domain.IngestStats) domain.IngestStats {
	return domain.IngestStats{
		Documents: a.Documents + b.Documents,
		Chunks:    a.Chunks + b.Chunks,
		Skipped:   a.Skipped + b.Skipped,
	}
}
