// Package cli implements the newsrag command line with cobra.
package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driving"
	"github.com/custodia-labs/newsrag/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// annotationStandalone marks commands that run without services.
const annotationStandalone = "newsrag/standalone"

// Global flags.
var (
	verbose bool
	dataDir string
)

// Services used by the commands. Set by SetServices or the bootstrap.
var (
	documentService  driving.DocumentService
	retrievalService driving.RetrievalService
	answerService    driving.AnswerService
	settingsService  driving.SettingsService
	providerCheck    CheckFunc
)

// ProviderCheck is the outcome of pinging one configured AI provider.
type ProviderCheck struct {
	// Role is "embedding" or "llm".
	Role     string
	Provider domain.AIProvider
	Model    string
	Err      error
}

// CheckFunc pings the configured providers.
type CheckFunc func(ctx context.Context) []ProviderCheck

// Services bundles what the commands need.
type Services struct {
	Document  driving.DocumentService
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService
	Settings  driving.SettingsService
	Check     CheckFunc
}

// Options carries the global flags to the bootstrap.
type Options struct {
	DataDir string
	Verbose bool
}

// Bootstrap builds the services for one run. The cleanup function releases
// stores and providers and is called after the command finishes.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func() error, error)

var (
	bootstrap   Bootstrap
	cleanup     func() error
	servicesSet bool

	indexOnce sync.Once
	indexErr  error
)

var rootCmd = &cobra.Command{
	Use:   "newsrag",
	Short: "Question answering over a local news corpus",
	Long: `newsrag indexes news articles and answers questions from them.

Documents are split into overlapping chunks, embedded and kept in an
in-memory vector index that is rebuilt from the document store on start.
Questions retrieve the nearest chunks and, when an LLM is configured,
an answer is generated from them.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepareServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.newsrag/data)")
}

// SetBootstrap registers the function that wires services on first use.
func SetBootstrap(fn Bootstrap) {
	bootstrap = fn
}

// SetServices installs ready-made services and skips the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		documentService, retrievalService, answerService, settingsService, providerCheck = nil, nil, nil, nil, nil
		servicesSet = false
		return
	}
	documentService = s.Document
	retrievalService = s.Retrieval
	answerService = s.Answer
	settingsService = s.Settings
	providerCheck = s.Check
	servicesSet = true
	indexOnce = sync.Once{}
	indexErr = nil
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cleanup != nil {
		if cerr := cleanup(); cerr != nil {
			logger.Warn("cleanup: %v", cerr)
		}
		cleanup = nil
	}
	return err
}

func prepareServices(cmd *cobra.Command, _ []string) error {
	if verbose {
		logger.SetVerbose(true)
	}
	if servicesSet || cmd.Annotations[annotationStandalone] == "true" {
		return nil
	}
	if bootstrap == nil {
		return errors.New("services not configured")
	}

	s, done, err := bootstrap(cmd.Context(), Options{DataDir: dataDir, Verbose: verbose})
	if err != nil {
		return err
	}
	cleanup = done
	SetServices(s)
	return nil
}

// ensureIndex rebuilds the in-memory index from the document store once per
// process. Commands that only write documents do not need it.
func ensureIndex(ctx context.Context) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	indexOnce.Do(func() {
		if retrievalService.Size() > 0 {
			return
		}
		stats, err := retrievalService.Rebuild(ctx)
		if err != nil {
			indexErr = err
			return
		}
		logger.Debug("index ready: %d documents, %d chunks, %d skipped",
			stats.Documents, stats.Chunks, stats.Skipped)
	})
	return indexErr
}
