package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/newsrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/newsrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/newsrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/newsrag/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/newsrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/newsrag/internal/chunker"
	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
	"github.com/custodia-labs/newsrag/internal/core/services"
	"github.com/custodia-labs/newsrag/internal/logger"
	"github.com/custodia-labs/newsrag/internal/normalisers"
)

// appDir is the directory under the user's home holding config and data.
const appDir = ".newsrag"

// paths are the directories one run works in.
type paths struct {
	configDir string
	dataDir   string
}

// resolvePaths picks the data directory from the flag, then the
// environment, then ~/.newsrag/data.
func resolvePaths(flagDir, home string, getenv func(string) string) paths {
	p := paths{configDir: filepath.Join(home, appDir)}
	switch {
	case flagDir != "":
		p.dataDir = flagDir
	case getenv(file.EnvDataDir) != "":
		p.dataDir = getenv(file.EnvDataDir)
	default:
		p.dataDir = filepath.Join(p.configDir, "data")
	}
	return p
}

// flatIndex creates the exact in-memory index.
func flatIndex(dimensions int) (driven.VectorIndex, error) {
	return flat.New(dimensions)
}

// bootstrap wires the services for one CLI run.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func() error, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, fmt.Errorf("locating home directory: %w", err)
	}

	cwd, _ := os.Getwd()
	configDir := filepath.Join(home, appDir)
	loaded, err := file.LoadDotEnv(cwd, configDir)
	if err != nil {
		logger.Warn("%v", err)
	}
	for _, path := range loaded {
		logger.Debug("Loaded environment from %s", path)
	}

	return wire(ctx, resolvePaths(opts.DataDir, home, os.Getenv), os.Getenv)
}

// wire builds every service from the config and data directories.
func wire(ctx context.Context, p paths, getenv func(string) string) (*cli.Services, func() error, error) {
	configStore, err := file.NewConfigStore(p.configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settingsService.SetOverrides(func(s *domain.Settings) {
		file.ApplyEnv(s, getenv)
	})

	settings, err := settingsService.Get()
	if err != nil {
		// Keep the settings commands usable so the value can be fixed.
		logger.Warn("invalid configuration, using defaults: %v", err)
		defaults := domain.DefaultSettings()
		file.ApplyEnv(&defaults, getenv)
		settings = &defaults
	}
	if settings.Verbose {
		logger.SetVerbose(true)
	}

	logger.Section("Startup")
	logger.Debug("Config: %s", configStore.Path())
	logger.Debug("Data: %s", p.dataDir)

	store, err := sqlite.NewStore(p.dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}

	embedder := ai.NewLazyEmbedderFromSettings(settings.Embedding)

	c, err := chunker.FromSettings(settings.Chunk)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	retrieval, err := services.NewRetrievalService(c, embedder, store.DocumentStore(), flatIndex)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	documents := services.NewDocumentService(store.DocumentStore(), retrieval, normalisers.DefaultRegistry())

	llm, err := ai.CreateAndValidateLLMService(ctx, &settings.LLM)
	if err != nil {
		logger.Warn("%v; answers are disabled", err)
		llm = nil
	}
	if llm != nil {
		logger.Debug("LLM: %s (%s)", settings.LLM.Provider, llm.ModelName())
	}

	answers := services.NewAnswerService(retrieval, store.DocumentStore(), llm)
	answers.SetQueryLogStore(store.QueryLogStore())
	answers.SetDefaultTopK(settings.Retrieval.TopK)
	answers.SetMaxTokens(settings.LLM.MaxTokens)

	cleanup := func() error {
		var errs []error
		if llm != nil {
			errs = append(errs, llm.Close())
		}
		errs = append(errs, embedder.Close(), store.Close())
		return errors.Join(errs...)
	}

	return &cli.Services{
		Document:  documents,
		Retrieval: retrieval,
		Answer:    answers,
		Settings:  settingsService,
		Check:     providerCheck(settings, embedder),
	}, cleanup, nil
}

// providerCheck pings the embedding provider and the LLM when one is set.
func providerCheck(settings *domain.Settings, embedder driven.EmbeddingService) cli.CheckFunc {
	return func(ctx context.Context) []cli.ProviderCheck {
		results := []cli.ProviderCheck{{
			Role:     "embedding",
			Provider: settings.Embedding.Provider,
			Model:    embedder.ModelName(),
			Err:      embedder.Ping(ctx),
		}}

		if settings.LLM.Provider == "" {
			return results
		}

		check := cli.ProviderCheck{
			Role:     "llm",
			Provider: settings.LLM.Provider,
			Model:    settings.LLM.Model,
		}
		if !settings.LLM.IsConfigured() {
			check.Err = fmt.Errorf("%w: %s needs an API key", domain.ErrInvalidConfig, settings.LLM.Provider)
			return append(results, check)
		}

		llm, err := ai.CreateAndValidateLLMService(ctx, &settings.LLM)
		if err != nil {
			check.Err = err
			return append(results, check)
		}
		check.Model = llm.ModelName()
		if err := llm.Close(); err != nil {
			logger.Debug("closing LLM after check: %v", err)
		}
		return append(results, check)
	}
}
