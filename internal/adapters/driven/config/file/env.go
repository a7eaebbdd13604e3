package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// Environment variables read by newsrag.
const (
	EnvDataDir      = "NEWSRAG_DATA_DIR"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGoogleKey    = "GOOGLE_API_KEY"
	EnvOllamaHost   = "OLLAMA_HOST"
)

// DotEnvFile is the name of the dotenv file looked up in each directory.
const DotEnvFile = ".env"

// LoadDotEnv loads .env files from dirs in order. Variables already set in
// the process environment win, and earlier files win over later ones.
// Missing files are skipped. It returns the files that were loaded.
func LoadDotEnv(dirs ...string) ([]string, error) {
	var loaded []string
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, DotEnvFile)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("loading %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// ApplyEnv fills settings from environment variables where the config file
// left them empty. Keys are matched to the provider that uses them.
func ApplyEnv(settings *domain.Settings, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = apiKeyFor(settings.Embedding.Provider, getenv)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = apiKeyFor(settings.LLM.Provider, getenv)
	}

	if host := getenv(EnvOllamaHost); host != "" {
		if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = host
		}
		if settings.LLM.Provider == domain.AIProviderOllama && settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = host
		}
	}
}

func apiKeyFor(provider domain.AIProvider, getenv func(string) string) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return getenv(EnvOpenAIKey)
	case domain.AIProviderAnthropic:
		return getenv(EnvAnthropicKey)
	case domain.AIProviderGemini:
		return getenv(EnvGoogleKey)
	default:
		return ""
	}
}
