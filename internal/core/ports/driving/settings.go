package driving

import "github.com/custodia-labs/newsrag/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with defaults and
	// environment overrides applied.
	Get() (*domain.Settings, error)

	// Set validates and persists a single setting by its dotted key.
	Set(key, value string) error

	// Keys returns the settings keys that Set accepts.
	Keys() []string
}
