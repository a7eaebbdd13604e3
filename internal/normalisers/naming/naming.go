// Package naming derives human-readable document titles from file names.
package naming

import (
	"path/filepath"
	"strings"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// TitleFromURI turns "/news/cats_and-dogs.txt" into "cats and dogs".
func TitleFromURI(uri string) string {
	filename := filepath.Base(uri)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return strings.TrimSpace(filename)
}

// TitleFromRaw prefers a "title" metadata entry and falls back to the URI.
func TitleFromRaw(raw *domain.RawDocument) string {
	if raw.Metadata != nil {
		if title, ok := raw.Metadata["title"].(string); ok && title != "" {
			return title
		}
	}
	return TitleFromURI(raw.URI)
}
