// Package wikinews loads article dumps in the wikinews JSON layout: a top
// level array of objects with "title" and "text" fields. Other fields are
// ignored.
package wikinews

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
	"github.com/custodia-labs/newsrag/internal/normalisers/naming"
)

// MetadataLimit is the RawDocument metadata key holding the maximum number of
// articles to take from the dump. Zero or absent means all of them.
const MetadataLimit = "limit"

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles JSON article dumps.
type Normaliser struct{}

// New creates a new wikinews normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/json"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 90
}

type article struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Normalise decodes the dump in order, stopping once the limit is reached.
// Articles with blank text are skipped and do not count towards the limit.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	limit := limitFrom(raw.Metadata)
	dec := json.NewDecoder(bytes.NewReader(raw.Content))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, raw.URI, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("%w: %s: expected a JSON array of articles", domain.ErrInvalidInput, raw.URI)
	}

	var docs []domain.Document
	for i := 0; dec.More(); i++ {
		if limit > 0 && len(docs) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var a article
		if err := dec.Decode(&a); err != nil {
			return nil, fmt.Errorf("%w: %s: article %d: %v", domain.ErrInvalidInput, raw.URI, i, err)
		}

		text := strings.TrimSpace(a.Text)
		if text == "" {
			continue
		}
		title := strings.TrimSpace(a.Title)
		if title == "" {
			title = fmt.Sprintf("%s #%d", naming.TitleFromURI(raw.URI), i+1)
		}

		docs = append(docs, domain.Document{
			Title:    title,
			Text:     text,
			Source:   fmt.Sprintf("%s#%d", raw.URI, i),
			MIMEType: raw.MIMEType,
		})
	}

	return docs, nil
}

// limitFrom accepts the integer kinds a caller or a JSON round trip produce.
func limitFrom(metadata map[string]any) int {
	switch v := metadata[MetadataLimit].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
