package html

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/newsrag/internal/core/domain"
	"github.com/custodia-labs/newsrag/internal/core/ports/driven"
	"github.com/custodia-labs/newsrag/internal/normalisers/naming"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML pages.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts an HTML page into a single document.
// Pages with no readable text yield no documents.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	page := string(raw.Content)
	title := pageTitle(page)
	if title == "" {
		title = naming.TitleFromRaw(raw)
	}

	body := page
	if m := articleTag.FindStringSubmatch(page); len(m) > 1 {
		body = m[1]
	}

	text := stripHTML(body)
	if text == "" {
		return nil, nil
	}

	return []domain.Document{{
		Title:    title,
		Text:     text,
		Source:   raw.URI,
		MIMEType: raw.MIMEType,
	}}, nil
}

var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	ogTitle       = regexp.MustCompile(`(?is)<meta[^>]+property=["']og:title["'][^>]+content=["']([^"']*)["']`)
	articleTag    = regexp.MustCompile(`(?is)<article[^>]*>(.*)</article>`)
	droppedTags   = regexp.MustCompile(`(?is)<(script|style|noscript|head|svg|nav|footer)\b[^>]*>.*?</(script|style|noscript|head|svg|nav|footer)>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockBoundary = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article|figure|figcaption)[^>]*>|<(br|hr)\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t\r]+`)
)

// pageTitle prefers the Open Graph title, which news sites keep free of the
// " | Site Name" suffix, then the <title> element.
func pageTitle(page string) string {
	for _, re := range []*regexp.Regexp{ogTitle, titleTag} {
		if m := re.FindStringSubmatch(page); len(m) > 1 {
			if title := strings.TrimSpace(html.UnescapeString(m[1])); title != "" {
				return title
			}
		}
	}
	return ""
}

// stripHTML reduces markup to one line of text per block element.
func stripHTML(content string) string {
	content = droppedTags.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")
	content = blockBoundary.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
