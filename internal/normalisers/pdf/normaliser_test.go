package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/newsrag/internal/core/domain"
)

// buildPDF writes a minimal PDF with one page per entry. Each page shows its
// lines as separate text objects in Helvetica.
func buildPDF(pages ...[]string) []byte {
	pageCount := len(pages)
	fontObj := 3 + 2*pageCount

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
	}
	kids := make([]string, pageCount)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pageCount))

	for i, lines := range pages {
		var stream bytes.Buffer
		y := 712
		for _, line := range lines {
			fmt.Fprintf(&stream, "BT /F1 12 Tf 72 %d Td (%s) Tj ET\n", y, line)
			y -= 20
		}
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>", 4+2*i, fontObj),
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", stream.Len(), stream.String()),
		)
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"application/pdf"}, New().SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	docs, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, docs)
}

func TestNormalise_ExtractsPages(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/news/briefing.pdf",
		MIMEType: "application/pdf",
		Content: buildPDF(
			[]string{"Morning Briefing", "Markets opened higher."},
			[]string{"Rain is expected tonight."},
		),
	}

	docs, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "Morning Briefing", doc.Title)
	assert.Equal(t, "Morning Briefing\nMarkets opened higher.\nRain is expected tonight.", doc.Text)
	assert.Equal(t, "/news/briefing.pdf", doc.Source)
	assert.Equal(t, "application/pdf", doc.MIMEType)
}

func TestNormalise_TitleFromMetadata(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/news/briefing.pdf",
		MIMEType: "application/pdf",
		Content:  buildPDF([]string{"First line"}),
		Metadata: map[string]any{"title": "Given Title"},
	}

	docs, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Given Title", docs[0].Title)
}

func TestNormalise_NoTextLayer(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/scan.pdf",
		MIMEType: "application/pdf",
		Content:  buildPDF([]string{}),
	}

	docs, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestNormalise_NotAPDF(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/fake.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("%PDF-1.4 fake pdf content"),
	}

	_, err := New().Normalise(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	raw := &domain.RawDocument{
		URI:      "/news/briefing.pdf",
		MIMEType: "application/pdf",
		Content:  buildPDF([]string{"Anything"}),
	}

	_, err := New().Normalise(ctx, raw)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{
			name:     "first line as title",
			content:  "Document Title\n\nSome content here.",
			uri:      "/doc.pdf",
			expected: "Document Title",
		},
		{
			name:     "skip empty lines",
			content:  "\n\n\nActual Title\nContent",
			uri:      "/doc.pdf",
			expected: "Actual Title",
		},
		{
			name:     "fallback to filename",
			content:  "",
			uri:      "/path/to/my_document.pdf",
			expected: "my document",
		},
		{
			name:     "skip very long first line",
			content:  string(make([]byte, 250)) + "\nShort Title\nContent",
			uri:      "/doc.pdf",
			expected: "Short Title",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTitle(tc.content, tc.uri))
		})
	}
}
