// Package trafilatura provides heuristic content extraction for pages
// where no selector rule matches. It trades the precision of per-source
// rules for broad coverage.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"kbharvest"
)

// Ensure Extractor implements kbharvest.Extractor at compile time.
var _ kbharvest.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML
// without selector rules.
type Extractor struct {
	converter kbharvest.Converter
}

// NewExtractor creates an Extractor using the given markup converter.
func NewExtractor(converter kbharvest.Converter) *Extractor {
	return &Extractor{converter: converter}
}

// Extract isolates the main content heuristically. The source's
// selector rules are ignored; its metadata (author fallback, type) is
// applied downstream by the normalization pass. Returns ESELECTORMISS
// when no main content can be identified, so callers treat a heuristic
// miss the same way as a selector miss.
func (e *Extractor) Extract(rawHTML string, src *kbharvest.Source) (*kbharvest.ExtractedItem, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, kbharvest.Errorf(kbharvest.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, kbharvest.Errorf(kbharvest.ESELECTORMISS, "source %q: heuristic extraction failed: %v", src.Name, err)
	}

	if result.ContentNode == nil {
		return nil, kbharvest.Errorf(kbharvest.ESELECTORMISS, "source %q: no main content identified", src.Name)
	}

	contentHTML, err := renderNode(result.ContentNode)
	if err != nil {
		return nil, err
	}

	content, err := e.converter.Convert(contentHTML)
	if err != nil {
		return nil, err
	}

	return &kbharvest.ExtractedItem{
		Title:         result.Metadata.Title,
		Content:       content,
		Author:        result.Metadata.Author,
		PublishedDate: formatDate(result),
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatDate(result *trafilatura.ExtractResult) string {
	if result.Metadata.Date.IsZero() {
		return ""
	}
	return result.Metadata.Date.Format("2006-01-02")
}
