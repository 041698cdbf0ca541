package kbharvest

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// ExtractedItem is the raw output of content extraction, before the
// normalization pass.
type ExtractedItem struct {
	Title         string
	Content       string
	ContentType   string
	SourceURL     string
	Author        string
	PublishedDate string
}

// Extractor isolates title, body, author, and date from fetched article
// HTML using the source's rule set. Implementations return
// ESELECTORMISS when no content rule matches.
type Extractor interface {
	Extract(html string, src *Source) (*ExtractedItem, error)
}

// Converter transforms HTML markup into clean structured text.
type Converter interface {
	Convert(html string) (string, error)
}

// Normalize applies the post-extraction policy to an item in place:
// boilerplate cleaning scoped by source type, the minimum-length filter,
// and author resolution. Returns ETOOSHORT when the cleaned content
// falls below the source's configured minimum.
//
// Author resolution order: page-embedded byline (already on the item),
// then the fallback-author table keyed by the item's host, then empty.
func Normalize(item *ExtractedItem, src *Source, fallbackAuthors map[string]string) error {
	item.Content = CleanContent(item.Content, ExcludePatterns(src.Type, src.ExcludePatterns))
	// Length is measured in characters, not bytes, so multi-byte text
	// is not judged stricter than ASCII.
	if n := utf8.RuneCountInString(item.Content); n < src.ContentMinLength {
		return Errorf(ETOOSHORT, "content %d chars, minimum %d for %q", n, src.ContentMinLength, item.SourceURL)
	}
	if item.Author == "" && fallbackAuthors != nil {
		if u, err := url.Parse(item.SourceURL); err == nil {
			item.Author = fallbackAuthors[u.Host]
		}
	}
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		item.Title = "No Title Found"
	}
	item.ContentType = src.Type
	return nil
}
