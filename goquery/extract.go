package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"kbharvest"
)

// Ensure Extractor implements kbharvest.Extractor at compile time.
var _ kbharvest.Extractor = (*Extractor)(nil)

// Extractor isolates title, body, author, and date from article HTML
// using the source's selector rules.
type Extractor struct {
	Converter kbharvest.Converter
}

// NewExtractor creates an Extractor using the given markup converter.
func NewExtractor(converter kbharvest.Converter) *Extractor {
	return &Extractor{Converter: converter}
}

// Extract applies the source's title rule, then tries the content
// selector candidates in order, taking the first that matches non-empty
// markup. The matched markup is converted to structured text; scripts,
// styles, and navigation chrome are removed first. Returns ESELECTORMISS
// when no content selector matches.
func (e *Extractor) Extract(html string, src *kbharvest.Source) (*kbharvest.ExtractedItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, kbharvest.Errorf(kbharvest.EINVALID, "parse article HTML: %v", err)
	}

	// Chrome never belongs in extracted content regardless of how broad
	// the content selector is.
	doc.Find("script, style, nav, header, footer, aside").Remove()

	contentHTML := selectContent(doc, src.ContentSelectors)
	if contentHTML == "" {
		return nil, kbharvest.Errorf(kbharvest.ESELECTORMISS, "source %q: no content selector matched", src.Name)
	}

	content, err := e.Converter.Convert(contentHTML)
	if err != nil {
		return nil, err
	}

	return &kbharvest.ExtractedItem{
		Title:         extractTitle(doc, src.TitleSelector),
		Content:       content,
		Author:        extractAuthor(doc, src),
		PublishedDate: extractDate(doc),
	}, nil
}

// selectContent returns the outer HTML of the first candidate selector
// matching a non-empty element.
func selectContent(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if strings.TrimSpace(sel.Text()) == "" {
			continue
		}
		html, err := goquery.OuterHtml(sel)
		if err != nil {
			continue
		}
		return html
	}
	return ""
}

func extractTitle(doc *goquery.Document, selector string) string {
	if selector != "" {
		if title := strings.TrimSpace(doc.Find(selector).First().Text()); title != "" {
			return title
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// extractAuthor resolves the page-embedded author. The source's
// default_author short-circuits extraction; otherwise the author
// selector is tried, then the common meta tags.
func extractAuthor(doc *goquery.Document, src *kbharvest.Source) string {
	if src.DefaultAuthor != "" {
		return src.DefaultAuthor
	}

	if src.AuthorSelector != "" {
		sel := doc.Find(src.AuthorSelector).First()
		if goquery.NodeName(sel) == "meta" {
			if content, ok := sel.Attr("content"); ok {
				return strings.TrimSpace(content)
			}
		}
		if author := strings.TrimSpace(sel.Text()); author != "" {
			return author
		}
	}

	for _, metaSelector := range []string{`meta[name="author"]`, `meta[property="article:author"]`} {
		if content, ok := doc.Find(metaSelector).First().Attr("content"); ok {
			if author := strings.TrimSpace(content); author != "" {
				return author
			}
		}
	}

	return ""
}

func extractDate(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[property="article:published_time"]`).First().Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	if datetime, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		return strings.TrimSpace(datetime)
	}
	return ""
}
