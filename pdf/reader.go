// Package pdf reads per-page text and font metadata from PDF files,
// providing the minimal contract the chapter segmenter needs.
package pdf

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"kbharvest"
)

// Ensure Reader implements kbharvest.PDFReader at compile time.
var _ kbharvest.PDFReader = (*Reader)(nil)

// Reader extracts page text annotated with the page's dominant font
// size. Pages that cannot be decoded are skipped; segmentation
// continues from the next readable page.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadPages returns the readable pages of the PDF at path in order.
// Returns EPDF when the file cannot be opened or no page yields text.
func (r *Reader) ReadPages(path string) (pages []kbharvest.PDFPage, err error) {
	// The library panics rather than erroring on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = kbharvest.Errorf(kbharvest.EPDF, "reading %q: %v", path, rec)
		}
	}()

	f, doc, err := pdf.Open(path)
	if err != nil {
		return nil, kbharvest.Errorf(kbharvest.EPDF, "opening %q: %v", path, err)
	}
	defer f.Close()

	for i := 1; i <= doc.NumPage(); i++ {
		page, ok := readPage(doc, i)
		if !ok {
			continue
		}
		pages = append(pages, page)
	}

	if len(pages) == 0 {
		return nil, kbharvest.Errorf(kbharvest.EPDF, "no readable pages in %q", path)
	}

	return pages, nil
}

// readPage decodes a single page. The underlying library panics on some
// malformed content streams; a panic skips the page rather than the
// document.
func readPage(doc *pdf.Reader, number int) (page kbharvest.PDFPage, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	p := doc.Page(number)
	if p.V.IsNull() {
		return kbharvest.PDFPage{}, false
	}

	var b strings.Builder
	fontWeights := make(map[float64]int)
	var lastY float64

	for _, text := range p.Content().Text {
		if text.S == "" {
			continue
		}
		if b.Len() > 0 && text.Y != lastY {
			b.WriteString("\n")
		}
		lastY = text.Y
		b.WriteString(text.S)
		fontWeights[text.FontSize] += len(text.S)
	}

	raw := strings.TrimSpace(b.String())
	if raw == "" {
		return kbharvest.PDFPage{}, false
	}

	return kbharvest.PDFPage{
		Number:   number,
		Text:     raw,
		FontSize: dominantFont(fontWeights),
	}, true
}

// dominantFont returns the font size carrying the most text on a page.
func dominantFont(weights map[float64]int) float64 {
	var best float64
	var bestWeight int
	for size, weight := range weights {
		if weight > bestWeight || (weight == bestWeight && size > best) {
			best = size
			bestWeight = weight
		}
	}
	return best
}
