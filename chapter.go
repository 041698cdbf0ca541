package kbharvest

import (
	"regexp"
	"strings"
)

// PDFPage is the minimal per-page contract required from the PDF-reading
// collaborator: extractable text plus the page's dominant font size.
type PDFPage struct {
	Number   int
	Text     string
	FontSize float64
}

// PDFReader supplies per-page text and font metadata from a PDF file.
type PDFReader interface {
	ReadPages(path string) ([]PDFPage, error)
}

// Chapter is a contiguous, non-overlapping run of pages. The page list
// covers the input sequence exactly: every page belongs to one chapter.
type Chapter struct {
	Title     string
	Body      string
	StartPage int
	Pages     []int
}

// headingFontRatio is the multiplicative margin over the body-text font
// size above which a page is classified as a chapter boundary.
const headingFontRatio = 1.2

// chapterHeadingPattern matches explicit chapter headings such as
// "Chapter 3: Title" or "chapter 12".
var chapterHeadingPattern = regexp.MustCompile(`(?i)^chapter\s+\d+(?:[:.\s]|$)`)

// PrefaceTitle names the chapter holding text that appears before the
// first detected boundary. Attaching the preface (rather than discarding
// it) keeps segmentation total: concatenating all chapters' pages in
// order reconstructs the full input.
const PrefaceTitle = "Preface"

// SegmentChapters partitions an ordered page sequence into chapters. A
// page is a boundary when its dominant font size exceeds the document's
// body-text font size by headingFontRatio, or when its first line
// matches an explicit chapter heading. A document with no boundaries
// yields a single preface chapter spanning every page.
//
// The heuristic is a best-effort structural signal, not an outline
// extractor. Chapters whose body is empty survive here so page coverage
// holds; they are dropped at item conversion.
func SegmentChapters(pages []PDFPage) []Chapter {
	if len(pages) == 0 {
		return nil
	}

	bodySize := bodyFontSize(pages)

	var chapters []Chapter
	var current *Chapter
	var bodyParts []string

	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.TrimSpace(strings.Join(bodyParts, "\n\n"))
		chapters = append(chapters, *current)
		current = nil
		bodyParts = nil
	}

	for _, page := range pages {
		if isBoundary(page, bodySize) {
			flush()
			title, rest := splitHeading(page.Text)
			current = &Chapter{
				Title:     title,
				StartPage: page.Number,
				Pages:     []int{page.Number},
			}
			if rest != "" {
				bodyParts = append(bodyParts, rest)
			}
			continue
		}
		if current == nil {
			current = &Chapter{
				Title:     PrefaceTitle,
				StartPage: page.Number,
			}
		}
		current.Pages = append(current.Pages, page.Number)
		if text := strings.TrimSpace(page.Text); text != "" {
			bodyParts = append(bodyParts, text)
		}
	}
	flush()

	return chapters
}

// ChapterItems converts chapters into knowledge items, dropping chapters
// whose body is empty (consecutive boundaries with no intervening text).
// PDF-derived items carry the book content type and a file URL.
func ChapterItems(chapters []Chapter, sourceURL, author string) []KnowledgeItem {
	var items []KnowledgeItem
	for _, ch := range chapters {
		if ch.Body == "" {
			continue
		}
		items = append(items, KnowledgeItem{
			Title:       ch.Title,
			Content:     ch.Body,
			ContentType: "book",
			SourceURL:   sourceURL,
			Author:      author,
		})
	}
	return items
}

// bodyFontSize estimates the document's body-text font size as the mode
// of page font sizes weighted by text length.
func bodyFontSize(pages []PDFPage) float64 {
	weights := make(map[float64]int)
	for _, p := range pages {
		if p.FontSize > 0 {
			weights[p.FontSize] += len(p.Text) + 1
		}
	}
	var best float64
	var bestWeight int
	for size, weight := range weights {
		if weight > bestWeight || (weight == bestWeight && size < best) {
			best = size
			bestWeight = weight
		}
	}
	return best
}

func isBoundary(page PDFPage, bodySize float64) bool {
	if bodySize > 0 && page.FontSize >= bodySize*headingFontRatio {
		return true
	}
	return chapterHeadingPattern.MatchString(firstLine(page.Text))
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// splitHeading returns the boundary page's heading line as the chapter
// title and the remainder of the page text as initial body content.
func splitHeading(text string) (title, rest string) {
	title = firstLine(text)
	if title == "" {
		title = "Untitled Chapter"
		return title, strings.TrimSpace(text)
	}
	const maxTitleLen = 120
	if len(title) > maxTitleLen {
		title = strings.TrimSpace(title[:maxTitleLen])
	}
	if idx := strings.Index(text, title); idx >= 0 {
		rest = strings.TrimSpace(text[idx+len(title):])
	}
	return title, rest
}
