package main

import (
	"fmt"

	"kbharvest"
)

// Run executes the pdf command: it prints the chapter outline that
// scrape would extract from a single file, without writing anything.
func (c *PdfCmd) Run(deps *Dependencies) error {
	pages, err := deps.PDFs.ReadPages(c.Path)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", kbharvest.ErrorMessage(err))
		return err
	}

	chapters := kbharvest.SegmentChapters(pages)
	for _, ch := range chapters {
		fmt.Fprintf(deps.Stdout, "p.%-4d %-4d pages  %s\n", ch.StartPage, len(ch.Pages), ch.Title)
	}
	fmt.Fprintf(deps.Stdout, "%d chapter(s) across %d page(s)\n", len(chapters), len(pages))
	return nil
}
