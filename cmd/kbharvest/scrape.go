package main

import (
	"fmt"
	"path/filepath"

	"kbharvest"
	"kbharvest/crawl"
	"kbharvest/fs"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	sources, err := c.selectSources(deps.Config)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", kbharvest.ErrorMessage(err))
		return err
	}

	if c.DryRun {
		return c.dryRun(deps, sources)
	}

	var groups [][]kbharvest.KnowledgeItem
	var skipped []crawl.Skip

	for _, src := range sources {
		result, err := deps.Runner.RunSource(deps.Ctx, src)
		if err != nil {
			// A broken source does not abort the run.
			fmt.Fprintf(deps.Stderr, "error: source %q: %s\n", src.Name, kbharvest.ErrorMessage(err))
			continue
		}
		if len(result.Items) > 0 {
			groups = append(groups, result.Items)
		}
		skipped = append(skipped, result.Skipped...)
		fmt.Fprintf(deps.Stdout, "%s: %d items, %d skipped\n", src.Name, len(result.Items), len(result.Skipped))
	}

	if c.includePDFs(deps.Config) {
		pdfItems, err := c.processPDFs(deps)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", kbharvest.ErrorMessage(err))
			return err
		}
		if len(pdfItems) > 0 {
			groups = append(groups, pdfItems)
			fmt.Fprintf(deps.Stdout, "pdf: %d chapters\n", len(pdfItems))
		}
	}

	items, dups := kbharvest.Aggregate(groups...)

	doc := &kbharvest.Document{TeamID: deps.Config.TeamID, Items: items}
	if err := deps.Writer.WriteDocument(c.Output, doc); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", kbharvest.ErrorMessage(err))
		return err
	}

	for _, s := range skipped {
		fmt.Fprintf(deps.Stdout, "  skip %s: %s\n", s.URL, s.Reason)
	}
	for _, d := range dups {
		kind := "exact duplicate"
		if d.Rewrite {
			kind = "rewrite of same title"
		}
		fmt.Fprintf(deps.Stdout, "  dup %s %q: %s\n", d.SourceURL, d.Title, kind)
	}
	fmt.Fprintf(deps.Stdout, "Wrote %d items to %s\n", len(items), c.Output)
	return nil
}

// selectSources applies --target scoping in config order.
func (c *ScrapeCmd) selectSources(cfg *kbharvest.Config) ([]*kbharvest.Source, error) {
	var out []*kbharvest.Source
	for _, src := range cfg.Sources {
		if c.Target != "" && src.Name != c.Target {
			continue
		}
		out = append(out, src)
	}
	if c.Target != "" && len(out) == 0 {
		return nil, kbharvest.Errorf(kbharvest.ENOTFOUND, "no source named %q", c.Target)
	}
	return out, nil
}

// includePDFs reports whether this run should process the PDF directory.
// Targeting a single source scopes PDFs out.
func (c *ScrapeCmd) includePDFs(cfg *kbharvest.Config) bool {
	return !c.SkipPDF && c.Target == "" && cfg.PDFDir != ""
}

func (c *ScrapeCmd) dryRun(deps *Dependencies, sources []*kbharvest.Source) error {
	for _, src := range sources {
		if !src.Enabled {
			continue
		}
		links, err := deps.Runner.Discover(deps.Ctx, src)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: source %q: %s\n", src.Name, kbharvest.ErrorMessage(err))
			continue
		}
		for _, link := range links {
			fmt.Fprintln(deps.Stdout, link.URL)
		}
	}

	if c.includePDFs(deps.Config) {
		paths, err := fs.ListPDFs(deps.Config.PDFDir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(deps.Stdout, p)
		}
	}
	return nil
}

// processPDFs segments every PDF under the configured directory into
// chapter items.
func (c *ScrapeCmd) processPDFs(deps *Dependencies) ([]kbharvest.KnowledgeItem, error) {
	paths, err := fs.ListPDFs(deps.Config.PDFDir)
	if err != nil {
		return nil, err
	}

	var items []kbharvest.KnowledgeItem
	for _, path := range paths {
		pages, err := deps.PDFs.ReadPages(path)
		if err != nil {
			// A malformed PDF does not abort the run.
			fmt.Fprintf(deps.Stderr, "error: pdf %s: %s\n", path, kbharvest.ErrorMessage(err))
			continue
		}
		chapters := kbharvest.SegmentChapters(pages)

		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		items = append(items, kbharvest.ChapterItems(chapters, "file://"+abs, "")...)
	}
	return items, nil
}
