package main

import (
	"context"
	"io"
	"log/slog"

	"kbharvest"
	"kbharvest/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Config *kbharvest.Config
	Runner *crawl.Runner
	PDFs   kbharvest.PDFReader
	Writer kbharvest.DocumentWriter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Scrape   ScrapeCmd   `cmd:"" help:"Run the pipeline and write the knowledge base"`
	Validate ValidateCmd `cmd:"" help:"Validate the configuration file"`
	Targets  TargetsCmd  `cmd:"" help:"List configured sources"`
	Pdf      PdfCmd      `cmd:"" help:"Preview chapter segmentation for a single PDF"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	Config        string `short:"c" default:"config.yaml" help:"Path to the YAML configuration"`
	Output        string `short:"o" default:"knowledge_base.json" help:"Output document path"`
	Target        string `short:"t" help:"Run a single source by name"`
	SkipPDF       bool   `name:"skip-pdf" help:"Skip PDF processing"`
	DryRun        bool   `name:"dry-run" help:"Print discovered URLs without fetching articles"`
	ForceFallback bool   `name:"force-fallback" help:"Route every fetch through the fallback provider"`
}

// ValidateCmd is the "validate" subcommand.
type ValidateCmd struct {
	Config string `short:"c" default:"config.yaml" help:"Path to the YAML configuration"`
}

// TargetsCmd is the "targets" subcommand.
type TargetsCmd struct {
	Config string `short:"c" default:"config.yaml" help:"Path to the YAML configuration"`
}

// PdfCmd is the "pdf" subcommand.
type PdfCmd struct {
	Path string `arg:"" help:"Path to a PDF file"`
}
