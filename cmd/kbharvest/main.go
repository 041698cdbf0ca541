package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"kbharvest"
	"kbharvest/crawl"
	"kbharvest/fs"
	"kbharvest/gofeed"
	"kbharvest/goquery"
	"kbharvest/htmltomarkdown"
	kbhttp "kbharvest/http"
	kbpdf "kbharvest/pdf"
	kbslog "kbharvest/slog"
	"kbharvest/trafilatura"
	kbyaml "kbharvest/yaml"
	"kbharvest/zenrows"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config, when set, bypasses file loading. Used by tests.
	Config *kbharvest.Config
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: slog.New(slog.NewTextHandler(stderr, nil)),
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("kbharvest"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'kbharvest --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Wire command-specific dependencies based on command
	switch cmd {
	case "scrape":
		cfg, err := m.loadConfig(cli.Scrape.Config, stderr)
		if err != nil {
			return err
		}
		if cli.Scrape.ForceFallback && !cfg.Fallback.Enabled {
			return fmt.Errorf("--force-fallback requires a configured fallback provider")
		}
		deps.Config = cfg
		deps.Logger = deps.Logger.With("run", uuid.NewString())
		deps.Runner = buildRunner(cfg, cli.Scrape.ForceFallback, deps.Logger)
		deps.PDFs = kbpdf.NewReader()
		deps.Writer = fs.NewWriter()

	case "validate", "targets":
		path := cli.Validate.Config
		if cmd == "targets" {
			path = cli.Targets.Config
		}
		cfg, err := m.loadConfig(path, stderr)
		if err != nil {
			return err
		}
		deps.Config = cfg

	case "pdf":
		deps.PDFs = kbpdf.NewReader()
	}

	return kongCtx.Run(deps)
}

func (m *Main) loadConfig(path string, stderr io.Writer) (*kbharvest.Config, error) {
	if m.Config != nil {
		return m.Config, nil
	}
	cfg, err := kbyaml.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Pass --config to use a different configuration file\n")
		return nil, fmt.Errorf("failed to load config %q: %s", path, kbharvest.ErrorMessage(err))
	}
	return cfg, nil
}

// buildRunner assembles the pipeline from the configuration: the logged
// primary fetcher, the fallback provider when enabled, one discoverer
// per strategy, selector extraction with the heuristic backstop, and the
// shared per-host limiter.
func buildRunner(cfg *kbharvest.Config, forceFallback bool, logger *slog.Logger) *crawl.Runner {
	timeout := time.Duration(cfg.Timeout * float64(time.Second))
	primary := kbslog.NewFetcher(
		kbhttp.NewFetcher(kbhttp.WithTimeout(timeout), kbhttp.WithUserAgent(cfg.UserAgent)),
		logger,
	)

	var fallback kbharvest.Fetcher
	if cfg.Fallback.Enabled {
		fallback = kbslog.NewFetcher(
			zenrows.NewFetcher(cfg.Fallback.APIKey, zenrows.WithPremium(cfg.Fallback.Premium)),
			logger,
		)
	}

	converter := htmltomarkdown.NewConverter()

	return &crawl.Runner{
		Fetcher:  primary,
		Fallback: fallback,
		Discoverers: map[string]kbharvest.Discoverer{
			kbharvest.DiscoverySelectors: goquery.NewDiscoverer(primary),
			kbharvest.DiscoverySitemap:   kbhttp.NewSitemapDiscoverer(nil),
			kbharvest.DiscoveryFeed:      gofeed.NewDiscoverer(primary),
		},
		Extractor:       goquery.NewExtractor(converter),
		Heuristic:       trafilatura.NewExtractor(converter),
		Limiter:         crawl.NewDomainLimiterDelay(cfg.RequestDelay),
		Reporter:        kbslog.NewReporter(logger),
		FallbackAuthors: cfg.FallbackAuthors,
		Concurrency:     cfg.MaxWorkers,
		ForceFallback:   forceFallback,
	}
}
