package kbharvest

import (
	"net/url"
	"strings"
)

// Source type tags. The type selects the default boilerplate patterns
// applied during content cleaning and becomes the content_type of every
// item produced from the source.
const (
	TypeBlog            = "blog"
	TypeGuides          = "guides"
	TypeCompanies       = "companies"
	TypeInterviewGuides = "interview-guides"
	TypeNewsletter      = "newsletter"
)

// Discovery strategies. The empty string selects selector-driven link
// discovery on the source's listing page(s).
const (
	DiscoverySelectors = ""
	DiscoverySitemap   = "sitemap"
	DiscoveryFeed      = "feed"
)

// Source is a configured scraping target. Sources are created once from
// configuration and are read-only to the pipeline.
type Source struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Type    string `yaml:"type"`
	Enabled bool   `yaml:"enabled"`

	// Discovery selects how article URLs are found: selector-driven
	// (default), sitemap-based, or feed-based.
	Discovery string `yaml:"discovery"`

	// DiscoveryPages lists additional listing pages to scan for article
	// links. When empty, URL is the only listing page.
	DiscoveryPages []string `yaml:"discovery_pages"`

	RuleSet `yaml:",inline"`
}

// RuleSet holds the per-source extraction rules. Selector fields contain
// CSS selector expressions evaluated against fetched HTML.
type RuleSet struct {
	// LinkSelector matches article links on a listing page.
	// LinkSelectors, when set, lists ordered candidates tried until one
	// yields at least one match; it takes precedence over LinkSelector.
	LinkSelector  string   `yaml:"link_selector"`
	LinkSelectors []string `yaml:"link_selectors"`

	// LinkFilter, when set, keeps only hrefs containing the substring.
	LinkFilter string `yaml:"link_filter"`

	// NextPageSelector matches the pagination link on a listing page.
	// MaxPages bounds how many listing pages are followed per source.
	NextPageSelector string `yaml:"next_page_selector"`
	MaxPages         int    `yaml:"max_pages"`

	TitleSelector string `yaml:"title_selector"`

	// ContentSelectors are tried in order; the first that matches
	// non-empty markup wins.
	ContentSelectors []string `yaml:"content_selectors"`

	AuthorSelector string `yaml:"author_selector"`

	// DefaultAuthor, when set, overrides author extraction entirely.
	DefaultAuthor string `yaml:"default_author"`

	// ContentMinLength is the minimum normalized content length; shorter
	// items are dropped.
	ContentMinLength int `yaml:"content_min_length"`

	// ExcludePatterns lists substrings whose containing paragraphs are
	// removed during cleaning, merged with the per-type defaults.
	ExcludePatterns []string `yaml:"exclude_content_patterns"`
}

// LinkCandidates returns the ordered list of link selector candidates.
func (r *RuleSet) LinkCandidates() []string {
	if len(r.LinkSelectors) > 0 {
		return r.LinkSelectors
	}
	if r.LinkSelector != "" {
		return []string{r.LinkSelector}
	}
	return nil
}

// Validate returns ECONFIG if the source definition cannot be used. A
// failed validation disables the source, not the run.
func (s *Source) Validate() error {
	if s.Name == "" {
		return Errorf(ECONFIG, "source name required")
	}
	if s.URL == "" {
		return Errorf(ECONFIG, "source %q: url required", s.Name)
	}
	u, err := url.Parse(s.URL)
	if err != nil || !u.IsAbs() {
		return Errorf(ECONFIG, "source %q: invalid url %q", s.Name, s.URL)
	}
	if s.Type == "" {
		return Errorf(ECONFIG, "source %q: type required", s.Name)
	}
	if s.Discovery == DiscoverySelectors && len(s.LinkCandidates()) == 0 {
		return Errorf(ECONFIG, "source %q: link_selector required", s.Name)
	}
	return nil
}

// Host returns the source URL's host, or "" if the URL does not parse.
func (s *Source) Host() string {
	u, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// Default configuration values applied by Config.Normalize.
const (
	DefaultMaxWorkers       = 5
	DefaultRequestDelay     = 1.0
	DefaultTimeout          = 15.0
	DefaultTitleSelector    = "h1"
	DefaultContentMinLength = 50
	DefaultMaxPages         = 10
	DefaultUserAgent        = "kbharvest/1.0 (+https://github.com/kbharvest)"
)

// FallbackConfig configures the external rendering/proxy service used
// when the primary fetcher fails.
type FallbackConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`

	// Premium enables JS rendering and premium proxies on every
	// fallback request.
	Premium bool `yaml:"premium"`
}

// Config is the top-level pipeline configuration.
type Config struct {
	TeamID       string         `yaml:"team_id"`
	MaxWorkers   int            `yaml:"max_workers"`
	RequestDelay float64        `yaml:"request_delay"`
	Timeout      float64        `yaml:"timeout"`
	UserAgent    string         `yaml:"user_agent"`
	Fallback     FallbackConfig `yaml:"fallback"`

	// FallbackAuthors maps a host to the author name used when a page
	// carries no byline.
	FallbackAuthors map[string]string `yaml:"fallback_authors"`

	// PDFDir is scanned for *.pdf files to segment into chapters.
	PDFDir string `yaml:"pdf_dir"`

	Sources []*Source `yaml:"sources"`
}

// Normalize applies defaults in place. It is safe to call on a
// zero-value config.
func (c *Config) Normalize() {
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = DefaultMaxWorkers
	}
	if c.RequestDelay <= 0 {
		c.RequestDelay = DefaultRequestDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	for _, src := range c.Sources {
		if src.TitleSelector == "" {
			src.TitleSelector = DefaultTitleSelector
		}
		if src.ContentMinLength <= 0 {
			src.ContentMinLength = DefaultContentMinLength
		}
		if src.NextPageSelector != "" && src.MaxPages <= 0 {
			src.MaxPages = DefaultMaxPages
		}
		if src.MaxPages <= 0 {
			src.MaxPages = 1
		}
	}
}

// Validate returns ECONFIG if the configuration as a whole cannot
// produce any output. Per-source problems are not validated here; they
// disable individual sources at run time.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TeamID) == "" {
		return Errorf(ECONFIG, "team_id required")
	}
	if len(c.Sources) == 0 && c.PDFDir == "" {
		return Errorf(ECONFIG, "no sources and no pdf_dir configured")
	}
	return nil
}

// AuthorForHost returns the configured fallback author for a host, or "".
func (c *Config) AuthorForHost(host string) string {
	if c.FallbackAuthors == nil {
		return ""
	}
	return c.FallbackAuthors[host]
}
