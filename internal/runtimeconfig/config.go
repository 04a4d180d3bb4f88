package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

// ErrContentDirRequired indicates the markdown content directory is missing.
var ErrContentDirRequired = errors.New("blog config: content directory is required")

// ErrMathModeInvalid indicates an unsupported math rendering mode.
var ErrMathModeInvalid = errors.New("blog config: math mode is invalid")

// ErrTOCDepthInvalid indicates an out-of-range table of contents depth.
var ErrTOCDepthInvalid = errors.New("blog config: toc depth must be between 1 and 6")

// ErrSiteBaseURLInvalid indicates the site base URL could not be parsed as absolute.
var ErrSiteBaseURLInvalid = errors.New("blog config: site base URL must be absolute")

// ErrGeneratorOutputDirRequired indicates the generator has nowhere to write.
var ErrGeneratorOutputDirRequired = errors.New("blog config: generator output directory is required when generator is enabled")

// ErrGeneratorWorkersInvalid rejects negative worker pool sizes.
var ErrGeneratorWorkersInvalid = errors.New("blog config: generator workers must be zero or positive")

// ErrGeneratorFeedLimitInvalid rejects negative feed item caps.
var ErrGeneratorFeedLimitInvalid = errors.New("blog config: generator feed limit must be zero or positive")

var ErrCatalogDSNRequired = errors.New("blog config: catalog DSN is required when catalog is enabled")
var ErrCatalogDriverUnknown = errors.New("blog config: catalog driver is invalid")
var ErrServerAddrRequired = errors.New("blog config: server address is required when preview is enabled")
var ErrServerDebounceInvalid = errors.New("blog config: server debounce must be zero or positive")
var ErrLoggingProviderRequired = errors.New("blog config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("blog config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("blog config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("blog config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the blog module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled    bool
	Site       SiteConfig
	Content    ContentConfig
	Markdown   MarkdownConfig
	Render     RenderConfig
	Themes     ThemeConfig
	Generator  GeneratorConfig
	Catalog    CatalogConfig
	Server     ServerConfig
	Cache      CacheConfig
	Navigation NavigationConfig
	Features   Features
	Logging    LoggingConfig
}

// SiteConfig describes the published site: titles, authorship, and the
// canonical base URL used for permalinks, feeds, and the sitemap.
type SiteConfig struct {
	Title       string
	Description string
	Author      string
	BaseURL     string
	Language    string
	Copyright   string
}

// ContentConfig captures where articles live on disk and how they are
// discovered.
type ContentConfig struct {
	Dir            string
	StaticDir      string
	Pattern        string
	Recursive      bool
	DefaultLocale  string
	Locales        []string
	LocalePatterns map[string]string
}

// MarkdownConfig captures parser behaviour for Markdown conversion.
type MarkdownConfig struct {
	Extensions           []string
	Sanitize             bool
	HardWraps            bool
	SafeMode             bool
	HighlightStyle       string
	HighlightLineNumbers bool
	Math                 MathConfig
	TOC                  TOCConfig
	// MetadataSchema points at a JSON schema applied to frontmatter custom
	// fields. Empty disables validation.
	MetadataSchema string
}

// MathConfig selects how embedded TeX is handled. Markup always passes
// through untouched; the mode decides which client-side script the
// standalone layout loads.
type MathConfig struct {
	Mode string
}

// Math rendering modes.
const (
	MathModeNone    = "none"
	MathModeMathJax = "mathjax"
	MathModeKaTeX   = "katex"
)

// TOCConfig controls table of contents extraction.
type TOCConfig struct {
	Enabled bool
	Depth   int
}

// RenderConfig captures page assembly behaviour.
type RenderConfig struct {
	// Standalone renders complete HTML documents through the theme layout.
	// When false only the article body fragment is produced.
	Standalone bool
	// Template forces a theme template name for every article. Article
	// frontmatter still wins when present.
	Template string
}

// ThemeConfig captures configuration for the themes module.
type ThemeConfig struct {
	BasePath       string
	DefaultTheme   string
	DefaultVariant string
}

// GeneratorConfig captures behaviour for the static site generator.
type GeneratorConfig struct {
	Enabled          bool
	OutputDir        string
	CleanBuild       bool
	Incremental      bool
	CopyAssets       bool
	GenerateSitemap  bool
	GenerateRobots   bool
	GenerateFeeds    bool
	FailFast         bool
	IncludeDrafts    bool
	Workers          int
	FeedLimit        int
	RenderTimeout    time.Duration
	AssetCopyTimeout time.Duration
}

// CatalogConfig configures the optional persistent article index.
type CatalogConfig struct {
	Driver string
	DSN    string
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr     string
	Watch    bool
	Debounce time.Duration
}

// CacheConfig captures cache behaviour toggles for catalog repositories.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// NavigationConfig captures routing configuration for permalink resolution.
type NavigationConfig struct {
	RouteConfig *urlkit.Config
}

// Features toggles module functionality.
type Features struct {
	Catalog    bool
	Preview    bool
	Shortcodes bool
	Logger     bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults that pass Validate and render
// a site out of the box with the bundled theme.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Site: SiteConfig{
			Title:    "Blog",
			Language: "en",
		},
		Content: ContentConfig{
			Dir:            "content",
			StaticDir:      "static",
			Pattern:        "*.md",
			Recursive:      true,
			DefaultLocale:  "en",
			Locales:        []string{"en"},
			LocalePatterns: map[string]string{},
		},
		Markdown: MarkdownConfig{
			HighlightStyle: "pygments",
			Math:           MathConfig{Mode: MathModeMathJax},
			TOC:            TOCConfig{Enabled: true, Depth: 3},
		},
		Render: RenderConfig{
			Standalone: true,
		},
		Themes: ThemeConfig{
			BasePath:     "themes",
			DefaultTheme: "default",
		},
		Generator: GeneratorConfig{
			Enabled:         true,
			OutputDir:       "dist",
			CleanBuild:      true,
			Incremental:     false,
			CopyAssets:      true,
			GenerateSitemap: true,
			GenerateRobots:  false,
			GenerateFeeds:   true,
			FailFast:        true,
			Workers:         0,
			FeedLimit:       0,
		},
		Catalog: CatalogConfig{
			Driver: "sqlite3",
			DSN:    "file:blog.db?cache=shared",
		},
		Server: ServerConfig{
			Addr:     ":8090",
			Watch:    true,
			Debounce: 100 * time.Millisecond,
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Navigation: NavigationConfig{},
		Features:   Features{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if base := strings.TrimSpace(cfg.Site.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		if err != nil || !parsed.IsAbs() {
			return fmt.Errorf("%w: %s", ErrSiteBaseURLInvalid, base)
		}
	}
	if mode := normalizeMathMode(cfg.Markdown.Math.Mode); !isSupportedMathMode(mode) {
		return fmt.Errorf("%w: %s", ErrMathModeInvalid, cfg.Markdown.Math.Mode)
	}
	if cfg.Markdown.TOC.Enabled {
		if cfg.Markdown.TOC.Depth < 1 || cfg.Markdown.TOC.Depth > 6 {
			return fmt.Errorf("%w: %d", ErrTOCDepthInvalid, cfg.Markdown.TOC.Depth)
		}
	}
	if cfg.Generator.Enabled {
		if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
			return ErrGeneratorOutputDirRequired
		}
		if cfg.Generator.Workers < 0 {
			return fmt.Errorf("%w: %d", ErrGeneratorWorkersInvalid, cfg.Generator.Workers)
		}
		if cfg.Generator.FeedLimit < 0 {
			return fmt.Errorf("%w: %d", ErrGeneratorFeedLimitInvalid, cfg.Generator.FeedLimit)
		}
	}
	if cfg.Features.Catalog {
		if strings.TrimSpace(cfg.Catalog.DSN) == "" {
			return ErrCatalogDSNRequired
		}
		if driver := normalizeDriver(cfg.Catalog.Driver); !isSupportedDriver(driver) {
			return fmt.Errorf("%w: %s", ErrCatalogDriverUnknown, cfg.Catalog.Driver)
		}
	}
	if cfg.Features.Preview {
		if strings.TrimSpace(cfg.Server.Addr) == "" {
			return ErrServerAddrRequired
		}
		if cfg.Server.Debounce < 0 {
			return fmt.Errorf("%w: %s", ErrServerDebounceInvalid, cfg.Server.Debounce)
		}
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeMathMode(mode string) string {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		return MathModeNone
	}
	return mode
}

func isSupportedMathMode(mode string) bool {
	switch mode {
	case MathModeNone, MathModeMathJax, MathModeKaTeX:
		return true
	default:
		return false
	}
}

func normalizeDriver(driver string) string {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		return "sqlite3"
	}
	return driver
}

func isSupportedDriver(driver string) bool {
	switch driver {
	case "sqlite3", "postgres":
		return true
	default:
		return false
	}
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
