package bootstrap

import (
	"fmt"
	"strings"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Options captures configuration for the markdown CLI bootstraps.
type Options struct {
	ContentDir     string
	Pattern        string
	Recursive      bool
	LocalePatterns map[string]string
	DefaultLocale  string
	Locales        []string

	MathMode       string
	HighlightStyle string
	TOCDepth       int

	CatalogEnabled bool
	CatalogDriver  string
	CatalogDSN     string

	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the blog module plus the markdown service and logger the
// CLI handlers consume.
type Module struct {
	Module  *blog.Module
	Service interfaces.MarkdownService
	Logger  interfaces.Logger
}

// BuildModule constructs a blog module configured for markdown operations.
// The generator stays disabled; these commands only need the markdown
// pipeline and, optionally, the catalog.
func BuildModule(opts Options) (*Module, error) {
	cfg := blog.DefaultConfig()
	cfg.Generator.Enabled = false
	cfg.Features.Shortcodes = true

	cfg.Content.Dir = strings.TrimSpace(opts.ContentDir)
	if cfg.Content.Dir == "" {
		cfg.Content.Dir = "content"
	}
	if trimmed := strings.TrimSpace(opts.Pattern); trimmed != "" {
		cfg.Content.Pattern = trimmed
	}
	cfg.Content.Recursive = opts.Recursive
	if opts.LocalePatterns != nil {
		cfg.Content.LocalePatterns = opts.LocalePatterns
	}
	if trimmed := strings.TrimSpace(opts.DefaultLocale); trimmed != "" {
		cfg.Content.DefaultLocale = trimmed
	}
	if len(opts.Locales) > 0 {
		cfg.Content.Locales = opts.Locales
	}

	if trimmed := strings.TrimSpace(opts.MathMode); trimmed != "" {
		cfg.Markdown.Math.Mode = trimmed
	}
	if trimmed := strings.TrimSpace(opts.HighlightStyle); trimmed != "" {
		cfg.Markdown.HighlightStyle = trimmed
	}
	if opts.TOCDepth > 0 {
		cfg.Markdown.TOC = blog.TOCConfig{Enabled: true, Depth: opts.TOCDepth}
	}

	if opts.CatalogEnabled {
		cfg.Features.Catalog = true
		if trimmed := strings.TrimSpace(opts.CatalogDriver); trimmed != "" {
			cfg.Catalog.Driver = trimmed
		}
		if trimmed := strings.TrimSpace(opts.CatalogDSN); trimmed != "" {
			cfg.Catalog.DSN = trimmed
		}
	}

	moduleOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		moduleOpts = append(moduleOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := blog.New(cfg, moduleOpts...)
	if err != nil {
		return nil, fmt.Errorf("bootstrap blog module: %w", err)
	}

	return &Module{
		Module:  module,
		Service: module.Markdown(),
		Logger:  logging.MarkdownLogger(module.Container().LoggerProvider()),
	}, nil
}

// SplitLocales parses a comma separated locale list, dropping blanks.
func SplitLocales(raw string) []string {
	parts := strings.Split(raw, ",")
	locales := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		locales = append(locales, trimmed)
	}
	if len(locales) == 0 {
		return nil
	}
	return locales
}
