package bootstrap

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Options captures flag-level overrides for the site CLI. Empty values
// leave the loaded configuration untouched.
type Options struct {
	ConfigPath string

	ContentDir    string
	StaticDir     string
	OutputDir     string
	BaseURL       string
	Theme         string
	Variant       string
	DefaultLocale string
	Locales       []string

	IncludeDrafts bool
	Incremental   bool
	NoCleanBuild  bool
	Workers       int

	Preview     bool
	PreviewAddr string
	Watch       *bool

	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the blog module and the generator logger used by the site
// commands.
type Module struct {
	Module *blog.Module
	Logger interfaces.Logger
}

// LoadConfig reads a JSON configuration file layered over the defaults.
// An empty path returns the defaults untouched.
func LoadConfig(path string) (blog.Config, error) {
	cfg := blog.DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// BuildModule loads configuration, applies overrides, and constructs the
// blog module with the generator enabled.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.Generator.Enabled = true
	cfg.Features.Shortcodes = true

	applyOverrides(&cfg, opts)

	moduleOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		moduleOpts = append(moduleOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := blog.New(cfg, moduleOpts...)
	if err != nil {
		return nil, fmt.Errorf("bootstrap blog module: %w", err)
	}

	return &Module{
		Module: module,
		Logger: logging.GeneratorLogger(module.Container().LoggerProvider()),
	}, nil
}

func applyOverrides(cfg *blog.Config, opts Options) {
	if trimmed := strings.TrimSpace(opts.ContentDir); trimmed != "" {
		cfg.Content.Dir = trimmed
	}
	if trimmed := strings.TrimSpace(opts.StaticDir); trimmed != "" {
		cfg.Content.StaticDir = trimmed
	}
	if trimmed := strings.TrimSpace(opts.OutputDir); trimmed != "" {
		cfg.Generator.OutputDir = trimmed
	}
	if trimmed := strings.TrimSpace(opts.BaseURL); trimmed != "" {
		cfg.Site.BaseURL = trimmed
	}
	if trimmed := strings.TrimSpace(opts.Theme); trimmed != "" {
		cfg.Themes.DefaultTheme = trimmed
	}
	if trimmed := strings.TrimSpace(opts.Variant); trimmed != "" {
		cfg.Themes.DefaultVariant = trimmed
	}
	if trimmed := strings.TrimSpace(opts.DefaultLocale); trimmed != "" {
		cfg.Content.DefaultLocale = trimmed
	}
	if len(opts.Locales) > 0 {
		cfg.Content.Locales = opts.Locales
	}
	if opts.IncludeDrafts {
		cfg.Generator.IncludeDrafts = true
	}
	if opts.Incremental {
		cfg.Generator.Incremental = true
		cfg.Generator.CleanBuild = false
	}
	if opts.NoCleanBuild {
		cfg.Generator.CleanBuild = false
	}
	if opts.Workers > 0 {
		cfg.Generator.Workers = opts.Workers
	}
	if opts.Preview {
		cfg.Features.Preview = true
		if trimmed := strings.TrimSpace(opts.PreviewAddr); trimmed != "" {
			cfg.Server.Addr = trimmed
		}
		if opts.Watch != nil {
			cfg.Server.Watch = *opts.Watch
		}
	}
}

// SplitList parses a comma separated list, dropping blanks.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		values = append(values, trimmed)
	}
	if len(values) == 0 {
		return nil
	}
	return values
}
