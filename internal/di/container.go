package di

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-blog/internal/articles"
	"github.com/goliatone/go-blog/internal/catalog"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/logging/console"
	"github.com/goliatone/go-blog/internal/logging/gologger"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/render"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/internal/server"
	"github.com/goliatone/go-blog/internal/shortcode"
	"github.com/goliatone/go-blog/internal/themes"
	"github.com/goliatone/go-blog/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"
)

// Container wires the blog module: markdown pipeline, themes, renderer,
// generator, and the optional catalog and preview server.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	shortcodeSvc *shortcode.Service
	markdownSvc  interfaces.MarkdownService
	themeSvc     *themes.Service
	renderer     interfaces.TemplateRenderer
	source       generator.ContentSource
	generatorSvc generator.Service
	previewSrv   *server.Server

	bunDB         *bun.DB
	ownsDB        bool
	catalogSvc    *catalog.Service
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	storage      interfaces.ArtifactStorage
	routeManager *urlkit.RouteManager
}

// Option mutates the container before services are constructed.
type Option func(*Container)

// WithLoggerProvider overrides the provider derived from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithTemplateRenderer overrides the default pongo2 renderer.
func WithTemplateRenderer(renderer interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		c.renderer = renderer
	}
}

// WithMarkdownService overrides the default filesystem-backed service.
func WithMarkdownService(svc interfaces.MarkdownService) Option {
	return func(c *Container) {
		c.markdownSvc = svc
	}
}

// WithContentSource overrides the default directory source.
func WithContentSource(source generator.ContentSource) Option {
	return func(c *Container) {
		c.source = source
	}
}

// WithArtifactStorage routes generator output through the given storage
// instead of the local filesystem.
func WithArtifactStorage(storage interfaces.ArtifactStorage) Option {
	return func(c *Container) {
		c.storage = storage
	}
}

// WithBunDB supplies an existing database handle for the catalog. The
// container will not close handles it did not open.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache used by the catalog.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// New validates the configuration and constructs every enabled service.
func New(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureShortcodes()
	c.configureNavigation()
	if err := c.configureCatalog(); err != nil {
		return nil, err
	}
	if err := c.configureMarkdown(); err != nil {
		return nil, err
	}
	if err := c.configureThemes(); err != nil {
		return nil, err
	}
	if err := c.configureRenderer(); err != nil {
		return nil, err
	}
	if err := c.configureSource(); err != nil {
		return nil, err
	}
	if err := c.configureGenerator(); err != nil {
		return nil, err
	}
	if err := c.configureServer(); err != nil {
		return nil, err
	}

	return c, nil
}

// Close releases resources the container opened itself.
func (c *Container) Close() error {
	if c.bunDB != nil && c.ownsDB {
		return c.bunDB.Close()
	}
	return nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}

	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: logging provider: %w", err)
		}
		c.loggerProvider = provider
	default:
		level := consoleLevel(logCfg.Level)
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
	}
	return nil
}

func (c *Container) configureShortcodes() {
	if !c.Config.Features.Shortcodes {
		return
	}
	registry := shortcode.NewRegistry(shortcode.NewValidator())
	if err := shortcode.RegisterBuiltIns(registry, nil); err != nil {
		logging.ModuleLogger(c.loggerProvider, "blog.shortcodes").
			Warn("builtin shortcode registration failed", "error", err)
	}
	renderer := shortcode.NewRenderer(registry, shortcode.NewValidator())
	c.shortcodeSvc = shortcode.NewService(registry, renderer,
		shortcode.WithLogger(logging.ModuleLogger(c.loggerProvider, "blog.shortcodes")),
	)
}

func (c *Container) configureNavigation() {
	if c.Config.Navigation.RouteConfig == nil {
		return
	}
	c.routeManager = urlkit.NewRouteManager(c.Config.Navigation.RouteConfig)
}

func (c *Container) configureCatalog() error {
	if !c.Config.Features.Catalog {
		return nil
	}

	if c.bunDB == nil {
		db, err := catalog.OpenDB(c.Config.Catalog.Driver, c.Config.Catalog.DSN)
		if err != nil {
			return fmt.Errorf("di: open catalog database: %w", err)
		}
		c.bunDB = db
		c.ownsDB = true
	}

	c.configureCacheDefaults()

	catalogOpts := []catalog.Option{
		catalog.WithLogger(logging.CatalogLogger(c.loggerProvider)),
	}
	if c.cacheService != nil && c.keySerializer != nil {
		catalogOpts = append(catalogOpts, catalog.WithCache(c.cacheService, c.keySerializer))
	}

	svc, err := catalog.NewService(c.bunDB, catalog.Config{
		DefaultLocale: c.Config.Content.DefaultLocale,
		Builder:       c.builderConfig(),
	}, catalogOpts...)
	if err != nil {
		return fmt.Errorf("di: catalog service: %w", err)
	}
	c.catalogSvc = svc
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cacheCfg := repocache.DefaultConfig()
		if ttl := c.Config.Cache.DefaultTTL; ttl > 0 {
			cacheCfg.TTL = ttl
		}
		service, err := repocache.NewCacheService(cacheCfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureMarkdown() error {
	if c.markdownSvc != nil {
		return nil
	}

	parseOpts := c.parseOptions()
	parser := markdown.NewGoldmarkParser(parseOpts)

	serviceOpts := []markdown.ServiceOption{}
	if c.shortcodeSvc != nil {
		serviceOpts = append(serviceOpts, markdown.WithExpander(c.shortcodeSvc))
	}
	if c.catalogSvc != nil {
		serviceOpts = append(serviceOpts, markdown.WithSyncer(c.catalogSvc))
	}

	svc, err := markdown.NewService(markdown.Config{
		BasePath:       c.Config.Content.Dir,
		DefaultLocale:  c.Config.Content.DefaultLocale,
		Locales:        c.Config.Content.Locales,
		LocalePatterns: c.Config.Content.LocalePatterns,
		Pattern:        c.Config.Content.Pattern,
		Recursive:      c.Config.Content.Recursive,
		Parser:         parseOpts,
	}, parser, serviceOpts...)
	if err != nil {
		return fmt.Errorf("di: markdown service: %w", err)
	}
	c.markdownSvc = svc
	return nil
}

func (c *Container) configureThemes() error {
	c.themeSvc = themes.NewService(themes.Config{
		BasePath:       c.Config.Themes.BasePath,
		DefaultTheme:   c.Config.Themes.DefaultTheme,
		DefaultVariant: c.Config.Themes.DefaultVariant,
	}, themes.WithLogger(logging.ThemesLogger(c.loggerProvider)))

	if err := c.themeSvc.LoadAll(); err != nil {
		return fmt.Errorf("di: load themes: %w", err)
	}
	return nil
}

func (c *Container) configureRenderer() error {
	if c.renderer != nil {
		return nil
	}

	themeName := c.Config.Themes.DefaultTheme
	root, err := c.themeSvc.FS(themeName)
	if err != nil {
		return fmt.Errorf("di: theme filesystem: %w", err)
	}

	renderer, err := render.NewPongo2Renderer(root, render.WithResolver(func(name string) (string, error) {
		return c.themeSvc.TemplatePath(themeName, name)
	}))
	if err != nil {
		return fmt.Errorf("di: template renderer: %w", err)
	}
	c.renderer = renderer
	return nil
}

func (c *Container) configureSource() error {
	if c.source != nil {
		return nil
	}

	sourceOpts := []articles.DirectorySourceOption{
		articles.WithSourceLogger(logging.ArticlesLogger(c.loggerProvider)),
	}

	validator, err := c.metadataValidator()
	if err != nil {
		return err
	}
	if validator != nil {
		sourceOpts = append(sourceOpts, articles.WithMetadataValidator(validator))
	}

	// The markdown service is rooted at the content directory, so the
	// source loads from ".".
	source, err := articles.NewDirectorySource(articles.DirectorySourceConfig{
		ContentDir: ".",
		Builder:    c.builderConfig(),
	}, c.markdownSvc, sourceOpts...)
	if err != nil {
		return fmt.Errorf("di: content source: %w", err)
	}
	c.source = source
	return nil
}

func (c *Container) configureGenerator() error {
	if !c.Config.Generator.Enabled {
		c.generatorSvc = generator.NewDisabledService()
		return nil
	}

	gen := c.Config.Generator
	c.generatorSvc = generator.NewService(generator.Config{
		OutputDir:       gen.OutputDir,
		BaseURL:         c.Config.Site.BaseURL,
		CleanBuild:      gen.CleanBuild,
		Incremental:     gen.Incremental,
		CopyAssets:      gen.CopyAssets,
		GenerateSitemap: gen.GenerateSitemap,
		GenerateRobots:  gen.GenerateRobots,
		GenerateFeeds:   gen.GenerateFeeds,
		FailFast:        gen.FailFast,
		IncludeDrafts:   gen.IncludeDrafts,
		Workers:         gen.Workers,
		FeedLimit:       gen.FeedLimit,
		DefaultLocale:   c.Config.Content.DefaultLocale,
		Locales:         c.Config.Content.Locales,
		Theme:           c.Config.Themes.DefaultTheme,
		Variant:         c.Config.Themes.DefaultVariant,
		Template:        c.Config.Render.Template,
		MathMode:        c.Config.Markdown.Math.Mode,
		StaticDir:       c.Config.Content.StaticDir,
	}, generator.Dependencies{
		Source:   c.source,
		Themes:   c.themeSvc,
		Renderer: c.renderer,
		Storage:  c.storage,
		Site:     c.siteMetadata(),
		Logger:   logging.GeneratorLogger(c.loggerProvider),
	})
	return nil
}

func (c *Container) configureServer() error {
	if !c.Config.Features.Preview {
		return nil
	}

	watchDirs := []string{c.Config.Content.Dir}
	if base := strings.TrimSpace(c.Config.Themes.BasePath); base != "" {
		watchDirs = append(watchDirs, base)
	}
	if static := strings.TrimSpace(c.Config.Content.StaticDir); static != "" {
		watchDirs = append(watchDirs, static)
	}

	srv, err := server.New(server.Config{
		Addr:      c.Config.Server.Addr,
		OutputDir: c.Config.Generator.OutputDir,
		WatchDirs: watchDirs,
		Watch:     c.Config.Server.Watch,
		Debounce:  c.Config.Server.Debounce,
	}, c.generatorSvc, server.WithLogger(logging.ServerLogger(c.loggerProvider)))
	if err != nil {
		return fmt.Errorf("di: preview server: %w", err)
	}
	c.previewSrv = srv
	return nil
}

func (c *Container) siteMetadata() generator.SiteMetadata {
	site := c.Config.Site
	return generator.SiteMetadata{
		Title:         site.Title,
		Description:   site.Description,
		Author:        site.Author,
		BaseURL:       site.BaseURL,
		Language:      site.Language,
		Copyright:     site.Copyright,
		DefaultLocale: c.Config.Content.DefaultLocale,
	}
}

func (c *Container) parseOptions() interfaces.ParseOptions {
	md := c.Config.Markdown
	opts := interfaces.ParseOptions{
		Extensions:           md.Extensions,
		Sanitize:             md.Sanitize,
		HardWraps:            md.HardWraps,
		SafeMode:             md.SafeMode,
		HighlightStyle:       md.HighlightStyle,
		HighlightLineNumbers: md.HighlightLineNumbers,
		Math:                 markdown.NormalizeMathMode(md.Math.Mode),
	}
	if md.TOC.Enabled {
		opts.TOCDepth = md.TOC.Depth
	}
	return opts
}

func (c *Container) builderConfig() articles.BuilderConfig {
	return articles.BuilderConfig{
		DefaultLocale: c.Config.Content.DefaultLocale,
		DefaultTOC:    c.Config.Markdown.TOC.Enabled,
	}
}

// metadataValidator loads an optional JSON schema applied to article custom
// metadata. Both raw JSON schemas and the fields shorthand are accepted.
func (c *Container) metadataValidator() (*articles.MetadataValidator, error) {
	path := strings.TrimSpace(c.Config.Markdown.MetadataSchema)
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("di: read metadata schema %s: %w", path, err)
	}
	schema := map[string]any{}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("di: parse metadata schema %s: %w", path, err)
	}
	validator, err := articles.NewMetadataValidator(schema)
	if err != nil {
		return nil, fmt.Errorf("di: metadata schema %s: %w", path, err)
	}
	return validator, nil
}

// ErrCatalogDisabled is returned by EnsureCatalogSchema when the catalog
// feature is off.
var ErrCatalogDisabled = errors.New("di: catalog feature is disabled")

// EnsureCatalogSchema creates catalog tables when the feature is enabled.
func (c *Container) EnsureCatalogSchema(ctx context.Context) error {
	if c.bunDB == nil || c.catalogSvc == nil {
		return ErrCatalogDisabled
	}
	return catalog.EnsureSchema(ctx, c.bunDB)
}

// LoggerProvider exposes the configured logging provider; nil when logging
// is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Logger returns a module-scoped logger.
func (c *Container) Logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}

// MarkdownService exposes the markdown pipeline.
func (c *Container) MarkdownService() interfaces.MarkdownService {
	return c.markdownSvc
}

// ShortcodeService exposes the shortcode expander; nil when disabled.
func (c *Container) ShortcodeService() *shortcode.Service {
	return c.shortcodeSvc
}

// ThemeService exposes theme discovery and selection.
func (c *Container) ThemeService() *themes.Service {
	return c.themeSvc
}

// TemplateRenderer exposes the configured renderer.
func (c *Container) TemplateRenderer() interfaces.TemplateRenderer {
	return c.renderer
}

// ContentSource exposes the article source feeding the generator.
func (c *Container) ContentSource() generator.ContentSource {
	return c.source
}

// Generator exposes the site generator. A disabled generator is returned
// when the feature is off so callers get a typed error instead of a nil.
func (c *Container) Generator() generator.Service {
	return c.generatorSvc
}

// Catalog exposes the article catalog; nil when disabled.
func (c *Container) Catalog() *catalog.Service {
	return c.catalogSvc
}

// PreviewServer exposes the live-reload server; nil when disabled.
func (c *Container) PreviewServer() *server.Server {
	return c.previewSrv
}

// DB exposes the catalog database handle; nil when the catalog is disabled.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// RouteManager exposes the navigation route manager; nil when no route
// configuration was supplied.
func (c *Container) RouteManager() *urlkit.RouteManager {
	return c.routeManager
}

func consoleLevel(level string) console.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return console.LevelTrace
	case "debug":
		return console.LevelDebug
	case "warn", "warning":
		return console.LevelWarn
	case "error":
		return console.LevelError
	case "fatal":
		return console.LevelFatal
	default:
		return console.LevelInfo
	}
}
