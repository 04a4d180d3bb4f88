package blog

import (
	"context"

	"github.com/goliatone/go-blog/internal/catalog"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/generator"
	"github.com/goliatone/go-blog/internal/server"
	"github.com/goliatone/go-blog/internal/shortcode"
	"github.com/goliatone/go-blog/internal/themes"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// BuildOptions exports per-build overrides for the generator.
type BuildOptions = generator.BuildOptions

// BuildResult exports the summary a build returns.
type BuildResult = generator.BuildResult

// CatalogService exports the article catalog.
type CatalogService = *catalog.Service

// ThemeService exports theme discovery and selection.
type ThemeService = *themes.Service

// ShortcodeService exports the shortcode expander.
type ShortcodeService = *shortcode.Service

// PreviewServer exports the live-reload preview server.
type PreviewServer = *server.Server

// Module is the top level blog runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a blog module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Markdown returns the markdown pipeline.
func (m *Module) Markdown() interfaces.MarkdownService {
	return m.container.MarkdownService()
}

// Shortcodes returns the configured shortcode service, nil when disabled.
func (m *Module) Shortcodes() ShortcodeService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.ShortcodeService()
}

// Themes returns the configured theme service.
func (m *Module) Themes() ThemeService {
	return m.container.ThemeService()
}

// Renderer returns the configured template renderer.
func (m *Module) Renderer() interfaces.TemplateRenderer {
	return m.container.TemplateRenderer()
}

// Generator returns the configured generator service.
func (m *Module) Generator() GeneratorService {
	return m.container.Generator()
}

// Catalog returns the article catalog, nil when the feature is disabled.
func (m *Module) Catalog() CatalogService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Catalog()
}

// Preview returns the live-reload server, nil when the feature is disabled.
func (m *Module) Preview() PreviewServer {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.PreviewServer()
}

// Logger returns a module-scoped logger.
func (m *Module) Logger(module string) interfaces.Logger {
	return m.container.Logger(module)
}

// EnsureCatalogSchema creates catalog tables when the feature is enabled.
func (m *Module) EnsureCatalogSchema(ctx context.Context) error {
	return m.container.EnsureCatalogSchema(ctx)
}

// Close releases resources owned by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
