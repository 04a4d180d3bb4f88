package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-blog/internal/articles"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/themes"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled  = errors.New("generator: service disabled")
	errRendererRequired = errors.New("generator: template renderer is required")
	// ErrUnsafeOutputDir guards Clean against escaping the configured output root.
	ErrUnsafeOutputDir = errors.New("generator: refusing to clean outside output directory")
)

const defaultFeedLimit = 100

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	BuildArticle(ctx context.Context, locale, slug string) (*RenderedPage, error)
	BuildAssets(ctx context.Context) error
	BuildSitemap(ctx context.Context) error
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir       string
	BaseURL         string
	CleanBuild      bool
	Incremental     bool
	CopyAssets      bool
	GenerateSitemap bool
	GenerateRobots  bool
	GenerateFeeds   bool
	// FailFast aborts the build on the first page error; otherwise errors
	// aggregate as diagnostics and the remaining pages still render.
	FailFast      bool
	IncludeDrafts bool
	Workers       int
	FeedLimit     int
	DefaultLocale string
	Locales       []string
	Theme         string
	Variant       string
	Template      string
	MathMode      string
	StaticDir     string
}

// ContentSource supplies the article collection a build renders.
type ContentSource interface {
	Articles(ctx context.Context) (*articles.Collection, error)
}

// Dependencies lists the collaborators required by the generator.
type Dependencies struct {
	Source   ContentSource
	Themes   *themes.Service
	Renderer interfaces.TemplateRenderer
	Storage  interfaces.ArtifactStorage
	Site     SiteMetadata
	Logger   interfaces.Logger
	Clock    interfaces.Clock
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	Locales    []string
	Slugs      []string
	DryRun     bool
	Force      bool
	AssetsOnly bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	PagesBuilt    int
	PagesSkipped  int
	AssetsBuilt   int
	AssetsSkipped int
	FeedsBuilt    int
	Locales       []string
	Duration      time.Duration
	Rendered      []RenderedPage
	Diagnostics   []RenderDiagnostic
	Errors        []error
	DryRun        bool
}

// NewService wires a generator implementation with the provided configuration
// and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	now := time.Now
	if deps.Clock != nil {
		now = deps.Clock.Now
	}
	return &service{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		now:    now,
	}
}

// NewDisabledService returns a Service that fails every operation with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	now    func() time.Time
}

type disabledService struct{}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}

	start := time.Now()
	buildCtx, err := s.loadContext(ctx, opts)
	if err != nil {
		return nil, err
	}

	if s.cfg.CleanBuild && !opts.DryRun && !opts.AssetsOnly {
		if err := s.Clean(ctx); err != nil {
			return nil, err
		}
	}

	siteMeta := s.siteMetadata(buildCtx)

	result := &BuildResult{
		Locales: make([]string, 0, len(buildCtx.Locales)),
		DryRun:  opts.DryRun,
	}
	for _, spec := range buildCtx.Locales {
		result.Locales = append(result.Locales, spec.Code)
	}

	writer := newArtifactWriter(s.cfg, s.deps.Storage, opts.DryRun)

	manifest := s.loadManifest(ctx)
	if manifest.resetIfEngineChanged(s.engineHash(buildCtx)) {
		s.logger.Debug("build inputs changed, incremental state reset")
	}
	if opts.Force {
		manifest.Pages = map[string]manifestPage{}
		manifest.Assets = map[string]manifestAsset{}
	}

	var errorsSlice []error

	if !opts.AssetsOnly {
		rendered, diagnostics, renderErrs := s.renderPages(ctx, writer, siteMeta, buildCtx, manifest)
		result.Rendered = rendered
		result.Diagnostics = diagnostics
		errorsSlice = append(errorsSlice, renderErrs...)
		for _, diag := range diagnostics {
			switch {
			case diag.Err != nil:
			case diag.Skipped:
				result.PagesSkipped++
			default:
				result.PagesBuilt++
			}
		}
	}

	proceed := len(errorsSlice) == 0 || !s.cfg.FailFast

	if proceed && s.cfg.CopyAssets {
		summary, err := s.copyAssets(ctx, writer, buildCtx, manifest)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		} else {
			result.AssetsBuilt += summary.Built
			result.AssetsSkipped += summary.Skipped
		}
	}

	if proceed && !opts.AssetsOnly {
		if s.cfg.GenerateFeeds {
			feeds, err := s.writeFeeds(ctx, writer, siteMeta, buildCtx, s.buildFeedDocuments(buildCtx))
			if err != nil {
				errorsSlice = append(errorsSlice, err)
			}
			result.FeedsBuilt = feeds
		}
		if s.cfg.GenerateSitemap {
			sitemapPages := s.mergeRenderedForSitemap(buildCtx, result.Rendered, manifest)
			if err := s.writeSitemap(ctx, writer, buildCtx, sitemapPages); err != nil {
				errorsSlice = append(errorsSlice, err)
			}
		}
		if s.cfg.GenerateRobots {
			if err := s.writeRobots(ctx, writer, siteMeta); err != nil {
				errorsSlice = append(errorsSlice, err)
			}
		}
	}

	if !opts.DryRun && !opts.AssetsOnly && len(errorsSlice) == 0 {
		manifest.GeneratedAt = buildCtx.GeneratedAt
		s.recordRendered(manifest, buildCtx, result.Rendered)
		if fullBuild(opts) {
			manifest.prunePages(pageKeySet(manifest, buildCtx))
		}
		if err := s.persistManifest(ctx, writer, manifest); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	result.Duration = time.Since(start)
	s.logger.Info("site build finished",
		"pages_built", result.PagesBuilt,
		"pages_skipped", result.PagesSkipped,
		"assets_built", result.AssetsBuilt,
		"feeds_built", result.FeedsBuilt,
		"errors", len(errorsSlice),
		"dry_run", opts.DryRun,
		"duration_ms", result.Duration.Milliseconds(),
	)

	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

// renderPages runs the worker pool over the build's page list. Jobs are
// grouped by locale; with FailFast the first error cancels the remaining
// work, otherwise failures accumulate as diagnostics.
func (s *service) renderPages(
	ctx context.Context,
	writer artifactWriter,
	siteMeta SiteMetadata,
	buildCtx *BuildContext,
	manifest *buildManifest,
) ([]RenderedPage, []RenderDiagnostic, []error) {
	var (
		mu          sync.Mutex
		rendered    []RenderedPage
		diagnostics []RenderDiagnostic
		errorsSlice []error
	)

	renderCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		diagnostics = append(diagnostics, outcome.diagnostic)
		if outcome.err != nil {
			errorsSlice = append(errorsSlice, outcome.err)
			if s.cfg.FailFast {
				cancel()
			}
			return
		}
		if !outcome.skipped {
			rendered = append(rendered, outcome.page)
		}
	}

	workerCount := s.effectiveWorkerCount(len(buildCtx.Locales))
	if workerCount <= 1 || len(buildCtx.Pages) <= 1 {
		for _, page := range buildCtx.Pages {
			if renderCtx.Err() != nil {
				break
			}
			collect(s.renderPage(renderCtx, writer, siteMeta, buildCtx, page, manifest))
		}
		return rendered, diagnostics, errorsSlice
	}

	grouped := groupPagesByLocale(buildCtx.Pages)
	jobs := make(chan []*PageData)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				for _, page := range batch {
					if renderCtx.Err() != nil {
						return
					}
					collect(s.renderPage(renderCtx, writer, siteMeta, buildCtx, page, manifest))
				}
			}
		}()
	}

	for _, locale := range buildCtx.Locales {
		select {
		case <-renderCtx.Done():
		case jobs <- grouped[locale.Code]:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		mu.Lock()
		errorsSlice = append(errorsSlice, err)
		mu.Unlock()
	}
	return rendered, diagnostics, errorsSlice
}

func (s *service) renderPage(
	ctx context.Context,
	writer artifactWriter,
	siteMeta SiteMetadata,
	buildCtx *BuildContext,
	data *PageData,
	manifest *buildManifest,
) renderOutcome {
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{
			Slug:     data.Slug,
			Locale:   data.Locale.Code,
			Route:    data.Route,
			Template: data.Template,
		},
	}

	if err := ctx.Err(); err != nil {
		outcome.err = err
		outcome.diagnostic.Err = err
		return outcome
	}

	output := buildOutputPath(data.Route, data.Locale.Code, buildCtx.DefaultLocale)

	if s.cfg.Incremental && !buildCtx.Options.Force {
		if manifest.shouldSkipPage(data.Locale.Code, data.Slug, data.Metadata.Hash, output) {
			outcome.skipped = true
			outcome.diagnostic.Skipped = true
			return outcome
		}
	}

	templateCtx := s.templateContext(siteMeta, buildCtx, data)

	start := time.Now()
	html, err := s.deps.Renderer.Render(data.Template, templateCtx.Map())
	outcome.diagnostic.Duration = time.Since(start)
	if err != nil {
		wrapped := fmt.Errorf("generator: render %s page %s (%s): %w", data.Kind, data.Slug, data.Locale.Code, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	checksum := computeHashFromString(html)
	if err := writer.WriteFile(ctx, writeFileRequest{
		Path:        output,
		Content:     strings.NewReader(html),
		Size:        int64(len(html)),
		Locale:      data.Locale.Code,
		Category:    categoryPage,
		ContentType: "text/html; charset=utf-8",
		Checksum:    checksum,
		Metadata: map[string]string{
			"kind":     string(data.Kind),
			"route":    data.Route,
			"template": data.Template,
		},
	}); err != nil {
		wrapped := fmt.Errorf("generator: write page %s (%s): %w", data.Slug, data.Locale.Code, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	outcome.page = RenderedPage{
		Kind:     data.Kind,
		Slug:     data.Slug,
		Locale:   data.Locale.Code,
		Route:    data.Route,
		Output:   output,
		Template: data.Template,
		HTML:     html,
		Metadata: data.Metadata,
		Duration: outcome.diagnostic.Duration,
		Checksum: checksum,
	}
	return outcome
}

type assetCopySummary struct {
	Built   int
	Skipped int
}

// copyAssets publishes theme assets under assets/ and the site static
// directory at the output root.
func (s *service) copyAssets(
	ctx context.Context,
	writer artifactWriter,
	buildCtx *BuildContext,
	manifest *buildManifest,
) (assetCopySummary, error) {
	summary := assetCopySummary{}

	if buildCtx.Theme != nil && len(buildCtx.Assets) > 0 {
		root, err := s.deps.Themes.FS(buildCtx.Theme.Name)
		if err != nil {
			return summary, err
		}
		resolver := themes.FileSystemAssetResolver{FS: root}
		for _, asset := range buildCtx.Assets {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			data, err := readAsset(resolver, asset)
			if err != nil {
				return summary, err
			}
			// CollectAssets paths are theme-package relative (they already
			// carry the theme's asset base path), publish them verbatim so
			// the URLs templates emit resolve against the output tree.
			output := path.Clean(asset)
			checksum := computeHash(data)
			if s.cfg.Incremental && !buildCtx.Options.Force &&
				manifest.shouldSkipAsset(buildCtx.Theme.Name, asset, checksum, output) {
				summary.Skipped++
				continue
			}
			if err := s.writeAsset(ctx, writer, buildCtx.Theme.Name, asset, output, data, manifest); err != nil {
				return summary, err
			}
			summary.Built++
		}
	}

	if static := strings.TrimSpace(s.cfg.StaticDir); static != "" {
		built, skipped, err := s.copyStaticDir(ctx, writer, buildCtx, manifest, static)
		if err != nil {
			return summary, err
		}
		summary.Built += built
		summary.Skipped += skipped
	}

	return summary, nil
}

const staticManifestTheme = "static"

func (s *service) copyStaticDir(
	ctx context.Context,
	writer artifactWriter,
	buildCtx *BuildContext,
	manifest *buildManifest,
	dir string,
) (int, int, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("generator: stat static dir: %w", err)
	}

	built, skipped := 0, 0
	root := os.DirFS(dir)
	err := fs.WalkDir(root, ".", func(entry string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && entry != "." {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := fs.ReadFile(root, entry)
		if err != nil {
			return fmt.Errorf("generator: read static file %s: %w", entry, err)
		}
		output := filepath.ToSlash(entry)
		checksum := computeHash(data)
		if s.cfg.Incremental && !buildCtx.Options.Force &&
			manifest.shouldSkipAsset(staticManifestTheme, entry, checksum, output) {
			skipped++
			return nil
		}
		if err := s.writeAsset(ctx, writer, staticManifestTheme, entry, output, data, manifest); err != nil {
			return err
		}
		built++
		return nil
	})
	if err != nil {
		return built, skipped, err
	}
	return built, skipped, nil
}

func (s *service) writeAsset(
	ctx context.Context,
	writer artifactWriter,
	theme, source, output string,
	data []byte,
	manifest *buildManifest,
) error {
	checksum := computeHash(data)
	if err := writer.WriteFile(ctx, writeFileRequest{
		Path:        output,
		Content:     strings.NewReader(string(data)),
		Size:        int64(len(data)),
		Category:    categoryAsset,
		ContentType: themes.DetectAssetContentType(output),
		Checksum:    checksum,
		Metadata: map[string]string{
			"theme":  theme,
			"source": source,
		},
	}); err != nil {
		return fmt.Errorf("generator: write asset %s: %w", output, err)
	}
	manifest.setAsset(manifestAsset{
		Key:      manifest.assetKey(theme, source),
		Theme:    theme,
		Source:   source,
		Output:   output,
		Checksum: checksum,
		Size:     int64(len(data)),
		CopiedAt: s.now().UTC(),
	})
	return nil
}

func readAsset(resolver themes.FileSystemAssetResolver, asset string) ([]byte, error) {
	reader, err := resolver.Open(asset)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("generator: read asset %s: %w", asset, err)
	}
	return data, nil
}

// mergeRenderedForSitemap combines this run's rendered pages with manifest
// entries for pages skipped by the incremental check, so the sitemap still
// lists every page of the site.
func (s *service) mergeRenderedForSitemap(
	buildCtx *BuildContext,
	rendered []RenderedPage,
	manifest *buildManifest,
) []RenderedPage {
	renderedByKey := make(map[string]RenderedPage, len(rendered))
	for _, page := range rendered {
		renderedByKey[manifest.pageKey(page.Locale, page.Slug)] = page
	}

	sitemap := make([]RenderedPage, 0, len(buildCtx.Pages))
	for _, data := range buildCtx.Pages {
		key := manifest.pageKey(data.Locale.Code, data.Slug)
		if page, ok := renderedByKey[key]; ok {
			sitemap = append(sitemap, page)
			continue
		}
		if entry, ok := manifest.lookupPage(data.Locale.Code, data.Slug); ok {
			sitemap = append(sitemap, RenderedPage{
				Kind:     PageKind(entry.Kind),
				Slug:     entry.Slug,
				Locale:   entry.Locale,
				Route:    entry.Route,
				Output:   entry.Output,
				Template: entry.Template,
				Checksum: entry.Checksum,
				Metadata: DependencyMetadata{
					Hash:         entry.Hash,
					LastModified: entry.LastModified,
				},
			})
			continue
		}
		sitemap = append(sitemap, RenderedPage{
			Kind:     data.Kind,
			Slug:     data.Slug,
			Locale:   data.Locale.Code,
			Route:    data.Route,
			Template: data.Template,
			Metadata: data.Metadata,
		})
	}
	return sitemap
}

func (s *service) siteMetadata(buildCtx *BuildContext) SiteMetadata {
	meta := s.deps.Site
	meta.BaseURL = strings.TrimRight(strings.TrimSpace(s.cfg.BaseURL), "/")
	meta.DefaultLocale = buildCtx.DefaultLocale
	meta.Locales = append([]LocaleSpec(nil), buildCtx.Locales...)
	if meta.Metadata == nil {
		meta.Metadata = map[string]any{}
	}
	return meta
}

// engineHash fingerprints the rendering inputs page hashes cannot see.
// A changed fingerprint invalidates every incremental manifest entry.
func (s *service) engineHash(buildCtx *BuildContext) string {
	parts := []string{
		strings.TrimRight(s.cfg.BaseURL, "/"),
		s.cfg.DefaultLocale,
		s.cfg.Theme,
		s.cfg.Variant,
		s.cfg.Template,
		s.cfg.MathMode,
		strconv.FormatBool(s.cfg.IncludeDrafts),
	}
	if buildCtx.Theme != nil {
		parts = append(parts, buildCtx.Theme.Name, buildCtx.Theme.Version)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// loadManifest reads the previous build manifest. A missing or unreadable
// manifest falls back to an empty one and the build starts from scratch.
func (s *service) loadManifest(ctx context.Context) *buildManifest {
	var (
		data []byte
		err  error
	)
	if reader, ok := s.deps.Storage.(artifactReader); ok && s.deps.Storage != nil {
		data, err = reader.Read(ctx, path.Join(strings.Trim(s.cfg.OutputDir, "/"), manifestFileName))
	} else {
		data, err = os.ReadFile(filepath.Join(s.cfg.OutputDir, manifestFileName))
	}
	if err != nil {
		return newBuildManifest()
	}
	manifest, err := parseManifest(data)
	if err != nil {
		s.logger.Warn("manifest unreadable, rebuilding from scratch", "error", err)
		return newBuildManifest()
	}
	return manifest
}

func (s *service) persistManifest(ctx context.Context, writer artifactWriter, manifest *buildManifest) error {
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return writer.WriteFile(ctx, writeFileRequest{
		Path:        manifestFileName,
		Content:     strings.NewReader(string(data)),
		Size:        int64(len(data)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
		Metadata: map[string]string{
			"version": strconv.Itoa(manifest.Version),
		},
	})
}

func (s *service) recordRendered(manifest *buildManifest, buildCtx *BuildContext, rendered []RenderedPage) {
	for _, page := range rendered {
		if strings.TrimSpace(page.Checksum) == "" {
			continue
		}
		manifest.setPage(manifestPage{
			Slug:         page.Slug,
			Locale:       page.Locale,
			Kind:         string(page.Kind),
			Route:        page.Route,
			Output:       page.Output,
			Template:     page.Template,
			Hash:         page.Metadata.Hash,
			Checksum:     page.Checksum,
			LastModified: page.Metadata.LastModified,
			RenderedAt:   buildCtx.GeneratedAt,
		})
	}
}

// pageKeySet lists the manifest keys this build knows about, used to prune
// entries for pages that no longer exist.
func pageKeySet(manifest *buildManifest, buildCtx *BuildContext) map[string]struct{} {
	keys := make(map[string]struct{}, len(buildCtx.Pages))
	for _, page := range buildCtx.Pages {
		keys[manifest.pageKey(page.Locale.Code, page.Slug)] = struct{}{}
	}
	return keys
}

func fullBuild(opts BuildOptions) bool {
	return len(opts.Slugs) == 0 && len(opts.Locales) == 0 && !opts.AssetsOnly
}

func (s *service) writeSitemap(
	ctx context.Context,
	writer artifactWriter,
	buildCtx *BuildContext,
	pages []RenderedPage,
) error {
	content := buildSitemap(strings.TrimRight(s.cfg.BaseURL, "/"), pages, buildCtx.GeneratedAt)
	return writer.WriteFile(ctx, writeFileRequest{
		Path:        "sitemap.xml",
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categorySitemap,
		ContentType: "application/xml",
		Checksum:    computeHashFromString(content),
		Metadata: map[string]string{
			"generated_at": buildCtx.GeneratedAt.UTC().Format(time.RFC3339),
		},
	})
}

func (s *service) writeRobots(ctx context.Context, writer artifactWriter, siteMeta SiteMetadata) error {
	content := buildRobots(siteMeta.BaseURL, s.cfg.GenerateSitemap)
	return writer.WriteFile(ctx, writeFileRequest{
		Path:        "robots.txt",
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categoryRobots,
		ContentType: "text/plain; charset=utf-8",
		Checksum:    computeHashFromString(content),
	})
}

// BuildArticle renders and publishes a single article page.
func (s *service) BuildArticle(ctx context.Context, locale, slug string) (*RenderedPage, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = s.cfg.DefaultLocale
	}

	opts := BuildOptions{Locales: []string{locale}, Slugs: []string{slug}}
	buildCtx, err := s.loadContext(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(buildCtx.Pages) == 0 {
		return nil, fmt.Errorf("generator: %w: %s/%s", articles.ErrArticleNotFound, locale, slug)
	}

	writer := newArtifactWriter(s.cfg, s.deps.Storage, false)
	outcome := s.renderPage(ctx, writer, s.siteMetadata(buildCtx), buildCtx, buildCtx.Pages[0], newBuildManifest())
	if outcome.err != nil {
		return nil, outcome.err
	}
	return &outcome.page, nil
}

// BuildAssets copies theme and static assets without rendering any pages.
func (s *service) BuildAssets(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_, err := s.Build(ctx, BuildOptions{AssetsOnly: true})
	return err
}

// BuildSitemap regenerates sitemap.xml from the current content, using the
// manifest for pages that were not rendered in this process.
func (s *service) BuildSitemap(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	buildCtx, err := s.loadContext(ctx, BuildOptions{})
	if err != nil {
		return err
	}
	writer := newArtifactWriter(s.cfg, s.deps.Storage, false)
	manifest := s.loadManifest(ctx)
	pages := s.mergeRenderedForSitemap(buildCtx, nil, manifest)
	return s.writeSitemap(ctx, writer, buildCtx, pages)
}

// Clean removes the output directory contents. It refuses to operate outside
// the configured output root and tolerates a missing directory.
func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	output := strings.TrimSpace(s.cfg.OutputDir)
	if output == "" || output == "." || output == "/" {
		return ErrUnsafeOutputDir
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("generator: resolve output dir: %w", err)
	}
	if abs == string(filepath.Separator) {
		return ErrUnsafeOutputDir
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("generator: read output dir: %w", err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(abs, entry.Name())
		if !strings.HasPrefix(target, abs+string(filepath.Separator)) {
			return ErrUnsafeOutputDir
		}
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("generator: clean %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (s *service) effectiveWorkerCount(localeCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}
	if localeCount > 0 && workers > localeCount {
		return localeCount
	}
	return workers
}

func groupPagesByLocale(pages []*PageData) map[string][]*PageData {
	grouped := make(map[string][]*PageData, len(pages))
	for _, page := range pages {
		if page == nil {
			continue
		}
		grouped[page.Locale.Code] = append(grouped[page.Locale.Code], page)
	}
	return grouped
}

func ensureDir(ctx context.Context, writer artifactWriter, cache map[string]struct{}, dir string) error {
	dir = strings.Trim(dir, " ")
	if dir == "" || dir == "." {
		return nil
	}
	if cache != nil {
		if _, ok := cache[dir]; ok {
			return nil
		}
		cache[dir] = struct{}{}
	}
	return writer.EnsureDir(ctx, dir)
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildArticle(context.Context, string, string) (*RenderedPage, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildAssets(context.Context) error {
	return ErrServiceDisabled
}

func (disabledService) BuildSitemap(context.Context) error {
	return ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
