package generator

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/articles"
	"github.com/goliatone/go-blog/internal/themes"
)

type stubSource struct {
	collection *articles.Collection
	err        error
}

func (s stubSource) Articles(context.Context) (*articles.Collection, error) {
	return s.collection, s.err
}

type stubRenderer struct {
	mu       sync.Mutex
	rendered []string
	failOn   string
}

func (r *stubRenderer) Render(name string, _ any, _ ...io.Writer) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != "" && name == r.failOn {
		return "", errors.New("template exploded")
	}
	r.rendered = append(r.rendered, name)
	return "<html><!-- " + name + " --></html>", nil
}

func (r *stubRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	return r.Render(name, data, out...)
}

func (r *stubRenderer) RenderString(content string, _ any, _ ...io.Writer) (string, error) {
	return content, nil
}

func (r *stubRenderer) RegisterFilter(string, func(any, any) (any, error)) error { return nil }

func (r *stubRenderer) GlobalContext(any) error { return nil }

func (r *stubRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rendered)
}

func testArticle(locale, slug, title string, date time.Time, tags ...string) *articles.Article {
	return &articles.Article{
		Locale:    locale,
		Slug:      slug,
		Title:     title,
		Summary:   title + " summary",
		Author:    "Test Author",
		Status:    articles.StatusPublished,
		Tags:      tags,
		Date:      date,
		Checksum:  "sum-" + locale + "-" + slug,
		BodyHTML:  "<p>" + title + "</p>",
		WordCount: 100,
	}
}

func testCollection(t *testing.T) *articles.Collection {
	t.Helper()
	draft := testArticle("en", "wip", "Work In Progress", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	draft.Draft = true
	col, err := articles.NewCollection([]*articles.Article{
		testArticle("en", "hello-world", "Hello World", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), "go", "testing"),
		testArticle("en", "older-post", "Older Post", time.Date(2023, 5, 12, 9, 0, 0, 0, time.UTC), "go"),
		draft,
		testArticle("es", "hola", "Hola Mundo", time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC), "go"),
	})
	if err != nil {
		t.Fatalf("NewCollection: %v", err)
	}
	return col
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		OutputDir:       t.TempDir(),
		BaseURL:         "https://blog.example.com",
		Incremental:     true,
		CopyAssets:      true,
		GenerateSitemap: true,
		GenerateRobots:  true,
		GenerateFeeds:   true,
		DefaultLocale:   "en",
		Locales:         []string{"en", "es"},
		Theme:           "default",
		Workers:         2,
	}
}

func newTestService(t *testing.T, cfg Config, col *articles.Collection, renderer *stubRenderer) Service {
	t.Helper()
	themeSvc := themes.NewService(themes.Config{DefaultTheme: "default"})
	if err := themeSvc.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	return NewService(cfg, Dependencies{
		Source:   stubSource{collection: col},
		Themes:   themeSvc,
		Renderer: renderer,
		Site: SiteMetadata{
			Title:       "Test Blog",
			Description: "A blog for tests",
			Author:      "Test Author",
		},
	})
}

func mustExist(t *testing.T, root string, parts ...string) {
	t.Helper()
	target := filepath.Join(append([]string{root}, parts...)...)
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected %s to exist: %v", target, err)
	}
}

func mustNotExist(t *testing.T, root string, parts ...string) {
	t.Helper()
	target := filepath.Join(append([]string{root}, parts...)...)
	if _, err := os.Stat(target); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected %s to be absent, stat err=%v", target, err)
	}
}

func TestBuildGeneratesSite(t *testing.T) {
	cfg := testConfig(t)
	renderer := &stubRenderer{}
	svc := newTestService(t, cfg, testCollection(t), renderer)

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Default locale pages live at the root, Spanish under es/.
	mustExist(t, cfg.OutputDir, "hello-world", "index.html")
	mustExist(t, cfg.OutputDir, "older-post", "index.html")
	mustExist(t, cfg.OutputDir, "es", "hola", "index.html")
	mustExist(t, cfg.OutputDir, "index.html")
	mustExist(t, cfg.OutputDir, "archive", "index.html")
	mustExist(t, cfg.OutputDir, "archive", "2024", "index.html")
	mustExist(t, cfg.OutputDir, "tags", "index.html")
	mustExist(t, cfg.OutputDir, "tags", "go", "index.html")
	mustExist(t, cfg.OutputDir, "es", "index.html")

	mustExist(t, cfg.OutputDir, "sitemap.xml")
	mustExist(t, cfg.OutputDir, "robots.txt")
	mustExist(t, cfg.OutputDir, "feeds", "en.rss.xml")
	mustExist(t, cfg.OutputDir, "feeds", "en.atom.xml")
	mustExist(t, cfg.OutputDir, "feed.xml")
	mustExist(t, cfg.OutputDir, "assets", "css", "site.css")
	mustNotExist(t, cfg.OutputDir, "assets", "assets")
	mustExist(t, cfg.OutputDir, manifestFileName)

	// Drafts stay out of the output by default.
	mustNotExist(t, cfg.OutputDir, "wip")

	if result.PagesBuilt == 0 {
		t.Fatal("expected pages built")
	}
	if result.PagesSkipped != 0 {
		t.Fatalf("expected no skips on a fresh build, got %d", result.PagesSkipped)
	}
	if result.AssetsBuilt == 0 {
		t.Fatal("expected theme assets copied")
	}
	if result.FeedsBuilt == 0 {
		t.Fatal("expected feeds written")
	}
	if got := len(result.Locales); got != 2 {
		t.Fatalf("expected 2 locales, got %d", got)
	}
}

func TestBuildIncludeDrafts(t *testing.T) {
	cfg := testConfig(t)
	cfg.IncludeDrafts = true
	svc := newTestService(t, cfg, testCollection(t), &stubRenderer{})

	if _, err := svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	mustExist(t, cfg.OutputDir, "wip", "index.html")
}

func TestBuildIncrementalSkipsUnchangedPages(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg, testCollection(t), &stubRenderer{})

	first, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}

	if second.PagesBuilt != 0 {
		t.Fatalf("expected all pages skipped on rebuild, built %d", second.PagesBuilt)
	}
	if second.PagesSkipped != first.PagesBuilt {
		t.Fatalf("expected %d skips, got %d", first.PagesBuilt, second.PagesSkipped)
	}

	forced, err := svc.Build(context.Background(), BuildOptions{Force: true})
	if err != nil {
		t.Fatalf("forced build: %v", err)
	}
	if forced.PagesBuilt != first.PagesBuilt {
		t.Fatalf("forced build should rerender everything: got %d want %d", forced.PagesBuilt, first.PagesBuilt)
	}
}

func TestBuildDryRunWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	renderer := &stubRenderer{}
	svc := newTestService(t, cfg, testCollection(t), renderer)

	result, err := svc.Build(context.Background(), BuildOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !result.DryRun {
		t.Fatal("expected dry run result")
	}
	if renderer.count() == 0 {
		t.Fatal("dry run should still render pages")
	}

	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry run wrote %d entries", len(entries))
	}
}

func TestBuildSlugFilterSkipsListings(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg, testCollection(t), &stubRenderer{})

	result, err := svc.Build(context.Background(), BuildOptions{
		Locales: []string{"en"},
		Slugs:   []string{"hello-world"},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.PagesBuilt != 1 {
		t.Fatalf("expected 1 page, built %d", result.PagesBuilt)
	}
	mustExist(t, cfg.OutputDir, "hello-world", "index.html")
	mustNotExist(t, cfg.OutputDir, "archive")
	mustNotExist(t, cfg.OutputDir, "es")
}

func TestBuildFailFastStopsOnRenderError(t *testing.T) {
	cfg := testConfig(t)
	cfg.FailFast = true
	renderer := &stubRenderer{failOn: "article"}
	svc := newTestService(t, cfg, testCollection(t), renderer)

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err == nil {
		t.Fatal("expected build error")
	}
	if result == nil {
		t.Fatal("expected partial result alongside error")
	}
	if len(result.Errors) == 0 {
		t.Fatal("expected errors recorded in result")
	}
}

func TestBuildAggregatesErrorsWithoutFailFast(t *testing.T) {
	cfg := testConfig(t)
	renderer := &stubRenderer{failOn: "article"}
	svc := newTestService(t, cfg, testCollection(t), renderer)

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err == nil {
		t.Fatal("expected build error")
	}
	// Listing pages still render even though every article page failed.
	if result.PagesBuilt == 0 {
		t.Fatal("expected listing pages to render despite article failures")
	}
	if len(result.Errors) != 3 {
		t.Fatalf("expected one error per article page, got %d", len(result.Errors))
	}
}

func TestBuildArticleRendersSinglePage(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg, testCollection(t), &stubRenderer{})

	page, err := svc.BuildArticle(context.Background(), "es", "hola")
	if err != nil {
		t.Fatalf("BuildArticle: %v", err)
	}
	if page.Kind != PageKindArticle {
		t.Fatalf("expected article page, got %s", page.Kind)
	}
	if page.Locale != "es" {
		t.Fatalf("expected es locale, got %s", page.Locale)
	}
	mustExist(t, cfg.OutputDir, "es", "hola", "index.html")
	mustNotExist(t, cfg.OutputDir, "index.html")
}

func TestBuildArticleUnknownSlug(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg, testCollection(t), &stubRenderer{})

	if _, err := svc.BuildArticle(context.Background(), "en", "missing"); !errors.Is(err, articles.ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestBuildAssetsOnly(t *testing.T) {
	cfg := testConfig(t)
	renderer := &stubRenderer{}
	svc := newTestService(t, cfg, testCollection(t), renderer)

	if err := svc.BuildAssets(context.Background()); err != nil {
		t.Fatalf("BuildAssets: %v", err)
	}
	mustExist(t, cfg.OutputDir, "assets", "css", "site.css")
	mustNotExist(t, cfg.OutputDir, "index.html")
	mustNotExist(t, cfg.OutputDir, "sitemap.xml")
	if renderer.count() != 0 {
		t.Fatalf("asset build rendered %d pages", renderer.count())
	}
}

func TestBuildCopiesStaticDir(t *testing.T) {
	cfg := testConfig(t)
	static := t.TempDir()
	if err := os.WriteFile(filepath.Join(static, "favicon.ico"), []byte("icon"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(static, "fonts"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(static, "fonts", "mono.woff2"), []byte("font"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg.StaticDir = static
	svc := newTestService(t, cfg, testCollection(t), &stubRenderer{})

	if _, err := svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	mustExist(t, cfg.OutputDir, "favicon.ico")
	mustExist(t, cfg.OutputDir, "fonts", "mono.woff2")
}

func TestBuildSitemapContainsEveryPage(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg, testCollection(t), &stubRenderer{})

	if _, err := svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "sitemap.xml"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)
	for _, loc := range []string{
		"https://blog.example.com/hello-world/",
		"https://blog.example.com/es/hola/",
		"https://blog.example.com/archive/",
		"https://blog.example.com/tags/go/",
	} {
		if !strings.Contains(content, "<loc>"+loc+"</loc>") {
			t.Fatalf("sitemap missing %s:\n%s", loc, content)
		}
	}
}

func TestBuildRobotsReferencesSitemap(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg, testCollection(t), &stubRenderer{})

	if _, err := svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "robots.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "Sitemap: https://blog.example.com/sitemap.xml") {
		t.Fatalf("robots.txt missing sitemap line:\n%s", data)
	}
}

func TestCleanRemovesOutput(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg, testCollection(t), &stubRenderer{})

	if _, err := svc.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := svc.Clean(context.Background()); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("Clean left %d entries", len(entries))
	}
}

func TestCleanRefusesUnsafeOutput(t *testing.T) {
	for _, dir := range []string{"", ".", "/"} {
		cfg := testConfig(t)
		cfg.OutputDir = dir
		svc := newTestService(t, cfg, testCollection(t), &stubRenderer{})
		if err := svc.Clean(context.Background()); !errors.Is(err, ErrUnsafeOutputDir) {
			t.Fatalf("OutputDir=%q: expected ErrUnsafeOutputDir, got %v", dir, err)
		}
	}
}

func TestCleanMissingOutputDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutputDir = filepath.Join(t.TempDir(), "never-built")
	svc := newTestService(t, cfg, testCollection(t), &stubRenderer{})
	if err := svc.Clean(context.Background()); err != nil {
		t.Fatalf("Clean on missing dir: %v", err)
	}
}

func TestEngineChangeInvalidatesManifest(t *testing.T) {
	cfg := testConfig(t)
	col := testCollection(t)
	svc := newTestService(t, cfg, col, &stubRenderer{})
	first, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("first build: %v", err)
	}

	cfg.BaseURL = "https://moved.example.com"
	svc = newTestService(t, cfg, col, &stubRenderer{})
	second, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if second.PagesBuilt != first.PagesBuilt {
		t.Fatalf("changed base URL should rebuild everything: got %d want %d", second.PagesBuilt, first.PagesBuilt)
	}
}

func TestDisabledService(t *testing.T) {
	svc := NewDisabledService()
	if _, err := svc.Build(context.Background(), BuildOptions{}); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("Build: expected ErrServiceDisabled, got %v", err)
	}
	if _, err := svc.BuildArticle(context.Background(), "en", "x"); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("BuildArticle: expected ErrServiceDisabled, got %v", err)
	}
	if err := svc.Clean(context.Background()); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("Clean: expected ErrServiceDisabled, got %v", err)
	}
}
