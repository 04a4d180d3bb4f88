package themes

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	gotheme "github.com/goliatone/go-theme"
)

func writeThemePackage(t *testing.T, base, name, manifest string, files map[string]string) {
	t.Helper()

	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir theme dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	for rel, content := range files {
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func loadedService(t *testing.T, cfg Config) *Service {
	t.Helper()

	svc := NewService(cfg)
	if err := svc.LoadAll(); err != nil {
		t.Fatalf("LoadAll returned error: %v", err)
	}
	return svc
}

func TestServiceLoadAllIncludesBuiltin(t *testing.T) {
	svc := loadedService(t, Config{})

	theme, err := svc.Get(DefaultThemeName)
	if err != nil {
		t.Fatalf("expected builtin theme, got error: %v", err)
	}
	if theme.Name != DefaultThemeName {
		t.Fatalf("expected theme %q, got %q", DefaultThemeName, theme.Name)
	}
	if theme.Version == "" {
		t.Fatal("expected builtin theme to declare a version")
	}

	root, err := svc.FS(DefaultThemeName)
	if err != nil {
		t.Fatalf("FS returned error: %v", err)
	}
	for _, file := range []string{
		"templates/layout.html",
		"templates/article.html",
		"templates/index.html",
		"templates/archive.html",
		"templates/tag.html",
		"partials/header.html",
	} {
		if _, err := fs.Stat(root, file); err != nil {
			t.Fatalf("expected builtin theme file %s: %v", file, err)
		}
	}
}

func TestServiceLoadAllMissingBasePath(t *testing.T) {
	base := filepath.Join(t.TempDir(), "does-not-exist")

	svc := loadedService(t, Config{BasePath: base})

	theme, err := svc.Get(DefaultThemeName)
	if err != nil {
		t.Fatalf("expected builtin theme despite missing base path, got %v", err)
	}
	if theme.Name != DefaultThemeName {
		t.Fatalf("expected theme %q, got %q", DefaultThemeName, theme.Name)
	}
}

func TestServiceLoadAllDiskOverridesBuiltin(t *testing.T) {
	base := t.TempDir()
	writeThemePackage(t, base, "default", `{"name": "default", "version": "9.9.9"}`, map[string]string{
		"templates/article.html": "<html>{{ article.Title }}</html>",
	})

	svc := loadedService(t, Config{BasePath: base})

	theme, err := svc.Get("default")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if theme.Version != "9.9.9" {
		t.Fatalf("expected disk theme to win, got version %q", theme.Version)
	}
}

func TestServiceLoadAllSkipsDirectoriesWithoutManifest(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "drafts"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeThemePackage(t, base, "paper", `{"name": "paper", "version": "1.0.0"}`, nil)

	svc := loadedService(t, Config{BasePath: base})

	if _, err := svc.Get("paper"); err != nil {
		t.Fatalf("expected paper theme, got error: %v", err)
	}
	if _, err := svc.Get("drafts"); !errors.Is(err, ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound for manifest-less dir, got %v", err)
	}
}

func TestServiceGetUnknownTheme(t *testing.T) {
	svc := loadedService(t, Config{})

	if _, err := svc.Get("nope"); !errors.Is(err, ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
}

func TestServiceGetBeforeLoad(t *testing.T) {
	svc := NewService(Config{})
	if _, err := svc.Get("default"); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestServiceDefaultUsesConfiguredName(t *testing.T) {
	base := t.TempDir()
	writeThemePackage(t, base, "paper", `{"name": "paper", "version": "1.0.0"}`, nil)

	svc := loadedService(t, Config{BasePath: base, DefaultTheme: "paper"})

	theme, err := svc.Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}
	if theme.Name != "paper" {
		t.Fatalf("expected configured default theme, got %q", theme.Name)
	}
}

func TestServiceListOrdersByName(t *testing.T) {
	base := t.TempDir()
	writeThemePackage(t, base, "zen", `{"name": "zen", "version": "1.0.0"}`, nil)
	writeThemePackage(t, base, "paper", `{"name": "paper", "version": "1.0.0"}`, nil)

	svc := loadedService(t, Config{BasePath: base})

	list := svc.List()
	if len(list) != 3 {
		t.Fatalf("expected builtin + 2 disk themes, got %d", len(list))
	}
	if list[0].Name != "default" || list[1].Name != "paper" || list[2].Name != "zen" {
		t.Fatalf("unexpected theme order: %s, %s, %s", list[0].Name, list[1].Name, list[2].Name)
	}
}

func TestServiceTemplatePathUsesManifestMapping(t *testing.T) {
	base := t.TempDir()
	writeThemePackage(t, base, "paper",
		`{"name": "paper", "version": "1.0.0", "templates": {"article": "layouts/post.html"}}`,
		map[string]string{"layouts/post.html": "<html></html>"})

	svc := loadedService(t, Config{BasePath: base})

	got, err := svc.TemplatePath("paper", "article")
	if err != nil {
		t.Fatalf("TemplatePath returned error: %v", err)
	}
	if got != "layouts/post.html" {
		t.Fatalf("expected manifest mapping, got %q", got)
	}
}

func TestServiceTemplatePathFallsBackToConvention(t *testing.T) {
	base := t.TempDir()
	writeThemePackage(t, base, "paper", `{"name": "paper", "version": "1.0.0"}`, map[string]string{
		"templates/article.html": "<html></html>",
	})

	svc := loadedService(t, Config{BasePath: base})

	got, err := svc.TemplatePath("paper", "article")
	if err != nil {
		t.Fatalf("TemplatePath returned error: %v", err)
	}
	if got != "templates/article.html" {
		t.Fatalf("expected conventional path, got %q", got)
	}
}

func TestServiceTemplatePathMissingTemplate(t *testing.T) {
	base := t.TempDir()
	writeThemePackage(t, base, "paper", `{"name": "paper", "version": "1.0.0"}`, nil)

	svc := loadedService(t, Config{BasePath: base})

	if _, err := svc.TemplatePath("paper", "archive"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestServiceTemplatePathMappedFileMissing(t *testing.T) {
	base := t.TempDir()
	writeThemePackage(t, base, "paper",
		`{"name": "paper", "version": "1.0.0", "templates": {"article": "layouts/post.html"}}`, nil)

	svc := loadedService(t, Config{BasePath: base})

	if _, err := svc.TemplatePath("paper", "article"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound for dangling mapping, got %v", err)
	}
}

func TestServiceEmptyNameResolvesDefaultTheme(t *testing.T) {
	svc := loadedService(t, Config{})

	theme, err := svc.Get("")
	if err != nil {
		t.Fatalf("Get with empty name returned error: %v", err)
	}
	if theme.Name != DefaultThemeName {
		t.Fatalf("expected default theme, got %q", theme.Name)
	}
}

func TestCollectAssetsFromThemeConfig(t *testing.T) {
	basePath := "assets"
	theme := &Theme{
		Name: "paper",
		Config: ThemeConfig{
			Assets: &ThemeAssets{
				BasePath: &basePath,
				Styles:   []string{"css/site.css"},
				Scripts:  []string{"js/app.js", " "},
			},
		},
	}

	got := CollectAssets(theme, nil)
	want := []string{"assets/css/site.css", "assets/js/app.js"}
	if len(got) != len(want) {
		t.Fatalf("expected %d assets, got %v", len(want), got)
	}
	for i, asset := range want {
		if got[i] != asset {
			t.Fatalf("expected asset %q at %d, got %q", asset, i, got[i])
		}
	}
}

func TestCollectAssetsPrefersManifestFiles(t *testing.T) {
	theme := &Theme{
		Name: "paper",
		Config: ThemeConfig{
			Assets: &ThemeAssets{Styles: []string{"css/ignored.css"}},
		},
	}
	selection := &gotheme.Selection{}
	selection.Manifest = &gotheme.Manifest{}
	selection.Manifest.Assets.Files = map[string]string{
		"style": "/assets/css/site.css",
		"logo":  "assets/img/logo.svg",
	}

	got := CollectAssets(theme, selection)
	want := []string{"assets/css/site.css", "assets/img/logo.svg"}
	if len(got) != len(want) {
		t.Fatalf("expected %d assets, got %v", len(want), got)
	}
	for i, asset := range want {
		if got[i] != asset {
			t.Fatalf("expected asset %q at %d, got %q", asset, i, got[i])
		}
	}
}

func TestDetectAssetContentType(t *testing.T) {
	cases := map[string]string{
		"css/site.css":  "text/css",
		"js/app.js":     "application/javascript",
		"img/logo.svg":  "image/svg+xml",
		"img/photo.jpg": "image/jpeg",
		"data.bin":      "application/octet-stream",
	}
	for asset, want := range cases {
		if got := DetectAssetContentType(asset); got != want {
			t.Fatalf("expected %s for %s, got %s", want, asset, got)
		}
	}
}

func TestFileSystemAssetResolverRejectsTraversal(t *testing.T) {
	resolver := FileSystemAssetResolver{FS: os.DirFS(t.TempDir())}

	if _, err := resolver.Open("../escape.css"); err == nil {
		t.Fatal("expected traversal error")
	}
	if _, err := resolver.Open(""); err == nil {
		t.Fatal("expected error for empty asset path")
	}
}
