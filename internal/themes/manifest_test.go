package themes

import (
	"strings"
	"testing"

	"github.com/goliatone/go-blog/internal/identity"
)

func TestParseManifest(t *testing.T) {
	payload := `{
		"name": "paper",
		"description": "A light reading theme",
		"version": "1.2.0",
		"author": "jane",
		"templates": {
			"article": "templates/post.html",
			"index": "templates/home.html"
		},
		"assets": {
			"base_path": "assets",
			"styles": ["css/paper.css"],
			"scripts": ["js/theme.js"]
		},
		"metadata": {"grid": "two-column"}
	}`

	manifest, err := ParseManifest(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("ParseManifest returned error: %v", err)
	}

	if manifest.Name != "paper" {
		t.Fatalf("expected name paper, got %q", manifest.Name)
	}
	if manifest.Version != "1.2.0" {
		t.Fatalf("expected version 1.2.0, got %q", manifest.Version)
	}
	if manifest.Description == nil || *manifest.Description != "A light reading theme" {
		t.Fatalf("unexpected description: %v", manifest.Description)
	}
	if got := manifest.Templates["article"]; got != "templates/post.html" {
		t.Fatalf("expected article template mapping, got %q", got)
	}
	if manifest.Assets == nil || len(manifest.Assets.Styles) != 1 {
		t.Fatalf("expected one stylesheet, got %+v", manifest.Assets)
	}
	if manifest.Metadata["grid"] != "two-column" {
		t.Fatalf("expected metadata grid entry, got %v", manifest.Metadata)
	}
}

func TestParseManifestRejectsInvalidJSON(t *testing.T) {
	if _, err := ParseManifest(strings.NewReader("{not json")); err == nil {
		t.Fatal("expected parse error for invalid JSON")
	}
}

func TestManifestToTheme(t *testing.T) {
	manifest := &Manifest{
		Name:    "paper",
		Version: "1.2.0",
		Templates: map[string]string{
			"article": "templates/post.html",
		},
	}

	theme, err := ManifestToTheme("site/themes/paper", manifest)
	if err != nil {
		t.Fatalf("ManifestToTheme returned error: %v", err)
	}

	if theme.Name != "paper" || theme.Version != "1.2.0" {
		t.Fatalf("unexpected theme record: %+v", theme)
	}
	if theme.ThemePath != "site/themes/paper" {
		t.Fatalf("expected cleaned theme path, got %q", theme.ThemePath)
	}
	if theme.ID != identity.ThemeUUID("paper") {
		t.Fatalf("expected deterministic theme ID, got %s", theme.ID)
	}
	if got := theme.Config.Templates["article"]; got != "templates/post.html" {
		t.Fatalf("expected template mapping carried into config, got %q", got)
	}
}

func TestManifestToThemeRequiresNameAndVersion(t *testing.T) {
	if _, err := ManifestToTheme("p", &Manifest{Version: "1.0.0"}); err == nil {
		t.Fatal("expected error for missing name")
	}
	if _, err := ManifestToTheme("p", &Manifest{Name: "paper"}); err == nil {
		t.Fatal("expected error for missing version")
	}
	if _, err := ManifestToTheme("p", nil); err == nil {
		t.Fatal("expected error for nil manifest")
	}
}
