package blog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	blog "github.com/goliatone/go-blog"
)

func moduleConfig(t *testing.T) blog.Config {
	t.Helper()
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := blog.DefaultConfig()
	cfg.Content.Dir = contentDir
	cfg.Content.StaticDir = ""
	cfg.Themes.BasePath = ""
	cfg.Generator.OutputDir = filepath.Join(root, "dist")
	cfg.Site.Title = "Test Blog"
	cfg.Site.BaseURL = "https://blog.example.com"
	return cfg
}

func TestModuleBuildsSite(t *testing.T) {
	cfg := moduleConfig(t)
	module, err := blog.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { module.Close() })

	article := `---
title: Hello World
date: 2024-03-01
status: published
tags: [go]
---

# Hello

First post.
`
	if err := os.WriteFile(filepath.Join(cfg.Content.Dir, "hello-world.md"), []byte(article), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := module.Generator().Build(context.Background(), blog.BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.PagesBuilt == 0 {
		t.Fatal("expected rendered pages")
	}
	if _, err := os.Stat(filepath.Join(cfg.Generator.OutputDir, "hello-world", "index.html")); err != nil {
		t.Fatalf("expected article output: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Generator.OutputDir, "sitemap.xml")); err != nil {
		t.Fatalf("expected sitemap: %v", err)
	}
}

func TestModuleAccessors(t *testing.T) {
	module, err := blog.New(moduleConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { module.Close() })

	if module.Markdown() == nil {
		t.Fatal("expected markdown service")
	}
	if module.Themes() == nil {
		t.Fatal("expected theme service")
	}
	if module.Renderer() == nil {
		t.Fatal("expected renderer")
	}
	if module.Generator() == nil {
		t.Fatal("expected generator")
	}
	if module.Catalog() != nil {
		t.Fatal("expected catalog disabled by default")
	}
	if module.Preview() != nil {
		t.Fatal("expected preview disabled by default")
	}
	if module.Logger("blog.test") == nil {
		t.Fatal("expected logger")
	}
}
