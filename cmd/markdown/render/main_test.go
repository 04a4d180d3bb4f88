package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunRenderRequiresInput(t *testing.T) {
	if err := runRender([]string{"-content-dir", t.TempDir()}); err == nil || !strings.Contains(err.Error(), "input is required") {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestRunRenderWritesStandalonePage(t *testing.T) {
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		t.Fatal(err)
	}
	article := `---
title: Hello World
date: 2024-03-01
status: published
---

# Hello

Body text.
`
	if err := os.WriteFile(filepath.Join(contentDir, "hello-world.md"), []byte(article), 0o644); err != nil {
		t.Fatal(err)
	}

	output := filepath.Join(root, "hello-world.html")
	err := runRender([]string{
		"-content-dir", contentDir,
		"-input", "hello-world.md",
		"-output", output,
		"-math", "mathjax",
	})
	if err != nil {
		t.Fatalf("runRender: %v", err)
	}

	raw, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("expected rendered output: %v", err)
	}
	page := string(raw)
	if !strings.Contains(page, "<!DOCTYPE html>") {
		t.Fatal("expected standalone document")
	}
	if !strings.Contains(page, "<title>Hello World</title>") {
		t.Fatal("expected title from front matter")
	}
	if !strings.Contains(page, "Body text.") {
		t.Fatal("expected rendered body")
	}
}

func TestRunRenderFragment(t *testing.T) {
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		t.Fatal(err)
	}
	article := "---\ntitle: Fragment\ndate: 2024-01-01\n---\n\nJust a paragraph.\n"
	if err := os.WriteFile(filepath.Join(contentDir, "fragment.md"), []byte(article), 0o644); err != nil {
		t.Fatal(err)
	}

	output := filepath.Join(root, "fragment.html")
	err := runRender([]string{
		"-content-dir", contentDir,
		"-input", "fragment.md",
		"-output", output,
		"-standalone=false",
	})
	if err != nil {
		t.Fatalf("runRender: %v", err)
	}

	raw, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("expected rendered output: %v", err)
	}
	if strings.Contains(string(raw), "<!DOCTYPE html>") {
		t.Fatal("expected body fragment without document shell")
	}
}
