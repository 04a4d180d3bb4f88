package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunSyncPopulatesCatalog(t *testing.T) {
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		t.Fatal(err)
	}
	article := `---
title: Hello World
date: 2024-03-01
status: published
tags: [go]
---

# Hello
`
	if err := os.WriteFile(filepath.Join(contentDir, "hello-world.md"), []byte(article), 0o644); err != nil {
		t.Fatal(err)
	}

	dsn := "file:" + filepath.Join(root, "blog.db")
	err := runSync([]string{
		"-content-dir", contentDir,
		"-driver", "sqlite3",
		"-dsn", dsn,
	})
	if err != nil {
		t.Fatalf("runSync: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "blog.db")); err != nil {
		t.Fatalf("expected catalog database: %v", err)
	}
}

func TestRunSyncDryRun(t *testing.T) {
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		t.Fatal(err)
	}

	dsn := "file:" + filepath.Join(root, "blog.db")
	err := runSync([]string{
		"-content-dir", contentDir,
		"-driver", "sqlite3",
		"-dsn", dsn,
		"-dry-run",
	})
	if err != nil {
		t.Fatalf("runSync dry-run: %v", err)
	}
}
