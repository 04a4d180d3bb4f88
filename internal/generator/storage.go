package generator

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

type writeCategory string

const (
	categoryPage     writeCategory = "page"
	categoryAsset    writeCategory = "asset"
	categoryFeed     writeCategory = "feed"
	categorySitemap  writeCategory = "sitemap"
	categoryRobots   writeCategory = "robots"
	categoryManifest writeCategory = "manifest"
)

// writeFileRequest describes a file write routed through the artifact writer.
// Path is always relative to the build output root; writers anchor it.
type writeFileRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Locale      string
	Category    writeCategory
	ContentType string
	Checksum    string
	Metadata    map[string]string
}

// artifactWriter abstracts the destination of generated artifacts so builds can
// target the local filesystem, remote storage, or nothing at all for dry runs.
type artifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req writeFileRequest) error
}

// artifactReader is an optional storage capability. Backends that implement it
// let the generator recover the build manifest between runs; backends without
// it start every build from a fresh manifest.
type artifactReader interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

func newArtifactWriter(cfg Config, storage interfaces.ArtifactStorage, dryRun bool) artifactWriter {
	if dryRun {
		return noopWriter{}
	}
	if storage != nil {
		return &storageWriter{storage: storage, prefix: strings.Trim(strings.TrimSpace(cfg.OutputDir), "/")}
	}
	return &fsWriter{root: cfg.OutputDir}
}

// fsWriter publishes artifacts under a root directory on the local filesystem.
// Content goes through a temp file and rename so readers never observe a
// partially written page.
type fsWriter struct {
	root string
}

func (w *fsWriter) EnsureDir(_ context.Context, dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(filepath.Join(w.root, filepath.FromSlash(dir)), 0o755)
}

func (w *fsWriter) WriteFile(_ context.Context, req writeFileRequest) error {
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}

	target := filepath.Join(w.root, filepath.FromSlash(req.Path))
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".blog-write-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, req.Content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// storageWriter publishes artifacts through an ArtifactStorage backend. Keys
// are prefixed with the configured output dir so one backend can host several
// sites.
type storageWriter struct {
	storage interfaces.ArtifactStorage
	prefix  string
}

func (w *storageWriter) EnsureDir(context.Context, string) error {
	// Storage backends create intermediate paths implicitly.
	return nil
}

func (w *storageWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}
	data, err := io.ReadAll(req.Content)
	if err != nil {
		return err
	}
	return w.storage.Write(ctx, w.key(req.Path), data)
}

func (w *storageWriter) key(rel string) string {
	rel = strings.TrimLeft(strings.TrimSpace(rel), "/")
	if w.prefix == "" {
		return rel
	}
	return path.Join(w.prefix, rel)
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) WriteFile(context.Context, writeFileRequest) error { return nil }
