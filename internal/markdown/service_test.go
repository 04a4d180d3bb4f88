package markdown

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

func TestServiceLoad(t *testing.T) {
	svc := newTestService(t, true)

	doc, err := svc.Load(context.Background(), "en/about.md", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if doc.Locale != "en" {
		t.Fatalf("expected locale en, got %s", doc.Locale)
	}
	if len(doc.BodyHTML) == 0 {
		t.Fatalf("expected BodyHTML to be populated")
	}
	if len(doc.Checksum) == 0 {
		t.Fatalf("expected checksum to be populated")
	}
}

func TestServiceLoadDirectory_MixedLocales(t *testing.T) {
	svc := newTestService(t, true)

	docs, err := svc.LoadDirectory(context.Background(), ".", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}

	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}

	locales := map[string]int{}
	var foundBlog bool
	for _, doc := range docs {
		locales[doc.Locale]++
		if filepath.Ext(doc.FilePath) != ".md" {
			t.Fatalf("expected markdown file, got %s", doc.FilePath)
		}
		if len(doc.Checksum) == 0 {
			t.Fatalf("expected checksum set for %s", doc.FilePath)
		}
		if doc.FilePath == "en/blog/post.md" {
			foundBlog = true
		}
	}

	if locales["en"] != 2 || locales["es"] != 1 {
		t.Fatalf("unexpected locale distribution: %#v", locales)
	}
	if !foundBlog {
		t.Fatalf("expected to include en/blog/post.md")
	}
}

func TestServiceLoadDirectory_NonRecursiveOverride(t *testing.T) {
	svc := newTestService(t, true)

	no := false
	docs, err := svc.LoadDirectory(context.Background(), "en", interfaces.LoadOptions{
		Recursive: &no,
	})
	if err != nil {
		t.Fatalf("LoadDirectory override: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].FilePath != "en/about.md" {
		t.Fatalf("expected en/about.md, got %s", docs[0].FilePath)
	}
}

func TestServiceRenderDocument_FrontMatterOverrides(t *testing.T) {
	svc := newTestService(t, true)

	off := false
	doc := &interfaces.Document{
		FilePath: "inline.md",
		FrontMatter: interfaces.FrontMatter{
			Math: "mathjax",
			TOC:  &off,
		},
		Body: []byte("# Notes\n\nInline $a+b$ math.\n\n## Later\n"),
	}

	html, err := svc.RenderDocument(context.Background(), doc, interfaces.ParseOptions{TOCDepth: 3})
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if !strings.Contains(string(html), "a+b") {
		t.Fatalf("expected TeX source preserved, got %q", string(html))
	}
	if !strings.Contains(string(html), "math") {
		t.Fatalf("expected math markup enabled by front matter, got %q", string(html))
	}
	if len(doc.TOCHTML) != 0 {
		t.Fatalf("expected toc: false to disable the outline, got %q", string(doc.TOCHTML))
	}
}

func TestServiceRenderDocument_PopulatesOutline(t *testing.T) {
	svc := newTestService(t, true)

	doc := &interfaces.Document{
		FilePath: "inline.md",
		Body:     []byte("# Title\n\n## Section One\n\ntext\n\n## Section Two\n"),
	}

	if _, err := svc.RenderDocument(context.Background(), doc, interfaces.ParseOptions{TOCDepth: 3}); err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if !strings.Contains(string(doc.TOCHTML), `href="#section-one"`) {
		t.Fatalf("expected outline anchors, got %q", string(doc.TOCHTML))
	}
}

func TestServiceRender_ExpandsShortcodes(t *testing.T) {
	svc := newTestServiceWith(t, WithExpander(staticExpander{out: "**expanded**"}))

	html, err := svc.Render(context.Background(), []byte("before {{< marker >}} after"), interfaces.ParseOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(html), "<strong>expanded</strong>") {
		t.Fatalf("expected shortcode output to participate in parsing, got %q", string(html))
	}
}

func TestServiceSync_WithoutSyncer(t *testing.T) {
	svc := newTestService(t, true)

	if _, err := svc.Sync(context.Background(), ".", interfaces.SyncOptions{}); !errors.Is(err, ErrSyncUnavailable) {
		t.Fatalf("expected ErrSyncUnavailable, got %v", err)
	}
}

func TestServiceSync_DelegatesToSyncer(t *testing.T) {
	syncer := &captureSyncer{}
	svc := newTestServiceWith(t, WithSyncer(syncer))

	result, err := svc.Sync(context.Background(), ".", interfaces.SyncOptions{DeleteOrphaned: true})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if result.Created != 3 {
		t.Fatalf("expected syncer result passthrough, got %#v", result)
	}
	if len(syncer.docs) != 3 {
		t.Fatalf("expected all documents handed to the syncer, got %d", len(syncer.docs))
	}
	if !syncer.opts.DeleteOrphaned {
		t.Fatalf("expected sync options forwarded, got %#v", syncer.opts)
	}
}

type staticExpander struct {
	out string
}

func (s staticExpander) Expand(_ interfaces.ShortcodeContext, content string) (string, error) {
	return strings.ReplaceAll(content, "{{< marker >}}", s.out), nil
}

type captureSyncer struct {
	docs []*interfaces.Document
	opts interfaces.SyncOptions
}

func (c *captureSyncer) SyncDocuments(_ context.Context, docs []*interfaces.Document, opts interfaces.SyncOptions) (*interfaces.SyncResult, error) {
	c.docs = docs
	c.opts = opts
	return &interfaces.SyncResult{Created: len(docs)}, nil
}

func newTestService(tb testing.TB, recursive bool) *Service {
	tb.Helper()

	svc, err := NewService(testServiceConfig(recursive), nil)
	if err != nil {
		tb.Fatalf("NewService: %v", err)
	}
	return svc
}

func newTestServiceWith(tb testing.TB, opts ...ServiceOption) *Service {
	tb.Helper()

	svc, err := NewService(testServiceConfig(true), nil, opts...)
	if err != nil {
		tb.Fatalf("NewService: %v", err)
	}
	return svc
}

func testServiceConfig(recursive bool) Config {
	return Config{
		BasePath:      filepath.Join("testdata", "site"),
		DefaultLocale: "en",
		Locales:       []string{"en", "es"},
		LocalePatterns: map[string]string{
			"es": "es/*.md",
		},
		Pattern:   "*.md",
		Recursive: recursive,
	}
}
