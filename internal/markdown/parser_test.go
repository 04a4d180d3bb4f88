package markdown

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

func TestParseFrontMatter(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")

	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if fm.Title != "Sample Document" {
		t.Fatalf("FrontMatter Title mismatch, got %q", fm.Title)
	}
	if fm.Slug != "sample-document" {
		t.Fatalf("FrontMatter Slug mismatch, got %q", fm.Slug)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "blog" {
		t.Fatalf("FrontMatter Tags mismatch: %#v", fm.Tags)
	}
	if fm.Custom["custom_flag"] != true {
		t.Fatalf("FrontMatter Custom flag missing: %#v", fm.Custom)
	}
	if fm.Raw["summary"] != "Sample summary goes here" {
		t.Fatalf("FrontMatter Raw summary missing: %#v", fm.Raw)
	}
	if len(body) == 0 || !strings.Contains(string(body), "# Sample Document") {
		t.Fatalf("Markdown body not returned correctly: %q", string(body))
	}
}

func TestParseFrontMatter_NoEnvelope(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte("# Bare Document\n\nNo envelope here.\n"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "" {
		t.Fatalf("expected empty front matter, got title %q", fm.Title)
	}
	if !strings.Contains(string(body), "# Bare Document") {
		t.Fatalf("expected body to pass through, got %q", string(body))
	}
}

func TestParseFrontMatter_MathAndTOCOverrides(t *testing.T) {
	src := []byte("---\ntitle: Notes\nmath: katex\ntoc: false\n---\n\n# Notes\n")

	fm, _, err := ParseFrontMatter(src)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Math != "katex" {
		t.Fatalf("expected math override katex, got %q", fm.Math)
	}
	if fm.TOC == nil || *fm.TOC {
		t.Fatalf("expected toc override false, got %#v", fm.TOC)
	}
}

func TestBuildDocument(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")
	modified := time.Now().UTC()

	doc, err := BuildDocument("testdata/basic.md", "en", data, modified)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}

	if doc.FilePath != "testdata/basic.md" {
		t.Fatalf("expected FilePath to be set, got %q", doc.FilePath)
	}
	if doc.Locale != "en" {
		t.Fatalf("expected Locale to be en, got %q", doc.Locale)
	}
	if doc.LastModified != modified {
		t.Fatalf("expected LastModified to equal the provided timestamp")
	}
	if len(doc.Body) == 0 {
		t.Fatalf("expected Body to contain markdown content")
	}
}

func TestGoldmarkParser_Parse(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Parse([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Heading</h1>") {
		t.Fatalf("expected rendered HTML to include <h1>Heading</h1>, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
}

func TestGoldmarkParser_ParseWithOptions(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.ParseWithOptions([]byte("line one\nline two"), interfaces.ParseOptions{
		HardWraps: true,
	})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}

	if !strings.Contains(string(html), "line one<br>") {
		t.Fatalf("expected hard wraps in HTML output, got %q", string(html))
	}
}

func TestGoldmarkParser_MathPassthrough(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{Math: MathJax})

	html, err := parser.Parse([]byte("Euler told us $e^{i\\pi}+1=0$ long ago."))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "math") {
		t.Fatalf("expected math span in output, got %q", got)
	}
	if !strings.Contains(got, `e^{i\pi}+1=0`) {
		t.Fatalf("expected TeX source preserved for client-side rendering, got %q", got)
	}
}

func TestGoldmarkParser_MathDisabledLeavesDelimiters(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{Math: MathNone})

	html, err := parser.Parse([]byte("Costs $5 and $10 today."))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "$5 and $10") {
		t.Fatalf("expected dollar signs untouched when math is off, got %q", got)
	}
}

func TestGoldmarkParser_HighlightedCodeBlock(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{HighlightStyle: "monokai"})

	src := "```go\nfunc main() {}\n```\n"
	html, err := parser.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<pre") || !strings.Contains(got, "style=") {
		t.Fatalf("expected inline-styled highlighted block, got %q", got)
	}
}

func TestGoldmarkParser_NoHighlightWithoutStyle(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	src := "```go\nfunc main() {}\n```\n"
	html, err := parser.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, `class="language-go"`) {
		t.Fatalf("expected plain fenced block with language class, got %q", got)
	}
}

func TestGoldmarkParser_Outline(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	src := []byte("# Title\n\n## Alpha\n\n### Beta\n\n## Gamma\n")
	outline, err := parser.Outline(src, interfaces.ParseOptions{TOCDepth: 2})
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}

	got := string(outline)
	if !strings.Contains(got, `href="#alpha"`) || !strings.Contains(got, `href="#gamma"`) {
		t.Fatalf("expected heading anchors in outline, got %q", got)
	}
	if strings.Contains(got, "Beta") {
		t.Fatalf("expected depth limit to exclude level three headings, got %q", got)
	}
}

func TestGoldmarkParser_OutlineAnchorsMatchBody(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	src := []byte("## Getting Started\n\ntext\n")
	body, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outline, err := parser.Outline(src, interfaces.ParseOptions{TOCDepth: 3})
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}

	if !strings.Contains(string(body), `id="getting-started"`) {
		t.Fatalf("expected heading id in body, got %q", string(body))
	}
	if !strings.Contains(string(outline), `href="#getting-started"`) {
		t.Fatalf("expected outline link to match heading id, got %q", string(outline))
	}
}

func TestGoldmarkParser_OutlineEmptyWithoutHeadings(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	outline, err := parser.Outline([]byte("just a paragraph\n"), interfaces.ParseOptions{TOCDepth: 3})
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}
	if len(outline) != 0 {
		t.Fatalf("expected empty outline for headingless input, got %q", string(outline))
	}
}

func TestGoldmarkParser_UnknownExtension(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	_, err := parser.ParseWithOptions([]byte("hello"), interfaces.ParseOptions{
		Extensions: []string{"wiki"},
	})
	if !errors.Is(err, ErrUnknownExtension) {
		t.Fatalf("expected ErrUnknownExtension, got %v", err)
	}
}

func readFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}
