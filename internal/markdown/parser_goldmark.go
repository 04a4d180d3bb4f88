package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	mathjax "github.com/litao91/goldmark-mathjax"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"go.abhg.dev/goldmark/toc"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// ErrUnknownExtension is returned when a configured extension name has no
// registered goldmark extender.
var ErrUnknownExtension = errors.New("markdown parse: unknown extension")

// GoldmarkParser implements interfaces.MarkdownParser using the goldmark engine.
// The parser is intentionally stateless so callers can reuse a single instance
// across requests without additional locking.
type GoldmarkParser struct {
	defaultOptions interfaces.ParseOptions
}

// NewGoldmarkParser constructs a parser with sensible defaults (GFM extensions,
// hard wraps disabled, unsafe HTML allowed). Callers can override behaviour per
// invocation through ParseWithOptions.
func NewGoldmarkParser(defaults interfaces.ParseOptions) *GoldmarkParser {
	return &GoldmarkParser{
		defaultOptions: defaults,
	}
}

// Parse satisfies interfaces.MarkdownParser by rendering Markdown into HTML
// using the parser's default configuration.
func (p *GoldmarkParser) Parse(markdown []byte) ([]byte, error) {
	return p.ParseWithOptions(markdown, p.defaultOptions)
}

// ParseWithOptions renders Markdown into HTML using the provided options.
func (p *GoldmarkParser) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	engine, err := newGoldmarkEngine(opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	return buf.Bytes(), nil
}

// Outline extracts the document's table of contents as a rendered HTML list.
// Heading anchors match those emitted by Parse because both passes derive IDs
// from the same auto heading ID strategy. A document without headings inside
// the configured depth yields nil output and no error.
func (p *GoldmarkParser) Outline(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	depth := opts.TOCDepth
	if depth <= 0 {
		return nil, nil
	}

	engine, err := newGoldmarkEngine(opts)
	if err != nil {
		return nil, err
	}

	root := engine.Parser().Parse(text.NewReader(markdown))
	tree, err := toc.Inspect(root, markdown, toc.MaxDepth(depth), toc.Compact(true))
	if err != nil {
		return nil, fmt.Errorf("markdown outline: %w", err)
	}

	list := toc.RenderList(tree)
	if list == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := engine.Renderer().Render(&buf, markdown, list); err != nil {
		return nil, fmt.Errorf("markdown outline render: %w", err)
	}
	return buf.Bytes(), nil
}

// newGoldmarkEngine builds a goldmark.Markdown configured from the supplied
// parse options. Configured extension names must resolve; math and highlight
// extenders are attached based on their dedicated options.
func newGoldmarkEngine(opts interfaces.ParseOptions) (goldmark.Markdown, error) {
	exts, err := collectExtensions(opts.Extensions)
	if err != nil {
		return nil, err
	}

	if style := strings.TrimSpace(opts.HighlightStyle); style != "" {
		formatOptions := []chromahtml.Option{
			chromahtml.WithLineNumbers(opts.HighlightLineNumbers),
		}
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithStyle(style),
			highlighting.WithFormatOptions(formatOptions...),
		))
	}

	if mathEnabled(opts.Math) {
		exts = append(exts, mathjax.MathJax)
	}

	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
	}

	rendererOptions := []renderer.Option{}

	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}

	// Treat both SafeMode and Sanitize as signals to avoid emitting raw HTML.
	if !opts.SafeMode && !opts.Sanitize {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
	}

	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}

	if len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return goldmark.New(engineOptions...), nil
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

func collectExtensions(names []string) ([]goldmark.Extender, error) {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		}, nil
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}

		if _, ok := seen[key]; ok {
			continue
		}

		ext, ok := extensionRegistry[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, key)
		}

		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders, nil
}
