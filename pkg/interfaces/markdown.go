package interfaces

import (
	"context"
	"time"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
// Implementations should support reusable parser instances and extension
// toggles so hosts can tailor rendering without rewriting the pipeline.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
	// Outline renders the document's table of contents as an HTML list. It
	// returns nil output when the document has no headings within the
	// configured depth.
	Outline(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	Sanitize   bool
	HardWraps  bool
	SafeMode   bool
	// HighlightStyle selects the chroma style applied to fenced code blocks.
	// Empty disables server-side highlighting.
	HighlightStyle       string
	HighlightLineNumbers bool
	// Math selects the client-side math mode: "mathjax", "katex" or "none".
	// Any mode other than "none" preserves TeX delimiters in the output.
	Math string
	// TOCDepth bounds outline extraction to headings of this level or above.
	// Zero disables outline extraction.
	TOCDepth int
}

// MarkdownService exposes the high-level file workflows, enabling hosts to
// load Markdown documents, convert them into HTML, and keep the article
// catalog in sync with the content directory.
type MarkdownService interface {
	Load(ctx context.Context, path string, opts LoadOptions) (*Document, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
	RenderDocument(ctx context.Context, doc *Document, opts ParseOptions) ([]byte, error)
	Sync(ctx context.Context, dir string, opts SyncOptions) (*SyncResult, error)
}

// Document represents a Markdown file with parsed metadata and content. The
// struct is shared between the interfaces package and internal implementations
// so consumers can depend on a stable contract.
type Document struct {
	FilePath     string
	Locale       string
	FrontMatter  FrontMatter
	Body         []byte
	BodyHTML     []byte
	TOCHTML      []byte
	LastModified time.Time
	// Checksum stores a digest of the original file content (typically SHA-256)
	// so sync workflows can detect changes without re-reading unchanged files.
	Checksum []byte
}

// FrontMatter models metadata extracted from Markdown files. Fields stay
// flexible thanks to the Custom map for template- or domain-specific values.
type FrontMatter struct {
	Title    string         `yaml:"title" json:"title"`
	Slug     string         `yaml:"slug" json:"slug"`
	Summary  string         `yaml:"summary" json:"summary"`
	Status   string         `yaml:"status" json:"status"`
	Template string         `yaml:"template" json:"template"`
	Tags     []string       `yaml:"tags" json:"tags"`
	Author   string         `yaml:"author" json:"author"`
	Date     time.Time      `yaml:"date" json:"date"`
	Draft    bool           `yaml:"draft" json:"draft"`
	// Math overrides the site-wide math mode for a single article.
	Math string `yaml:"math" json:"math"`
	// TOC overrides outline generation for a single article. Nil keeps the
	// site default.
	TOC    *bool          `yaml:"toc" json:"toc"`
	Custom map[string]any `yaml:",inline" json:"custom"`
	Raw    map[string]any `yaml:"-" json:"raw"`
}

// LoadOptions fine-tunes how documents are discovered and parsed from disk.
type LoadOptions struct {
	Recursive      *bool
	Pattern        string
	LocalePatterns map[string]string
	Parser         ParseOptions
}

// SyncOptions controls update/delete semantics for repeated catalog
// synchronisation runs.
type SyncOptions struct {
	DeleteOrphaned bool
	UpdateExisting bool
	DryRun         bool
}

// SyncResult summarises a bulk sync run across many files.
type SyncResult struct {
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
	Errors    []error
}
