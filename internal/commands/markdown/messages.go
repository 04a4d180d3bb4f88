package markdowncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	renderArticleMessageType = "blog.markdown.render_article"
	syncCatalogMessageType   = "blog.markdown.sync_catalog"
)

// RenderArticleCommand converts a single Markdown file into an HTML page,
// preserving the original one-file-in, one-file-out workflow.
type RenderArticleCommand struct {
	// Path selects the Markdown source file.
	Path string `json:"path"`
	// Output names the HTML file to write. Empty derives it from Path.
	Output string `json:"output,omitempty"`
	// Standalone renders a complete HTML page through the theme layout
	// instead of a body fragment.
	Standalone bool `json:"standalone,omitempty"`
	// Template overrides the logical template used for standalone output.
	Template string `json:"template,omitempty"`
	// Math overrides the configured math mode (mathjax, katex, none).
	Math string `json:"math,omitempty"`
	// HighlightStyle selects the chroma style for fenced code blocks.
	HighlightStyle string `json:"highlight_style,omitempty"`
	// TOCDepth bounds outline extraction; zero keeps the configured value.
	TOCDepth int `json:"toc_depth,omitempty"`
	// ResultCallback receives the render outcome when execution succeeds.
	ResultCallback func(RenderArticleResult) `json:"-"`
}

// RenderArticleResult reports where the rendered page landed.
type RenderArticleResult struct {
	Path       string
	Output     string
	Standalone bool
	Bytes      int
}

// Type implements command.Message.
func (RenderArticleCommand) Type() string { return renderArticleMessageType }

// Validate ensures the source path is present before handlers execute.
func (cmd RenderArticleCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("blog.markdown.render_article.path_required", "path is required")
			}
			return nil
		})),
	)
}

// SyncCatalogCommand reconciles the article catalog with the Markdown files
// under Directory.
type SyncCatalogCommand struct {
	// Directory selects the content tree to synchronise.
	Directory string `json:"directory"`
	// DeleteOrphaned removes catalog rows without a matching file.
	DeleteOrphaned bool `json:"delete_orphaned,omitempty"`
	// DryRun reports the pending changes without persisting them.
	DryRun bool `json:"dry_run,omitempty"`
	// ResultCallback receives the sync summary when execution succeeds.
	ResultCallback func(*SyncCatalogResult) `json:"-"`
}

// SyncCatalogResult summarises a catalog sync run.
type SyncCatalogResult struct {
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
	Errors    []error
	DryRun    bool
}

// Type implements command.Message.
func (SyncCatalogCommand) Type() string { return syncCatalogMessageType }

// Validate ensures the directory input is present before handlers execute.
func (cmd SyncCatalogCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("blog.markdown.sync_catalog.directory_required", "directory is required")
			}
			return nil
		})),
	)
}
