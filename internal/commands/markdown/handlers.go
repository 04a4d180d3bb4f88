package markdowncmd

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-blog/internal/commands"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	renderOperation = "markdown.render_article"
	syncOperation   = "markdown.sync_catalog"
)

// ErrMarkdownFeatureDisabled is returned when the markdown feature flag is disabled at runtime.
var ErrMarkdownFeatureDisabled = errors.New("markdown command: feature disabled")

var (
	_ command.Commander[RenderArticleCommand] = (*RenderArticleHandler)(nil)
	_ command.Commander[SyncCatalogCommand]   = (*SyncCatalogHandler)(nil)
)

// RenderDefaults carries the parser settings applied when a command does not
// override them.
type RenderDefaults struct {
	Parser interfaces.ParseOptions
}

// RenderArticleHandler performs the single-file Markdown to HTML conversion.
type RenderArticleHandler struct {
	inner *commands.Handler[RenderArticleCommand]
}

// NewRenderArticleHandler creates a handler bound to the supplied Markdown service.
func NewRenderArticleHandler(service interfaces.MarkdownService, defaults RenderDefaults, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[RenderArticleCommand]) *RenderArticleHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RenderArticleCommand) error {
		if !gates.markdownEnabled() {
			return ErrMarkdownFeatureDisabled
		}

		parser := defaults.Parser
		if strings.TrimSpace(msg.Math) != "" {
			parser.Math = markdown.NormalizeMathMode(msg.Math)
		}
		if strings.TrimSpace(msg.HighlightStyle) != "" {
			parser.HighlightStyle = msg.HighlightStyle
		}
		if msg.TOCDepth > 0 {
			parser.TOCDepth = msg.TOCDepth
		}

		doc, err := service.Load(ctx, msg.Path, interfaces.LoadOptions{Parser: parser})
		if err != nil {
			return fmt.Errorf("load %s: %w", msg.Path, err)
		}

		body, err := service.RenderDocument(ctx, doc, parser)
		if err != nil {
			return fmt.Errorf("render %s: %w", msg.Path, err)
		}

		page := string(body)
		if msg.Standalone {
			page = standalonePage(doc, page, parser.Math)
		}

		output := outputPath(msg)
		if dir := filepath.Dir(output); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(output, []byte(page), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}

		logging.WithFields(baseLogger, map[string]any{
			"path":       msg.Path,
			"output":     output,
			"standalone": msg.Standalone,
			"bytes":      len(page),
		}).Info("markdown.command.render_article.completed")

		if msg.ResultCallback != nil {
			msg.ResultCallback(RenderArticleResult{
				Path:       msg.Path,
				Output:     output,
				Standalone: msg.Standalone,
				Bytes:      len(page),
			})
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderArticleCommand]{
		commands.WithLogger[RenderArticleCommand](baseLogger),
		commands.WithOperation[RenderArticleCommand](renderOperation),
		commands.WithMessageFields(func(msg RenderArticleCommand) map[string]any {
			fields := map[string]any{
				"path": msg.Path,
			}
			if msg.Output != "" {
				fields["output"] = msg.Output
			}
			if msg.Standalone {
				fields["standalone"] = true
			}
			if msg.Math != "" {
				fields["math"] = msg.Math
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderArticleCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderArticleHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RenderArticleCommand].
func (h *RenderArticleHandler) Execute(ctx context.Context, msg RenderArticleCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SyncCatalogHandler reconciles the article catalog with a content directory.
type SyncCatalogHandler struct {
	inner *commands.Handler[SyncCatalogCommand]
}

// NewSyncCatalogHandler creates a handler bound to the supplied Markdown service.
func NewSyncCatalogHandler(service interfaces.MarkdownService, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[SyncCatalogCommand]) *SyncCatalogHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SyncCatalogCommand) error {
		if !gates.catalogEnabled() {
			return ErrMarkdownFeatureDisabled
		}

		result, err := service.Sync(ctx, msg.Directory, interfaces.SyncOptions{
			DeleteOrphaned: msg.DeleteOrphaned,
			UpdateExisting: true,
			DryRun:         msg.DryRun,
		})
		if err != nil {
			return err
		}
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"created_count":   result.Created,
				"updated_count":   result.Updated,
				"deleted_count":   result.Deleted,
				"unchanged_count": result.Unchanged,
				"error_count":     len(result.Errors),
				"dry_run":         msg.DryRun,
			}).Info("markdown.command.sync_catalog.completed")
			if msg.ResultCallback != nil {
				msg.ResultCallback(&SyncCatalogResult{
					Created:   result.Created,
					Updated:   result.Updated,
					Deleted:   result.Deleted,
					Unchanged: result.Unchanged,
					Errors:    result.Errors,
					DryRun:    msg.DryRun,
				})
			}
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SyncCatalogCommand]{
		commands.WithLogger[SyncCatalogCommand](baseLogger),
		commands.WithOperation[SyncCatalogCommand](syncOperation),
		commands.WithMessageFields(func(msg SyncCatalogCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if msg.DeleteOrphaned {
				fields["delete_orphaned"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SyncCatalogCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncCatalogHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SyncCatalogCommand].
func (h *SyncCatalogHandler) Execute(ctx context.Context, msg SyncCatalogCommand) error {
	return h.inner.Execute(ctx, msg)
}

func outputPath(msg RenderArticleCommand) string {
	if out := strings.TrimSpace(msg.Output); out != "" {
		return out
	}
	base := strings.TrimSuffix(msg.Path, filepath.Ext(msg.Path))
	return base + ".html"
}

// standalonePage wraps a rendered fragment in a self-contained HTML5 shell.
// Themed standalone pages are the generator's job; the single-file workflow
// stays independent of theme packages.
func standalonePage(doc *interfaces.Document, body, mathMode string) string {
	title := strings.TrimSpace(doc.FrontMatter.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(doc.FilePath), filepath.Ext(doc.FilePath))
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	lang := strings.TrimSpace(doc.Locale)
	if lang == "" {
		lang = "en"
	}
	b.WriteString(`<html lang="` + html.EscapeString(lang) + "\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	if scripts := markdown.MathScriptTags(mathMode); scripts != "" {
		b.WriteString(scripts + "\n")
	}
	b.WriteString("</head>\n<body>\n<article>\n")
	if len(doc.TOCHTML) > 0 {
		b.WriteString("<nav class=\"toc\">\n")
		b.Write(doc.TOCHTML)
		b.WriteString("\n</nav>\n")
	}
	b.WriteString(body)
	b.WriteString("\n</article>\n</body>\n</html>\n")
	return b.String()
}
