package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// ErrSyncUnavailable is returned when Sync is invoked without a catalog
// syncer wired in (the catalog feature is disabled).
var ErrSyncUnavailable = errors.New("markdown service: sync requires the catalog feature")

// Config controls how the Markdown service discovers and parses files.
type Config struct {
	BasePath       string
	DefaultLocale  string
	Locales        []string
	LocalePatterns map[string]string
	Pattern        string
	Recursive      bool
	Parser         interfaces.ParseOptions
}

// Syncer reconciles rendered documents into a persistent article catalog.
type Syncer interface {
	SyncDocuments(ctx context.Context, docs []*interfaces.Document, opts interfaces.SyncOptions) (*interfaces.SyncResult, error)
}

// Service implements interfaces.MarkdownService for filesystem-backed documents.
type Service struct {
	cfg      Config
	parser   interfaces.MarkdownParser
	loader   *Loader
	expander interfaces.ShortcodeExpander
	syncer   Syncer
}

// ServiceOption customises optional collaborators on the Service.
type ServiceOption func(*Service)

// WithExpander wires a shortcode expander that runs before parsing.
func WithExpander(expander interfaces.ShortcodeExpander) ServiceOption {
	return func(s *Service) {
		s.expander = expander
	}
}

// WithSyncer wires the catalog syncer used by Sync.
func WithSyncer(syncer Syncer) ServiceOption {
	return func(s *Service) {
		s.syncer = syncer
	}
}

// NewService constructs a Markdown service using an underlying loader. When
// parser is nil, a Goldmark parser with the provided default options is
// created.
func NewService(cfg Config, parser interfaces.MarkdownParser, opts ...ServiceOption) (*Service, error) {
	filesystem, err := prepareFilesystem(cfg.BasePath)
	if err != nil {
		return nil, err
	}

	if parser == nil {
		parser = NewGoldmarkParser(cfg.Parser)
	}

	loader := NewLoader(filesystem, LoaderConfig{
		BasePath:       cfg.BasePath,
		DefaultLocale:  cfg.DefaultLocale,
		Locales:        cfg.Locales,
		LocalePatterns: cfg.LocalePatterns,
		Pattern:        cfg.Pattern,
		Recursive:      cfg.Recursive,
	})

	svc := &Service{
		cfg:    cfg,
		parser: parser,
		loader: loader,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Load reads a single Markdown document relative to the configured base path.
func (s *Service) Load(ctx context.Context, path string, opts interfaces.LoadOptions) (*interfaces.Document, error) {
	result, err := s.loader.LoadFile(ctx, s.normalisePath(path), toLoaderParams(opts))
	if err != nil {
		return nil, err
	}
	if err := s.renderDocument(ctx, result.Document, opts.Parser); err != nil {
		return nil, err
	}
	return result.Document, nil
}

// LoadDirectory reads every Markdown document within the supplied directory.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	results, err := s.loader.LoadDirectory(ctx, s.normalisePath(dir), toLoaderParams(opts))
	if err != nil {
		return nil, err
	}

	docs := make([]*interfaces.Document, 0, len(results))
	for _, result := range results {
		if err := s.renderDocument(ctx, result.Document, opts.Parser); err != nil {
			return nil, err
		}
		docs = append(docs, result.Document)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].FilePath < docs[j].FilePath
	})
	return docs, nil
}

// Render parses Markdown bytes into HTML using the configured parser. When a
// shortcode expander is wired, invocations are expanded first so their output
// participates in Markdown parsing.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	source, err := s.expand(ctx, markdown, "")
	if err != nil {
		return nil, err
	}
	return s.parser.ParseWithOptions(source, MergeParseOptions(s.cfg.Parser, opts))
}

// RenderDocument converts the document's Markdown body into HTML using the
// configured parser, storing both body and outline HTML on the document.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ParseOptions) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("markdown service: document is nil")
	}
	if err := s.renderDocument(ctx, doc, opts); err != nil {
		return nil, err
	}
	return doc.BodyHTML, nil
}

// Sync loads the directory and reconciles every document into the catalog.
func (s *Service) Sync(ctx context.Context, dir string, opts interfaces.SyncOptions) (*interfaces.SyncResult, error) {
	if s.syncer == nil {
		return nil, ErrSyncUnavailable
	}

	docs, err := s.LoadDirectory(ctx, dir, interfaces.LoadOptions{})
	if err != nil {
		return nil, err
	}
	return s.syncer.SyncDocuments(ctx, docs, opts)
}

func (s *Service) renderDocument(ctx context.Context, doc *interfaces.Document, overrides interfaces.ParseOptions) error {
	if doc == nil {
		return nil
	}

	merged := MergeParseOptions(s.cfg.Parser, overrides)
	merged = applyFrontMatterOverrides(merged, doc.FrontMatter)

	source, err := s.expand(ctx, doc.Body, doc.Locale)
	if err != nil {
		return fmt.Errorf("markdown render document %s: %w", doc.FilePath, err)
	}

	html, err := s.parser.ParseWithOptions(source, merged)
	if err != nil {
		return fmt.Errorf("markdown render document %s: %w", doc.FilePath, err)
	}
	doc.BodyHTML = html

	outline, err := s.parser.Outline(source, merged)
	if err != nil {
		return fmt.Errorf("markdown outline document %s: %w", doc.FilePath, err)
	}
	doc.TOCHTML = outline
	return nil
}

func (s *Service) expand(ctx context.Context, source []byte, locale string) ([]byte, error) {
	if s.expander == nil {
		return source, nil
	}
	expanded, err := s.expander.Expand(interfaces.ShortcodeContext{
		Context: ctx,
		Locale:  locale,
	}, string(source))
	if err != nil {
		return nil, err
	}
	return []byte(expanded), nil
}

func (s *Service) normalisePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) && strings.TrimSpace(s.cfg.BasePath) != "" {
		if rel, err := filepath.Rel(s.cfg.BasePath, clean); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(clean)
}

// MergeParseOptions layers per-call overrides on top of the configured
// defaults. Boolean toggles only ever widen (enable) behaviour; scalar
// options replace the default when set.
func MergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.Sanitize {
		result.Sanitize = true
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	if override.SafeMode {
		result.SafeMode = true
	}
	if strings.TrimSpace(override.HighlightStyle) != "" {
		result.HighlightStyle = override.HighlightStyle
	}
	if override.HighlightLineNumbers {
		result.HighlightLineNumbers = true
	}
	if strings.TrimSpace(override.Math) != "" {
		result.Math = override.Math
	}
	if override.TOCDepth != 0 {
		result.TOCDepth = override.TOCDepth
	}
	return result
}

// applyFrontMatterOverrides lets a single article adjust math mode and
// outline extraction without touching site configuration.
func applyFrontMatterOverrides(opts interfaces.ParseOptions, fm interfaces.FrontMatter) interfaces.ParseOptions {
	if strings.TrimSpace(fm.Math) != "" {
		opts.Math = fm.Math
	}
	if fm.TOC != nil && !*fm.TOC {
		opts.TOCDepth = 0
	}
	return opts
}

func toLoaderParams(opts interfaces.LoadOptions) LoadParams {
	return LoadParams{
		Pattern:        opts.Pattern,
		LocalePatterns: opts.LocalePatterns,
		Recursive:      opts.Recursive,
	}
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	if _, err := os.Stat(basePath); err != nil {
		return nil, fmt.Errorf("markdown service: stat base path %s: %w", basePath, err)
	}
	return os.DirFS(basePath), nil
}
