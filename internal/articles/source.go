package articles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// ErrMarkdownServiceRequired indicates a directory source was constructed
// without its markdown dependency.
var ErrMarkdownServiceRequired = errors.New("articles: markdown service is required")

// DirectorySourceConfig configures article loading from a content directory.
type DirectorySourceConfig struct {
	ContentDir string
	Load       interfaces.LoadOptions
	Builder    BuilderConfig
}

// DirectorySource loads Markdown documents from a directory tree and exposes
// them as an article collection. It is the content source the site generator
// consumes.
type DirectorySource struct {
	cfg       DirectorySourceConfig
	markdown  interfaces.MarkdownService
	validator *MetadataValidator
	logger    interfaces.Logger
}

// DirectorySourceOption customises a DirectorySource.
type DirectorySourceOption func(*DirectorySource)

// WithSourceLogger attaches a logger to the source.
func WithSourceLogger(logger interfaces.Logger) DirectorySourceOption {
	return func(s *DirectorySource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetadataValidator enables schema validation of article custom metadata.
func WithMetadataValidator(validator *MetadataValidator) DirectorySourceOption {
	return func(s *DirectorySource) {
		s.validator = validator
	}
}

// NewDirectorySource builds a content source over the given directory.
func NewDirectorySource(cfg DirectorySourceConfig, markdown interfaces.MarkdownService, opts ...DirectorySourceOption) (*DirectorySource, error) {
	if markdown == nil {
		return nil, ErrMarkdownServiceRequired
	}
	if strings.TrimSpace(cfg.ContentDir) == "" {
		return nil, errors.New("articles: content directory is required")
	}
	source := &DirectorySource{
		cfg:      cfg,
		markdown: markdown,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(source)
	}
	return source, nil
}

// Articles loads every document under the content directory and returns the
// resulting collection. Invalid documents fail the load; drafts are included
// and filtered downstream.
func (s *DirectorySource) Articles(ctx context.Context) (*Collection, error) {
	docs, err := s.markdown.LoadDirectory(ctx, s.cfg.ContentDir, s.cfg.Load)
	if err != nil {
		return nil, fmt.Errorf("articles: load %s: %w", s.cfg.ContentDir, err)
	}

	items := make([]*Article, 0, len(docs))
	for _, doc := range docs {
		article, err := FromDocument(doc, s.cfg.Builder)
		if err != nil {
			return nil, fmt.Errorf("articles: build %s: %w", doc.FilePath, err)
		}
		if s.validator != nil {
			if err := s.validator.Validate(article); err != nil {
				return nil, fmt.Errorf("articles: metadata %s: %w", doc.FilePath, err)
			}
		}
		items = append(items, article)
	}

	collection, err := NewCollection(items)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("content directory loaded",
		"dir", s.cfg.ContentDir,
		"articles", collection.Len(),
		"locales", len(collection.Locales()),
	)
	return collection, nil
}
