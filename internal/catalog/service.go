package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/articles"
	"github.com/goliatone/go-blog/internal/identity"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// Config controls how documents become catalog records.
type Config struct {
	DefaultLocale string
	Builder       articles.BuilderConfig
}

// Service keeps the article catalog in sync with the content directory and
// answers queries for the CLI. It satisfies the markdown package's Syncer.
type Service struct {
	db       *bun.DB
	cfg      Config
	articles repository.Repository[*ArticleRecord]
	tags     repository.Repository[*TagRecord]
	logger   interfaces.Logger

	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
}

// Option customises Service construction.
type Option func(*Service)

// WithLogger attaches a logger; a no-op logger is used otherwise.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache layers read-through caching over the catalog repositories.
func WithCache(cacheService cache.CacheService, keySerializer cache.KeySerializer) Option {
	return func(s *Service) {
		s.cacheService = cacheService
		s.keySerializer = keySerializer
	}
}

// NewService wires the catalog repositories over the supplied database.
func NewService(db *bun.DB, cfg Config, opts ...Option) (*Service, error) {
	if db == nil {
		return nil, errors.New("catalog: database is required")
	}

	svc := &Service{
		db:     db,
		cfg:    cfg,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(svc)
	}

	svc.articles = wrapWithCache(NewArticleRepository(db), svc.cacheService, svc.keySerializer)
	svc.tags = wrapWithCache(NewTagRepository(db), svc.cacheService, svc.keySerializer)
	return svc, nil
}

// SyncDocuments reconciles loaded documents into the catalog. Per-document
// failures are collected on the result so one broken article does not abort
// the remaining sync.
func (s *Service) SyncDocuments(ctx context.Context, docs []*interfaces.Document, opts interfaces.SyncOptions) (*interfaces.SyncResult, error) {
	result := &interfaces.SyncResult{}
	seen := map[string]struct{}{}

	builder := s.cfg.Builder
	if builder.DefaultLocale == "" {
		builder.DefaultLocale = s.cfg.DefaultLocale
	}

	for _, doc := range docs {
		article, err := articles.FromDocument(doc, builder)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}

		record := recordFromArticle(article)
		seen[record.Route] = struct{}{}

		if err := s.applyRecord(ctx, record, article, opts, result); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("catalog: sync %s: %w", article.SourcePath, err))
		}
	}

	if opts.DeleteOrphaned {
		if err := s.deleteOrphaned(ctx, seen, opts, result); err != nil {
			return result, err
		}
	}

	s.logger.Info("catalog sync finished",
		"created", result.Created,
		"updated", result.Updated,
		"deleted", result.Deleted,
		"unchanged", result.Unchanged,
		"errors", len(result.Errors),
		"dry_run", opts.DryRun,
	)
	return result, nil
}

func (s *Service) applyRecord(ctx context.Context, record *ArticleRecord, article *articles.Article, opts interfaces.SyncOptions, result *interfaces.SyncResult) error {
	existing, err := s.getByRoute(ctx, record.Route)
	switch {
	case err == nil:
		if existing.Checksum == record.Checksum {
			result.Unchanged++
			return nil
		}
		if !opts.UpdateExisting {
			result.Unchanged++
			return nil
		}
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		result.Updated++
		if opts.DryRun {
			return nil
		}
		if _, err := s.articles.Update(ctx, record); err != nil {
			return err
		}
		return s.syncArticleTags(ctx, article)
	case isNotFound(err):
		result.Created++
		if opts.DryRun {
			return nil
		}
		if _, err := s.articles.Create(ctx, record); err != nil {
			return err
		}
		return s.syncArticleTags(ctx, article)
	default:
		return err
	}
}

func (s *Service) deleteOrphaned(ctx context.Context, seen map[string]struct{}, opts interfaces.SyncOptions, result *interfaces.SyncResult) error {
	records, _, err := s.articles.List(ctx)
	if err != nil {
		return fmt.Errorf("catalog: list articles: %w", err)
	}

	for _, record := range records {
		if _, ok := seen[record.Route]; ok {
			continue
		}
		result.Deleted++
		if opts.DryRun {
			continue
		}
		if err := s.articles.Delete(ctx, &ArticleRecord{ID: record.ID}); err != nil {
			return fmt.Errorf("catalog: delete %s: %w", record.Route, err)
		}
		if _, err := s.db.NewDelete().
			Model((*ArticleTagRecord)(nil)).
			Where("article_id = ?", record.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("catalog: unlink tags for %s: %w", record.Route, err)
		}
	}
	return nil
}

func (s *Service) syncArticleTags(ctx context.Context, article *articles.Article) error {
	if _, err := s.db.NewDelete().
		Model((*ArticleTagRecord)(nil)).
		Where("article_id = ?", article.ID).
		Exec(ctx); err != nil {
		return fmt.Errorf("unlink tags: %w", err)
	}
	if len(article.Tags) == 0 {
		return nil
	}

	links := make([]*ArticleTagRecord, 0, len(article.Tags))
	for _, name := range article.Tags {
		slug := articles.TagSlug(name)
		tag, err := s.ensureTag(ctx, slug, name)
		if err != nil {
			return err
		}
		links = append(links, &ArticleTagRecord{ArticleID: article.ID, TagID: tag.ID})
	}

	if _, err := s.db.NewInsert().Model(&links).Exec(ctx); err != nil {
		return fmt.Errorf("link tags: %w", err)
	}
	return nil
}

func (s *Service) ensureTag(ctx context.Context, slug, name string) (*TagRecord, error) {
	tag, err := s.tags.GetByIdentifier(ctx, slug)
	if err == nil {
		return tag, nil
	}
	if !isNotFound(mapRepositoryError(err, "tag", slug)) {
		return nil, fmt.Errorf("lookup tag %s: %w", slug, err)
	}

	created, err := s.tags.Create(ctx, &TagRecord{
		ID:   identity.TagUUID(slug),
		Slug: slug,
		Name: name,
	})
	if err != nil {
		return nil, fmt.Errorf("create tag %s: %w", slug, err)
	}
	return created, nil
}

// ListOptions filters catalog queries.
type ListOptions struct {
	Locale        string
	Tag           string
	IncludeDrafts bool
	Limit         int
	Offset        int
}

// List returns catalog records newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*ArticleRecord, error) {
	records, _, err := s.articles.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if opts.Locale != "" {
				q = q.Where("?TableAlias.locale = ?", opts.Locale)
			}
			if !opts.IncludeDrafts {
				q = q.Where("?TableAlias.draft = ?", false)
			}
			if tag := strings.TrimSpace(opts.Tag); tag != "" {
				q = q.Join("JOIN article_tags AS at ON at.article_id = ?TableAlias.id").
					Join("JOIN tags AS t ON t.id = at.tag_id").
					Where("t.slug = ?", articles.TagSlug(tag))
			}
			if opts.Limit > 0 {
				q = q.Limit(opts.Limit).Offset(opts.Offset)
			}
			return q.OrderExpr("?TableAlias.published_at DESC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: list articles: %w", err)
	}
	return records, nil
}

// GetBySlug resolves one record by locale and slug.
func (s *Service) GetBySlug(ctx context.Context, locale, slug string) (*ArticleRecord, error) {
	return s.getByRoute(ctx, routeKey(locale, slug))
}

// Tags lists every known tag sorted by slug.
func (s *Service) Tags(ctx context.Context) ([]*TagRecord, error) {
	records, _, err := s.tags.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.slug ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: list tags: %w", err)
	}
	return records, nil
}

func (s *Service) getByRoute(ctx context.Context, route string) (*ArticleRecord, error) {
	record, err := s.articles.GetByIdentifier(ctx, route)
	if err != nil {
		return nil, mapRepositoryError(err, "article", route)
	}
	return record, nil
}

func isNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

func recordFromArticle(article *articles.Article) *ArticleRecord {
	record := &ArticleRecord{
		ID:          article.ID,
		Route:       routeKey(article.Locale, article.Slug),
		Locale:      article.Locale,
		Slug:        article.Slug,
		Title:       article.Title,
		Status:      article.Status,
		Draft:       article.Draft,
		Tags:        article.Tags,
		Metadata:    article.Custom,
		SourcePath:  article.SourcePath,
		Checksum:    article.Checksum,
		WordCount:   article.WordCount,
		ReadingTime: article.ReadingTime,
		PublishedAt: article.Date,
		UpdatedAt:   time.Now().UTC(),
	}
	if summary := strings.TrimSpace(article.Summary); summary != "" {
		record.Summary = &summary
	}
	if author := strings.TrimSpace(article.Author); author != "" {
		record.Author = &author
	}
	return record
}

func routeKey(locale, slug string) string {
	return strings.ToLower(strings.TrimSpace(locale)) + "/" + strings.ToLower(strings.TrimSpace(slug))
}
