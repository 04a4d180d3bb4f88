package catalog

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NotFoundError reports a missing catalog record.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

func NewArticleRepository(db *bun.DB) repository.Repository[*ArticleRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ArticleRecord]{
		NewRecord: func() *ArticleRecord { return &ArticleRecord{} },
		GetID: func(a *ArticleRecord) uuid.UUID {
			return a.ID
		},
		SetID: func(a *ArticleRecord, id uuid.UUID) {
			a.ID = id
		},
		GetIdentifier: func() string {
			return "route"
		},
		GetIdentifierValue: func(a *ArticleRecord) string {
			return a.Route
		},
	})
}

func NewTagRepository(db *bun.DB) repository.Repository[*TagRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*TagRecord]{
		NewRecord: func() *TagRecord { return &TagRecord{} },
		GetID: func(t *TagRecord) uuid.UUID {
			return t.ID
		},
		SetID: func(t *TagRecord, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(t *TagRecord) string {
			return t.Slug
		},
	})
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
