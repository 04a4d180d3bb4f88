package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/catalog"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/pkg/testsupport"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestServiceSyncDocuments_CreatesUpdatesAndDeletes(t *testing.T) {
	ctx := context.Background()
	svc := newCatalogService(t)

	first := testDocument("en", "first-post", "First Post", 0x01)
	second := testDocument("en", "second-post", "Second Post", 0x02)

	result, err := svc.SyncDocuments(ctx, []*interfaces.Document{first, second}, interfaces.SyncOptions{
		UpdateExisting: true,
	})
	if err != nil {
		t.Fatalf("SyncDocuments: %v", err)
	}
	if result.Created != 2 || result.Updated != 0 || len(result.Errors) != 0 {
		t.Fatalf("unexpected first sync result: %#v", result)
	}

	record, err := svc.GetBySlug(ctx, "en", "first-post")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if record.Title != "First Post" {
		t.Fatalf("expected stored title, got %q", record.Title)
	}

	// Changed content updates in place.
	first.FrontMatter.Title = "First Post, Revised"
	first.Checksum = []byte{0xAA}
	result, err = svc.SyncDocuments(ctx, []*interfaces.Document{first, second}, interfaces.SyncOptions{
		UpdateExisting: true,
	})
	if err != nil {
		t.Fatalf("SyncDocuments update: %v", err)
	}
	if result.Updated != 1 || result.Unchanged != 1 {
		t.Fatalf("unexpected update result: %#v", result)
	}

	record, err = svc.GetBySlug(ctx, "en", "first-post")
	if err != nil {
		t.Fatalf("GetBySlug after update: %v", err)
	}
	if record.Title != "First Post, Revised" {
		t.Fatalf("expected updated title, got %q", record.Title)
	}

	// Removed sources are deleted when orphan cleanup is on.
	result, err = svc.SyncDocuments(ctx, []*interfaces.Document{second}, interfaces.SyncOptions{
		UpdateExisting: true,
		DeleteOrphaned: true,
	})
	if err != nil {
		t.Fatalf("SyncDocuments delete: %v", err)
	}
	if result.Deleted != 1 {
		t.Fatalf("expected one deletion, got %#v", result)
	}
	if _, err := svc.GetBySlug(ctx, "en", "first-post"); !isNotFound(err) {
		t.Fatalf("expected first-post gone, got %v", err)
	}
}

func TestServiceSyncDocuments_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	svc := newCatalogService(t)

	doc := testDocument("en", "phantom", "Phantom", 0x03)
	result, err := svc.SyncDocuments(ctx, []*interfaces.Document{doc}, interfaces.SyncOptions{
		DryRun: true,
	})
	if err != nil {
		t.Fatalf("SyncDocuments: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("expected dry run to report pending create, got %#v", result)
	}
	if _, err := svc.GetBySlug(ctx, "en", "phantom"); !isNotFound(err) {
		t.Fatalf("expected no record written, got %v", err)
	}
}

func TestServiceSyncDocuments_SecondRunUnchanged(t *testing.T) {
	ctx := context.Background()
	svc := newCatalogService(t)

	docs := []*interfaces.Document{testDocument("en", "stable", "Stable", 0x04)}
	if _, err := svc.SyncDocuments(ctx, docs, interfaces.SyncOptions{UpdateExisting: true}); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	result, err := svc.SyncDocuments(ctx, docs, interfaces.SyncOptions{UpdateExisting: true})
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if result.Created != 0 || result.Updated != 0 || result.Unchanged != 1 {
		t.Fatalf("expected unchanged record, got %#v", result)
	}
}

func TestServiceSyncDocuments_CollectsPerDocumentErrors(t *testing.T) {
	ctx := context.Background()
	svc := newCatalogService(t)

	broken := &interfaces.Document{
		FilePath: "en/.md",
		Locale:   "en",
		Body:     []byte("body"),
		Checksum: []byte{0x05},
	}
	valid := testDocument("en", "survivor", "Survivor", 0x06)

	result, err := svc.SyncDocuments(ctx, []*interfaces.Document{broken, valid}, interfaces.SyncOptions{})
	if err != nil {
		t.Fatalf("SyncDocuments: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one document error, got %#v", result.Errors)
	}
	if result.Created != 1 {
		t.Fatalf("expected remaining document synced, got %#v", result)
	}
}

func TestServiceTagsAndListByTag(t *testing.T) {
	ctx := context.Background()
	svc := newCatalogService(t)

	tagged := testDocument("en", "tagged-post", "Tagged Post", 0x07)
	tagged.FrontMatter.Tags = []string{"go", "testing"}
	plain := testDocument("en", "plain-post", "Plain Post", 0x08)

	if _, err := svc.SyncDocuments(ctx, []*interfaces.Document{tagged, plain}, interfaces.SyncOptions{}); err != nil {
		t.Fatalf("SyncDocuments: %v", err)
	}

	tags, err := svc.Tags(ctx)
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 2 || tags[0].Slug != "go" || tags[1].Slug != "testing" {
		t.Fatalf("unexpected tags: %#v", tags)
	}

	records, err := svc.List(ctx, catalog.ListOptions{Tag: "go"})
	if err != nil {
		t.Fatalf("List by tag: %v", err)
	}
	if len(records) != 1 || records[0].Slug != "tagged-post" {
		t.Fatalf("expected tag filter to match one record, got %#v", records)
	}
}

func TestServiceList_ExcludesDraftsByDefault(t *testing.T) {
	ctx := context.Background()
	svc := newCatalogService(t)

	draft := testDocument("en", "draft-post", "Draft Post", 0x09)
	draft.FrontMatter.Draft = true
	live := testDocument("en", "live-post", "Live Post", 0x0A)

	if _, err := svc.SyncDocuments(ctx, []*interfaces.Document{draft, live}, interfaces.SyncOptions{}); err != nil {
		t.Fatalf("SyncDocuments: %v", err)
	}

	records, err := svc.List(ctx, catalog.ListOptions{Locale: "en"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, record := range records {
		if record.Draft {
			t.Fatalf("expected drafts excluded, got %#v", record)
		}
	}

	withDrafts, err := svc.List(ctx, catalog.ListOptions{Locale: "en", IncludeDrafts: true})
	if err != nil {
		t.Fatalf("List with drafts: %v", err)
	}
	if len(withDrafts) != len(records)+1 {
		t.Fatalf("expected drafts included on request, got %d vs %d", len(withDrafts), len(records))
	}
}

func TestServiceWithCache_ServesRepeatedReads(t *testing.T) {
	ctx := context.Background()

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}

	svc := newCatalogService(t, catalog.WithCache(cacheService, repocache.NewDefaultKeySerializer()))

	doc := testDocument("en", "cached-post", "Cached Post", 0x0B)
	if _, err := svc.SyncDocuments(ctx, []*interfaces.Document{doc}, interfaces.SyncOptions{}); err != nil {
		t.Fatalf("SyncDocuments: %v", err)
	}

	for i := 0; i < 2; i++ {
		record, err := svc.GetBySlug(ctx, "en", "cached-post")
		if err != nil {
			t.Fatalf("GetBySlug pass %d: %v", i, err)
		}
		if record.Title != "Cached Post" {
			t.Fatalf("unexpected record on pass %d: %#v", i, record)
		}
	}
}

func newCatalogService(tb testing.TB, opts ...catalog.Option) *catalog.Service {
	tb.Helper()
	ctx := context.Background()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		tb.Fatalf("new sqlite db: %v", err)
	}
	tb.Cleanup(func() {
		_ = sqlDB.Close()
	})

	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)

	if err := catalog.EnsureSchema(ctx, bunDB); err != nil {
		tb.Fatalf("EnsureSchema: %v", err)
	}
	resetCatalogTables(tb, bunDB)

	svc, err := catalog.NewService(bunDB, catalog.Config{DefaultLocale: "en"}, opts...)
	if err != nil {
		tb.Fatalf("NewService: %v", err)
	}
	return svc
}

// The shared-cache memory DSN reuses one database across tests, so each test
// starts from empty tables.
func resetCatalogTables(tb testing.TB, db *bun.DB) {
	tb.Helper()
	for _, table := range []string{"article_tags", "articles", "tags"} {
		if _, err := db.ExecContext(context.Background(), "DELETE FROM "+table); err != nil {
			tb.Fatalf("reset %s: %v", table, err)
		}
	}
}

func testDocument(locale, slug, title string, checksum byte) *interfaces.Document {
	return &interfaces.Document{
		FilePath: locale + "/" + slug + ".md",
		Locale:   locale,
		FrontMatter: interfaces.FrontMatter{
			Title: title,
			Slug:  slug,
			Date:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Body:         []byte("# " + title + "\n\nBody prose.\n"),
		BodyHTML:     []byte("<h1>" + title + "</h1>"),
		LastModified: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		Checksum:     []byte{checksum},
	}
}

func isNotFound(err error) bool {
	var notFound *catalog.NotFoundError
	return errors.As(err, &notFound)
}
