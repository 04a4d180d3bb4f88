package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ArticleRecord is the catalog row for a published or draft article. The
// catalog indexes article metadata for querying; rendered HTML stays in the
// generated site output.
type ArticleRecord struct {
	bun.BaseModel `bun:"table:articles,alias:a"`

	ID     uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Route  string    `bun:"route,notnull,unique" json:"route"`
	Locale string    `bun:"locale,notnull" json:"locale"`
	Slug   string    `bun:"slug,notnull" json:"slug"`
	Title  string    `bun:"title,notnull" json:"title"`

	Summary *string `bun:"summary" json:"summary,omitempty"`
	Author  *string `bun:"author" json:"author,omitempty"`
	Status  string  `bun:"status,notnull,default:'published'" json:"status"`
	Draft   bool    `bun:"draft,notnull,default:false" json:"draft"`

	Tags     []string       `bun:"tags,type:jsonb" json:"tags,omitempty"`
	Metadata map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`

	SourcePath  string `bun:"source_path,notnull" json:"source_path"`
	Checksum    string `bun:"checksum,notnull" json:"checksum"`
	WordCount   int    `bun:"word_count,notnull,default:0" json:"word_count"`
	ReadingTime int    `bun:"reading_time,notnull,default:0" json:"reading_time"`

	PublishedAt time.Time `bun:"published_at,nullzero" json:"published_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// TagRecord stores a normalized tag once per site.
type TagRecord struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Slug      string    `bun:"slug,notnull,unique" json:"slug"`
	Name      string    `bun:"name,notnull" json:"name"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// ArticleTagRecord links articles to tags.
type ArticleTagRecord struct {
	bun.BaseModel `bun:"table:article_tags,alias:at"`

	ArticleID uuid.UUID `bun:"article_id,pk,type:uuid" json:"article_id"`
	TagID     uuid.UUID `bun:"tag_id,pk,type:uuid" json:"tag_id"`
}
