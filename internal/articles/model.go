package articles

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Article statuses. Front matter may carry any string but the pipeline only
// distinguishes drafts from published entries.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Article is the in-memory representation of a rendered blog entry. It is
// derived from a Markdown document and carries everything templates and the
// catalog need without reaching back to the source file.
type Article struct {
	ID       uuid.UUID
	Locale   string
	Slug     string
	Title    string
	Summary  string
	Author   string
	Status   string
	Template string
	Tags     []string

	Date    time.Time
	Updated time.Time
	Draft   bool

	// Math names the per-article math mode override; empty inherits the
	// site default.
	Math string
	// TOC reports whether an outline should accompany the article body.
	TOC bool

	SourcePath string
	Checksum   string

	BodyMarkdown []byte
	BodyHTML     string
	TOCHTML      string

	WordCount   int
	ReadingTime int

	Custom map[string]any
}

// Published reports whether the article should appear in generated output
// when drafts are excluded.
func (a *Article) Published() bool {
	if a == nil {
		return false
	}
	return !a.Draft && a.Status != StatusDraft
}

// Year returns the article's publication year, used to group archive pages.
func (a *Article) Year() int {
	if a == nil || a.Date.IsZero() {
		return 0
	}
	return a.Date.Year()
}

// HasTag reports whether the article carries the given normalized tag.
func (a *Article) HasTag(tag string) bool {
	if a == nil {
		return false
	}
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// countWords tokenises plain prose on whitespace. Fenced code blocks are
// skipped so long listings do not inflate reading estimates.
func countWords(body []byte) int {
	count := 0
	inFence := false
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		count += len(strings.FieldsFunc(trimmed, unicode.IsSpace))
	}
	return count
}

// readingMinutes converts a word count to whole minutes, always at least one
// for non-empty bodies.
func readingMinutes(words, perMinute int) int {
	if words <= 0 {
		return 0
	}
	if perMinute <= 0 {
		perMinute = defaultWordsPerMinute
	}
	minutes := (words + perMinute - 1) / perMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
