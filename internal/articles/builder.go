package articles

import (
	"encoding/hex"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goliatone/go-blog/internal/identity"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-slug"
)

const (
	defaultSummaryLength  = 240
	defaultWordsPerMinute = 220
)

// BuilderConfig controls how documents become articles.
type BuilderConfig struct {
	DefaultLocale  string
	SummaryLength  int
	WordsPerMinute int
	// DefaultTOC decides outline visibility when front matter does not say.
	DefaultTOC bool
}

// FromDocument derives an Article from a parsed Markdown document. Slug and
// title fall back to the source filename so bare documents still publish, and
// the article ID is deterministic for a given locale and slug.
func FromDocument(doc *interfaces.Document, cfg BuilderConfig) (*Article, error) {
	if doc == nil {
		return nil, ErrDocumentRequired
	}

	locale := strings.TrimSpace(doc.Locale)
	if locale == "" {
		locale = strings.TrimSpace(cfg.DefaultLocale)
	}

	fm := doc.FrontMatter
	articleSlug, err := resolveSlug(fm.Slug, fm.Title, fileStem(doc.FilePath))
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, doc.FilePath)
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = fallbackTitle(articleSlug)
	}

	status := strings.ToLower(strings.TrimSpace(fm.Status))
	if status == "" {
		status = StatusPublished
	}
	draft := fm.Draft || status == StatusDraft

	date := fm.Date
	if date.IsZero() {
		date = doc.LastModified
	}

	toc := cfg.DefaultTOC
	if fm.TOC != nil {
		toc = *fm.TOC
	}

	summary := strings.TrimSpace(fm.Summary)
	if summary == "" {
		summary = excerpt(doc.Body, summaryLength(cfg))
	}

	words := countWords(doc.Body)

	article := &Article{
		ID:           identity.ArticleUUID(locale, articleSlug),
		Locale:       locale,
		Slug:         articleSlug,
		Title:        title,
		Summary:      summary,
		Author:       strings.TrimSpace(fm.Author),
		Status:       status,
		Template:     strings.TrimSpace(fm.Template),
		Tags:         normalizeTags(fm.Tags),
		Date:         date,
		Updated:      doc.LastModified,
		Draft:        draft,
		Math:         strings.ToLower(strings.TrimSpace(fm.Math)),
		TOC:          toc,
		SourcePath:   doc.FilePath,
		Checksum:     hex.EncodeToString(doc.Checksum),
		BodyMarkdown: doc.Body,
		BodyHTML:     string(doc.BodyHTML),
		TOCHTML:      string(doc.TOCHTML),
		WordCount:    words,
		ReadingTime:  readingMinutes(words, cfg.WordsPerMinute),
		Custom:       fm.Custom,
	}
	return article, nil
}

// resolveSlug picks the first usable candidate and normalizes it.
func resolveSlug(candidates ...string) (string, error) {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		normalized, err := slug.Normalize(candidate)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrSlugInvalid, candidate)
		}
		if normalized != "" {
			return normalized, nil
		}
	}
	return "", ErrSlugRequired
}

// TagSlug normalizes a tag for use in URLs and file paths.
func TagSlug(tag string) string {
	normalized, err := slug.Normalize(tag)
	if err != nil || normalized == "" {
		return strings.ToLower(strings.TrimSpace(tag))
	}
	return normalized
}

func fileStem(filePath string) string {
	base := path.Base(filepath.ToSlash(filePath))
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	// Drop a trailing locale qualifier such as "post.fr".
	if idx := strings.LastIndex(stem, "."); idx > 0 {
		if qualifier := stem[idx+1:]; len(qualifier) == 2 || len(qualifier) == 5 {
			stem = stem[:idx]
		}
	}
	return stem
}

func fallbackTitle(articleSlug string) string {
	words := strings.Split(articleSlug, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		// Dedupe case-insensitively but keep the author's casing for display.
		folded := strings.ToLower(tag)
		if _, ok := seen[folded]; ok {
			continue
		}
		seen[folded] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func summaryLength(cfg BuilderConfig) int {
	if cfg.SummaryLength > 0 {
		return cfg.SummaryLength
	}
	return defaultSummaryLength
}

var (
	linkPattern   = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	inlineMarkers = strings.NewReplacer("**", "", "__", "", "*", "", "_", "", "`", "")
)

// excerpt extracts the first prose paragraph as a plain-text summary,
// truncated at a word boundary.
func excerpt(body []byte, limit int) string {
	for _, paragraph := range strings.Split(string(body), "\n\n") {
		text := strings.TrimSpace(paragraph)
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "#") || strings.HasPrefix(text, "```") ||
			strings.HasPrefix(text, "~~~") || strings.HasPrefix(text, "<") ||
			strings.HasPrefix(text, "![") {
			continue
		}

		text = linkPattern.ReplaceAllString(text, "$1")
		text = inlineMarkers.Replace(text)
		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			continue
		}
		return truncateWords(text, limit)
	}
	return ""
}

func truncateWords(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	cut := strings.LastIndex(text[:limit], " ")
	if cut <= 0 {
		cut = limit
	}
	return strings.TrimSpace(text[:cut])
}
