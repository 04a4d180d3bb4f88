package articles

import (
	"fmt"
	"slices"
	"strings"
)

// Collection holds a fully ordered set of articles with locale and slug
// indexes. Ordering is publication date descending, then slug, then locale,
// so repeated builds emit pages in the same sequence.
type Collection struct {
	items []*Article
	byKey map[string]*Article
}

// NewCollection indexes and orders the supplied articles. A locale and slug
// pair may only appear once.
func NewCollection(items []*Article) (*Collection, error) {
	c := &Collection{
		byKey: make(map[string]*Article, len(items)),
	}

	for _, article := range items {
		if article == nil {
			continue
		}
		key := articleKey(article.Locale, article.Slug)
		if existing, ok := c.byKey[key]; ok {
			return nil, fmt.Errorf("%w: %s (%s and %s)",
				ErrDuplicateArticle, key, existing.SourcePath, article.SourcePath)
		}
		c.byKey[key] = article
		c.items = append(c.items, article)
	}

	slices.SortFunc(c.items, compareArticles)
	return c, nil
}

func compareArticles(a, b *Article) int {
	if !a.Date.Equal(b.Date) {
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	}
	if cmp := strings.Compare(a.Slug, b.Slug); cmp != 0 {
		return cmp
	}
	return strings.Compare(a.Locale, b.Locale)
}

// Len reports the number of indexed articles.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// All returns every article in publication order.
func (c *Collection) All() []*Article {
	if c == nil {
		return nil
	}
	return c.items
}

// ByLocale returns the locale's articles in publication order.
func (c *Collection) ByLocale(locale string) []*Article {
	if c == nil {
		return nil
	}
	var out []*Article
	for _, article := range c.items {
		if article.Locale == locale {
			out = append(out, article)
		}
	}
	return out
}

// BySlug resolves a single article by locale and slug.
func (c *Collection) BySlug(locale, slug string) (*Article, error) {
	if c != nil {
		if article, ok := c.byKey[articleKey(locale, slug)]; ok {
			return article, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrArticleNotFound, articleKey(locale, slug))
}

// Published returns a collection limited to non-draft articles.
func (c *Collection) Published() *Collection {
	if c == nil {
		return nil
	}
	out := &Collection{
		byKey: make(map[string]*Article, len(c.items)),
	}
	for _, article := range c.items {
		if !article.Published() {
			continue
		}
		out.items = append(out.items, article)
		out.byKey[articleKey(article.Locale, article.Slug)] = article
	}
	return out
}

// Locales lists every locale present, sorted.
func (c *Collection) Locales() []string {
	if c == nil {
		return nil
	}
	var locales []string
	seen := map[string]struct{}{}
	for _, article := range c.items {
		if _, ok := seen[article.Locale]; ok {
			continue
		}
		seen[article.Locale] = struct{}{}
		locales = append(locales, article.Locale)
	}
	slices.Sort(locales)
	return locales
}

// Neighbors returns the chronologically adjacent articles within the same
// locale. newer is the next more recent entry, older the next less recent;
// either may be nil at the edges of the timeline.
func (c *Collection) Neighbors(article *Article) (newer, older *Article) {
	if c == nil || article == nil {
		return nil, nil
	}
	siblings := c.ByLocale(article.Locale)
	for i, candidate := range siblings {
		if candidate != article {
			continue
		}
		if i > 0 {
			newer = siblings[i-1]
		}
		if i+1 < len(siblings) {
			older = siblings[i+1]
		}
		return newer, older
	}
	return nil, nil
}

// Archive groups a locale's articles by publication year.
type Archive struct {
	Year     int
	Articles []*Article
}

// Archives returns the locale's articles grouped by year, newest year first.
func (c *Collection) Archives(locale string) []Archive {
	grouped := map[int][]*Article{}
	var years []int
	for _, article := range c.ByLocale(locale) {
		year := article.Year()
		if _, ok := grouped[year]; !ok {
			years = append(years, year)
		}
		grouped[year] = append(grouped[year], article)
	}

	slices.Sort(years)
	slices.Reverse(years)

	out := make([]Archive, 0, len(years))
	for _, year := range years {
		out = append(out, Archive{Year: year, Articles: grouped[year]})
	}
	return out
}

// TagGroup collects a locale's articles that share a tag.
type TagGroup struct {
	Name     string
	Slug     string
	Articles []*Article
}

// Tags returns the locale's tag groups sorted by article count descending,
// then tag name. Grouping is case-insensitive; the display name keeps the
// casing of the first article that used the tag. Articles within a group
// keep publication order.
func (c *Collection) Tags(locale string) []TagGroup {
	grouped := map[string][]*Article{}
	display := map[string]string{}
	var keys []string
	for _, article := range c.ByLocale(locale) {
		for _, tag := range article.Tags {
			key := strings.ToLower(tag)
			if _, ok := grouped[key]; !ok {
				keys = append(keys, key)
				display[key] = tag
			}
			grouped[key] = append(grouped[key], article)
		}
	}

	out := make([]TagGroup, 0, len(keys))
	for _, key := range keys {
		out = append(out, TagGroup{
			Name:     display[key],
			Slug:     TagSlug(key),
			Articles: grouped[key],
		})
	}
	slices.SortFunc(out, func(a, b TagGroup) int {
		if len(a.Articles) != len(b.Articles) {
			return len(b.Articles) - len(a.Articles)
		}
		return strings.Compare(a.Slug, b.Slug)
	})
	return out
}

func articleKey(locale, slug string) string {
	return locale + "/" + slug
}
