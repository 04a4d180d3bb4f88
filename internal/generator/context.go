package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/articles"
	"github.com/goliatone/go-blog/internal/themes"
	gotheme "github.com/goliatone/go-theme"
)

var (
	errSourceRequired = errors.New("generator: content source is required")
	errThemesRequired = errors.New("generator: theme service is required")
)

// PageKind distinguishes the page types a build emits.
type PageKind string

const (
	PageKindArticle     PageKind = "article"
	PageKindIndex       PageKind = "index"
	PageKindArchive     PageKind = "archive"
	PageKindArchiveYear PageKind = "archive_year"
	PageKindTags        PageKind = "tags"
	PageKindTag         PageKind = "tag"
)

// LocaleSpec captures resolved locale information for a build.
type LocaleSpec struct {
	Code      string
	IsDefault bool
}

// SiteMetadata exposes site-wide information to templates, feeds, and the
// sitemap.
type SiteMetadata struct {
	Title         string
	Description   string
	Author        string
	BaseURL       string
	Language      string
	Copyright     string
	DefaultLocale string
	Locales       []LocaleSpec
	Metadata      map[string]any
}

// DependencyMetadata tracks the hash and timestamp driving incremental skips.
type DependencyMetadata struct {
	Hash         string
	LastModified time.Time
}

// PageData describes one page/locale combination scheduled for rendering.
type PageData struct {
	Kind   PageKind
	Slug   string
	Locale LocaleSpec

	// Article is set for article pages; Articles carries the members of
	// listing pages (index, archive, tag).
	Article  *articles.Article
	Articles []*articles.Article
	Archives []articles.Archive
	Tag      *articles.TagGroup
	Tags     []articles.TagGroup
	Year     int

	// Newer and Older are the chronological neighbors of an article page.
	Newer *articles.Article
	Older *articles.Article

	Template  string
	Route     string
	Permalink string
	Metadata  DependencyMetadata
}

// BuildContext aggregates everything a build run needs.
type BuildContext struct {
	GeneratedAt   time.Time
	DefaultLocale string
	Locales       []LocaleSpec
	Collection    *articles.Collection
	Pages         []*PageData
	Theme         *themes.Theme
	Selection     *gotheme.Selection
	Links         *permalinks
	Assets        []string
	Styles        []string
	Options       BuildOptions
}

func (s *service) loadContext(ctx context.Context, opts BuildOptions) (*BuildContext, error) {
	if s.deps.Source == nil {
		return nil, errSourceRequired
	}
	if s.deps.Themes == nil {
		return nil, errThemesRequired
	}

	collection, err := s.deps.Source.Articles(ctx)
	if err != nil {
		return nil, fmt.Errorf("generator: load articles: %w", err)
	}
	if !s.cfg.IncludeDrafts {
		collection = collection.Published()
	}

	locales := s.resolveLocales(collection, opts)

	theme, err := s.deps.Themes.Get(s.cfg.Theme)
	if err != nil {
		return nil, err
	}
	selection, err := s.deps.Themes.Select(theme.Name, s.cfg.Variant)
	if err != nil {
		return nil, err
	}

	links, err := newPermalinks(s.cfg.BaseURL, s.cfg.DefaultLocale, locales)
	if err != nil {
		return nil, err
	}

	assets := themes.CollectAssets(theme, selection)

	buildCtx := &BuildContext{
		GeneratedAt:   s.now().UTC(),
		DefaultLocale: strings.TrimSpace(s.cfg.DefaultLocale),
		Locales:       locales,
		Collection:    collection,
		Theme:         theme,
		Selection:     selection,
		Links:         links,
		Assets:        assets,
		Styles:        styleSheets(assets),
		Options:       opts,
	}

	for _, locale := range locales {
		pages, err := s.localePages(buildCtx, locale, opts)
		if err != nil {
			return nil, err
		}
		buildCtx.Pages = append(buildCtx.Pages, pages...)
	}
	return buildCtx, nil
}

// resolveLocales orders the build locales with the default first. Explicitly
// configured locales win over the set discovered in the content directory.
func (s *service) resolveLocales(collection *articles.Collection, opts BuildOptions) []LocaleSpec {
	defaultCode := strings.TrimSpace(s.cfg.DefaultLocale)
	if defaultCode == "" {
		defaultCode = "en"
	}

	codes := make([]string, 0, len(s.cfg.Locales)+1)
	seen := map[string]struct{}{}
	add := func(code string) {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	add(defaultCode)
	for _, code := range s.cfg.Locales {
		add(code)
	}
	if len(s.cfg.Locales) == 0 {
		for _, code := range collection.Locales() {
			add(code)
		}
	}

	requested := map[string]struct{}{}
	for _, code := range opts.Locales {
		code = strings.ToLower(strings.TrimSpace(code))
		if code != "" {
			requested[code] = struct{}{}
		}
	}

	specs := make([]LocaleSpec, 0, len(codes))
	for _, code := range codes {
		if len(requested) > 0 {
			if _, ok := requested[code]; !ok {
				continue
			}
		}
		specs = append(specs, LocaleSpec{
			Code:      code,
			IsDefault: strings.EqualFold(code, defaultCode),
		})
	}
	return specs
}

// localePages expands one locale into its page list: every article plus the
// index, archive, and tag listings. Slug-scoped builds only touch the
// requested articles and skip the listings.
func (s *service) localePages(buildCtx *BuildContext, locale LocaleSpec, opts BuildOptions) ([]*PageData, error) {
	members := buildCtx.Collection.ByLocale(locale.Code)

	slugFilter := map[string]struct{}{}
	for _, slug := range opts.Slugs {
		slug = strings.ToLower(strings.TrimSpace(slug))
		if slug != "" {
			slugFilter[slug] = struct{}{}
		}
	}

	var pages []*PageData
	for _, article := range members {
		if len(slugFilter) > 0 {
			if _, ok := slugFilter[article.Slug]; !ok {
				continue
			}
		}
		page, err := s.articlePage(buildCtx, locale, article)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	if len(slugFilter) > 0 {
		return pages, nil
	}

	index, err := s.listingPage(buildCtx, locale, PageKindIndex, "index", templateIndex, members, routeHome, nil)
	if err != nil {
		return nil, err
	}
	pages = append(pages, index)

	archives := buildCtx.Collection.Archives(locale.Code)
	archive, err := s.listingPage(buildCtx, locale, PageKindArchive, "archive", templateArchive, members, routeArchive, nil)
	if err != nil {
		return nil, err
	}
	archive.Archives = archives
	pages = append(pages, archive)

	for _, group := range archives {
		year := group.Year
		page, err := s.listingPage(buildCtx, locale, PageKindArchiveYear,
			path.Join("archive", strconv.Itoa(year)), templateArchive, group.Articles,
			routeArchiveYear, map[string]any{"year": strconv.Itoa(year)})
		if err != nil {
			return nil, err
		}
		page.Archives = []articles.Archive{group}
		page.Year = year
		pages = append(pages, page)
	}

	tagGroups := buildCtx.Collection.Tags(locale.Code)
	tagsIndex, err := s.listingPage(buildCtx, locale, PageKindTags, "tags", templateTags, members, routeTags, nil)
	if err != nil {
		return nil, err
	}
	tagsIndex.Tags = tagGroups
	pages = append(pages, tagsIndex)

	for i := range tagGroups {
		group := tagGroups[i]
		page, err := s.listingPage(buildCtx, locale, PageKindTag,
			path.Join("tags", group.Slug), templateTag, group.Articles,
			routeTag, map[string]any{"tag": group.Slug})
		if err != nil {
			return nil, err
		}
		page.Tag = &group
		pages = append(pages, page)
	}

	return pages, nil
}

func (s *service) articlePage(buildCtx *BuildContext, locale LocaleSpec, article *articles.Article) (*PageData, error) {
	permalink, err := buildCtx.Links.articleURL(locale.Code, article.Slug)
	if err != nil {
		return nil, err
	}

	newer, older := buildCtx.Collection.Neighbors(article)

	template := article.Template
	if template == "" {
		template = strings.TrimSpace(s.cfg.Template)
	}
	if template == "" {
		template = templateArticle
	}

	return &PageData{
		Kind:      PageKindArticle,
		Slug:      article.Slug,
		Locale:    locale,
		Article:   article,
		Newer:     newer,
		Older:     older,
		Template:  template,
		Route:     buildCtx.Links.route(permalink),
		Permalink: permalink,
		Metadata: DependencyMetadata{
			Hash:         pageHash(article.Checksum, template),
			LastModified: latestTime(article.Date, article.Updated),
		},
	}, nil
}

func (s *service) listingPage(
	buildCtx *BuildContext,
	locale LocaleSpec,
	kind PageKind,
	slug string,
	template string,
	members []*articles.Article,
	route string,
	params map[string]any,
) (*PageData, error) {
	permalink, err := buildCtx.Links.build(locale.Code, route, params)
	if err != nil {
		return nil, err
	}

	var (
		parts   []string
		lastMod time.Time
	)
	for _, member := range members {
		parts = append(parts, member.Slug+"@"+member.Checksum)
		lastMod = latestTime(lastMod, member.Date, member.Updated)
	}

	return &PageData{
		Kind:      kind,
		Slug:      slug,
		Locale:    locale,
		Articles:  members,
		Template:  template,
		Route:     buildCtx.Links.route(permalink),
		Permalink: permalink,
		Metadata: DependencyMetadata{
			Hash:         pageHash(strings.Join(parts, ";"), template),
			LastModified: lastMod,
		},
	}, nil
}

// Template logical names resolved through the theme manifest.
const (
	templateArticle = "article"
	templateIndex   = "index"
	templateArchive = "archive"
	templateTags    = "tags"
	templateTag     = "tag"
)

func pageHash(content, template string) string {
	sum := sha256.Sum256([]byte(content + "|" + template))
	return hex.EncodeToString(sum[:])
}

func latestTime(instants ...time.Time) time.Time {
	var latest time.Time
	for _, ts := range instants {
		if ts.After(latest) {
			latest = ts
		}
	}
	return latest
}

// styleSheets filters theme assets down to stylesheets, preserving order.
func styleSheets(assets []string) []string {
	var styles []string
	for _, asset := range assets {
		if strings.EqualFold(path.Ext(asset), ".css") {
			styles = append(styles, asset)
		}
	}
	return styles
}
