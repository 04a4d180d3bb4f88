package generator

import (
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/articles"
	"github.com/goliatone/go-blog/internal/markdown"
	gotheme "github.com/goliatone/go-theme"
)

// TemplateContext is the data contract handed to the template renderer. Map
// converts it to the key/value form the pongo2 renderer consumes; the keys
// are the identifiers theme templates reference.
type TemplateContext struct {
	Site    SiteMetadata
	Page    PageView
	Article *ArticleView
	Entries []*ArticleView
	Groups  []ArchiveView
	Tag     *TagView
	Tags    []TagView
	Build   BuildMetadata
	Theme   ThemeContext
	Helpers TemplateHelpers
}

// Map flattens the context for the renderer. Nil sections still register
// their key so templates can probe with {% if %} without erroring.
func (c TemplateContext) Map() map[string]any {
	return map[string]any{
		"site":     c.Site,
		"page":     c.Page,
		"article":  c.Article,
		"articles": c.Entries,
		"archives": c.Groups,
		"tag":      c.Tag,
		"tags":     c.Tags,
		"build":    c.Build,
		"theme":    c.Theme,
		"helpers":  c.Helpers,
	}
}

// BuildMetadata surfaces high level build information to templates.
type BuildMetadata struct {
	GeneratedAt time.Time
	Options     BuildOptions
}

// ArticleView is the template-facing projection of an article.
type ArticleView struct {
	Title       string
	Slug        string
	Locale      string
	Summary     string
	Author      string
	Date        time.Time
	Updated     time.Time
	Tags        []string
	URL         string
	WordCount   int
	ReadingTime int
	BodyHTML    string
	TOCHTML     string
	Custom      map[string]any
}

// ArchiveView groups article views by publication year.
type ArchiveView struct {
	Year     int
	Articles []*ArticleView
}

// TagView carries tag listing data.
type TagView struct {
	Name  string
	Slug  string
	URL   string
	Count int
}

// PageView carries page-level presentation data shared by every template.
type PageView struct {
	Kind        string
	Locale      string
	Title       string
	Description string
	Canonical   string
	Styles      []string
	MathScripts string
	Newer       *ArticleView
	Older       *ArticleView
	Year        int
}

// ThemeContext surfaces go-theme selection data to templates.
type ThemeContext struct {
	Name     string
	Variant  string
	Tokens   map[string]string
	CSSVars  map[string]string
	Partials map[string]string
	AssetURL func(string) string
}

// TemplateHelpers exposes URL helpers to template authors.
type TemplateHelpers struct {
	locale        LocaleSpec
	defaultLocale string
	baseURL       string
	links         *permalinks
}

func newTemplateHelpers(defaultLocale string, locale LocaleSpec, baseURL string, links *permalinks) TemplateHelpers {
	return TemplateHelpers{
		locale:        locale,
		defaultLocale: defaultLocale,
		baseURL:       strings.TrimRight(baseURL, "/"),
		links:         links,
	}
}

// Locale returns the active locale code.
func (h TemplateHelpers) Locale() string {
	return h.locale.Code
}

// IsLocale reports whether the provided locale code matches the active locale.
func (h TemplateHelpers) IsLocale(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), h.locale.Code)
}

// IsDefaultLocale reports whether the current locale is the configured default.
func (h TemplateHelpers) IsDefaultLocale() bool {
	return strings.EqualFold(h.locale.Code, h.defaultLocale)
}

// BaseURL returns the configured site base URL.
func (h TemplateHelpers) BaseURL() string {
	return h.baseURL
}

// WithBaseURL prefixes the provided path with the configured base URL.
func (h TemplateHelpers) WithBaseURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return h.baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if h.baseURL == "" {
		return path
	}
	return h.baseURL + path
}

// LocalePrefix returns the locale aware prefix for paths.
func (h TemplateHelpers) LocalePrefix() string {
	if h.IsDefaultLocale() {
		return ""
	}
	return "/" + strings.TrimPrefix(strings.TrimSpace(h.locale.Code), "/")
}

// HomeURL resolves the index permalink for the active locale.
func (h TemplateHelpers) HomeURL() string {
	if h.links == nil {
		return h.WithBaseURL(h.LocalePrefix() + "/")
	}
	url, err := h.links.homeURL(h.locale.Code)
	if err != nil {
		return h.WithBaseURL(h.LocalePrefix() + "/")
	}
	return url
}

// ArticleURL resolves the permalink of an article in the active locale.
func (h TemplateHelpers) ArticleURL(slug string) string {
	if h.links == nil {
		return h.WithBaseURL(slug + "/")
	}
	url, err := h.links.articleURL(h.locale.Code, slug)
	if err != nil {
		return h.WithBaseURL(slug + "/")
	}
	return url
}

// TagURL resolves the permalink of a tag listing in the active locale.
func (h TemplateHelpers) TagURL(tag string) string {
	slug := articles.TagSlug(tag)
	if h.links == nil {
		return h.WithBaseURL(path.Join("tags", slug) + "/")
	}
	url, err := h.links.tagURL(h.locale.Code, slug)
	if err != nil {
		return h.WithBaseURL(path.Join("tags", slug) + "/")
	}
	return url
}

// ArchiveURL resolves the archive listing permalink for the active locale.
func (h TemplateHelpers) ArchiveURL() string {
	if h.links == nil {
		return h.WithBaseURL("archive/")
	}
	url, err := h.links.archiveURL(h.locale.Code)
	if err != nil {
		return h.WithBaseURL("archive/")
	}
	return url
}

// ArchiveYearURL resolves a single year's archive permalink.
func (h TemplateHelpers) ArchiveYearURL(year int) string {
	fallback := h.WithBaseURL(path.Join("archive", strconv.Itoa(year)) + "/")
	if h.links == nil {
		return fallback
	}
	url, err := h.links.archiveYearURL(h.locale.Code, year)
	if err != nil {
		return fallback
	}
	return url
}

// TagsURL resolves the tag index permalink for the active locale.
func (h TemplateHelpers) TagsURL() string {
	if h.links == nil {
		return h.WithBaseURL("tags/")
	}
	url, err := h.links.tagsURL(h.locale.Code)
	if err != nil {
		return h.WithBaseURL("tags/")
	}
	return url
}

// RenderedPage captures the rendered HTML output for a page.
type RenderedPage struct {
	Kind     PageKind
	Slug     string
	Locale   string
	Route    string
	Output   string
	Template string
	HTML     string
	Metadata DependencyMetadata
	Duration time.Duration
	Checksum string
}

// RenderDiagnostic records rendering timing and errors for individual pages.
type RenderDiagnostic struct {
	Slug     string
	Locale   string
	Route    string
	Template string
	Duration time.Duration
	Skipped  bool
	Err      error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	err        error
	skipped    bool
}

// templateContext assembles the render context for a single page.
func (s *service) templateContext(siteMeta SiteMetadata, buildCtx *BuildContext, data *PageData) TemplateContext {
	helpers := newTemplateHelpers(siteMeta.DefaultLocale, data.Locale, siteMeta.BaseURL, buildCtx.Links)

	view := PageView{
		Kind:      string(data.Kind),
		Locale:    data.Locale.Code,
		Canonical: data.Permalink,
		Styles:    assetURLs(helpers, buildCtx.Styles),
		Year:      data.Year,
	}

	ctx := TemplateContext{
		Site:    siteMeta,
		Build:   BuildMetadata{GeneratedAt: buildCtx.GeneratedAt, Options: buildCtx.Options},
		Theme:   buildThemeContext(buildCtx.Selection, helpers),
		Helpers: helpers,
	}

	switch data.Kind {
	case PageKindArticle:
		article := s.articleView(buildCtx, data.Locale, data.Article)
		view.Title = article.Title
		view.Description = article.Summary
		view.MathScripts = markdown.MathScriptTags(s.articleMathMode(data.Article))
		if data.Newer != nil {
			view.Newer = s.articleView(buildCtx, data.Locale, data.Newer)
		}
		if data.Older != nil {
			view.Older = s.articleView(buildCtx, data.Locale, data.Older)
		}
		ctx.Article = article
	default:
		view.Title = listingTitle(data, siteMeta)
		view.Description = strings.TrimSpace(siteMeta.Description)
		ctx.Entries = s.articleViews(buildCtx, data.Locale, data.Articles)
		if len(data.Archives) > 0 {
			ctx.Groups = make([]ArchiveView, 0, len(data.Archives))
			for _, group := range data.Archives {
				ctx.Groups = append(ctx.Groups, ArchiveView{
					Year:     group.Year,
					Articles: s.articleViews(buildCtx, data.Locale, group.Articles),
				})
			}
		}
		if data.Tag != nil {
			ctx.Tag = &TagView{
				Name:  data.Tag.Name,
				Slug:  data.Tag.Slug,
				URL:   helpers.TagURL(data.Tag.Name),
				Count: len(data.Articles),
			}
		}
		if len(data.Tags) > 0 {
			ctx.Tags = make([]TagView, 0, len(data.Tags))
			for _, group := range data.Tags {
				ctx.Tags = append(ctx.Tags, TagView{
					Name:  group.Name,
					Slug:  group.Slug,
					URL:   helpers.TagURL(group.Name),
					Count: len(group.Articles),
				})
			}
		}
	}

	ctx.Page = view
	return ctx
}

func (s *service) articleView(buildCtx *BuildContext, locale LocaleSpec, article *articles.Article) *ArticleView {
	if article == nil {
		return nil
	}
	url, err := buildCtx.Links.articleURL(locale.Code, article.Slug)
	if err != nil {
		url = "/" + article.Slug + "/"
	}
	return &ArticleView{
		Title:       article.Title,
		Slug:        article.Slug,
		Locale:      article.Locale,
		Summary:     article.Summary,
		Author:      article.Author,
		Date:        article.Date,
		Updated:     article.Updated,
		Tags:        article.Tags,
		URL:         url,
		WordCount:   article.WordCount,
		ReadingTime: article.ReadingTime,
		BodyHTML:    article.BodyHTML,
		TOCHTML:     articleTOC(article),
		Custom:      article.Custom,
	}
}

func (s *service) articleViews(buildCtx *BuildContext, locale LocaleSpec, members []*articles.Article) []*ArticleView {
	views := make([]*ArticleView, 0, len(members))
	for _, member := range members {
		views = append(views, s.articleView(buildCtx, locale, member))
	}
	return views
}

// articleMathMode resolves the per-article math override against the build
// default.
func (s *service) articleMathMode(article *articles.Article) string {
	if article != nil && strings.TrimSpace(article.Math) != "" {
		return article.Math
	}
	return s.cfg.MathMode
}

func articleTOC(article *articles.Article) string {
	if article == nil || !article.TOC {
		return ""
	}
	return article.TOCHTML
}

func listingTitle(data *PageData, siteMeta SiteMetadata) string {
	switch data.Kind {
	case PageKindIndex:
		return strings.TrimSpace(siteMeta.Title)
	case PageKindArchive:
		return "Archive"
	case PageKindArchiveYear:
		return "Archive " + strings.TrimSpace(data.Slug[strings.LastIndex(data.Slug, "/")+1:])
	case PageKindTags:
		return "Tags"
	case PageKindTag:
		if data.Tag != nil {
			return data.Tag.Name
		}
		return "Tag"
	default:
		return strings.TrimSpace(siteMeta.Title)
	}
}

func assetURLs(helpers TemplateHelpers, assets []string) []string {
	urls := make([]string, 0, len(assets))
	for _, asset := range assets {
		urls = append(urls, helpers.WithBaseURL(path.Clean(asset)))
	}
	return urls
}

func buildThemeContext(selection *gotheme.Selection, helpers TemplateHelpers) ThemeContext {
	empty := ThemeContext{
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		Partials: map[string]string{},
		AssetURL: func(string) string { return "" },
	}
	if selection == nil {
		return empty
	}

	return ThemeContext{
		Name:     selection.Theme,
		Variant:  selection.Variant,
		Tokens:   selection.Tokens(),
		CSSVars:  selection.CSSVariables(""),
		Partials: selection.Partials(nil),
		AssetURL: func(key string) string {
			asset, ok := selection.Asset(key)
			if !ok {
				return ""
			}
			return helpers.WithBaseURL(path.Clean(asset))
		},
	}
}
