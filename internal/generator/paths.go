package generator

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

const siteRouteGroup = "site"

const (
	routeHome        = "home"
	routeArticle     = "article"
	routeArchive     = "archive"
	routeArchiveYear = "archive_year"
	routeTags        = "tags"
	routeTag         = "tag"
)

// permalinks builds site URLs through a go-urlkit route manager. The root
// group owns the default locale routes; every additional locale gets a child
// group scoped under /<code> so localized pages share the same route names.
type permalinks struct {
	baseURL       string
	defaultLocale string
	groups        map[string]*urlkit.Group
}

func newPermalinks(baseURL, defaultLocale string, locales []LocaleSpec) (*permalinks, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	routes := map[string]string{
		routeHome:        "/",
		routeArticle:     "/:slug",
		routeArchive:     "/archive",
		routeArchiveYear: "/archive/:year",
		routeTags:        "/tags",
		routeTag:         "/tags/:tag",
	}

	root := urlkit.GroupConfig{
		Name:    siteRouteGroup,
		BaseURL: base,
		Paths:   routes,
	}
	for _, locale := range locales {
		code := strings.TrimSpace(locale.Code)
		if code == "" || locale.IsDefault {
			continue
		}
		root.Groups = append(root.Groups, urlkit.GroupConfig{
			Name:  code,
			Path:  "/" + code,
			Paths: routes,
		})
	}

	manager := urlkit.NewRouteManager(&urlkit.Config{Groups: []urlkit.GroupConfig{root}})

	siteGroup, err := lookupRouteGroup(manager, siteRouteGroup)
	if err != nil {
		return nil, err
	}
	groups := map[string]*urlkit.Group{"": siteGroup}
	defaultCode := strings.TrimSpace(defaultLocale)
	if defaultCode != "" {
		groups[strings.ToLower(defaultCode)] = siteGroup
	}
	for _, locale := range locales {
		code := strings.TrimSpace(locale.Code)
		if code == "" || locale.IsDefault {
			continue
		}
		child, err := lookupLocaleGroup(siteGroup, code)
		if err != nil {
			return nil, err
		}
		groups[strings.ToLower(code)] = child
	}

	return &permalinks{
		baseURL:       base,
		defaultLocale: defaultCode,
		groups:        groups,
	}, nil
}

func (p *permalinks) homeURL(locale string) (string, error) {
	return p.build(locale, routeHome, nil)
}

func (p *permalinks) articleURL(locale, slug string) (string, error) {
	return p.build(locale, routeArticle, map[string]any{"slug": slug})
}

func (p *permalinks) archiveURL(locale string) (string, error) {
	return p.build(locale, routeArchive, nil)
}

func (p *permalinks) archiveYearURL(locale string, year int) (string, error) {
	return p.build(locale, routeArchiveYear, map[string]any{"year": strconv.Itoa(year)})
}

func (p *permalinks) tagsURL(locale string) (string, error) {
	return p.build(locale, routeTags, nil)
}

func (p *permalinks) tagURL(locale, tagSlug string) (string, error) {
	return p.build(locale, routeTag, map[string]any{"tag": tagSlug})
}

// route converts an absolute permalink back into its site relative form used
// for output paths and sitemap bookkeeping.
func (p *permalinks) route(url string) string {
	trimmed := strings.TrimSpace(url)
	if p.baseURL != "" {
		trimmed = strings.TrimPrefix(trimmed, p.baseURL)
	}
	if trimmed == "" {
		return "/"
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return trimmed
}

func (p *permalinks) build(locale, route string, params map[string]any) (string, error) {
	group, err := p.group(locale)
	if err != nil {
		return "", err
	}
	builder, err := safeRouteBuilder(group, route)
	if err != nil {
		return "", err
	}
	for key, value := range params {
		builder.WithParam(key, value)
	}
	url, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("generator: build %s url: %w", route, err)
	}
	return ensureTrailingSlash(url), nil
}

func (p *permalinks) group(locale string) (*urlkit.Group, error) {
	key := strings.ToLower(strings.TrimSpace(locale))
	if group, ok := p.groups[key]; ok && group != nil {
		return group, nil
	}
	if group, ok := p.groups[""]; ok && group != nil {
		return group, nil
	}
	return nil, fmt.Errorf("generator: no route group for locale %q", locale)
}

// ensureTrailingSlash normalizes directory style permalinks. Every generated
// page is a directory index, so canonical URLs end with a slash.
func ensureTrailingSlash(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return "/"
	}
	if strings.HasSuffix(url, "/") {
		return url
	}
	return url + "/"
}

func lookupRouteGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("generator: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}

func lookupLocaleGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	if parent == nil {
		return nil, fmt.Errorf("generator: parent route group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: locale route group %q not found", name)
		}
	}()
	group = parent.Group(name)
	return group, err
}

func safeRouteBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("generator: route group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("generator: route %q not registered", route)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}

// buildOutputPath maps a site relative route and locale onto the file path of
// the rendered page inside the output root. Default locale pages land at the
// route itself, localized pages under their locale directory, and every page
// becomes a directory index so URLs stay extension free.
func buildOutputPath(route string, locale string, defaultLocale string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		route = "/"
	}
	clean := strings.Trim(route, " \t\r\n/")
	locale = strings.TrimSpace(locale)
	defaultLocale = strings.TrimSpace(defaultLocale)

	if locale == "" && defaultLocale != "" {
		locale = defaultLocale
	}

	if locale == "" || strings.EqualFold(locale, defaultLocale) {
		if clean == "" {
			return "index.html"
		}
		return path.Join(clean, "index.html")
	}

	segments := []string{}
	if clean != "" {
		segments = strings.Split(clean, "/")
		if len(segments) > 0 && strings.EqualFold(segments[0], locale) {
			segments = segments[1:]
		}
	}

	if len(segments) == 0 {
		return path.Join(locale, "index.html")
	}

	routePart := path.Join(segments...)
	if routePart == "" || routePart == "." {
		return path.Join(locale, "index.html")
	}
	return path.Join(locale, routePart, "index.html")
}
