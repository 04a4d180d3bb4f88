package generator

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
)

type feedItem struct {
	Title       string
	Summary     string
	Link        string
	GUID        string
	PublishedAt time.Time
	UpdatedAt   time.Time
}

type feedDocument struct {
	Locale LocaleSpec
	Items  []feedItem
}

// buildFeedDocuments groups article pages by locale into feed documents,
// newest first and capped at the configured item limit.
func (s *service) buildFeedDocuments(buildCtx *BuildContext) []feedDocument {
	if buildCtx == nil || len(buildCtx.Pages) == 0 {
		return nil
	}

	limit := s.cfg.FeedLimit
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	byLocale := make(map[string]*feedDocument)
	seen := make(map[string]map[string]struct{})

	for _, data := range buildCtx.Pages {
		if data == nil || data.Kind != PageKindArticle || data.Article == nil {
			continue
		}
		article := data.Article

		localeCode := data.Locale.Code
		doc := byLocale[localeCode]
		if doc == nil {
			doc = &feedDocument{Locale: data.Locale}
			byLocale[localeCode] = doc
			seen[localeCode] = map[string]struct{}{}
		}

		guid := strings.TrimSpace(data.Permalink)
		if guid == "" {
			guid = absoluteURL(s.cfg.BaseURL, data.Route)
		}
		if _, ok := seen[localeCode][guid]; ok {
			continue
		}
		seen[localeCode][guid] = struct{}{}

		title := strings.TrimSpace(article.Title)
		if title == "" {
			title = article.Slug
		}

		publishedAt := firstNonZeroTime(article.Date, data.Metadata.LastModified)
		if publishedAt.IsZero() {
			publishedAt = buildCtx.GeneratedAt
		}
		updatedAt := firstNonZeroTime(article.Updated, publishedAt)

		doc.Items = append(doc.Items, feedItem{
			Title:       title,
			Summary:     normalizeWhitespace(article.Summary),
			Link:        guid,
			GUID:        guid,
			PublishedAt: publishedAt,
			UpdatedAt:   updatedAt,
		})
	}

	docs := make([]feedDocument, 0, len(byLocale))
	for _, doc := range byLocale {
		if len(doc.Items) == 0 {
			continue
		}
		sort.Slice(doc.Items, func(i, j int) bool {
			left := doc.Items[i].PublishedAt
			if left.IsZero() {
				left = doc.Items[i].UpdatedAt
			}
			right := doc.Items[j].PublishedAt
			if right.IsZero() {
				right = doc.Items[j].UpdatedAt
			}
			if left.Equal(right) {
				return doc.Items[i].GUID < doc.Items[j].GUID
			}
			return left.After(right)
		})
		if len(doc.Items) > limit {
			doc.Items = append([]feedItem(nil), doc.Items[:limit]...)
		}
		docs = append(docs, *doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Locale.Code < docs[j].Locale.Code
	})
	return docs
}

func (s *service) writeFeeds(
	ctx context.Context,
	writer artifactWriter,
	siteMeta SiteMetadata,
	buildCtx *BuildContext,
	docs []feedDocument,
) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	dirCache := map[string]struct{}{}

	total := 0
	defaultRSSWritten := false
	defaultAtomWritten := false
	for _, doc := range docs {
		if len(doc.Items) == 0 {
			continue
		}
		rssContent := buildRSSFeed(siteMeta, doc, buildCtx.GeneratedAt)
		rssPath := fmt.Sprintf("feeds/%s.rss.xml", doc.Locale.Code)
		if err := ensureDir(ctx, writer, dirCache, "feeds"); err != nil {
			return total, err
		}
		if err := writer.WriteFile(ctx, writeFileRequest{
			Path:        rssPath,
			Content:     strings.NewReader(rssContent),
			Size:        int64(len(rssContent)),
			Locale:      doc.Locale.Code,
			Category:    categoryFeed,
			ContentType: "application/rss+xml",
			Checksum:    computeHashFromString(rssContent),
			Metadata:    feedMetadata(doc.Locale.Code, "rss", buildCtx.GeneratedAt, false),
		}); err != nil {
			return total, err
		}
		total++

		atomContent := buildAtomFeed(siteMeta, doc, buildCtx.GeneratedAt)
		atomPath := fmt.Sprintf("feeds/%s.atom.xml", doc.Locale.Code)
		if err := writer.WriteFile(ctx, writeFileRequest{
			Path:        atomPath,
			Content:     strings.NewReader(atomContent),
			Size:        int64(len(atomContent)),
			Locale:      doc.Locale.Code,
			Category:    categoryFeed,
			ContentType: "application/atom+xml",
			Checksum:    computeHashFromString(atomContent),
			Metadata:    feedMetadata(doc.Locale.Code, "atom", buildCtx.GeneratedAt, false),
		}); err != nil {
			return total, err
		}
		total++

		if doc.Locale.IsDefault {
			if !defaultRSSWritten {
				defaultRSSWritten = true
				if err := writer.WriteFile(ctx, writeFileRequest{
					Path:        "feed.xml",
					Content:     strings.NewReader(rssContent),
					Size:        int64(len(rssContent)),
					Locale:      doc.Locale.Code,
					Category:    categoryFeed,
					ContentType: "application/rss+xml",
					Checksum:    computeHashFromString(rssContent),
					Metadata:    feedMetadata(doc.Locale.Code, "rss", buildCtx.GeneratedAt, true),
				}); err != nil {
					return total, err
				}
				total++
			}
			if !defaultAtomWritten {
				defaultAtomWritten = true
				if err := writer.WriteFile(ctx, writeFileRequest{
					Path:        "feed.atom.xml",
					Content:     strings.NewReader(atomContent),
					Size:        int64(len(atomContent)),
					Locale:      doc.Locale.Code,
					Category:    categoryFeed,
					ContentType: "application/atom+xml",
					Checksum:    computeHashFromString(atomContent),
					Metadata:    feedMetadata(doc.Locale.Code, "atom", buildCtx.GeneratedAt, true),
				}); err != nil {
					return total, err
				}
				total++
			}
		}
	}
	return total, nil
}

func buildRSSFeed(site SiteMetadata, doc feedDocument, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(site.BaseURL)
	title := feedTitleForLocale(site, doc.Locale)
	description := feedDescriptionForLocale(site, doc.Locale)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(baseLink)))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(description)))
	builder.WriteString(fmt.Sprintf("    <language>%s</language>\n", escapeXML(doc.Locale.Code)))
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", generatedAt.UTC().Format(time.RFC1123Z)))
	for _, item := range doc.Items {
		pub := item.PublishedAt
		if pub.IsZero() {
			pub = generatedAt
		}
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf("      <guid>%s</guid>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", pub.UTC().Format(time.RFC1123Z)))
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString(`</rss>` + "\n")
	return builder.String()
}

func buildAtomFeed(site SiteMetadata, doc feedDocument, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(site.BaseURL)
	feedID := fmt.Sprintf("%s/feeds/%s.atom.xml", baseLink, doc.Locale.Code)
	title := feedTitleForLocale(site, doc.Locale)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="%s">`+"\n", escapeXMLAttr(doc.Locale.Code)))
	builder.WriteString(fmt.Sprintf("  <id>%s</id>\n", escapeXML(feedID)))
	builder.WriteString(fmt.Sprintf("  <title>%s</title>\n", escapeXML(title)))
	builder.WriteString(fmt.Sprintf("  <updated>%s</updated>\n", generatedAt.UTC().Format(time.RFC3339)))
	if author := strings.TrimSpace(site.Author); author != "" {
		builder.WriteString("  <author>\n")
		builder.WriteString(fmt.Sprintf("    <name>%s</name>\n", escapeXML(author)))
		builder.WriteString("  </author>\n")
	}
	builder.WriteString(fmt.Sprintf(`  <link rel="alternate" href="%s" />`+"\n", escapeXMLAttr(baseLink)))
	builder.WriteString(fmt.Sprintf(`  <link rel="self" href="%s" />`+"\n", escapeXMLAttr(feedID)))
	for _, item := range doc.Items {
		updated := item.UpdatedAt
		if updated.IsZero() {
			updated = item.PublishedAt
		}
		if updated.IsZero() {
			updated = generatedAt
		}
		builder.WriteString("  <entry>\n")
		builder.WriteString(fmt.Sprintf("    <id>%s</id>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf(`    <link href="%s" />`+"\n", escapeXMLAttr(item.Link)))
		builder.WriteString(fmt.Sprintf("    <updated>%s</updated>\n", updated.UTC().Format(time.RFC3339)))
		if !item.PublishedAt.IsZero() {
			builder.WriteString(fmt.Sprintf("    <published>%s</published>\n", item.PublishedAt.UTC().Format(time.RFC3339)))
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("    <summary>%s</summary>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("  </entry>\n")
	}
	builder.WriteString(`</feed>` + "\n")
	return builder.String()
}

func feedMetadata(locale, feedType string, generatedAt time.Time, alias bool) map[string]string {
	meta := map[string]string{
		"generated_at": generatedAt.UTC().Format(time.RFC3339),
		"feed_type":    feedType,
	}
	if strings.TrimSpace(locale) != "" {
		meta["locale"] = locale
	}
	if alias {
		meta["alias"] = "true"
	}
	return meta
}

func feedTitleForLocale(site SiteMetadata, locale LocaleSpec) string {
	base := siteTitle(site)
	if locale.IsDefault || strings.TrimSpace(locale.Code) == "" {
		return base
	}
	return fmt.Sprintf("%s (%s)", base, strings.ToUpper(locale.Code))
}

func feedDescriptionForLocale(site SiteMetadata, locale LocaleSpec) string {
	if desc := strings.TrimSpace(site.Description); desc != "" {
		return desc
	}
	if locale.IsDefault {
		return "Latest articles"
	}
	return fmt.Sprintf("Latest articles for %s", strings.ToUpper(locale.Code))
}

func siteTitle(site SiteMetadata) string {
	if title := strings.TrimSpace(site.Title); title != "" {
		return title
	}
	if site.Metadata != nil {
		if title, ok := site.Metadata["title"].(string); ok && strings.TrimSpace(title) != "" {
			return strings.TrimSpace(title)
		}
	}
	if base := strings.TrimSpace(site.BaseURL); base != "" {
		return base
	}
	return "Blog"
}

func baseURLWithFallback(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
}

func absoluteURL(base, route string) string {
	targetBase := baseURLWithFallback(base)
	normalized := strings.TrimSpace(route)
	if normalized == "" {
		return targetBase
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return targetBase + normalized
}

func firstNonZeroTime(instants ...time.Time) time.Time {
	for _, ts := range instants {
		if !ts.IsZero() {
			return ts
		}
	}
	return time.Time{}
}

func normalizeWhitespace(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.Join(strings.Fields(input), " ")
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}

func escapeXMLAttr(value string) string {
	return html.EscapeString(value)
}
