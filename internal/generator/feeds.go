package generator

import (
	"context"
	"fmt"
	"html"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-sitekit/site"
)

const maxFeedItems = 100

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

func buildFeedDocuments(buildCtx *BuildContext) []feedDocument {
	if buildCtx == nil || len(buildCtx.Posts) == 0 {
		return nil
	}

	postsRoute := buildCtx.collectionRoute(site.CollectionPosts)

	docs := make([]feedDocument, 0, len(buildCtx.Locales))
	for _, locale := range buildCtx.Locales {
		doc := feedDocument{Locale: locale}
		for _, post := range buildCtx.Posts {
			if post.Draft {
				continue
			}

			route := joinRoute(postsRoute, post.Slug)
			publishedAt := time.Time{}
			if post.PublishedAt != nil {
				publishedAt = post.PublishedAt.UTC()
			}
			updatedAt := publishedAt
			if post.UpdatedAt != nil {
				updatedAt = post.UpdatedAt.UTC()
			}

			doc.Items = append(doc.Items, feedItem{
				Title:       post.Title,
				Summary:     normalizeWhitespace(post.Summary),
				Link:        documentURL(buildCtx.Site.BaseURL, route, locale, buildCtx.DefaultLocale),
				GUID:        fmt.Sprintf("%s:%s", post.ID.String(), locale.Code),
				PublishedAt: publishedAt,
				UpdatedAt:   updatedAt,
			})
		}
		if len(doc.Items) == 0 {
			continue
		}

		sort.Slice(doc.Items, func(i, j int) bool {
			left, right := doc.Items[i].PublishedAt, doc.Items[j].PublishedAt
			if left.Equal(right) {
				return doc.Items[i].GUID < doc.Items[j].GUID
			}
			return left.After(right)
		})
		if len(doc.Items) > maxFeedItems {
			doc.Items = append([]feedItem(nil), doc.Items[:maxFeedItems]...)
		}
		docs = append(docs, doc)
	}
	return docs
}

func (s *service) writeFeeds(ctx context.Context, writer artifactWriter, buildCtx *BuildContext, docs []feedDocument) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	meta := siteMetadata(buildCtx.Site)
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	dirCache := map[string]struct{}{}

	total := 0
	write := func(relPath, content, contentType, feedType string, locale LocaleSpec, alias bool) error {
		outPath := joinOutputPath(baseDir, relPath)
		if err := ensureDir(ctx, writer, dirCache, path.Dir(outPath)); err != nil {
			return err
		}
		if err := writer.WriteFile(ctx, writeFileRequest{
			Path:        outPath,
			Content:     strings.NewReader(content),
			Size:        int64(len(content)),
			Locale:      locale.Code,
			Category:    categoryFeed,
			ContentType: contentType,
			Checksum:    computeHashFromString(content),
			Metadata:    feedMetadata(locale.Code, feedType, buildCtx.GeneratedAt, alias),
		}); err != nil {
			return err
		}
		total++
		return nil
	}

	for _, doc := range docs {
		rssContent := buildRSSFeed(meta, doc, buildCtx.GeneratedAt)
		atomContent := buildAtomFeed(meta, doc, buildCtx.GeneratedAt)

		rssPath := path.Join("feeds", fmt.Sprintf("%s.rss.xml", doc.Locale.Code))
		atomPath := path.Join("feeds", fmt.Sprintf("%s.atom.xml", doc.Locale.Code))
		if err := write(rssPath, rssContent, "application/rss+xml", "rss", doc.Locale, false); err != nil {
			return total, err
		}
		if err := write(atomPath, atomContent, "application/atom+xml", "atom", doc.Locale, false); err != nil {
			return total, err
		}

		if doc.Locale.IsDefault {
			if err := write("feed.xml", rssContent, "application/rss+xml", "rss", doc.Locale, true); err != nil {
				return total, err
			}
			if err := write("feed.atom.xml", atomContent, "application/atom+xml", "atom", doc.Locale, true); err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

func buildRSSFeed(meta SiteMetadata, doc feedDocument, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(meta.BaseURL)
	title := feedTitleForLocale(meta, doc.Locale)
	description := feedDescriptionForLocale(meta, doc.Locale)

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
		builder.WriteString(fmt.Sprintf("      <guid isPermaLink=\"false\">%s</guid>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", pub.UTC().Format(time.RFC1123Z)))
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString("</rss>\n")
	return builder.String()
}

func buildAtomFeed(meta SiteMetadata, doc feedDocument, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(meta.BaseURL)
	feedID := fmt.Sprintf("%s/feeds/%s.atom.xml", baseLink, doc.Locale.Code)
	title := feedTitleForLocale(meta, doc.Locale)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="%s">`+"\n", escapeXMLAttr(doc.Locale.Code)))
	builder.WriteString(fmt.Sprintf("  <id>%s</id>\n", escapeXML(feedID)))
	builder.WriteString(fmt.Sprintf("  <title>%s</title>\n", escapeXML(title)))
	builder.WriteString(fmt.Sprintf("  <updated>%s</updated>\n", generatedAt.UTC().Format(time.RFC3339)))
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
		builder.WriteString(fmt.Sprintf("    <id>%s</id>\n", escapeXML("urn:sitekit:"+item.GUID)))
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
	builder.WriteString("</feed>\n")
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

func feedTitleForLocale(meta SiteMetadata, locale LocaleSpec) string {
	base := strings.TrimSpace(meta.Name)
	if base == "" {
		base = baseURLWithFallback(meta.BaseURL)
	}
	if locale.IsDefault || strings.TrimSpace(locale.Code) == "" {
		return base
	}
	return fmt.Sprintf("%s (%s)", base, strings.ToUpper(locale.Code))
}

func feedDescriptionForLocale(meta SiteMetadata, locale LocaleSpec) string {
	if desc := strings.TrimSpace(meta.Description); desc != "" {
		return desc
	}
	if tagline := strings.TrimSpace(meta.Tagline); tagline != "" {
		return tagline
	}
	if locale.IsDefault {
		return "Latest updates"
	}
	return fmt.Sprintf("Latest updates for %s", strings.ToUpper(locale.Code))
}

func baseURLWithFallback(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
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
