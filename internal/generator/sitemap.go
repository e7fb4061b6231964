package generator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	sitemapFileName = "sitemap.xml"
	robotsFileName  = "robots.txt"
)

type sitemapEntry struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq string
	Priority   *float64
}

func buildSitemapEntries(buildCtx *BuildContext) []sitemapEntry {
	entries := make([]sitemapEntry, 0, len(buildCtx.Documents))
	seen := map[string]struct{}{}

	for _, doc := range buildCtx.Documents {
		if !doc.Page.InSitemap() {
			continue
		}
		if doc.Post != nil && doc.Post.Draft {
			continue
		}

		loc := documentURL(buildCtx.Site.BaseURL, doc.Route, doc.Locale, buildCtx.DefaultLocale)
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}

		entry := sitemapEntry{
			Loc:     loc,
			LastMod: doc.Metadata.LastModified,
		}
		if hints := doc.Page.Sitemap; hints != nil {
			entry.ChangeFreq = strings.ToLower(strings.TrimSpace(hints.ChangeFreq))
			entry.Priority = hints.Priority
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Loc < entries[j].Loc
	})
	return entries
}

func buildSitemapXML(entries []sitemapEntry, generatedAt time.Time) string {
	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", escapeXML(entry.Loc)))
		lastMod := entry.LastMod
		if lastMod.IsZero() {
			lastMod = generatedAt
		}
		builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", lastMod.UTC().Format("2006-01-02")))
		if entry.ChangeFreq != "" {
			builder.WriteString(fmt.Sprintf("    <changefreq>%s</changefreq>\n", escapeXML(entry.ChangeFreq)))
		}
		if entry.Priority != nil {
			builder.WriteString(fmt.Sprintf("    <priority>%s</priority>\n", strconv.FormatFloat(*entry.Priority, 'f', 1, 64)))
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString("</urlset>\n")
	return builder.String()
}

// buildRobots renders robots.txt from the site policy. Extra lines pass
// through verbatim after the generated user-agent block.
func buildRobots(buildCtx *BuildContext) string {
	policy := buildCtx.Site.Robots

	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	if len(policy.Disallow) == 0 {
		builder.WriteString("Disallow:\n")
	}
	for _, entry := range policy.Disallow {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.HasPrefix(entry, "/") {
			entry = "/" + entry
		}
		builder.WriteString(fmt.Sprintf("Disallow: %s\n", entry))
	}

	for _, line := range policy.Extra {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		builder.WriteString(line)
		builder.WriteString("\n")
	}

	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("Sitemap: %s/%s\n", baseURLWithFallback(buildCtx.Site.BaseURL), sitemapFileName))
	return builder.String()
}
