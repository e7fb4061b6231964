package generator

import (
	"context"
	"path"
	"strings"
)

// buildOutputPath maps a route to its on-disk artifact. Routes render as
// directory indexes ("/about" -> "about/index.html") so the published tree
// serves clean URLs without rewrite rules. Non-default locales nest under
// their locale code ("/about" + "es" -> "es/about/index.html").
func buildOutputPath(route string, locale LocaleSpec, defaultLocale string) string {
	trimmed := strings.Trim(strings.TrimSpace(route), "/")

	var segments []string
	code := strings.ToLower(strings.TrimSpace(locale.Code))
	if code != "" && !locale.IsDefault && !strings.EqualFold(code, defaultLocale) {
		segments = append(segments, code)
	}
	if trimmed != "" {
		segments = append(segments, strings.Split(trimmed, "/")...)
	}
	segments = append(segments, "index.html")
	return path.Join(segments...)
}

// documentURL is the canonical absolute URL for a rendered route, matching
// the directory-index layout produced by buildOutputPath.
func documentURL(baseURL, route string, locale LocaleSpec, defaultLocale string) string {
	base := baseURLWithFallback(baseURL)
	trimmed := strings.Trim(strings.TrimSpace(route), "/")

	var segments []string
	code := strings.ToLower(strings.TrimSpace(locale.Code))
	if code != "" && !locale.IsDefault && !strings.EqualFold(code, defaultLocale) {
		segments = append(segments, code)
	}
	if trimmed != "" {
		segments = append(segments, trimmed)
	}
	if len(segments) == 0 {
		return base + "/"
	}
	return base + "/" + strings.Join(segments, "/") + "/"
}

func joinOutputPath(base, rel string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	rel = strings.Trim(strings.TrimSpace(rel), "/")
	switch {
	case base == "":
		return rel
	case rel == "":
		return base
	default:
		return path.Join(base, rel)
	}
}

func ensureDir(ctx context.Context, writer artifactWriter, cache map[string]struct{}, dir string) error {
	dir = strings.Trim(strings.TrimSpace(dir), "/")
	if dir == "" || dir == "." {
		return nil
	}
	if _, ok := cache[dir]; ok {
		return nil
	}
	if err := writer.EnsureDir(ctx, dir); err != nil {
		return err
	}
	cache[dir] = struct{}{}
	return nil
}
