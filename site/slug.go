package site

import slug "github.com/goliatone/go-slug"

// SlugNormalizer converts titles and keys into URL-safe slugs.
type SlugNormalizer = slug.Normalizer

// DefaultSlugNormalizer returns the normalizer used across the toolchain.
func DefaultSlugNormalizer() SlugNormalizer {
	return slug.Default()
}

// NormalizeSlug normalizes input with the default normalizer.
func NormalizeSlug(input string) string {
	normalized, _ := slug.Normalize(input)
	return normalized
}

// IsValidSlug reports whether input already is a normalized slug.
func IsValidSlug(input string) bool {
	return slug.IsValid(input)
}
