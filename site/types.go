package site

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Site is the canonical record parsed from content/data/site-config.json. It
// carries the identity every generated page shares: naming, contact details,
// locales, theme selection, crawler policy, and free-form tokens templates can
// reference directly.
type Site struct {
	ID          uuid.UUID `json:"-"`
	Name        string    `json:"name"`
	LegalName   string    `json:"legal_name,omitempty"`
	BaseURL     string    `json:"base_url"`
	Tagline     string    `json:"tagline,omitempty"`
	Description string    `json:"description,omitempty"`

	Contact     Contact      `json:"contact,omitempty"`
	Social      []SocialLink `json:"social,omitempty"`
	AnalyticsID string       `json:"analytics_id,omitempty"`

	DefaultLocale string   `json:"default_locale,omitempty"`
	Locales       []string `json:"locales,omitempty"`

	Theme  ThemeSelection `json:"theme,omitempty"`
	Robots RobotsPolicy   `json:"robots,omitempty"`
	Probes []Probe        `json:"monitor,omitempty"`

	Tokens   map[string]string      `json:"tokens,omitempty"`
	Variants map[string]SiteVariant `json:"variants,omitempty"`
}

// Contact groups the address block rendered on every page footer.
type Contact struct {
	Email   string  `json:"email,omitempty"`
	Phone   string  `json:"phone,omitempty"`
	Address Address `json:"address,omitempty"`
}

// Address is the postal address of the company.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// SocialLink points at a company profile on an external network.
type SocialLink struct {
	Network string `json:"network"`
	URL     string `json:"url"`
}

// ThemeSelection names the theme (and optional variant) the generator should
// resolve from the themes directory.
type ThemeSelection struct {
	Name    string `json:"name,omitempty"`
	Variant string `json:"variant,omitempty"`
}

// RobotsPolicy drives robots.txt generation.
type RobotsPolicy struct {
	Disallow []string `json:"disallow,omitempty"`
	Extra    []string `json:"extra,omitempty"`
}

// Probe marks a page (or external URL) the monitor should check.
type Probe struct {
	Name     string `json:"name"`
	PageKey  string `json:"page,omitempty"`
	URL      string `json:"url,omitempty"`
	Expected string `json:"expected,omitempty"`
}

// SiteVariant carries per-locale overrides for site copy.
type SiteVariant struct {
	Tagline     string            `json:"tagline,omitempty"`
	Description string            `json:"description,omitempty"`
	Tokens      map[string]string `json:"tokens,omitempty"`
}

// Page is a record parsed from content/data/pages.json. A page with an empty
// Collection renders exactly one document per locale; collection pages expand
// into one document per offering or post, with the record's slug substituted
// into the route.
type Page struct {
	ID          uuid.UUID         `json:"-"`
	Key         string            `json:"key"`
	Route       string            `json:"route"`
	Template    string            `json:"template"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Keywords    []string          `json:"keywords,omitempty"`
	Tokens      map[string]string `json:"tokens,omitempty"`
	Collection  string            `json:"collection,omitempty"`
	Draft       bool              `json:"draft,omitempty"`
	Sitemap     *SitemapHints     `json:"sitemap,omitempty"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty"`

	Variants map[string]PageVariant `json:"variants,omitempty"`
}

// Collection kinds a page can expand over.
const (
	CollectionNone      = ""
	CollectionOfferings = "services"
	CollectionPosts     = "posts"
)

// SitemapHints tunes the page's sitemap entry.
type SitemapHints struct {
	Include    *bool    `json:"include,omitempty"`
	ChangeFreq string   `json:"changefreq,omitempty"`
	Priority   *float64 `json:"priority,omitempty"`
}

// PageVariant carries per-locale overrides for a page.
type PageVariant struct {
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Keywords    []string          `json:"keywords,omitempty"`
	Tokens      map[string]string `json:"tokens,omitempty"`
}

// Offering is a record parsed from content/data/services.json: one service the
// company offers, rendered into listings and optional detail pages.
type Offering struct {
	ID          uuid.UUID         `json:"-"`
	Key         string            `json:"key"`
	Slug        string            `json:"slug,omitempty"`
	Title       string            `json:"title"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Icon        string            `json:"icon,omitempty"`
	Order       int               `json:"order,omitempty"`
	Tokens      map[string]string `json:"tokens,omitempty"`

	Variants map[string]OfferingVariant `json:"variants,omitempty"`
}

// OfferingVariant carries per-locale overrides for an offering.
type OfferingVariant struct {
	Title       string            `json:"title,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Tokens      map[string]string `json:"tokens,omitempty"`
}

// Post is an article parsed from content/posts/*.md. The body has already
// been rendered to HTML by the markdown engine when the loader returns it.
type Post struct {
	ID          uuid.UUID  `json:"-"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary,omitempty"`
	Author      string     `json:"author,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Draft       bool       `json:"draft,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	BodyHTML    string     `json:"-"`
	SourcePath  string     `json:"-"`
}

// HasLocale reports whether code appears in the site's locale list. Sites
// that declare no locales implicitly run with the default locale only.
func (s *Site) HasLocale(code string) bool {
	if s == nil {
		return false
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	if strings.EqualFold(code, s.DefaultLocale) {
		return true
	}
	for _, locale := range s.Locales {
		if strings.EqualFold(strings.TrimSpace(locale), code) {
			return true
		}
	}
	return false
}

// VariantFor returns the locale override for a page, or nil when the page
// carries none for that locale.
func (p *Page) VariantFor(locale string) *PageVariant {
	if p == nil || len(p.Variants) == 0 {
		return nil
	}
	if variant, ok := p.Variants[strings.ToLower(strings.TrimSpace(locale))]; ok {
		return &variant
	}
	return nil
}

// VariantFor returns the locale override for an offering, or nil when the
// offering carries none for that locale.
func (o *Offering) VariantFor(locale string) *OfferingVariant {
	if o == nil || len(o.Variants) == 0 {
		return nil
	}
	if variant, ok := o.Variants[strings.ToLower(strings.TrimSpace(locale))]; ok {
		return &variant
	}
	return nil
}

// InSitemap reports whether the page should appear in sitemap.xml. Pages opt
// out explicitly; drafts never appear.
func (p *Page) InSitemap() bool {
	if p == nil || p.Draft {
		return false
	}
	if p.Sitemap != nil && p.Sitemap.Include != nil {
		return *p.Sitemap.Include
	}
	return true
}

// IsCollection reports whether the page expands over a record collection.
func (p *Page) IsCollection() bool {
	return p != nil && strings.TrimSpace(p.Collection) != ""
}
