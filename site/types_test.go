package site

import (
	"errors"
	"testing"
)

func TestSiteHasLocale(t *testing.T) {
	s := &Site{DefaultLocale: "en", Locales: []string{"en", "es"}}

	if !s.HasLocale("en") {
		t.Fatal("expected default locale to be known")
	}
	if !s.HasLocale("ES") {
		t.Fatal("expected locale match to be case insensitive")
	}
	if s.HasLocale("fr") {
		t.Fatal("expected undeclared locale to be unknown")
	}
	if s.HasLocale("") {
		t.Fatal("expected empty locale to be unknown")
	}
}

func TestPageVariantFor(t *testing.T) {
	page := &Page{
		Key:   "home",
		Title: "Home",
		Variants: map[string]PageVariant{
			"es": {Title: "Inicio"},
		},
	}

	variant := page.VariantFor("es")
	if variant == nil {
		t.Fatal("expected es variant")
	}
	if variant.Title != "Inicio" {
		t.Fatalf("unexpected variant title %q", variant.Title)
	}

	if page.VariantFor("fr") != nil {
		t.Fatal("expected missing variant lookup to fail")
	}

	variant = page.VariantFor(" ES ")
	if variant == nil || variant.Title != "Inicio" {
		t.Fatal("expected lookup to trim and lowercase the locale")
	}
}

func TestPageInSitemap(t *testing.T) {
	include := false

	cases := []struct {
		name string
		page *Page
		want bool
	}{
		{"default", &Page{Key: "home"}, true},
		{"draft", &Page{Key: "wip", Draft: true}, false},
		{"opt out", &Page{Key: "legal", Sitemap: &SitemapHints{Include: &include}}, false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.page.InSitemap(); got != tc.want {
				t.Fatalf("InSitemap() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPageIsCollection(t *testing.T) {
	if (&Page{Key: "home"}).IsCollection() {
		t.Fatal("plain page must not be a collection")
	}
	if !(&Page{Key: "service", Collection: CollectionOfferings}).IsCollection() {
		t.Fatal("services page must be a collection")
	}
}

func TestNotFoundErrorUnwrapsSentinel(t *testing.T) {
	err := &NotFoundError{Resource: "page", Key: "missing"}

	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected NotFoundError to unwrap to ErrNotFound")
	}
	if got := err.Error(); got != `site: page "missing" not found` {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestDuplicateKeyErrorMentionsDocument(t *testing.T) {
	err := &DuplicateKeyError{Resource: "offering", Key: "it", Document: "services.json"}

	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatal("expected DuplicateKeyError to unwrap to ErrDuplicateKey")
	}
	if got := err.Error(); got != `site: duplicate offering key "it" in services.json` {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestDocumentErrorWrapsCause(t *testing.T) {
	cause := errors.New("bad json")
	err := &DocumentError{Document: "pages.json", Err: cause}

	if !errors.Is(err, cause) {
		t.Fatal("expected DocumentError to unwrap its cause")
	}
}

func TestNormalizeSlug(t *testing.T) {
	if got := NormalizeSlug("Recruiting & Selection"); got == "" {
		t.Fatal("expected a non-empty slug")
	}
	if !IsValidSlug("permanent-placement") {
		t.Fatal("expected normalized slug to validate")
	}
}
