package templates

import (
	"context"
	"testing"
	"testing/fstest"
	"time"
)

func storeFS(files map[string]string) fstest.MapFS {
	out := fstest.MapFS{}
	for name, body := range files {
		out[name] = &fstest.MapFile{Data: []byte(body), ModTime: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	}
	return out
}

func TestLoadIndexesTemplatesWithTokens(t *testing.T) {
	store := NewStore(storeFS(map[string]string{
		"index.html":            `<h1>{{ COMPANY_NAME }}</h1><p>{{ TAGLINE }}</p><span>{{ COMPANY_NAME }}</span>`,
		"partials/footer.html":  `<footer>{{ CONTACT_EMAIL|lower }} {{ page.Title }}</footer>`,
		"notes/readme.markdown": `not a template`,
	}))

	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if !store.Loaded() {
		t.Fatal("expected store to report loaded")
	}

	all := store.Templates()
	if len(all) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(all))
	}

	index, ok := store.Get("index.html")
	if !ok {
		t.Fatal("expected index.html to be indexed")
	}
	if len(index.Tokens) != 2 || index.Tokens[0] != "COMPANY_NAME" || index.Tokens[1] != "TAGLINE" {
		t.Fatalf("unexpected tokens %v", index.Tokens)
	}
	if index.Fingerprint == "" {
		t.Fatal("expected a fingerprint")
	}
	if index.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("expected deterministic template id")
	}

	footer, _ := store.Get("partials/footer.html")
	if len(footer.Tokens) != 1 || footer.Tokens[0] != "CONTACT_EMAIL" {
		t.Fatalf("structured lookups must not count as tokens, got %v", footer.Tokens)
	}
}

func TestFingerprintChangesWithContent(t *testing.T) {
	files := map[string]string{"index.html": "<p>{{ A }}</p>"}
	store := NewStore(storeFS(files))
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() = %v", err)
	}
	before := store.Fingerprint()
	if before == "" {
		t.Fatal("expected combined fingerprint")
	}

	changed := NewStore(storeFS(map[string]string{"index.html": "<p>{{ B }}</p>"}))
	if err := changed.Load(context.Background()); err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if changed.Fingerprint() == before {
		t.Fatal("expected fingerprint to change with content")
	}
}

func TestLoadSkipsHiddenFiles(t *testing.T) {
	store := NewStore(storeFS(map[string]string{
		".hidden.html":      "<p>x</p>",
		".git/config.html":  "<p>x</p>",
		"visible.html":      "<p>x</p>",
		"styles/site.css":   "body {}",
		"feed-template.xml": "<feed>{{ FEED_TITLE }}</feed>",
	}))

	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if _, ok := store.Get(".hidden.html"); ok {
		t.Fatal("hidden files must be skipped")
	}
	if _, ok := store.Get("styles/site.css"); ok {
		t.Fatal("css is not a template")
	}
	if _, ok := store.Get("feed-template.xml"); !ok {
		t.Fatal("xml templates must be indexed")
	}
	if len(store.Templates()) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(store.Templates()))
	}
}

func TestExtractTokensHandlesTrimMarkers(t *testing.T) {
	tokens := extractTokens([]byte(`{{- YEAR -}} {{ COPYRIGHT_OWNER }}`))
	if len(tokens) != 2 || tokens[0] != "COPYRIGHT_OWNER" || tokens[1] != "YEAR" {
		t.Fatalf("unexpected tokens %v", tokens)
	}
}
