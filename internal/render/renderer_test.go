package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderStringResolvesTokens(t *testing.T) {
	renderer, err := NewRenderer(Config{})
	if err != nil {
		t.Fatalf("NewRenderer() = %v", err)
	}

	out, err := renderer.RenderString("<h1>{{ COMPANY_NAME }}</h1>", map[string]string{"COMPANY_NAME": "Acme Recruiting"})
	if err != nil {
		t.Fatalf("RenderString() = %v", err)
	}
	if out != "<h1>Acme Recruiting</h1>" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderStringMissingTokenRendersEmpty(t *testing.T) {
	renderer, err := NewRenderer(Config{})
	if err != nil {
		t.Fatalf("NewRenderer() = %v", err)
	}

	out, err := renderer.RenderString("<p>{{ MISSING_TOKEN }}</p>", map[string]any{})
	if err != nil {
		t.Fatalf("RenderString() = %v", err)
	}
	if out != "<p></p>" {
		t.Fatalf("expected empty substitution, got %q", out)
	}
}

func TestRenderTemplateLoadsFromDirectory(t *testing.T) {
	dir := t.TempDir()
	template := "<title>{{ PAGE_TITLE }} | {{ COMPANY_NAME }}</title>"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(template), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	renderer, err := NewRenderer(Config{TemplatesDir: dir, Globals: map[string]any{"COMPANY_NAME": "Acme Recruiting"}})
	if err != nil {
		t.Fatalf("NewRenderer() = %v", err)
	}

	out, err := renderer.RenderTemplate("index.html", map[string]string{"PAGE_TITLE": "Servizi"})
	if err != nil {
		t.Fatalf("RenderTemplate() = %v", err)
	}
	if out != "<title>Servizi | Acme Recruiting</title>" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderTemplateUnknownTemplateFails(t *testing.T) {
	renderer, err := NewRenderer(Config{TemplatesDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewRenderer() = %v", err)
	}

	if _, err := renderer.RenderTemplate("missing.html", nil); err == nil {
		t.Fatal("expected missing template to fail")
	}
}

func TestRenderWritesToProvidedWriter(t *testing.T) {
	renderer, err := NewRenderer(Config{})
	if err != nil {
		t.Fatalf("NewRenderer() = %v", err)
	}

	var buf bytes.Buffer
	out, err := renderer.RenderString("{{ GREETING }}", map[string]string{"GREETING": "hello"}, &buf)
	if err != nil {
		t.Fatalf("RenderString() = %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty return when writer provided, got %q", out)
	}
	if buf.String() != "hello" {
		t.Fatalf("unexpected writer content %q", buf.String())
	}
}

func TestGlobalContextMergesUnderRenderData(t *testing.T) {
	renderer, err := NewRenderer(Config{})
	if err != nil {
		t.Fatalf("NewRenderer() = %v", err)
	}
	if err := renderer.GlobalContext(map[string]any{"COMPANY_NAME": "Acme", "YEAR": "2026"}); err != nil {
		t.Fatalf("GlobalContext() = %v", err)
	}

	out, err := renderer.RenderString("{{ COMPANY_NAME }} {{ YEAR }}", map[string]string{"YEAR": "2027"})
	if err != nil {
		t.Fatalf("RenderString() = %v", err)
	}
	if out != "Acme 2027" {
		t.Fatalf("expected render data to win over globals, got %q", out)
	}
}

func TestAbsURLFilter(t *testing.T) {
	fn := AbsURL("https://www.acme-recruiting.example/")

	got, err := fn("/services/", nil)
	if err != nil {
		t.Fatalf("absurl: %v", err)
	}
	if got != "https://www.acme-recruiting.example/services/" {
		t.Fatalf("unexpected url %v", got)
	}

	got, err = fn("about", nil)
	if err != nil || got != "https://www.acme-recruiting.example/about" {
		t.Fatalf("unexpected url %v (%v)", got, err)
	}

	got, err = fn("https://other.example/x", nil)
	if err != nil || got != "https://other.example/x" {
		t.Fatalf("absolute input must pass through, got %v", got)
	}
}

func TestTelHrefFilter(t *testing.T) {
	fn := TelHref()

	got, err := fn("+39 02 1234.567", nil)
	if err != nil {
		t.Fatalf("telhref: %v", err)
	}
	if got != "tel:+39021234567" {
		t.Fatalf("unexpected href %v", got)
	}

	if _, err := fn("call us", nil); err == nil {
		t.Fatal("expected error for input without digits")
	}
}

func TestRegisteredFilterWorksInTemplate(t *testing.T) {
	renderer, err := NewRenderer(Config{})
	if err != nil {
		t.Fatalf("NewRenderer() = %v", err)
	}
	if err := RegisterSiteFilters(renderer, "https://www.acme-recruiting.example"); err != nil {
		t.Fatalf("RegisterSiteFilters() = %v", err)
	}

	out, err := renderer.RenderString(`<a href="{{ route|absurl }}">x</a>`, map[string]string{"route": "/contact"})
	if err != nil {
		t.Fatalf("RenderString() = %v", err)
	}
	if !strings.Contains(out, "https://www.acme-recruiting.example/contact") {
		t.Fatalf("unexpected output %q", out)
	}
}
