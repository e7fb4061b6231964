package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateDataDocumentAcceptsValidSiteConfig(t *testing.T) {
	raw := []byte(`{
		"name": "Acme Recruiting",
		"base_url": "https://www.acme-recruiting.example",
		"default_locale": "en",
		"locales": ["en", "es"],
		"contact": {"email": "info@acme-recruiting.example"},
		"tokens": {"COMPANY_NAME": "Acme Recruiting"}
	}`)

	if err := ValidateDataDocument(DocumentSiteConfig, raw); err != nil {
		t.Fatalf("ValidateDataDocument() = %v", err)
	}
}

func TestValidateDataDocumentRejectsMissingBaseURL(t *testing.T) {
	raw := []byte(`{"name": "Acme Recruiting"}`)

	err := ValidateDataDocument(DocumentSiteConfig, raw)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "base_url") {
		t.Fatalf("expected message to mention base_url, got %q", err.Error())
	}
}

func TestValidateDataDocumentRejectsUnknownPageFields(t *testing.T) {
	raw := []byte(`[{
		"key": "home",
		"route": "/",
		"template": "index.html",
		"title": "Home",
		"typo_field": true
	}]`)

	if err := ValidateDataDocument(DocumentPages, raw); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestValidateDataDocumentRejectsBadOfferingKey(t *testing.T) {
	raw := []byte(`[{"key": "Temporary Staffing", "title": "Temporary Staffing"}]`)

	err := ValidateDataDocument(DocumentOfferings, raw)
	if err == nil {
		t.Fatal("expected key pattern violation")
	}

	issues := Issues(err)
	if len(issues) == 0 {
		t.Fatal("expected at least one issue")
	}
}

func TestValidateDataDocumentSkipsUnknownDocuments(t *testing.T) {
	if err := ValidateDataDocument("notes.json", []byte(`{"anything": true}`)); err != nil {
		t.Fatalf("unknown documents must be skipped, got %v", err)
	}
}

func TestValidateRawRejectsMalformedJSON(t *testing.T) {
	schema, err := DocumentSchema(DocumentPages)
	if err != nil {
		t.Fatalf("DocumentSchema() = %v", err)
	}

	if err := ValidateRaw(schema, []byte(`[{"key":`)); err == nil {
		t.Fatal("expected malformed JSON to fail")
	}
}

func TestPayloadValidationErrorFormatsIssues(t *testing.T) {
	err := &PayloadValidationError{Issues: []ValidationIssue{
		{Location: "/0/route", Message: "does not match pattern"},
		{Message: "missing title"},
	}}

	got := err.Error()
	if !strings.Contains(got, "#/0/route: does not match pattern") {
		t.Fatalf("unexpected message %q", got)
	}
	if !strings.Contains(got, "#: missing title") {
		t.Fatalf("unexpected message %q", got)
	}
}
