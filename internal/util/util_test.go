package util

import "testing"

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "", "fallback"); got != "fallback" {
		t.Fatalf("FirstNonEmpty() = %q", got)
	}
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() with no values = %q", got)
	}
}

func TestCloneStringMapNeverReturnsNil(t *testing.T) {
	out := CloneStringMap(nil)
	if out == nil {
		t.Fatal("expected non-nil map")
	}

	in := map[string]string{"k": "v"}
	out = CloneStringMap(in)
	out["k"] = "changed"
	if in["k"] != "v" {
		t.Fatal("clone must not share storage with input")
	}
}

func TestMergeStringMapsLaterLayersWin(t *testing.T) {
	base := map[string]string{"COMPANY_NAME": "Acme", "PHONE": "+39 02 000"}
	locale := map[string]string{"PHONE": "+39 02 111"}
	page := map[string]string{"PAGE_TITLE": "Servizi"}

	out := MergeStringMaps(base, locale, page)

	if out["PHONE"] != "+39 02 111" {
		t.Fatalf("expected locale layer to win, got %q", out["PHONE"])
	}
	if out["COMPANY_NAME"] != "Acme" {
		t.Fatal("expected base value to survive")
	}
	if out["PAGE_TITLE"] != "Servizi" {
		t.Fatal("expected page layer to contribute")
	}
	if base["PAGE_TITLE"] != "" {
		t.Fatal("merge must not mutate base")
	}
}

func TestNormalizeRoute(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/", "/"},
		{"/services/", "/services"},
		{"  /about ", "/about"},
		{"///", "/"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeRoute(tc.in); got != tc.want {
			t.Fatalf("NormalizeRoute(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
