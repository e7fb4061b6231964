package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	a := UUID("sitekit:page:home")
	b := UUID("sitekit:page:home")

	if a == uuid.Nil {
		t.Fatal("expected a non-nil UUID")
	}
	if a != b {
		t.Fatalf("same key produced different UUIDs: %s vs %s", a, b)
	}
}

func TestUUIDEmptyKeyIsNil(t *testing.T) {
	if got := UUID("   "); got != uuid.Nil {
		t.Fatalf("expected uuid.Nil for blank key, got %s", got)
	}
}

func TestEntityPrefixesDoNotCollide(t *testing.T) {
	page := PageUUID("services")
	offering := OfferingUUID("services")
	post := PostUUID("services")

	if page == offering || page == post || offering == post {
		t.Fatal("expected distinct UUIDs per entity type for the same key")
	}
}

func TestPageUUIDNormalizesCase(t *testing.T) {
	if PageUUID("Home") != PageUUID("  home ") {
		t.Fatal("expected page UUID derivation to trim and lowercase")
	}
}

func TestCheckUUIDIncludesTimestamp(t *testing.T) {
	if CheckUUID("https://example.com/", 100) == CheckUUID("https://example.com/", 200) {
		t.Fatal("expected checks at different instants to get different UUIDs")
	}
}
