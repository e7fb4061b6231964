package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

func SiteUUID(baseURL string) uuid.UUID {
	return UUID("sitekit:site:" + strings.ToLower(strings.TrimSpace(baseURL)))
}

func PageUUID(pageKey string) uuid.UUID {
	return UUID("sitekit:page:" + strings.ToLower(strings.TrimSpace(pageKey)))
}

func OfferingUUID(offeringKey string) uuid.UUID {
	return UUID("sitekit:offering:" + strings.ToLower(strings.TrimSpace(offeringKey)))
}

func PostUUID(slug string) uuid.UUID {
	return UUID("sitekit:post:" + strings.ToLower(strings.TrimSpace(slug)))
}

func TemplateUUID(relPath string) uuid.UUID {
	return UUID("sitekit:template:" + strings.TrimSpace(relPath))
}

func SnapshotUUID(snapshotID string) uuid.UUID {
	return UUID("sitekit:snapshot:" + strings.TrimSpace(snapshotID))
}

func BuildUUID(buildID string) uuid.UUID {
	return UUID("sitekit:build:" + strings.TrimSpace(buildID))
}

func CheckUUID(target string, startedAtUnix int64) uuid.UUID {
	return UUID("sitekit:check:" + strings.TrimSpace(target) + ":" + strconv.FormatInt(startedAtUnix, 10))
}
