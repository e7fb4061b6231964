// Package catalog persists the toolchain's operational history: build runs,
// monitoring checks, and snapshot lifecycle events. Persistence is optional;
// the in-memory repositories serve hosts that run without a database.
package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BuildRecord is one completed generator run.
type BuildRecord struct {
	bun.BaseModel `bun:"table:build_records,alias:br"`

	ID             uuid.UUID `bun:",pk,type:uuid" json:"id"`
	GeneratedAt    time.Time `bun:"generated_at,notnull" json:"generated_at"`
	DurationMS     int64     `bun:"duration_ms,notnull" json:"duration_ms"`
	Locales        string    `bun:"locales" json:"locales"`
	PagesRendered  int       `bun:"pages_rendered,notnull" json:"pages_rendered"`
	PagesSkipped   int       `bun:"pages_skipped,notnull" json:"pages_skipped"`
	AssetsCopied   int       `bun:"assets_copied,notnull" json:"assets_copied"`
	FeedsWritten   int       `bun:"feeds_written,notnull" json:"feeds_written"`
	SitemapEntries int       `bun:"sitemap_entries,notnull" json:"sitemap_entries"`
	Diagnostics    int       `bun:"diagnostics,notnull" json:"diagnostics"`
	CreatedAt      time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// CheckRecord is one monitoring probe result.
type CheckRecord struct {
	bun.BaseModel `bun:"table:check_records,alias:cr"`

	ID         uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Target     string     `bun:"target,notnull" json:"target"`
	URL        string     `bun:"url,notnull" json:"url"`
	OK         bool       `bun:"ok,notnull" json:"ok"`
	StatusCode int        `bun:"status_code" json:"status_code"`
	LatencyMS  int64      `bun:"latency_ms,notnull" json:"latency_ms"`
	BodySize   int64      `bun:"body_size" json:"body_size"`
	Error      string     `bun:"error" json:"error,omitempty"`
	CertExpiry *time.Time `bun:"cert_expiry,nullzero" json:"cert_expiry,omitempty"`
	CheckedAt  time.Time  `bun:"checked_at,notnull" json:"checked_at"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// SnapshotRecord is one backup lifecycle event (create, restore, prune).
type SnapshotRecord struct {
	bun.BaseModel `bun:"table:snapshot_records,alias:sr"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	SnapshotID string    `bun:"snapshot_id,notnull" json:"snapshot_id"`
	Action     string    `bun:"action,notnull" json:"action"`
	Label      string    `bun:"label" json:"label,omitempty"`
	FileCount  int       `bun:"file_count" json:"file_count"`
	TotalSize  int64     `bun:"total_size" json:"total_size"`
	OccurredAt time.Time `bun:"occurred_at,notnull" json:"occurred_at"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
