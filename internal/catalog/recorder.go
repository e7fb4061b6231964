package catalog

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-sitekit/internal/backup"
	"github.com/goliatone/go-sitekit/internal/generator"
	"github.com/goliatone/go-sitekit/internal/identity"
	"github.com/goliatone/go-sitekit/internal/monitor"
)

// Recorder bridges the toolchain services to the catalog repositories. It
// satisfies generator.Recorder, backup.Recorder, monitor.Recorder, and
// monitor.HistorySource so a single instance can be handed to every service.
type Recorder struct {
	builds    BuildRepository
	checks    CheckRepository
	snapshots SnapshotRepository
}

// NewRecorder builds a recorder over the given repositories. Any repository
// may be nil; the matching record methods become no-ops.
func NewRecorder(builds BuildRepository, checks CheckRepository, snapshots SnapshotRepository) *Recorder {
	return &Recorder{builds: builds, checks: checks, snapshots: snapshots}
}

// RecordBuild persists one generator run.
func (r *Recorder) RecordBuild(ctx context.Context, result *generator.BuildResult) error {
	if r == nil || r.builds == nil || result == nil {
		return nil
	}
	buildKey := result.GeneratedAt.UTC().Format(time.RFC3339Nano)
	record := &BuildRecord{
		ID:             identity.BuildUUID(buildKey),
		GeneratedAt:    result.GeneratedAt.UTC(),
		DurationMS:     result.Duration.Milliseconds(),
		Locales:        strings.Join(result.Locales, ","),
		PagesRendered:  result.PagesRendered,
		PagesSkipped:   result.PagesSkipped,
		AssetsCopied:   result.AssetsCopied,
		FeedsWritten:   result.FeedsWritten,
		SitemapEntries: result.SitemapEntries,
		Diagnostics:    len(result.Diagnostics),
	}
	_, err := r.builds.Create(ctx, record)
	return err
}

// RecordCheck persists one monitoring probe result.
func (r *Recorder) RecordCheck(ctx context.Context, result monitor.CheckResult) error {
	if r == nil || r.checks == nil {
		return nil
	}
	record := &CheckRecord{
		ID:         identity.CheckUUID(result.Target, result.CheckedAt.UnixNano()),
		Target:     result.Target,
		URL:        result.URL,
		OK:         result.OK,
		StatusCode: result.StatusCode,
		LatencyMS:  result.Latency.Milliseconds(),
		BodySize:   result.BodySize,
		Error:      result.Error,
		CheckedAt:  result.CheckedAt.UTC(),
	}
	if result.Cert != nil {
		expiry := result.Cert.NotAfter.UTC()
		record.CertExpiry = &expiry
	}
	_, err := r.checks.Create(ctx, record)
	return err
}

// RecordSnapshotEvent persists one backup lifecycle event.
func (r *Recorder) RecordSnapshotEvent(ctx context.Context, event backup.SnapshotEvent) error {
	if r == nil || r.snapshots == nil {
		return nil
	}
	eventKey := event.SnapshotID + ":" + event.Action + ":" + strconv.FormatInt(event.OccurredAt.UnixNano(), 10)
	record := &SnapshotRecord{
		ID:         identity.UUID("sitekit:snapshot-event:" + eventKey),
		SnapshotID: event.SnapshotID,
		Action:     event.Action,
		Label:      event.Label,
		FileCount:  event.FileCount,
		TotalSize:  event.TotalSize,
		OccurredAt: event.OccurredAt.UTC(),
	}
	_, err := r.snapshots.Create(ctx, record)
	return err
}

// CheckHistory reads persisted check results back for uptime summaries.
func (r *Recorder) CheckHistory(ctx context.Context, opts monitor.HistoryOptions) ([]monitor.HistoryEntry, error) {
	if r == nil || r.checks == nil {
		return nil, nil
	}
	records, err := r.checks.List(ctx, opts.Target, opts.Since)
	if err != nil {
		return nil, err
	}
	entries := make([]monitor.HistoryEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, monitor.HistoryEntry{
			Target:     record.Target,
			URL:        record.URL,
			OK:         record.OK,
			StatusCode: record.StatusCode,
			Latency:    time.Duration(record.LatencyMS) * time.Millisecond,
			CheckedAt:  record.CheckedAt,
			CertExpiry: record.CertExpiry,
		})
	}
	return entries, nil
}

var (
	_ generator.Recorder    = (*Recorder)(nil)
	_ backup.Recorder       = (*Recorder)(nil)
	_ monitor.Recorder      = (*Recorder)(nil)
	_ monitor.HistorySource = (*Recorder)(nil)
)
