package backupcmd

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-sitekit/internal/backup"
)

const (
	createSnapshotMessageType  = "sitekit.backup.create"
	restoreSnapshotMessageType = "sitekit.backup.restore"
	verifySnapshotMessageType  = "sitekit.backup.verify"
	pruneSnapshotsMessageType  = "sitekit.backup.prune"
)

var snapshotIDPattern = regexp.MustCompile(`^\d{8}-\d{6}(-[a-z0-9-]+)?$`)

// ResultCallback receives snapshot operation results. The callback is optional
// and is invoked synchronously from the handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a backup command execution.
type ResultEnvelope struct {
	Snapshot *backup.Snapshot
	Restore  *backup.RestoreResult
	Verify   *backup.VerifyResult
	Prune    *backup.PruneResult
	Metadata map[string]any
}

// CreateSnapshotCommand captures the live trees into a new snapshot.
type CreateSnapshotCommand struct {
	Label          string         `json:"label,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (CreateSnapshotCommand) Type() string { return createSnapshotMessageType }

// Validate ensures the optional label is sane.
func (m CreateSnapshotCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Label, validation.Length(0, 64)),
	)
}

// RestoreSnapshotCommand restores the live trees from a snapshot.
type RestoreSnapshotCommand struct {
	// ID names the snapshot to restore; empty selects the most recent.
	ID                 string         `json:"id,omitempty"`
	Clean              bool           `json:"clean,omitempty"`
	Force              bool           `json:"force,omitempty"`
	SkipSafetySnapshot bool           `json:"skip_safety_snapshot,omitempty"`
	ResultCallback     ResultCallback `json:"-"`
}

// Type implements command.Message.
func (RestoreSnapshotCommand) Type() string { return restoreSnapshotMessageType }

// Validate ensures a provided snapshot ID matches the timestamp naming scheme.
func (m RestoreSnapshotCommand) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return nil
	}
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.Match(snapshotIDPattern).
			ErrorObject(validation.NewError("sitekit.backup.restore.id_invalid", "id must be a snapshot identifier"))),
	)
}

// VerifySnapshotCommand checks a snapshot against its manifest.
type VerifySnapshotCommand struct {
	// ID names the snapshot to verify; empty selects the most recent.
	ID             string         `json:"id,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (VerifySnapshotCommand) Type() string { return verifySnapshotMessageType }

// Validate ensures a provided snapshot ID matches the timestamp naming scheme.
func (m VerifySnapshotCommand) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return nil
	}
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.Match(snapshotIDPattern).
			ErrorObject(validation.NewError("sitekit.backup.verify.id_invalid", "id must be a snapshot identifier"))),
	)
}

// PruneSnapshotsCommand removes old snapshots per the retention settings.
type PruneSnapshotsCommand struct {
	KeepLast       int            `json:"keep_last,omitempty"`
	MaxAgeDays     int            `json:"max_age_days,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (PruneSnapshotsCommand) Type() string { return pruneSnapshotsMessageType }

// Validate ensures retention settings are non-negative.
func (m PruneSnapshotsCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.KeepLast, validation.Min(0)),
		validation.Field(&m.MaxAgeDays, validation.Min(0)),
	)
}

// FeatureGates exposes runtime switches used to guard handler execution.
type FeatureGates struct {
	BackupEnabled func() bool
}

func (g FeatureGates) backupEnabled() bool {
	if g.BackupEnabled == nil {
		return true
	}
	return g.BackupEnabled()
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
