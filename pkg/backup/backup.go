// Package backup exposes the snapshot API for sitekit hosts: capture the live
// content trees, list and verify snapshots, restore, and prune by retention.
package backup

import internal "github.com/goliatone/go-sitekit/internal/backup"

type (
	Service        = internal.Service
	Config         = internal.Config
	Dependencies   = internal.Dependencies
	Tree           = internal.Tree
	CreateOptions  = internal.CreateOptions
	ListOptions    = internal.ListOptions
	RestoreOptions = internal.RestoreOptions
	VerifyOptions  = internal.VerifyOptions
	PruneOptions   = internal.PruneOptions
	Snapshot       = internal.Snapshot
	RestoreResult  = internal.RestoreResult
	VerifyResult   = internal.VerifyResult
	PruneResult    = internal.PruneResult
	Manifest       = internal.Manifest
	ManifestEntry  = internal.ManifestEntry
	Recorder       = internal.Recorder
)

var (
	ErrServiceDisabled  = internal.ErrServiceDisabled
	ErrSnapshotNotFound = internal.ErrSnapshotNotFound
	ErrNoSnapshots      = internal.ErrNoSnapshots
	ErrSnapshotCorrupt  = internal.ErrSnapshotCorrupt
)

// NewService wires a snapshot service over the configured backup directory and
// live trees.
func NewService(cfg Config, deps Dependencies) (Service, error) {
	return internal.NewService(cfg, deps)
}

// NewDisabledService returns a Service that fails all operations with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return internal.NewDisabledService()
}
