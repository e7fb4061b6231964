// Package backup snapshots the live content and published trees into
// versioned directories under a backups root, each with a manifest recording
// per-file checksums. Snapshots are staged under a dot-prefixed directory and
// renamed into place, so a crashed run never looks like a valid snapshot.
package backup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

var (
	// ErrServiceDisabled is returned by every operation on a disabled service.
	ErrServiceDisabled = errors.New("backup: service disabled")
	// ErrSnapshotNotFound reports that the requested snapshot does not exist.
	ErrSnapshotNotFound = errors.New("backup: snapshot not found")
	// ErrNoSnapshots reports that the backups directory holds no snapshots.
	ErrNoSnapshots = errors.New("backup: no snapshots available")
	// ErrSnapshotCorrupt reports a snapshot whose contents no longer match its
	// manifest.
	ErrSnapshotCorrupt = errors.New("backup: snapshot failed verification")
)

// Service manages snapshots of the configured trees.
type Service interface {
	Create(ctx context.Context, opts CreateOptions) (*Snapshot, error)
	List(ctx context.Context, opts ListOptions) ([]*Snapshot, error)
	Restore(ctx context.Context, opts RestoreOptions) (*RestoreResult, error)
	Verify(ctx context.Context, opts VerifyOptions) (*VerifyResult, error)
	Prune(ctx context.Context, opts PruneOptions) (*PruneResult, error)
}

// Tree names one live directory included in snapshots. The name becomes the
// top-level directory inside each snapshot.
type Tree struct {
	Name string
	Path string
}

// Config locates the backups root and the trees it covers.
type Config struct {
	BackupsDir string
	Trees      []Tree
}

// Recorder persists snapshot lifecycle events when a catalog is configured.
// Recording failures are logged, never fatal.
type Recorder interface {
	RecordSnapshotEvent(ctx context.Context, event SnapshotEvent) error
}

// SnapshotEvent describes one lifecycle action for the catalog.
type SnapshotEvent struct {
	SnapshotID string
	Action     string
	Label      string
	FileCount  int
	TotalSize  int64
	OccurredAt time.Time
}

// Dependencies wires optional collaborators.
type Dependencies struct {
	Logger   interfaces.Logger
	Recorder Recorder
}

// CreateOptions annotates a new snapshot.
type CreateOptions struct {
	Label string
}

// ListOptions narrows a listing.
type ListOptions struct {
	// Limit caps the number of snapshots returned; zero means all.
	Limit int
}

// RestoreOptions selects the snapshot and restore behaviour.
type RestoreOptions struct {
	// ID of the snapshot to restore; empty selects the most recent.
	ID string
	// Clean removes live files that the snapshot does not contain.
	Clean bool
	// Force restores even when verification fails.
	Force bool
	// SkipSafetySnapshot disables the automatic pre-restore snapshot.
	SkipSafetySnapshot bool
}

// RestoreResult summarises one restore run.
type RestoreResult struct {
	SnapshotID     string
	FilesRestored  int
	FilesUnchanged int
	FilesRemoved   int
	SafetySnapshot *Snapshot
	Duration       time.Duration
}

// VerifyOptions selects the snapshot to verify; empty ID means most recent.
type VerifyOptions struct {
	ID string
}

// VerifyResult reports how a snapshot compares against its manifest.
type VerifyResult struct {
	SnapshotID string
	Checked    int
	Missing    []string
	Modified   []string
	Extra      []string
}

// OK reports whether the snapshot matches its manifest exactly.
func (r *VerifyResult) OK() bool {
	return r != nil && len(r.Missing) == 0 && len(r.Modified) == 0 && len(r.Extra) == 0
}

// PruneOptions sets the retention policy for one prune run. A snapshot
// survives when it is within the KeepLast newest or younger than MaxAge.
// Zero values keep everything.
type PruneOptions struct {
	KeepLast int
	MaxAge   time.Duration
	DryRun   bool
}

// PruneResult lists what a prune run removed.
type PruneResult struct {
	Removed    []string
	Kept       int
	BytesFreed int64
	DryRun     bool
}

type service struct {
	cfg      Config
	logger   interfaces.Logger
	recorder Recorder
	now      func() time.Time

	// lastRestored guards the snapshot a restore was based on from being
	// pruned in the same process.
	lastRestored string
}

// NewService validates the configuration and returns a ready backup service.
func NewService(cfg Config, deps Dependencies) (Service, error) {
	if strings.TrimSpace(cfg.BackupsDir) == "" {
		return nil, errors.New("backup: backups directory required")
	}
	if len(cfg.Trees) == 0 {
		return nil, errors.New("backup: at least one tree required")
	}

	seen := map[string]struct{}{}
	for _, tree := range cfg.Trees {
		name := strings.TrimSpace(tree.Name)
		if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
			return nil, fmt.Errorf("backup: invalid tree name %q", tree.Name)
		}
		if strings.TrimSpace(tree.Path) == "" {
			return nil, fmt.Errorf("backup: tree %q requires a path", name)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("backup: duplicate tree name %q", name)
		}
		seen[name] = struct{}{}
	}

	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}

	return &service{
		cfg:      cfg,
		logger:   deps.Logger,
		recorder: deps.Recorder,
		now:      time.Now,
	}, nil
}

// NewDisabledService returns a backup service that rejects every call.
func NewDisabledService() Service {
	return disabledService{}
}

type disabledService struct{}

func (disabledService) Create(context.Context, CreateOptions) (*Snapshot, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) List(context.Context, ListOptions) ([]*Snapshot, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Restore(context.Context, RestoreOptions) (*RestoreResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Verify(context.Context, VerifyOptions) (*VerifyResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Prune(context.Context, PruneOptions) (*PruneResult, error) {
	return nil, ErrServiceDisabled
}

func (s *service) tree(name string) (Tree, bool) {
	for _, tree := range s.cfg.Trees {
		if tree.Name == name {
			return tree, true
		}
	}
	return Tree{}, false
}

func (s *service) recordEvent(ctx context.Context, event SnapshotEvent) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordSnapshotEvent(ctx, event); err != nil {
		s.logger.Warn("backup: record event failed",
			"snapshot", event.SnapshotID, "action", event.Action, "error", err)
	}
}

func (s *service) backupsDirAbs() (string, error) {
	abs, err := filepath.Abs(s.cfg.BackupsDir)
	if err != nil {
		return "", fmt.Errorf("backup: resolve backups dir: %w", err)
	}
	return abs, nil
}
