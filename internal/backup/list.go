package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// List returns snapshots newest first. Directories whose manifest is missing
// or unreadable still appear, flagged unverifiable, so operators can see and
// clean up damaged entries instead of silently losing them.
func (s *service) List(ctx context.Context, opts ListOptions) ([]*Snapshot, error) {
	backupsDir, err := s.backupsDirAbs()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(backupsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("backup: read backups dir: %w", err)
	}

	var snapshots []*Snapshot
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() || !isSnapshotDirName(entry.Name()) {
			continue
		}
		snapshots = append(snapshots, s.describeSnapshot(filepath.Join(backupsDir, entry.Name()), entry.Name()))
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ID > snapshots[j].ID
	})
	if opts.Limit > 0 && len(snapshots) > opts.Limit {
		snapshots = snapshots[:opts.Limit]
	}
	return snapshots, nil
}

func (s *service) describeSnapshot(dir, id string) *Snapshot {
	snapshot := &Snapshot{ID: id, Path: dir}
	if created, err := parseSnapshotID(id); err == nil {
		snapshot.CreatedAt = created
	}

	manifest, err := readManifest(dir)
	if err != nil {
		snapshot.Problem = err.Error()
		return snapshot
	}
	snapshot.Label = manifest.Label
	snapshot.FileCount = manifest.FileCount()
	snapshot.TotalSize = manifest.TotalSize()
	snapshot.Trees = manifest.Trees
	snapshot.Verifiable = true
	if !manifest.CreatedAt.IsZero() {
		snapshot.CreatedAt = manifest.CreatedAt
	}
	return snapshot
}

// latestSnapshotID resolves the most recent verifiable snapshot.
func (s *service) latestSnapshotID(ctx context.Context) (string, error) {
	snapshots, err := s.List(ctx, ListOptions{})
	if err != nil {
		return "", err
	}
	for _, snapshot := range snapshots {
		if snapshot.Verifiable {
			return snapshot.ID, nil
		}
	}
	return "", ErrNoSnapshots
}

// resolveSnapshotDir validates an ID (or picks the newest when empty) and
// returns its directory.
func (s *service) resolveSnapshotDir(ctx context.Context, id string) (string, string, error) {
	backupsDir, err := s.backupsDirAbs()
	if err != nil {
		return "", "", err
	}
	if id == "" {
		if id, err = s.latestSnapshotID(ctx); err != nil {
			return "", "", err
		}
	}
	if !isSnapshotDirName(id) {
		return "", "", fmt.Errorf("backup: malformed snapshot id %q", id)
	}
	dir := filepath.Join(backupsDir, id)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", "", fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	return dir, id, nil
}
