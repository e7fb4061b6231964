package backup

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Create snapshots every configured tree into backups/<id>/. The copy is
// staged under a dot-prefixed directory and renamed into place last, so an
// interrupted run leaves no directory a listing would mistake for a snapshot.
func (s *service) Create(ctx context.Context, opts CreateOptions) (*Snapshot, error) {
	backupsDir, err := s.backupsDirAbs()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(backupsDir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: prepare backups dir: %w", err)
	}

	now := s.now().UTC()
	id := newSnapshotID(now, opts.Label)
	finalDir := filepath.Join(backupsDir, id)
	if _, err := os.Stat(finalDir); err == nil {
		return nil, fmt.Errorf("backup: snapshot %s already exists", id)
	}

	stagingDir := filepath.Join(backupsDir, stagingPrefix+id)
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: prepare staging dir: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	manifest := &Manifest{
		Version:   manifestVersion,
		ID:        id,
		Label:     strings.TrimSpace(opts.Label),
		CreatedAt: now,
		Files:     map[string]ManifestEntry{},
	}

	for _, tree := range s.cfg.Trees {
		manifest.Trees = append(manifest.Trees, tree.Name)
		if err := s.captureTree(ctx, tree, stagingDir, backupsDir, manifest); err != nil {
			return nil, err
		}
	}
	sort.Strings(manifest.Trees)

	if err := writeManifest(stagingDir, manifest); err != nil {
		return nil, err
	}
	if err := os.Rename(stagingDir, finalDir); err != nil {
		return nil, fmt.Errorf("backup: finalize snapshot %s: %w", id, err)
	}

	snapshot := &Snapshot{
		ID:         id,
		Label:      manifest.Label,
		CreatedAt:  now,
		Path:       finalDir,
		FileCount:  manifest.FileCount(),
		TotalSize:  manifest.TotalSize(),
		Trees:      manifest.Trees,
		Verifiable: true,
	}

	s.logger.Info("backup: snapshot created",
		"snapshot", id, "files", snapshot.FileCount, "bytes", snapshot.TotalSize)
	s.recordEvent(ctx, SnapshotEvent{
		SnapshotID: id,
		Action:     "create",
		Label:      manifest.Label,
		FileCount:  snapshot.FileCount,
		TotalSize:  snapshot.TotalSize,
		OccurredAt: now,
	})
	return snapshot, nil
}

// captureTree copies one live tree into the staging directory, recording each
// file in the manifest. The backups directory itself and symlinks are
// skipped; a missing tree captures nothing.
func (s *service) captureTree(ctx context.Context, tree Tree, stagingDir, backupsDir string, manifest *Manifest) error {
	root, err := filepath.Abs(tree.Path)
	if err != nil {
		return fmt.Errorf("backup: resolve tree %q: %w", tree.Name, err)
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		s.logger.Debug("backup: tree missing, skipping", "tree", tree.Name, "path", root)
		return nil
	}

	return filepath.WalkDir(root, func(fullPath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("backup: walk %s: %w", fullPath, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if sameFile(fullPath, backupsDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			s.logger.Warn("backup: skipping symlink", "path", fullPath)
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, fullPath)
		if err != nil {
			return fmt.Errorf("backup: relativize %s: %w", fullPath, err)
		}
		relSlash := path.Join(tree.Name, filepath.ToSlash(rel))

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("backup: stat %s: %w", fullPath, err)
		}
		hash, size, err := copyFileHashed(fullPath, filepath.Join(stagingDir, filepath.FromSlash(relSlash)), info.Mode())
		if err != nil {
			return fmt.Errorf("backup: capture %s: %w", relSlash, err)
		}
		manifest.Files[relSlash] = ManifestEntry{
			Hash:    hash,
			Size:    size,
			ModTime: info.ModTime().UTC(),
		}
		return nil
	})
}

// sameFile reports whether two paths resolve to the same directory entry.
// Used to keep the backups directory out of its own snapshots.
func sameFile(a, b string) bool {
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}
