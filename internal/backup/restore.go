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

// Restore copies a snapshot's trees back over the live directories. The most
// recent snapshot is used when no ID is given. Unless disabled, a safety
// snapshot of the current live state is taken first so a bad restore is
// itself recoverable. Files whose live hash already matches the manifest are
// left untouched.
func (s *service) Restore(ctx context.Context, opts RestoreOptions) (*RestoreResult, error) {
	start := s.now()

	dir, id, err := s.resolveSnapshotDir(ctx, opts.ID)
	if err != nil {
		return nil, err
	}
	manifest, err := readManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("backup: snapshot %s has no readable manifest: %w", id, err)
	}

	verify, err := s.verifyAgainstManifest(ctx, dir, id, manifest)
	if err != nil {
		return nil, err
	}
	if !verify.OK() && !opts.Force {
		return nil, fmt.Errorf("%w: %s (%d missing, %d modified, %d extra)",
			ErrSnapshotCorrupt, id, len(verify.Missing), len(verify.Modified), len(verify.Extra))
	}

	result := &RestoreResult{SnapshotID: id}

	if !opts.SkipSafetySnapshot {
		safety, err := s.Create(ctx, CreateOptions{Label: "pre-restore"})
		if err != nil {
			return nil, fmt.Errorf("backup: safety snapshot before restore: %w", err)
		}
		result.SafetySnapshot = safety
	}

	for _, relPath := range manifest.SortedPaths() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := manifest.Files[relPath]
		livePath, ok := s.livePathFor(relPath)
		if !ok {
			s.logger.Warn("backup: manifest entry outside configured trees", "path", relPath)
			continue
		}

		if hash, size, err := hashFile(livePath); err == nil && hash == entry.Hash && size == entry.Size {
			result.FilesUnchanged++
			continue
		}
		srcPath := filepath.Join(dir, filepath.FromSlash(relPath))
		mode := os.FileMode(0o644)
		if info, err := os.Stat(srcPath); err == nil {
			mode = info.Mode()
		}
		hash, _, err := copyFileHashed(srcPath, livePath, mode)
		if err != nil {
			return nil, fmt.Errorf("backup: restore %s: %w", relPath, err)
		}
		if hash != entry.Hash {
			return nil, fmt.Errorf("backup: restore %s: written bytes do not match manifest", relPath)
		}
		result.FilesRestored++
	}

	if opts.Clean {
		removed, err := s.cleanLiveTrees(ctx, manifest)
		if err != nil {
			return nil, err
		}
		result.FilesRemoved = removed
	}

	s.lastRestored = id
	result.Duration = s.now().Sub(start)

	s.logger.Info("backup: snapshot restored",
		"snapshot", id, "restored", result.FilesRestored,
		"unchanged", result.FilesUnchanged, "removed", result.FilesRemoved)
	s.recordEvent(ctx, SnapshotEvent{
		SnapshotID: id,
		Action:     "restore",
		FileCount:  result.FilesRestored,
		OccurredAt: s.now().UTC(),
	})
	return result, nil
}

// livePathFor maps a manifest key (`<tree>/<path>`) to its live location.
func (s *service) livePathFor(relPath string) (string, bool) {
	treeName, rest, ok := strings.Cut(relPath, "/")
	if !ok {
		return "", false
	}
	tree, ok := s.tree(treeName)
	if !ok {
		return "", false
	}
	clean := path.Clean(rest)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return filepath.Join(tree.Path, filepath.FromSlash(clean)), true
}

// cleanLiveTrees removes live files the snapshot does not contain.
func (s *service) cleanLiveTrees(ctx context.Context, manifest *Manifest) (int, error) {
	backupsDir, err := s.backupsDirAbs()
	if err != nil {
		return 0, err
	}

	var doomed []string
	for _, treeName := range manifest.Trees {
		tree, ok := s.tree(treeName)
		if !ok {
			continue
		}
		root, err := filepath.Abs(tree.Path)
		if err != nil {
			return 0, fmt.Errorf("backup: resolve tree %q: %w", treeName, err)
		}
		err = filepath.WalkDir(root, func(fullPath string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if fullPath == root {
					return nil
				}
				return walkErr
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
			if !entry.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(root, fullPath)
			if err != nil {
				return err
			}
			key := path.Join(treeName, filepath.ToSlash(rel))
			if _, ok := manifest.Files[key]; !ok {
				doomed = append(doomed, fullPath)
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("backup: scan tree %q: %w", treeName, err)
		}
	}

	sort.Strings(doomed)
	for _, fullPath := range doomed {
		if err := os.Remove(fullPath); err != nil {
			return 0, fmt.Errorf("backup: remove %s: %w", fullPath, err)
		}
	}
	return len(doomed), nil
}
