package backup

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
)

// Verify re-hashes a snapshot's contents against its manifest and reports the
// files that are missing, modified, or present but unrecorded. An empty ID
// verifies the most recent snapshot.
func (s *service) Verify(ctx context.Context, opts VerifyOptions) (*VerifyResult, error) {
	dir, id, err := s.resolveSnapshotDir(ctx, opts.ID)
	if err != nil {
		return nil, err
	}
	manifest, err := readManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("backup: snapshot %s has no readable manifest: %w", id, err)
	}
	return s.verifyAgainstManifest(ctx, dir, id, manifest)
}

func (s *service) verifyAgainstManifest(ctx context.Context, dir, id string, manifest *Manifest) (*VerifyResult, error) {
	result := &VerifyResult{SnapshotID: id}

	for _, relPath := range manifest.SortedPaths() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := manifest.Files[relPath]
		hash, size, err := hashFile(filepath.Join(dir, filepath.FromSlash(relPath)))
		if err != nil {
			result.Missing = append(result.Missing, relPath)
			continue
		}
		result.Checked++
		if hash != entry.Hash || size != entry.Size {
			result.Modified = append(result.Modified, relPath)
		}
	}

	// Files inside the snapshot that the manifest does not know about.
	for _, tree := range manifest.Trees {
		treeRoot := filepath.Join(dir, tree)
		err := filepath.WalkDir(treeRoot, func(fullPath string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if fullPath == treeRoot {
					return nil
				}
				return walkErr
			}
			if entry.IsDir() || !entry.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(dir, fullPath)
			if err != nil {
				return err
			}
			relSlash := path.Clean(filepath.ToSlash(rel))
			if _, ok := manifest.Files[relSlash]; !ok {
				result.Extra = append(result.Extra, relSlash)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("backup: scan snapshot %s: %w", id, err)
		}
	}
	sort.Strings(result.Extra)
	return result, nil
}
