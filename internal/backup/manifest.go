package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	manifestFileName = "manifest.json"
	manifestVersion  = 1
	stagingPrefix    = ".staging-"
)

// Manifest records everything a snapshot contains. It lives next to the
// copied trees inside the snapshot directory; a snapshot without a readable
// manifest is listed but reported as unverifiable.
type Manifest struct {
	Version   int                      `json:"version"`
	ID        string                   `json:"id"`
	Label     string                   `json:"label,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
	Trees     []string                 `json:"trees"`
	Files     map[string]ManifestEntry `json:"files"`
}

// ManifestEntry describes one captured file, keyed by its tree-relative path
// (`<tree>/<path>` with forward slashes).
type ManifestEntry struct {
	Hash    string    `json:"hash"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// FileCount returns the number of captured files.
func (m *Manifest) FileCount() int {
	if m == nil {
		return 0
	}
	return len(m.Files)
}

// TotalSize returns the combined byte size of the captured files.
func (m *Manifest) TotalSize() int64 {
	if m == nil {
		return 0
	}
	var total int64
	for _, entry := range m.Files {
		total += entry.Size
	}
	return total
}

// SortedPaths returns the manifest keys in lexical order, for deterministic
// reporting and restores.
func (m *Manifest) SortedPaths() []string {
	paths := make([]string, 0, len(m.Files))
	for path := range m.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func writeManifest(dir string, manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("backup: encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFileName), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("backup: write manifest: %w", err)
	}
	return nil
}

func readManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("backup: parse manifest: %w", err)
	}
	if manifest.Files == nil {
		manifest.Files = map[string]ManifestEntry{}
	}
	return &manifest, nil
}

// hashFile streams a file through SHA-256 and returns the hex digest plus the
// number of bytes read.
func hashFile(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	hasher := sha256.New()
	size, err := io.Copy(hasher, file)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}

// copyFileHashed copies src to dst, creating parent directories, and returns
// the SHA-256 of the copied bytes so the manifest records what was actually
// written.
func copyFileHashed(src, dst string, mode os.FileMode) (string, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", 0, err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return "", 0, err
	}

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(out, hasher), in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}
