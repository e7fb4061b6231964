package runtimeconfig

import (
	"path/filepath"
	"strings"
)

// ContentDir returns the absolute-ish content root, joined to ProjectDir.
func (cfg Config) ContentDir() string {
	return cfg.projectPath(cfg.Content.Dir)
}

// DataDir returns the directory holding the JSON site documents.
func (cfg Config) DataDir() string {
	return filepath.Join(cfg.ContentDir(), cfg.Content.DataDir)
}

// TemplatesDir returns the directory holding page templates.
func (cfg Config) TemplatesDir() string {
	return filepath.Join(cfg.ContentDir(), cfg.Content.TemplatesDir)
}

// AssetsDir returns the directory holding static assets.
func (cfg Config) AssetsDir() string {
	return filepath.Join(cfg.ContentDir(), cfg.Content.AssetsDir)
}

// PostsDir returns the directory holding markdown posts.
func (cfg Config) PostsDir() string {
	return filepath.Join(cfg.ContentDir(), cfg.Content.PostsDir)
}

// ThemesDir returns the directory holding theme manifests.
func (cfg Config) ThemesDir() string {
	return filepath.Join(cfg.ContentDir(), cfg.Content.ThemesDir)
}

// OutputDir returns the published tree root.
func (cfg Config) OutputDir() string {
	return cfg.projectPath(cfg.Generator.OutputDir)
}

// BackupsDir returns the snapshot root.
func (cfg Config) BackupsDir() string {
	return cfg.projectPath(cfg.Backup.Dir)
}

// TreePath pairs a backup tree name with its resolved location.
type TreePath struct {
	Name string
	Path string
}

// BackupTrees resolves the configured tree names into backup inputs. Each
// name is both the directory under ProjectDir and the top-level directory
// inside every snapshot.
func (cfg Config) BackupTrees() []TreePath {
	trees := make([]TreePath, 0, len(cfg.Backup.Trees))
	for _, name := range cfg.Backup.Trees {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		trees = append(trees, TreePath{Name: trimmed, Path: cfg.projectPath(trimmed)})
	}
	return trees
}

func (cfg Config) projectPath(rel string) string {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return cfg.projectRoot()
	}
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(cfg.projectRoot(), rel)
}

func (cfg Config) projectRoot() string {
	root := strings.TrimSpace(cfg.ProjectDir)
	if root == "" {
		root = "."
	}
	return filepath.Clean(root)
}
