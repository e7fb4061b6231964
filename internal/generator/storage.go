package generator

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

const (
	storageOpEnsureDir = "generator.ensure_dir"
	storageOpWrite     = "generator.write"
	storageOpRead      = "generator.read"
	storageOpRemove    = "generator.remove"
	storageOpList      = "generator.list"
)

type writeCategory string

const (
	categoryPage     writeCategory = "page"
	categoryAsset    writeCategory = "asset"
	categorySitemap  writeCategory = "sitemap"
	categoryRobots   writeCategory = "robots"
	categoryFeed     writeCategory = "feed"
	categoryManifest writeCategory = "manifest"
)

// writeFileRequest describes a file write operation routed through the artifact writer.
type writeFileRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Locale      string
	Category    writeCategory
	ContentType string
	Checksum    string
	Metadata    map[string]string
}

// artifactWriter abstracts storage provider specifics for generator outputs.
// Reads back existing artifacts so incremental builds, Diff, and Clean can
// inspect what a previous build left behind.
type artifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req writeFileRequest) error
	ReadFile(ctx context.Context, path string) ([]byte, bool, error)
	Remove(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

func newArtifactWriter(storage interfaces.StorageProvider) artifactWriter {
	if storage == nil {
		return noopWriter{}
	}
	return &storageWriter{storage: storage}
}

type storageWriter struct {
	storage interfaces.StorageProvider
}

func (w *storageWriter) EnsureDir(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" || path == "." {
		return nil
	}
	_, err := w.storage.Exec(ctx, storageOpEnsureDir, path)
	return err
}

func (w *storageWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}
	if req.Metadata == nil {
		req.Metadata = map[string]string{}
	}
	args := []any{
		req.Path,
		req.Content,
		req.Size,
		string(req.Category),
		req.ContentType,
		req.Locale,
		req.Checksum,
		req.Metadata,
	}
	_, err := w.storage.Exec(ctx, storageOpWrite, args...)
	return err
}

func (w *storageWriter) ReadFile(ctx context.Context, path string) ([]byte, bool, error) {
	if strings.TrimSpace(path) == "" {
		return nil, false, errors.New("generator: read requires path")
	}
	rows, err := w.storage.Query(ctx, storageOpRead, path)
	if err != nil {
		return nil, false, err
	}
	if rows == nil {
		return nil, false, nil
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, false, nil
	}
	var payload []byte
	if err := rows.Scan(&payload); err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (w *storageWriter) Remove(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("generator: remove requires path")
	}
	_, err := w.storage.Exec(ctx, storageOpRemove, path)
	return err
}

func (w *storageWriter) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := w.storage.Query(ctx, storageOpList, prefix)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, nil
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return nil, err
		}
		paths = append(paths, entry)
	}
	return paths, nil
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) WriteFile(context.Context, writeFileRequest) error { return nil }

func (noopWriter) ReadFile(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (noopWriter) Remove(context.Context, string) error { return nil }

func (noopWriter) List(context.Context, string) ([]string, error) { return nil, nil }
