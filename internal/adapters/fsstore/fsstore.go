// Package fsstore adapts the local filesystem to the storage.Provider
// contract so the generator can write artifacts without knowing about disks.
// Operations are routed by query name; unknown operations are ignored.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-sitekit/pkg/interfaces"
	"github.com/goliatone/go-sitekit/pkg/storage"
)

const (
	opEnsureDir = "generator.ensure_dir"
	opWrite     = "generator.write"
	opRead      = "generator.read"
	opRemove    = "generator.remove"
	opList      = "generator.list"
)

// New returns a Provider rooted at root. The base argument should match the
// generator OutputDir so duplicated prefixes are trimmed from incoming paths.
func New(root, base string) interfaces.StorageProvider {
	base = filepath.ToSlash(filepath.Clean(base))
	return &filesystemStorage{root: root, base: base}
}

type filesystemStorage struct {
	root string
	base string
}

func (s *filesystemStorage) Query(_ context.Context, query string, args ...any) (interfaces.Rows, error) {
	switch query {
	case opRead:
		if len(args) == 0 {
			return nil, nil
		}
		target := s.normalizePath(args[0])
		data, err := os.ReadFile(s.abs(target))
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &byteRows{data: data}, nil
	case opList:
		prefix := ""
		if len(args) > 0 {
			prefix = s.normalizePath(args[0])
		}
		paths, err := s.list(prefix)
		if err != nil {
			return nil, err
		}
		return &stringRows{values: paths}, nil
	default:
		return nil, nil
	}
}

func (s *filesystemStorage) Exec(_ context.Context, query string, args ...any) (interfaces.Result, error) {
	switch query {
	case opEnsureDir:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("ensure_dir requires path")
		}
		path := s.normalizePath(args[0])
		return emptyResult{}, os.MkdirAll(s.abs(path), 0o755)
	case opWrite:
		if len(args) < 2 {
			return emptyResult{}, fmt.Errorf("write requires path and reader")
		}
		path := s.normalizePath(args[0])
		reader, ok := args[1].(io.Reader)
		if !ok || reader == nil {
			return emptyResult{}, fmt.Errorf("write expects io.Reader content")
		}
		full := s.abs(path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return emptyResult{}, err
		}
		file, err := os.Create(full)
		if err != nil {
			return emptyResult{}, err
		}
		defer file.Close()
		if _, err := io.Copy(file, reader); err != nil {
			return emptyResult{}, err
		}
		return emptyResult{}, nil
	case opRemove:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("remove requires path")
		}
		path := s.normalizePath(args[0])
		err := os.RemoveAll(s.abs(path))
		if errors.Is(err, os.ErrNotExist) {
			return emptyResult{}, nil
		}
		return emptyResult{}, err
	default:
		return emptyResult{}, nil
	}
}

func (s *filesystemStorage) Transaction(ctx context.Context, fn func(tx interfaces.Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&filesystemTx{storage: s})
}

// Capabilities reports the adapter as filesystem-backed so callers avoid
// relying on transactional semantics.
func (s *filesystemStorage) Capabilities() storage.Capabilities {
	return storage.Capabilities{
		SupportsReload:  false,
		SupportsTx:      false,
		FilesystemBased: true,
		Metadata:        map[string]any{"root": s.root},
	}
}

func (s *filesystemStorage) list(prefix string) ([]string, error) {
	start := s.abs(prefix)
	info, err := os.Stat(start)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{prefix}, nil
	}

	var paths []string
	err = filepath.WalkDir(start, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *filesystemStorage) abs(rel string) string {
	if rel == "" {
		return s.root
	}
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func (s *filesystemStorage) normalizePath(arg any) string {
	path, _ := arg.(string)
	path = filepath.ToSlash(filepath.Clean(path))
	if path == "." {
		return ""
	}
	if s.base != "" && strings.HasPrefix(path, s.base) {
		path = strings.TrimPrefix(path, s.base)
		path = strings.TrimPrefix(path, "/")
	}
	return path
}

type filesystemTx struct {
	storage *filesystemStorage
}

func (tx *filesystemTx) Query(ctx context.Context, query string, args ...any) (interfaces.Rows, error) {
	return tx.storage.Query(ctx, query, args...)
}

func (tx *filesystemTx) Exec(ctx context.Context, query string, args ...any) (interfaces.Result, error) {
	return tx.storage.Exec(ctx, query, args...)
}

func (tx *filesystemTx) Transaction(context.Context, func(interfaces.Transaction) error) error {
	return errors.New("nested transactions not supported")
}

func (tx *filesystemTx) Commit() error {
	return nil
}

func (tx *filesystemTx) Rollback() error {
	return nil
}

type emptyResult struct{}

func (emptyResult) RowsAffected() (int64, error) { return 0, nil }
func (emptyResult) LastInsertId() (int64, error) { return 0, nil }

type byteRows struct {
	data []byte
	read bool
}

func (r *byteRows) Next() bool {
	if r.read {
		return false
	}
	r.read = true
	return true
}

func (r *byteRows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return fmt.Errorf("scan requires destination")
	}
	bytesDest, ok := dest[0].(*[]byte)
	if !ok {
		return fmt.Errorf("unsupported scan destination %T", dest[0])
	}
	*bytesDest = append((*bytesDest)[:0], r.data...)
	return nil
}

func (r *byteRows) Close() error {
	return nil
}

type stringRows struct {
	values []string
	index  int
}

func (r *stringRows) Next() bool {
	if r.index >= len(r.values) {
		return false
	}
	r.index++
	return true
}

func (r *stringRows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return fmt.Errorf("scan requires destination")
	}
	stringDest, ok := dest[0].(*string)
	if !ok {
		return fmt.Errorf("unsupported scan destination %T", dest[0])
	}
	if r.index == 0 || r.index > len(r.values) {
		return fmt.Errorf("scan called before Next")
	}
	*stringDest = r.values[r.index-1]
	return nil
}

func (r *stringRows) Close() error {
	return nil
}
