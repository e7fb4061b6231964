// Package templates indexes the HTML templates under content/templates. The
// store fingerprints every file so the generator can decide what changed, and
// extracts the token names each template references so validation can report
// tokens no data file provides.
package templates

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-sitekit/internal/identity"
	"github.com/google/uuid"
)

// Template describes one indexed template file.
type Template struct {
	ID          uuid.UUID
	Path        string
	Size        int64
	ModTime     time.Time
	Fingerprint string
	Tokens      []string
}

// Store walks a filesystem rooted at the templates directory and keeps the
// parsed index in memory until Reload.
type Store struct {
	fs fs.FS

	mu        sync.RWMutex
	templates map[string]*Template
	loaded    bool
}

// NewStore constructs a Store over filesystem. Pass os.DirFS(templatesDir) in
// production; tests use fstest.MapFS.
func NewStore(filesystem fs.FS) *Store {
	return &Store{fs: filesystem}
}

// tokenPattern matches {{ TOKEN }} references, optionally followed by a
// filter chain. Lowercase expressions like {{ page.Title }} are structured
// context lookups, not tokens, and are left to the renderer.
var tokenPattern = regexp.MustCompile(`\{\{-?\s*([A-Z][A-Z0-9_]*)\s*(?:\|[^{}]*)?-?\}\}`)

// Load indexes every template file. Calling Load twice re-indexes.
func (s *Store) Load(ctx context.Context) error {
	if s.fs == nil {
		return fmt.Errorf("templates: filesystem required")
	}

	index := map[string]*Template{}

	err := fs.WalkDir(s.fs, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := entry.Name()
		if entry.IsDir() {
			if path != "." && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if !isTemplateFile(name) {
			return nil
		}

		data, err := fs.ReadFile(s.fs, path)
		if err != nil {
			return fmt.Errorf("templates: read %s: %w", path, err)
		}
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("templates: stat %s: %w", path, err)
		}

		sum := sha256.Sum256(data)
		index[path] = &Template{
			ID:          identity.TemplateUUID(path),
			Path:        path,
			Size:        int64(len(data)),
			ModTime:     info.ModTime(),
			Fingerprint: hex.EncodeToString(sum[:]),
			Tokens:      extractTokens(data),
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.templates = index
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Reload re-indexes the templates directory.
func (s *Store) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// Get returns the indexed template at path.
func (s *Store) Get(path string) (*Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[strings.TrimPrefix(path, "./")]
	return tpl, ok
}

// Templates returns every indexed template sorted by path.
func (s *Store) Templates() []*Template {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Template, 0, len(s.templates))
	for _, tpl := range s.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Loaded reports whether Load has completed at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Fingerprint combines every template fingerprint into one digest. The
// generator stores it in the build manifest so any template edit invalidates
// incremental skips.
func (s *Store) Fingerprint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.templates) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s.templates))
	for key := range s.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	hasher := sha256.New()
	for _, key := range keys {
		hasher.Write([]byte(key))
		hasher.Write([]byte("="))
		hasher.Write([]byte(s.templates[key].Fingerprint))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func isTemplateFile(name string) bool {
	switch strings.ToLower(fileExt(name)) {
	case ".html", ".htm", ".xml", ".txt", ".tmpl":
		return true
	default:
		return false
	}
}

func fileExt(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[idx:]
}

func extractTokens(source []byte) []string {
	matches := tokenPattern.FindAllSubmatch(source, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	tokens := make([]string, 0, len(matches))
	for _, match := range matches {
		token := string(match[1])
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}
