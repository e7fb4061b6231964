package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-sitekit/site"
)

type themeManifestLoader interface {
	Load(themePath string) (*gotheme.Manifest, error)
}

type fsThemeManifestLoader struct{}

func (fsThemeManifestLoader) Load(themePath string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(themePath))
	if cleaned == "" {
		return nil, fmt.Errorf("theme path required")
	}

	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

// themeSelector resolves the site's theme selection against manifests stored
// under the themes directory. Manifests load once per theme name and register
// with a shared registry so variant fallbacks behave consistently across
// build runs.
type themeSelector struct {
	registry       *gotheme.MemoryRegistry
	loader         themeManifestLoader
	themesDir      string
	defaultTheme   string
	defaultVariant string

	mu        sync.Mutex
	manifests map[string]*gotheme.Manifest
}

func newThemeSelector(cfg ThemingConfig, loader themeManifestLoader) *themeSelector {
	if loader == nil {
		loader = fsThemeManifestLoader{}
	}
	return &themeSelector{
		registry:       gotheme.NewRegistry(),
		loader:         loader,
		themesDir:      strings.TrimSpace(cfg.ThemesDir),
		defaultTheme:   strings.TrimSpace(cfg.DefaultTheme),
		defaultVariant: strings.TrimSpace(cfg.DefaultVariant),
		manifests:      map[string]*gotheme.Manifest{},
	}
}

// Selection resolves a theme choice to a concrete manifest selection plus the
// directory the theme's files live in. Returns nil when the site configures
// no theme and no default exists.
func (s *themeSelector) Selection(choice site.ThemeSelection) (*gotheme.Selection, string, error) {
	name := strings.TrimSpace(choice.Name)
	if name == "" {
		name = s.defaultTheme
	}
	if name == "" {
		return nil, "", nil
	}

	themePath := s.themePath(name)
	if _, err := s.ensureManifest(name, themePath); err != nil {
		return nil, "", err
	}

	selector := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   s.defaultTheme,
		DefaultVariant: s.defaultVariant,
	}

	variant := strings.TrimSpace(choice.Variant)
	if variant == "" {
		variant = s.defaultVariant
	}

	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, "", fmt.Errorf("select theme %s: %w", name, err)
	}
	return selection, themePath, nil
}

func (s *themeSelector) themePath(name string) string {
	if s.themesDir == "" {
		return name
	}
	return filepath.Join(s.themesDir, name)
}

func (s *themeSelector) ensureManifest(name, themePath string) (*gotheme.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(name)
	if manifest, ok := s.manifests[key]; ok {
		return manifest, nil
	}

	manifest, err := s.loader.Load(themePath)
	if err != nil {
		return nil, fmt.Errorf("load theme manifest from %s: %w", themePath, err)
	}

	normalized := *manifest
	if strings.TrimSpace(normalized.Name) == "" || !strings.EqualFold(normalized.Name, name) {
		normalized.Name = name
	}

	if err := s.registry.Register(&normalized); err != nil {
		return nil, fmt.Errorf("register theme manifest: %w", err)
	}
	s.manifests[key] = &normalized
	return &normalized, nil
}
