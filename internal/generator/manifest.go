package generator

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

const (
	manifestFileName = ".sitekit-manifest.json"
	manifestVersion  = 1
)

// buildManifest records what a build produced so the next run can skip
// unchanged documents and sweep outputs that no longer correspond to any
// document. It lives inside the output tree and travels with backups.
type buildManifest struct {
	Version             int                      `json:"version"`
	GeneratedAt         time.Time                `json:"generated_at"`
	BaseURL             string                   `json:"base_url"`
	DefaultLocale       string                   `json:"default_locale"`
	Locales             []string                 `json:"locales"`
	TemplateFingerprint string                   `json:"template_fingerprint,omitempty"`
	DataFingerprint     string                   `json:"data_fingerprint,omitempty"`
	Pages               map[string]manifestPage  `json:"pages"`
	Assets              map[string]manifestAsset `json:"assets,omitempty"`
}

type manifestPage struct {
	Route        string    `json:"route"`
	Locale       string    `json:"locale"`
	Output       string    `json:"output"`
	Checksum     string    `json:"checksum"`
	Hash         string    `json:"hash"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

type manifestAsset struct {
	Source   string `json:"source"`
	Output   string `json:"output"`
	Checksum string `json:"checksum"`
	Size     int64  `json:"size"`
}

func newManifest(buildCtx *BuildContext) *buildManifest {
	locales := make([]string, 0, len(buildCtx.Locales))
	for _, locale := range buildCtx.Locales {
		locales = append(locales, locale.Code)
	}
	return &buildManifest{
		Version:             manifestVersion,
		GeneratedAt:         buildCtx.GeneratedAt,
		BaseURL:             buildCtx.Site.BaseURL,
		DefaultLocale:       buildCtx.DefaultLocale,
		Locales:             locales,
		TemplateFingerprint: buildCtx.TemplateFingerprint,
		DataFingerprint:     buildCtx.DataFingerprint,
		Pages:               map[string]manifestPage{},
		Assets:              map[string]manifestAsset{},
	}
}

func (m *buildManifest) recordPage(doc *RenderedDocument) {
	m.Pages[doc.Key] = manifestPage{
		Route:        doc.Route,
		Locale:       doc.Locale,
		Output:       doc.Output,
		Checksum:     doc.Checksum,
		Hash:         doc.Metadata.Hash,
		Size:         int64(len(doc.Content)),
		LastModified: doc.Metadata.LastModified,
	}
}

func (m *buildManifest) carryPage(key string, entry manifestPage) {
	m.Pages[key] = entry
}

func (m *buildManifest) recordAsset(output string, entry manifestAsset) {
	m.Assets[output] = entry
}

// pageEntry looks up a previous build's record for a document key.
func (m *buildManifest) pageEntry(key string) (manifestPage, bool) {
	if m == nil {
		return manifestPage{}, false
	}
	entry, ok := m.Pages[strings.ToLower(key)]
	return entry, ok
}

// shouldSkipDocument reports whether the previous build already produced this
// document at the same output location from identical inputs.
func shouldSkipDocument(previous *buildManifest, doc *Document, output string) (manifestPage, bool) {
	entry, ok := previous.pageEntry(doc.Key)
	if !ok {
		return manifestPage{}, false
	}
	if entry.Hash == "" || entry.Hash != doc.Metadata.Hash {
		return manifestPage{}, false
	}
	if entry.Output != output {
		return manifestPage{}, false
	}
	return entry, true
}

// orphanOutputs returns output paths present in the previous manifest that
// the current build no longer produces. Sorted longest-first so nested files
// disappear before their parents would.
func orphanOutputs(previous, current *buildManifest) []string {
	if previous == nil {
		return nil
	}

	keep := map[string]struct{}{}
	for _, entry := range current.Pages {
		keep[entry.Output] = struct{}{}
	}
	for output := range current.Assets {
		keep[output] = struct{}{}
	}

	var orphans []string
	for _, entry := range previous.Pages {
		if _, ok := keep[entry.Output]; !ok {
			orphans = append(orphans, entry.Output)
		}
	}
	for output := range previous.Assets {
		if _, ok := keep[output]; !ok {
			orphans = append(orphans, output)
		}
	}

	sort.Slice(orphans, func(i, j int) bool {
		if len(orphans[i]) != len(orphans[j]) {
			return len(orphans[i]) > len(orphans[j])
		}
		return orphans[i] < orphans[j]
	})
	return orphans
}

func (s *service) loadManifest(ctx context.Context, writer artifactWriter) *buildManifest {
	payload, found, err := writer.ReadFile(ctx, s.manifestPath())
	if err != nil {
		s.logger.Warn("generator: manifest read failed, rebuilding everything", "error", err)
		return nil
	}
	if !found {
		return nil
	}

	var manifest buildManifest
	if err := json.Unmarshal(payload, &manifest); err != nil {
		s.logger.Warn("generator: manifest malformed, rebuilding everything", "error", err)
		return nil
	}
	if manifest.Version != manifestVersion {
		s.logger.Warn("generator: manifest version mismatch, rebuilding everything",
			"found", manifest.Version, "expected", manifestVersion)
		return nil
	}
	if manifest.Pages == nil {
		manifest.Pages = map[string]manifestPage{}
	}
	if manifest.Assets == nil {
		manifest.Assets = map[string]manifestAsset{}
	}
	return &manifest
}

func (s *service) manifestPath() string {
	return joinOutputPath(s.cfg.OutputDir, manifestFileName)
}

func marshalManifest(manifest *buildManifest) ([]byte, error) {
	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(payload, '\n'), nil
}
