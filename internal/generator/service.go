package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/templates"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
	"github.com/goliatone/go-sitekit/site"
)

// ErrServiceDisabled is returned by every operation on a disabled generator.
var ErrServiceDisabled = errors.New("generator: service disabled")

const defaultWorkers = 4

// Service turns the loaded site dataset into a publishable output tree.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Diff(ctx context.Context, opts BuildOptions) (*DiffResult, error)
	Clean(ctx context.Context) (*CleanResult, error)
	BuildSitemap(ctx context.Context) (*SitemapResult, error)
}

// Config tunes generator behaviour.
type Config struct {
	OutputDir string
	Workers   int
	Theming   ThemingConfig
}

// ThemingConfig locates theme manifests and the fallback selection.
type ThemingConfig struct {
	ThemesDir         string
	DefaultTheme      string
	DefaultVariant    string
	CSSVariablePrefix string
}

// Dependencies wires the collaborating services. Site, Renderer, and Storage
// are required; Assets, theming, and the recorder are optional.
type Dependencies struct {
	Site        site.Service
	Templates   *templates.Store
	Renderer    interfaces.TemplateRenderer
	Storage     interfaces.StorageProvider
	Assets      fs.FS
	ThemeLoader themeManifestLoader
	Recorder    Recorder
	Logger      interfaces.Logger
}

// Recorder persists build outcomes when a catalog is configured. Recording
// failures are logged, never fatal.
type Recorder interface {
	RecordBuild(ctx context.Context, result *BuildResult) error
}

// BuildOptions narrows or forces a build run.
type BuildOptions struct {
	Locales       []string
	Pages         []string
	Force         bool
	DryRun        bool
	IncludeDrafts bool
}

// BuildResult summarises one build run.
type BuildResult struct {
	GeneratedAt    time.Time
	Duration       time.Duration
	Locales        []string
	PagesRendered  int
	PagesSkipped   int
	AssetsCopied   int
	AssetsSkipped  int
	FeedsWritten   int
	SitemapEntries int
	OrphansRemoved int
	Diagnostics    []RenderDiagnostic
	DryRun         bool
	ManifestPath   string
}

// DiffEntry names one document whose output would change.
type DiffEntry struct {
	Key    string
	Route  string
	Locale string
	Output string
}

// DiffResult reports what a build would do without writing anything.
type DiffResult struct {
	Added     []DiffEntry
	Changed   []DiffEntry
	Removed   []DiffEntry
	Unchanged int
}

// InSync reports whether the published tree already matches the dataset.
func (r *DiffResult) InSync() bool {
	return r != nil && len(r.Added) == 0 && len(r.Changed) == 0 && len(r.Removed) == 0
}

// CleanResult reports what Clean swept away.
type CleanResult struct {
	FilesRemoved int
}

// SitemapResult reports a standalone sitemap refresh.
type SitemapResult struct {
	Entries int
	Path    string
}

type service struct {
	cfg    Config
	deps   Dependencies
	writer artifactWriter
	themes *themeSelector
	logger interfaces.Logger
	now    func() time.Time
}

// NewService validates dependencies and returns a ready generator.
func NewService(cfg Config, deps Dependencies) (Service, error) {
	if deps.Site == nil {
		return nil, errors.New("generator: site service required")
	}
	if deps.Renderer == nil {
		return nil, errors.New("generator: template renderer required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}

	return &service{
		cfg:    cfg,
		deps:   deps,
		writer: newArtifactWriter(deps.Storage),
		themes: newThemeSelector(cfg.Theming, deps.ThemeLoader),
		logger: deps.Logger,
		now:    time.Now,
	}, nil
}

// NewDisabledService returns a generator that rejects every call. Hosts use
// it when the generate feature gate is off so wiring stays uniform.
func NewDisabledService() Service {
	return disabledService{}
}

type disabledService struct{}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Diff(context.Context, BuildOptions) (*DiffResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) (*CleanResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) BuildSitemap(context.Context) (*SitemapResult, error) {
	return nil, ErrServiceDisabled
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := s.now()

	buildCtx, err := s.buildContext(ctx, opts)
	if err != nil {
		return nil, err
	}

	// Force only disables skip decisions; the previous manifest still feeds
	// partial-build merging and orphan detection.
	previous := s.loadManifest(ctx, s.writer)
	skipSource := previous
	if opts.Force {
		skipSource = nil
	}
	next := newManifest(buildCtx)

	var pending []*Document
	skipped := 0
	for _, doc := range buildCtx.Documents {
		output := joinOutputPath(s.cfg.OutputDir, buildOutputPath(doc.Route, doc.Locale, buildCtx.DefaultLocale))
		if skipSource != nil {
			if entry, skip := shouldSkipDocument(skipSource, doc, output); skip {
				next.carryPage(doc.Key, entry)
				skipped++
				continue
			}
		}
		pending = append(pending, doc)
	}

	rendered, diagnostics, err := s.renderConcurrently(ctx, buildCtx, pending)
	if err != nil {
		return nil, err
	}
	for i := range rendered {
		rendered[i].Output = joinOutputPath(s.cfg.OutputDir, rendered[i].Output)
	}

	result := &BuildResult{
		GeneratedAt:  buildCtx.GeneratedAt,
		Locales:      localeCodes(buildCtx.Locales),
		PagesSkipped: skipped,
		Diagnostics:  diagnostics,
		DryRun:       opts.DryRun,
		ManifestPath: s.manifestPath(),
	}
	for _, diagnostic := range diagnostics {
		if len(diagnostic.MissingTokens) > 0 {
			s.logger.Warn("generator: unresolved template tokens",
				"document", diagnostic.Key,
				"template", diagnostic.Template,
				"tokens", strings.Join(diagnostic.MissingTokens, ","))
		}
	}

	if opts.DryRun {
		result.PagesRendered = len(rendered)
		result.SitemapEntries = len(buildSitemapEntries(buildCtx))
		result.Duration = s.now().Sub(started)
		return result, nil
	}

	if err := s.persistDocuments(ctx, rendered, next); err != nil {
		return nil, err
	}
	result.PagesRendered = len(rendered)

	assetStats, err := s.persistAssets(ctx, buildCtx, skipSource, next)
	if err != nil {
		return nil, err
	}
	result.AssetsCopied = assetStats.Copied
	result.AssetsSkipped = assetStats.Skipped

	entries := buildSitemapEntries(buildCtx)
	if err := s.persistSitemap(ctx, buildCtx, entries); err != nil {
		return nil, err
	}
	result.SitemapEntries = len(entries)

	if err := s.persistRobots(ctx, buildCtx); err != nil {
		return nil, err
	}

	feeds, err := s.writeFeeds(ctx, s.writer, buildCtx, buildFeedDocuments(buildCtx))
	if err != nil {
		return nil, err
	}
	result.FeedsWritten = feeds

	fullBuild := len(opts.Pages) == 0 && len(opts.Locales) == 0
	if fullBuild {
		removed, err := s.removeOrphans(ctx, previous, next)
		if err != nil {
			return nil, err
		}
		result.OrphansRemoved = removed
	} else if previous != nil {
		// Partial builds keep untouched entries so the next full run still
		// skips them.
		for key, entry := range previous.Pages {
			if _, ok := next.Pages[key]; !ok {
				next.Pages[key] = entry
			}
		}
		for output, entry := range previous.Assets {
			if _, ok := next.Assets[output]; !ok {
				next.Assets[output] = entry
			}
		}
	}

	if err := s.persistManifest(ctx, buildCtx, next); err != nil {
		return nil, err
	}

	result.Duration = s.now().Sub(started)
	s.logger.Info("generator: build complete",
		"rendered", result.PagesRendered,
		"skipped", result.PagesSkipped,
		"assets", result.AssetsCopied,
		"feeds", result.FeedsWritten,
		"orphans_removed", result.OrphansRemoved,
		"duration", result.Duration.String())

	if s.deps.Recorder != nil {
		if err := s.deps.Recorder.RecordBuild(ctx, result); err != nil {
			s.logger.Warn("generator: record build failed", "error", err)
		}
	}
	return result, nil
}

func (s *service) Diff(ctx context.Context, opts BuildOptions) (*DiffResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buildCtx, err := s.buildContext(ctx, opts)
	if err != nil {
		return nil, err
	}
	previous := s.loadManifest(ctx, s.writer)

	result := &DiffResult{}
	current := map[string]struct{}{}
	for _, doc := range buildCtx.Documents {
		current[doc.Key] = struct{}{}
		output := joinOutputPath(s.cfg.OutputDir, buildOutputPath(doc.Route, doc.Locale, buildCtx.DefaultLocale))
		entry := DiffEntry{Key: doc.Key, Route: doc.Route, Locale: doc.Locale.Code, Output: output}

		prev, ok := previous.pageEntry(doc.Key)
		switch {
		case !ok:
			result.Added = append(result.Added, entry)
		case prev.Hash != doc.Metadata.Hash || prev.Output != output:
			result.Changed = append(result.Changed, entry)
		default:
			result.Unchanged++
		}
	}

	// Removed entries only make sense when the whole document set was
	// expanded; a filtered diff would misreport out-of-scope pages.
	if previous != nil && len(opts.Pages) == 0 && len(opts.Locales) == 0 {
		for key, entry := range previous.Pages {
			if _, ok := current[key]; ok {
				continue
			}
			result.Removed = append(result.Removed, DiffEntry{
				Key:    key,
				Route:  entry.Route,
				Locale: entry.Locale,
				Output: entry.Output,
			})
		}
	}

	sort.Slice(result.Added, func(i, j int) bool { return result.Added[i].Key < result.Added[j].Key })
	sort.Slice(result.Changed, func(i, j int) bool { return result.Changed[i].Key < result.Changed[j].Key })
	sort.Slice(result.Removed, func(i, j int) bool { return result.Removed[i].Key < result.Removed[j].Key })
	return result, nil
}

func (s *service) Clean(ctx context.Context) (*CleanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	files, err := s.writer.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("generator: list outputs: %w", err)
	}
	if len(files) == 0 {
		return &CleanResult{}, nil
	}

	roots := map[string]struct{}{}
	for _, file := range files {
		rel := strings.TrimPrefix(file, prefix)
		rel = strings.TrimPrefix(rel, "/")
		if rel == "" {
			continue
		}
		if idx := strings.Index(rel, "/"); idx > 0 {
			rel = rel[:idx]
		}
		roots[joinOutputPath(prefix, rel)] = struct{}{}
	}

	ordered := make([]string, 0, len(roots))
	for root := range roots {
		ordered = append(ordered, root)
	}
	sort.Strings(ordered)

	for _, root := range ordered {
		if err := s.writer.Remove(ctx, root); err != nil {
			return nil, fmt.Errorf("generator: remove %s: %w", root, err)
		}
	}

	s.logger.Info("generator: output cleaned", "files", len(files))
	return &CleanResult{FilesRemoved: len(files)}, nil
}

func (s *service) BuildSitemap(ctx context.Context) (*SitemapResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buildCtx, err := s.buildContext(ctx, BuildOptions{})
	if err != nil {
		return nil, err
	}

	entries := buildSitemapEntries(buildCtx)
	if err := s.persistSitemap(ctx, buildCtx, entries); err != nil {
		return nil, err
	}
	if err := s.persistRobots(ctx, buildCtx); err != nil {
		return nil, err
	}

	return &SitemapResult{
		Entries: len(entries),
		Path:    joinOutputPath(s.cfg.OutputDir, sitemapFileName),
	}, nil
}

func (s *service) persistDocuments(ctx context.Context, rendered []*RenderedDocument, next *buildManifest) error {
	dirCache := map[string]struct{}{}
	for _, doc := range rendered {
		if err := ensureDir(ctx, s.writer, dirCache, path.Dir(doc.Output)); err != nil {
			return fmt.Errorf("generator: ensure dir for %s: %w", doc.Output, err)
		}
		if err := s.writer.WriteFile(ctx, writeFileRequest{
			Path:        doc.Output,
			Content:     strings.NewReader(doc.Content),
			Size:        int64(len(doc.Content)),
			Locale:      doc.Locale,
			Category:    categoryPage,
			ContentType: doc.ContentType,
			Checksum:    doc.Checksum,
			Metadata: map[string]string{
				"document": doc.Key,
				"route":    doc.Route,
			},
		}); err != nil {
			return fmt.Errorf("generator: write %s: %w", doc.Output, err)
		}
		next.recordPage(doc)
	}
	return nil
}

func (s *service) persistAssets(ctx context.Context, buildCtx *BuildContext, previous, next *buildManifest) (assetCopyStats, error) {
	stats := assetCopyStats{}

	if buildCtx.Theme != nil {
		themeStats, err := s.copyThemeAssets(ctx, s.writer, buildCtx.Theme, buildCtx.themePath, previous, next)
		if err != nil {
			return stats, err
		}
		stats.Copied += themeStats.Copied
		stats.Skipped += themeStats.Skipped
	}

	// Site assets copy after the theme so a site file at the same output
	// path wins.
	siteStats, err := s.copyStaticAssets(ctx, s.writer, previous, next)
	if err != nil {
		return stats, err
	}
	stats.Copied += siteStats.Copied
	stats.Skipped += siteStats.Skipped
	return stats, nil
}

func (s *service) persistSitemap(ctx context.Context, buildCtx *BuildContext, entries []sitemapEntry) error {
	content := buildSitemapXML(entries, buildCtx.GeneratedAt)
	outPath := joinOutputPath(s.cfg.OutputDir, sitemapFileName)

	dirCache := map[string]struct{}{}
	if err := ensureDir(ctx, s.writer, dirCache, path.Dir(outPath)); err != nil {
		return err
	}
	if err := s.writer.WriteFile(ctx, writeFileRequest{
		Path:        outPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categorySitemap,
		ContentType: "application/xml",
		Checksum:    computeHashFromString(content),
	}); err != nil {
		return fmt.Errorf("generator: write sitemap: %w", err)
	}
	return nil
}

func (s *service) persistRobots(ctx context.Context, buildCtx *BuildContext) error {
	content := buildRobots(buildCtx)
	outPath := joinOutputPath(s.cfg.OutputDir, robotsFileName)

	dirCache := map[string]struct{}{}
	if err := ensureDir(ctx, s.writer, dirCache, path.Dir(outPath)); err != nil {
		return err
	}
	if err := s.writer.WriteFile(ctx, writeFileRequest{
		Path:        outPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categoryRobots,
		ContentType: "text/plain",
		Checksum:    computeHashFromString(content),
	}); err != nil {
		return fmt.Errorf("generator: write robots: %w", err)
	}
	return nil
}

func (s *service) removeOrphans(ctx context.Context, previous, next *buildManifest) (int, error) {
	orphans := orphanOutputs(previous, next)
	removed := 0
	for _, output := range orphans {
		if err := s.writer.Remove(ctx, output); err != nil {
			return removed, fmt.Errorf("generator: remove orphan %s: %w", output, err)
		}
		removed++
	}
	return removed, nil
}

func (s *service) persistManifest(ctx context.Context, buildCtx *BuildContext, manifest *buildManifest) error {
	payload, err := marshalManifest(manifest)
	if err != nil {
		return fmt.Errorf("generator: marshal manifest: %w", err)
	}

	outPath := s.manifestPath()
	dirCache := map[string]struct{}{}
	if err := ensureDir(ctx, s.writer, dirCache, path.Dir(outPath)); err != nil {
		return err
	}
	if err := s.writer.WriteFile(ctx, writeFileRequest{
		Path:        outPath,
		Content:     strings.NewReader(string(payload)),
		Size:        int64(len(payload)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(payload),
		Metadata: map[string]string{
			"generated_at": buildCtx.GeneratedAt.Format(time.RFC3339),
		},
	}); err != nil {
		return fmt.Errorf("generator: write manifest: %w", err)
	}
	return nil
}

func localeCodes(locales []LocaleSpec) []string {
	codes := make([]string, 0, len(locales))
	for _, locale := range locales {
		codes = append(codes, locale.Code)
	}
	return codes
}
