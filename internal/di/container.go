// Package di wires the sitekit services behind a single container so hosts
// and the CLI construct the module the same way: validated configuration in,
// ready services out. Defaults favour a conventional project layout; every
// collaborator can be overridden through options.
package di

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-sitekit/internal/adapters/fsstore"
	"github.com/goliatone/go-sitekit/internal/adapters/noop"
	dbstore "github.com/goliatone/go-sitekit/internal/adapters/storage"
	"github.com/goliatone/go-sitekit/internal/backup"
	"github.com/goliatone/go-sitekit/internal/catalog"
	"github.com/goliatone/go-sitekit/internal/generator"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/logging/console"
	"github.com/goliatone/go-sitekit/internal/logging/gologger"
	"github.com/goliatone/go-sitekit/internal/monitor"
	"github.com/goliatone/go-sitekit/internal/render"
	"github.com/goliatone/go-sitekit/internal/runtimeconfig"
	"github.com/goliatone/go-sitekit/internal/sitecheck"
	"github.com/goliatone/go-sitekit/internal/sitedata"
	"github.com/goliatone/go-sitekit/internal/templates"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
	"github.com/goliatone/go-sitekit/site"
)

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger
	storage        interfaces.StorageProvider
	template       interfaces.TemplateRenderer
	routeManager   *urlkit.RouteManager
	httpClient     *http.Client
	clock          func() time.Time

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	migrationsFS  fs.FS

	buildRepo    catalog.BuildRepository
	checkRepo    catalog.CheckRepository
	snapshotRepo catalog.SnapshotRepository
	recorder     *catalog.Recorder

	templateStore *templates.Store

	dataSvc     site.Service
	generateSvc generator.Service
	backupSvc   backup.Service
	monitorSvc  monitor.Service
	validateSvc sitecheck.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithLogger overrides the container's own logger. Module loggers still come
// from the provider.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithStorage overrides the default filesystem-backed artifact storage.
func WithStorage(sp interfaces.StorageProvider) Option {
	return func(c *Container) {
		c.storage = sp
	}
}

// WithTemplate overrides the default pongo2 renderer.
func WithTemplate(tr interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		c.template = tr
	}
}

// WithBunDB supplies an externally managed catalog database. The container
// will not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache service and key serializer.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithCacheTTL tunes the default repository cache expiry.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Container) {
		c.cacheTTL = ttl
	}
}

// WithCatalogMigrations supplies the SQL migration files applied when the
// container opens its own catalog database.
func WithCatalogMigrations(fsys fs.FS) Option {
	return func(c *Container) {
		c.migrationsFS = fsys
	}
}

// WithRouteManager overrides the route manager built from the navigation
// config.
func WithRouteManager(manager *urlkit.RouteManager) Option {
	return func(c *Container) {
		c.routeManager = manager
	}
}

// WithHTTPClient overrides the client the monitor probes with.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		c.httpClient = client
	}
}

// WithClock overrides the time source used by the monitor and validator.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		c.clock = now
	}
}

// WithDataService overrides the default site data service binding.
func WithDataService(svc site.Service) Option {
	return func(c *Container) {
		c.dataSvc = svc
	}
}

// WithGeneratorService overrides the default generator binding.
func WithGeneratorService(svc generator.Service) Option {
	return func(c *Container) {
		c.generateSvc = svc
	}
}

// WithBackupService overrides the default backup binding.
func WithBackupService(svc backup.Service) Option {
	return func(c *Container) {
		c.backupSvc = svc
	}
}

// WithMonitorService overrides the default monitor binding.
func WithMonitorService(svc monitor.Service) Option {
	return func(c *Container) {
		c.monitorSvc = svc
	}
}

// WithValidationService overrides the default validator binding.
func WithValidationService(svc sitecheck.Service) Option {
	return func(c *Container) {
		c.validateSvc = svc
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) *Container {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: time.Minute,
		clock:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.configureLogging()
	c.configureStorage()
	c.configureCatalog()
	c.configureNavigation()
	c.configureServices()

	return c
}

func (c *Container) configureLogging() {
	if c.loggerProvider == nil {
		c.loggerProvider = providerFromConfig(c.Config)
	}
	if c.logger == nil {
		c.logger = logging.ModuleLogger(c.loggerProvider, "sitekit")
	}
}

func providerFromConfig(cfg runtimeconfig.Config) interfaces.LoggerProvider {
	if !cfg.Features.Logger {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err == nil {
			return provider
		}
		return console.NewProvider(console.Options{})
	default:
		level := consoleLevel(cfg.Logging.Level)
		return console.NewProvider(console.Options{MinLevel: &level})
	}
}

func consoleLevel(level string) console.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return console.LevelTrace
	case "debug":
		return console.LevelDebug
	case "warn", "warning":
		return console.LevelWarn
	case "error":
		return console.LevelError
	case "fatal":
		return console.LevelFatal
	default:
		return console.LevelInfo
	}
}

func (c *Container) configureStorage() {
	if c.storage != nil {
		return
	}
	c.storage = fsstore.New(c.Config.OutputDir(), c.Config.Generator.OutputDir)
}

// configureCatalog opens the catalog database and binds the repositories.
// When the catalog feature is off and no database was injected, the recorder
// stays nil and services skip persistence entirely. An open or migration
// failure downgrades to memory repositories so the toolchain keeps working;
// results simply stop surviving the process.
func (c *Container) configureCatalog() {
	if !c.Config.Features.Catalog && c.bunDB == nil {
		return
	}

	if c.bunDB == nil {
		db, err := openCatalogDB(c.Config.Storage)
		if err != nil {
			c.logger.Error("catalog database unavailable, using memory repositories", "error", err)
		} else {
			c.bunDB = db
			c.ownsDB = true
		}
	}

	c.configureCacheDefaults()

	if c.bunDB != nil && c.migrationsFS != nil {
		if err := catalog.Migrate(context.Background(), c.bunDB, c.migrationsFS); err != nil {
			c.logger.Error("catalog migrations failed, using memory repositories", "error", err)
			c.closeOwnedDB()
		}
	}

	if c.bunDB != nil {
		c.buildRepo = catalog.NewBunBuildRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.checkRepo = catalog.NewBunCheckRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.snapshotRepo = catalog.NewBunSnapshotRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	} else {
		c.buildRepo = catalog.NewMemoryBuildRepository()
		c.checkRepo = catalog.NewMemoryCheckRepository()
		c.snapshotRepo = catalog.NewMemorySnapshotRepository()
	}

	c.recorder = catalog.NewRecorder(c.buildRepo, c.checkRepo, c.snapshotRepo)
}

func (c *Container) configureCacheDefaults() {
	if c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func openCatalogDB(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "sqlite", "sqlite3":
		dsn := strings.TrimSpace(cfg.DSN)
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite catalog: %w", err)
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	case "postgres", "postgresql":
		sqlDB, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres catalog: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("di: unsupported storage driver %q", cfg.Driver)
	}
}

func (c *Container) closeOwnedDB() {
	if c.bunDB != nil && c.ownsDB {
		_ = c.bunDB.Close()
	}
	c.bunDB = nil
	c.ownsDB = false
}

func (c *Container) configureNavigation() {
	if c.routeManager != nil {
		return
	}

	navCfg := c.Config.Navigation
	if navCfg.RouteConfig == nil {
		return
	}

	c.routeManager = urlkit.NewRouteManager(navCfg.RouteConfig)
}

func (c *Container) configureServices() {
	cfg := c.Config

	if c.dataSvc == nil {
		dataOpts := sitedata.Options{
			DataFS:        os.DirFS(cfg.DataDir()),
			DefaultLocale: cfg.DefaultLocale,
			Locales:       cfg.Locales,
			Logger:        logging.DataLogger(c.loggerProvider),
		}
		if cfg.Features.Posts {
			dataOpts.PostsFS = os.DirFS(cfg.PostsDir())
		}
		c.dataSvc = sitedata.NewService(dataOpts)
	}

	if c.templateStore == nil {
		c.templateStore = templates.NewStore(os.DirFS(cfg.TemplatesDir()))
	}

	if c.template == nil {
		c.template = newDefaultRenderer(cfg)
	}

	if c.generateSvc == nil {
		c.generateSvc = c.buildGenerator()
	}

	if c.backupSvc == nil {
		c.backupSvc = c.buildBackup()
	}

	if c.validateSvc == nil {
		svc, err := sitecheck.NewService(sitecheck.Dependencies{
			Data:      c.dataSvc,
			DataFS:    os.DirFS(cfg.DataDir()),
			Templates: c.templateStore,
			Logger:    logging.ValidateLogger(c.loggerProvider),
			Now:       c.clock,
		})
		if err != nil {
			panic(err)
		}
		c.validateSvc = svc
	}

	if c.monitorSvc == nil {
		c.monitorSvc = c.buildMonitor()
	}
}

func newDefaultRenderer(cfg runtimeconfig.Config) interfaces.TemplateRenderer {
	templatesDir := cfg.TemplatesDir()
	if info, err := os.Stat(templatesDir); err != nil || !info.IsDir() {
		// Missing template dir still gets a string renderer; the validator
		// reports the absent templates with more context than a panic would.
		templatesDir = ""
	}

	renderer, err := render.NewRenderer(render.Config{TemplatesDir: templatesDir})
	if err != nil {
		return noop.Template()
	}
	return renderer
}

func (c *Container) buildGenerator() generator.Service {
	cfg := c.Config
	if !cfg.Generator.Enabled {
		return generator.NewDisabledService()
	}

	deps := generator.Dependencies{
		Site:      c.dataSvc,
		Templates: c.templateStore,
		Renderer:  c.template,
		Storage:   c.storage,
		Logger:    logging.GeneratorLogger(c.loggerProvider),
	}
	if cfg.Generator.CopyAssets {
		if info, err := os.Stat(cfg.AssetsDir()); err == nil && info.IsDir() {
			deps.Assets = os.DirFS(cfg.AssetsDir())
		}
	}
	if c.recorder != nil {
		deps.Recorder = c.recorder
	}

	genCfg := generator.Config{
		OutputDir: cfg.Generator.OutputDir,
		Workers:   cfg.Generator.Workers,
	}
	if cfg.Features.Themes {
		genCfg.Theming = generator.ThemingConfig{
			ThemesDir:      cfg.ThemesDir(),
			DefaultTheme:   cfg.Theming.DefaultTheme,
			DefaultVariant: cfg.Theming.DefaultVariant,
		}
	}

	svc, err := generator.NewService(genCfg, deps)
	if err != nil {
		panic(err)
	}
	return svc
}

func (c *Container) buildBackup() backup.Service {
	cfg := c.Config
	if !cfg.Backup.Enabled {
		return backup.NewDisabledService()
	}

	trees := make([]backup.Tree, 0, len(cfg.Backup.Trees))
	for _, tree := range cfg.BackupTrees() {
		trees = append(trees, backup.Tree{Name: tree.Name, Path: tree.Path})
	}

	deps := backup.Dependencies{
		Logger: logging.BackupLogger(c.loggerProvider),
	}
	if c.recorder != nil {
		deps.Recorder = c.recorder
	}

	svc, err := backup.NewService(backup.Config{
		BackupsDir: cfg.BackupsDir(),
		Trees:      trees,
	}, deps)
	if err != nil {
		panic(err)
	}
	return svc
}

func (c *Container) buildMonitor() monitor.Service {
	cfg := c.Config
	if !cfg.Monitor.Enabled {
		return monitor.NewDisabledService()
	}

	targets := make([]monitor.Target, 0, len(cfg.Monitor.Targets))
	for _, target := range cfg.Monitor.Targets {
		targets = append(targets, monitor.Target{
			Name:     target.Name,
			URL:      target.URL,
			Expected: target.Expected,
		})
	}

	deps := monitor.Dependencies{
		Data:   c.dataSvc,
		Routes: c.routeManager,
		Client: c.httpClient,
		Logger: logging.MonitorLogger(c.loggerProvider),
		Now:    c.clock,
	}
	if c.recorder != nil {
		deps.Recorder = c.recorder
		deps.History = c.recorder
	}

	svc, err := monitor.NewService(monitor.Config{
		Timeout:        cfg.Monitor.Timeout,
		UserAgent:      cfg.Monitor.UserAgent,
		ExpiryWarnDays: cfg.Monitor.ExpiryWarnDays,
		LatencyBudget:  cfg.Monitor.LatencyBudget,
		SizeBudgetKB:   cfg.Monitor.SizeBudgetKB,
		Targets:        targets,
		RouteGroup:     cfg.Navigation.Group,
	}, deps)
	if err != nil {
		panic(err)
	}
	return svc
}

// DataService returns the configured site data service.
func (c *Container) DataService() site.Service {
	return c.dataSvc
}

// GeneratorService returns the configured build pipeline.
func (c *Container) GeneratorService() generator.Service {
	return c.generateSvc
}

// BackupService returns the configured snapshot service.
func (c *Container) BackupService() backup.Service {
	return c.backupSvc
}

// MonitorService returns the configured monitor.
func (c *Container) MonitorService() monitor.Service {
	return c.monitorSvc
}

// ValidationService returns the configured project validator.
func (c *Container) ValidationService() sitecheck.Service {
	return c.validateSvc
}

// StorageProvider exposes the configured artifact storage.
func (c *Container) StorageProvider() interfaces.StorageProvider {
	return c.storage
}

// TemplateRenderer exposes the configured template renderer.
func (c *Container) TemplateRenderer() interfaces.TemplateRenderer {
	return c.template
}

// TemplateStore exposes the parsed template index.
func (c *Container) TemplateStore() *templates.Store {
	return c.templateStore
}

// LoggerProvider exposes the configured logger provider. May be nil when the
// logging feature is off; logging.ModuleLogger treats nil as no-op.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Logger returns the container's root logger.
func (c *Container) Logger() interfaces.Logger {
	return c.logger
}

// RouteManager exposes the navigation route manager, nil when unset.
func (c *Container) RouteManager() *urlkit.RouteManager {
	return c.routeManager
}

// Recorder exposes the catalog recorder, nil when the catalog is off.
func (c *Container) Recorder() *catalog.Recorder {
	return c.recorder
}

// BuildRepository exposes the catalog build history, nil when the catalog is
// off.
func (c *Container) BuildRepository() catalog.BuildRepository {
	return c.buildRepo
}

// CheckRepository exposes the catalog check history, nil when the catalog is
// off.
func (c *Container) CheckRepository() catalog.CheckRepository {
	return c.checkRepo
}

// SnapshotRepository exposes the catalog snapshot history, nil when the
// catalog is off.
func (c *Container) SnapshotRepository() catalog.SnapshotRepository {
	return c.snapshotRepo
}

// DB exposes the catalog database, nil when the catalog is memory-backed or
// off.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// CatalogStorage exposes the catalog database through the storage Provider
// contract for callers that run raw queries without importing bun. Nil when
// no catalog database is open.
func (c *Container) CatalogStorage() interfaces.StorageProvider {
	if c.bunDB == nil {
		return nil
	}
	return dbstore.NewBunAdapter(c.bunDB.DB, c.Config.Storage.Driver)
}

// Close releases the catalog database when the container opened it. A
// database injected through WithBunDB stays open.
func (c *Container) Close() error {
	if c.bunDB == nil || !c.ownsDB {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	c.ownsDB = false
	return err
}
