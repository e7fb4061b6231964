// Package sitekit is the embeddable entry point for the site toolchain: it
// loads the JSON/markdown content tree, renders it through pongo2 templates
// into a publishable static tree, and wraps the supporting services (backup
// snapshots, validation, monitoring, build catalog) behind one module facade.
package sitekit

import (
	"context"

	"github.com/goliatone/go-sitekit/internal/backup"
	"github.com/goliatone/go-sitekit/internal/di"
	"github.com/goliatone/go-sitekit/internal/generator"
	"github.com/goliatone/go-sitekit/internal/monitor"
	"github.com/goliatone/go-sitekit/internal/sitecheck"
	"github.com/goliatone/go-sitekit/internal/templates"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
	"github.com/goliatone/go-sitekit/site"
)

// DataService exports the site data contract for consumers of the sitekit package.
type DataService = site.Service

// GeneratorService exports the static build pipeline contract.
type GeneratorService = generator.Service

// BackupService exports the snapshot service contract.
type BackupService = backup.Service

// MonitorService exports the deployed-site monitor contract.
type MonitorService = monitor.Service

// ValidationService exports the project validator contract.
type ValidationService = sitecheck.Service

// TemplateService exports the parsed template index.
type TemplateService = *templates.Store

// Option mutates the DI container before it is finalised.
type Option = di.Option

// Container option re-exports so hosts do not need to import internal/di.
var (
	WithLogger            = di.WithLogger
	WithLoggerProvider    = di.WithLoggerProvider
	WithStorage           = di.WithStorage
	WithTemplate          = di.WithTemplate
	WithBunDB             = di.WithBunDB
	WithCache             = di.WithCache
	WithCacheTTL          = di.WithCacheTTL
	WithRouteManager      = di.WithRouteManager
	WithHTTPClient        = di.WithHTTPClient
	WithClock             = di.WithClock
	WithDataService       = di.WithDataService
	WithGeneratorService  = di.WithGeneratorService
	WithBackupService     = di.WithBackupService
	WithMonitorService    = di.WithMonitorService
	WithValidationService = di.WithValidationService
)

// Module represents the top level toolchain runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a sitekit module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := append([]Option{di.WithCatalogMigrations(GetMigrationsFS())}, opts...)
	return &Module{container: di.NewContainer(cfg, options...)}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Data returns the configured site data service.
func (m *Module) Data() DataService {
	return m.container.DataService()
}

// Generator returns the configured build pipeline.
func (m *Module) Generator() GeneratorService {
	return m.container.GeneratorService()
}

// Backup returns the configured snapshot service.
func (m *Module) Backup() BackupService {
	return m.container.BackupService()
}

// Monitor returns the configured monitor.
func (m *Module) Monitor() MonitorService {
	return m.container.MonitorService()
}

// Validator returns the configured project validator.
func (m *Module) Validator() ValidationService {
	return m.container.ValidationService()
}

// Templates returns the parsed template index.
func (m *Module) Templates() TemplateService {
	return m.container.TemplateStore()
}

// Logger returns the module's root logger.
func (m *Module) Logger() interfaces.Logger {
	return m.container.Logger()
}

// LoggerProvider exposes the configured logger provider.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.container.LoggerProvider()
}

// Load parses the content tree and indexes the templates. Most operations
// need both; the CLI calls it once before dispatching a command.
func (m *Module) Load(ctx context.Context) error {
	if err := m.container.DataService().Load(ctx); err != nil {
		return err
	}
	if store := m.container.TemplateStore(); store != nil {
		if err := store.Load(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases resources the module opened, currently the catalog database.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
