// Package commands exposes the toolchain command handlers to host
// applications: build, backup, monitoring, and validation messages wired to
// the services a DI container already constructed. Hosts hand in their own
// registry, dispatcher, or cron scheduler and get back the handler set.
package commands

import (
	"errors"
	"strings"

	command "github.com/goliatone/go-command"

	backupcmd "github.com/goliatone/go-sitekit/internal/commands/backup"
	buildcmd "github.com/goliatone/go-sitekit/internal/commands/build"
	monitorcmd "github.com/goliatone/go-sitekit/internal/commands/monitor"
	sitecheckcmd "github.com/goliatone/go-sitekit/internal/commands/sitecheck"
	"github.com/goliatone/go-sitekit/internal/di"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers command handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	CronRegistrar  CronRegistrar
	LoggerProvider interfaces.LoggerProvider
	// MonitorCron overrides the cron expression applied to the monitoring
	// run handler. Falls back to the commands config, then to the handler
	// default.
	MonitorCron string
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterContainerCommands builds the command handlers exposed by the provided container and
// optionally registers them with registry/dispatcher/cron integrations.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{}, nil
	}

	cfg := container.Config

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}

	if opts.Registry != nil && opts.CronRegistrar != nil {
		if reg, ok := opts.Registry.(interface {
			SetCronRegister(func(command.HandlerConfig, any) error) *command.Registry
		}); ok && reg != nil {
			reg.SetCronRegister(opts.CronRegistrar)
		}
	}

	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}

	var errs error

	register := func(handler any) {
		if handler == nil {
			return
		}
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}

		if opts.CronRegistrar != nil {
			if cronCmd, ok := handler.(command.CronCommand); ok {
				if err := opts.CronRegistrar(cronCmd.CronOptions(), cronCmd.CronHandler()); err != nil {
					errs = errors.Join(errs, err)
				}
			}
		}
	}

	loggerFor := func(module string) interfaces.Logger {
		return CommandLogger(provider, module)
	}

	// Build commands.
	if service := container.GeneratorService(); service != nil && cfg.Generator.Enabled {
		gates := buildcmd.FeatureGates{
			GeneratorEnabled: func() bool { return cfg.Generator.Enabled },
		}
		buildLogger := loggerFor("build")
		register(buildcmd.NewBuildSiteHandler(service, buildLogger, gates))
		register(buildcmd.NewDiffSiteHandler(service, buildLogger, gates))
		register(buildcmd.NewCleanSiteHandler(service, buildLogger, gates))
		if cfg.Generator.GenerateSitemap {
			register(buildcmd.NewBuildSitemapHandler(service, buildLogger, gates))
		}
	}

	// Backup commands.
	if service := container.BackupService(); service != nil && cfg.Backup.Enabled {
		gates := backupcmd.FeatureGates{
			BackupEnabled: func() bool { return cfg.Backup.Enabled },
		}
		backupLogger := loggerFor("backup")
		register(backupcmd.NewCreateSnapshotHandler(service, backupLogger, gates))
		register(backupcmd.NewRestoreSnapshotHandler(service, backupLogger, gates))
		register(backupcmd.NewVerifySnapshotHandler(service, backupLogger, gates))
		register(backupcmd.NewPruneSnapshotsHandler(service, backupLogger, gates))
	}

	// Validation commands. The validator carries no feature flag; it is
	// available whenever the container wired it.
	if service := container.ValidationService(); service != nil {
		register(sitecheckcmd.NewValidateSiteHandler(service, loggerFor("check"), sitecheckcmd.FeatureGates{}))
	}

	// Monitor commands.
	if service := container.MonitorService(); service != nil && cfg.Monitor.Enabled {
		gates := monitorcmd.FeatureGates{
			MonitorEnabled: func() bool { return cfg.Monitor.Enabled },
		}
		cronOpts := []monitorcmd.CronOption{}
		expr := strings.TrimSpace(opts.MonitorCron)
		if expr == "" {
			expr = strings.TrimSpace(cfg.Commands.MonitorCron)
		}
		if expr != "" {
			cronOpts = append(cronOpts, monitorcmd.WithCronExpression(expr))
		}
		monitorLogger := loggerFor("monitor")
		register(monitorcmd.NewRunChecksHandler(service, monitorLogger, gates, cronOpts))
		register(monitorcmd.NewReportHandler(service, monitorLogger, gates))
	}

	if errs != nil && len(result.Handlers) == 0 {
		return result, errs
	}

	if len(result.Handlers) == 0 {
		return result, errors.New("no command handlers registered; ensure services are configured and required features enabled")
	}

	return result, errs
}
