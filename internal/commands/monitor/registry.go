package monitorcmd

import (
	"errors"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-sitekit/internal/commands"
	"github.com/goliatone/go-sitekit/internal/monitor"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the monitoring command handlers produced by RegisterMonitorCommands.
type HandlerSet struct {
	Run    *RunChecksHandler
	Report *ReportHandler
}

// RegisterMonitorCommands builds monitoring command handlers and registers
// them with the provided registry.
func RegisterMonitorCommands(reg CommandRegistry, service monitor.Service, provider interfaces.LoggerProvider, gates FeatureGates, cronOpts ...CronOption) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("monitor command registration: monitor service is nil")
	}

	logger := commands.CommandLogger(provider, "monitor")

	set := &HandlerSet{
		Run:    NewRunChecksHandler(service, logger, gates, cronOpts),
		Report: NewReportHandler(service, logger, gates),
	}

	if reg != nil {
		for _, handler := range []any{set.Run, set.Report} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// RegisterMonitorCron wires the run handler into a cron registrar. The handler
// executes with a background context on every tick.
func RegisterMonitorCron(reg CronRegistrar, handler *RunChecksHandler) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(handler.CronOptions(), handler.CronHandler())
}
