package monitorcmd

import (
	"context"
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-sitekit/internal/commands"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/monitor"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

var (
	_ command.Commander[RunChecksCommand] = (*RunChecksHandler)(nil)
	_ command.Commander[ReportCommand]    = (*ReportHandler)(nil)
	_ command.CronCommand                 = (*RunChecksHandler)(nil)
)

// RunChecksHandler probes site targets via the shared command handler
// foundation. It also satisfies command.CronCommand so hosts can schedule
// recurring runs.
type RunChecksHandler struct {
	inner      *commands.Handler[RunChecksCommand]
	cronConfig command.HandlerConfig
}

// CronOption customises the cron metadata attached to the handler.
type CronOption func(*RunChecksHandler)

// WithCronConfig replaces the cron handler configuration.
func WithCronConfig(cfg command.HandlerConfig) CronOption {
	return func(h *RunChecksHandler) {
		h.cronConfig = cfg
	}
}

// WithCronExpression overrides only the cron expression.
func WithCronExpression(expression string) CronOption {
	return func(h *RunChecksHandler) {
		if trimmed := strings.TrimSpace(expression); trimmed != "" {
			h.cronConfig.Expression = trimmed
		}
	}
}

// NewRunChecksHandler constructs a handler wired to the monitor service.
func NewRunChecksHandler(service monitor.Service, logger interfaces.Logger, gates FeatureGates, cronOpts []CronOption, opts ...commands.HandlerOption[RunChecksCommand]) *RunChecksHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RunChecksCommand) error {
		if service == nil || !gates.monitorEnabled() {
			return monitor.ErrServiceDisabled
		}

		report, err := service.Run(ctx, monitor.Options{Targets: msg.Targets})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Report: report,
			Metadata: map[string]any{
				"operation": "run",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[RunChecksCommand]{
		commands.WithLogger[RunChecksCommand](baseLogger),
		commands.WithOperation[RunChecksCommand]("monitor.run"),
		commands.WithMessageFields(func(msg RunChecksCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Targets) > 0 {
				fields["targets"] = len(msg.Targets)
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RunChecksCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	h := &RunChecksHandler{
		inner:      commands.NewHandler(exec, handlerOpts...),
		cronConfig: command.HandlerConfig{Expression: "@every 5m"},
	}
	for _, opt := range cronOpts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Execute satisfies command.Commander[RunChecksCommand].
func (h *RunChecksHandler) Execute(ctx context.Context, msg RunChecksCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CronHandler satisfies command.CronCommand by binding a full check run to a cron runner.
func (h *RunChecksHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), RunChecksCommand{})
	}
}

// CronOptions satisfies command.CronCommand by returning the configured cron metadata.
func (h *RunChecksHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

// ReportHandler summarizes persisted monitoring history.
type ReportHandler struct {
	inner *commands.Handler[ReportCommand]
}

// NewReportHandler constructs a handler wired to the monitor service.
func NewReportHandler(service monitor.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ReportCommand]) *ReportHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ReportCommand) error {
		if service == nil || !gates.monitorEnabled() {
			return monitor.ErrServiceDisabled
		}

		summary, err := service.Report(ctx, monitor.ReportOptions{
			Target: strings.TrimSpace(msg.Target),
			Window: time.Duration(msg.WindowDays) * 24 * time.Hour,
		})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Summary: summary,
			Metadata: map[string]any{
				"operation": "report",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[ReportCommand]{
		commands.WithLogger[ReportCommand](baseLogger),
		commands.WithOperation[ReportCommand]("monitor.report"),
		commands.WithMessageFields(func(msg ReportCommand) map[string]any {
			fields := map[string]any{}
			if msg.Target != "" {
				fields["target"] = msg.Target
			}
			if msg.WindowDays > 0 {
				fields["window_days"] = msg.WindowDays
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ReportCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ReportHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ReportCommand].
func (h *ReportHandler) Execute(ctx context.Context, msg ReportCommand) error {
	return h.inner.Execute(ctx, msg)
}
