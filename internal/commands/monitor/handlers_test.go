package monitorcmd

import (
	"context"
	"errors"
	"testing"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-sitekit/internal/monitor"
)

type fakeMonitorService struct {
	runFunc    func(ctx context.Context, opts monitor.Options) (*monitor.Report, error)
	reportFunc func(ctx context.Context, opts monitor.ReportOptions) (*monitor.Summary, error)
}

func (f *fakeMonitorService) Run(ctx context.Context, opts monitor.Options) (*monitor.Report, error) {
	if f.runFunc == nil {
		return nil, errors.New("run not wired")
	}
	return f.runFunc(ctx, opts)
}

func (f *fakeMonitorService) Report(ctx context.Context, opts monitor.ReportOptions) (*monitor.Summary, error) {
	if f.reportFunc == nil {
		return nil, errors.New("report not wired")
	}
	return f.reportFunc(ctx, opts)
}

func TestRunChecksHandler_Execute(t *testing.T) {
	var capturedOpts monitor.Options
	svc := &fakeMonitorService{
		runFunc: func(ctx context.Context, opts monitor.Options) (*monitor.Report, error) {
			capturedOpts = opts
			return &monitor.Report{Results: []monitor.CheckResult{{Target: "home", OK: true}}}, nil
		},
	}

	handler := NewRunChecksHandler(svc, nil, FeatureGates{}, nil)

	var envelope ResultEnvelope
	cmd := RunChecksCommand{
		Targets:        []string{"home"},
		ResultCallback: func(env ResultEnvelope) { envelope = env },
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute run: %v", err)
	}
	if len(capturedOpts.Targets) != 1 || capturedOpts.Targets[0] != "home" {
		t.Fatalf("expected target filter to propagate, got %v", capturedOpts.Targets)
	}
	if envelope.Report == nil || !envelope.Report.AllOK() {
		t.Fatalf("expected passing report, got %#v", envelope.Report)
	}
}

func TestRunChecksHandler_DisabledGate(t *testing.T) {
	svc := &fakeMonitorService{}
	handler := NewRunChecksHandler(svc, nil, FeatureGates{MonitorEnabled: func() bool { return false }}, nil)

	err := handler.Execute(context.Background(), RunChecksCommand{})
	if !errors.Is(err, monitor.ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestRunChecksCommand_ValidateRejectsBlankTarget(t *testing.T) {
	cmd := RunChecksCommand{Targets: []string{"home", "  "}}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected validation error for blank target")
	}
}

func TestRunChecksHandler_CronContract(t *testing.T) {
	ran := false
	svc := &fakeMonitorService{
		runFunc: func(ctx context.Context, opts monitor.Options) (*monitor.Report, error) {
			ran = true
			if len(opts.Targets) != 0 {
				t.Fatalf("cron runs should probe all targets, got %v", opts.Targets)
			}
			return &monitor.Report{}, nil
		},
	}

	handler := NewRunChecksHandler(svc, nil, FeatureGates{}, []CronOption{WithCronExpression("@hourly")})

	if got := handler.CronOptions().Expression; got != "@hourly" {
		t.Fatalf("expected cron expression @hourly, got %q", got)
	}
	if err := handler.CronHandler()(); err != nil {
		t.Fatalf("cron handler: %v", err)
	}
	if !ran {
		t.Fatal("expected cron handler to run checks")
	}
}

func TestRegisterMonitorCron(t *testing.T) {
	svc := &fakeMonitorService{
		runFunc: func(ctx context.Context, opts monitor.Options) (*monitor.Report, error) {
			return &monitor.Report{}, nil
		},
	}
	handler := NewRunChecksHandler(svc, nil, FeatureGates{}, nil)

	var capturedCfg command.HandlerConfig
	var capturedHandler any
	reg := CronRegistrar(func(cfg command.HandlerConfig, h any) error {
		capturedCfg = cfg
		capturedHandler = h
		return nil
	})

	if err := RegisterMonitorCron(reg, handler); err != nil {
		t.Fatalf("register monitor cron: %v", err)
	}
	if capturedCfg.Expression == "" {
		t.Fatal("expected a default cron expression")
	}
	if capturedHandler == nil {
		t.Fatal("expected cron handler to be registered")
	}

	if err := RegisterMonitorCron(nil, handler); err != nil {
		t.Fatalf("expected nil registrar to be a no-op, got %v", err)
	}
}

func TestReportHandler_Execute(t *testing.T) {
	var capturedOpts monitor.ReportOptions
	svc := &fakeMonitorService{
		reportFunc: func(ctx context.Context, opts monitor.ReportOptions) (*monitor.Summary, error) {
			capturedOpts = opts
			return &monitor.Summary{Targets: []monitor.TargetSummary{{Target: "home", UptimePct: 99.5}}}, nil
		},
	}

	handler := NewReportHandler(svc, nil, FeatureGates{})

	var envelope ResultEnvelope
	cmd := ReportCommand{
		Target:         "home",
		WindowDays:     7,
		ResultCallback: func(env ResultEnvelope) { envelope = env },
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute report: %v", err)
	}
	if capturedOpts.Window != 7*24*time.Hour {
		t.Fatalf("expected 7 day window, got %v", capturedOpts.Window)
	}
	if envelope.Summary == nil || len(envelope.Summary.Targets) != 1 {
		t.Fatalf("expected summary with one target, got %#v", envelope.Summary)
	}
}

func TestRegisterMonitorCommandsRegistersHandlers(t *testing.T) {
	svc := &fakeMonitorService{}
	var registered []any
	reg := registryFunc(func(handler any) error {
		registered = append(registered, handler)
		return nil
	})

	set, err := RegisterMonitorCommands(reg, svc, nil, FeatureGates{})
	if err != nil {
		t.Fatalf("register monitor commands: %v", err)
	}
	if set.Run == nil || set.Report == nil {
		t.Fatal("expected all handlers to be constructed")
	}
	if len(registered) != 2 {
		t.Fatalf("expected 2 registered handlers, got %d", len(registered))
	}
}

type registryFunc func(handler any) error

func (f registryFunc) RegisterCommand(handler any) error { return f(handler) }
