package sitecheckcmd

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-sitekit/internal/sitecheck"
)

type fakeCheckService struct {
	runFunc func(ctx context.Context, opts sitecheck.Options) (*sitecheck.Report, error)
}

func (f *fakeCheckService) Run(ctx context.Context, opts sitecheck.Options) (*sitecheck.Report, error) {
	if f.runFunc == nil {
		return nil, errors.New("run not wired")
	}
	return f.runFunc(ctx, opts)
}

func TestValidateSiteHandler_Execute(t *testing.T) {
	var capturedOpts sitecheck.Options
	svc := &fakeCheckService{
		runFunc: func(ctx context.Context, opts sitecheck.Options) (*sitecheck.Report, error) {
			capturedOpts = opts
			return &sitecheck.Report{
				Issues: []sitecheck.Issue{{Severity: sitecheck.SeverityWarning, Code: sitecheck.CodeTokenUnresolved}},
			}, nil
		},
	}

	handler := NewValidateSiteHandler(svc, nil, FeatureGates{})

	var envelope ResultEnvelope
	cmd := ValidateSiteCommand{
		Strict:         true,
		ResultCallback: func(env ResultEnvelope) { envelope = env },
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute validate: %v", err)
	}
	if !capturedOpts.Strict {
		t.Fatal("expected Strict to propagate")
	}
	if envelope.Report == nil || !envelope.Report.HasWarnings() {
		t.Fatalf("expected report with warnings, got %#v", envelope.Report)
	}
	if envelope.Metadata["strict"] != true {
		t.Fatalf("expected strict metadata, got %v", envelope.Metadata)
	}
}

func TestValidateSiteHandler_DisabledGate(t *testing.T) {
	svc := &fakeCheckService{}
	handler := NewValidateSiteHandler(svc, nil, FeatureGates{ValidationEnabled: func() bool { return false }})

	err := handler.Execute(context.Background(), ValidateSiteCommand{})
	if !errors.Is(err, ErrValidationDisabled) {
		t.Fatalf("expected ErrValidationDisabled, got %v", err)
	}
}

func TestRegisterSitecheckCommands(t *testing.T) {
	svc := &fakeCheckService{}
	var registered []any
	reg := registryFunc(func(handler any) error {
		registered = append(registered, handler)
		return nil
	})

	set, err := RegisterSitecheckCommands(reg, svc, nil, FeatureGates{})
	if err != nil {
		t.Fatalf("register sitecheck commands: %v", err)
	}
	if set.Validate == nil {
		t.Fatal("expected validate handler")
	}
	if len(registered) != 1 {
		t.Fatalf("expected 1 registered handler, got %d", len(registered))
	}

	if _, err := RegisterSitecheckCommands(reg, nil, nil, FeatureGates{}); err == nil {
		t.Fatal("expected error for nil service")
	}
}

type registryFunc func(handler any) error

func (f registryFunc) RegisterCommand(handler any) error { return f(handler) }
