package sitecheckcmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-sitekit/internal/commands"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/internal/sitecheck"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// ErrValidationDisabled is returned when the validation feature is switched off.
var ErrValidationDisabled = errors.New("sitecheck command: feature disabled")

var _ command.Commander[ValidateSiteCommand] = (*ValidateSiteHandler)(nil)

// ValidateSiteHandler runs the validation service via the shared command handler foundation.
type ValidateSiteHandler struct {
	inner *commands.Handler[ValidateSiteCommand]
}

// NewValidateSiteHandler constructs a handler wired to the validation service.
func NewValidateSiteHandler(service sitecheck.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ValidateSiteCommand]) *ValidateSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ValidateSiteCommand) error {
		if service == nil || !gates.validationEnabled() {
			return ErrValidationDisabled
		}

		report, err := service.Run(ctx, sitecheck.Options{Strict: msg.Strict})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Report: report,
			Metadata: map[string]any{
				"operation": "validate",
				"strict":    msg.Strict,
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[ValidateSiteCommand]{
		commands.WithLogger[ValidateSiteCommand](baseLogger),
		commands.WithOperation[ValidateSiteCommand]("check.validate"),
		commands.WithMessageFields(func(msg ValidateSiteCommand) map[string]any {
			fields := map[string]any{}
			if msg.Strict {
				fields["strict"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ValidateSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ValidateSiteHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ValidateSiteCommand].
func (h *ValidateSiteHandler) Execute(ctx context.Context, msg ValidateSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the validation command handlers.
type HandlerSet struct {
	Validate *ValidateSiteHandler
}

// RegisterSitecheckCommands builds the validation handler and registers it
// with the provided registry.
func RegisterSitecheckCommands(reg CommandRegistry, service sitecheck.Service, provider interfaces.LoggerProvider, gates FeatureGates) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("sitecheck command registration: validation service is nil")
	}

	logger := commands.CommandLogger(provider, "check")

	set := &HandlerSet{
		Validate: NewValidateSiteHandler(service, logger, gates),
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Validate); err != nil {
			return nil, err
		}
	}
	return set, nil
}
