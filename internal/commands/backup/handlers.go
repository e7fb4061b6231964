package backupcmd

import (
	"context"
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-sitekit/internal/backup"
	"github.com/goliatone/go-sitekit/internal/commands"
	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

var (
	_ command.Commander[CreateSnapshotCommand]  = (*CreateSnapshotHandler)(nil)
	_ command.Commander[RestoreSnapshotCommand] = (*RestoreSnapshotHandler)(nil)
	_ command.Commander[VerifySnapshotCommand]  = (*VerifySnapshotHandler)(nil)
	_ command.Commander[PruneSnapshotsCommand]  = (*PruneSnapshotsHandler)(nil)
)

// CreateSnapshotHandler captures snapshots via the shared command handler foundation.
type CreateSnapshotHandler struct {
	inner *commands.Handler[CreateSnapshotCommand]
}

// NewCreateSnapshotHandler constructs a handler wired to the backup service.
func NewCreateSnapshotHandler(service backup.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[CreateSnapshotCommand]) *CreateSnapshotHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg CreateSnapshotCommand) error {
		if service == nil || !gates.backupEnabled() {
			return backup.ErrServiceDisabled
		}

		snapshot, err := service.Create(ctx, backup.CreateOptions{Label: strings.TrimSpace(msg.Label)})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Snapshot: snapshot,
			Metadata: map[string]any{
				"operation": "create",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[CreateSnapshotCommand]{
		commands.WithLogger[CreateSnapshotCommand](baseLogger),
		commands.WithOperation[CreateSnapshotCommand]("backup.create"),
		commands.WithMessageFields(func(msg CreateSnapshotCommand) map[string]any {
			fields := map[string]any{}
			if msg.Label != "" {
				fields["label"] = msg.Label
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CreateSnapshotCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CreateSnapshotHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CreateSnapshotCommand].
func (h *CreateSnapshotHandler) Execute(ctx context.Context, msg CreateSnapshotCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RestoreSnapshotHandler restores live trees from a snapshot.
type RestoreSnapshotHandler struct {
	inner *commands.Handler[RestoreSnapshotCommand]
}

// NewRestoreSnapshotHandler constructs a handler wired to the backup service.
func NewRestoreSnapshotHandler(service backup.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[RestoreSnapshotCommand]) *RestoreSnapshotHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RestoreSnapshotCommand) error {
		if service == nil || !gates.backupEnabled() {
			return backup.ErrServiceDisabled
		}

		result, err := service.Restore(ctx, backup.RestoreOptions{
			ID:                 strings.TrimSpace(msg.ID),
			Clean:              msg.Clean,
			Force:              msg.Force,
			SkipSafetySnapshot: msg.SkipSafetySnapshot,
		})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Restore: result,
			Metadata: map[string]any{
				"operation": "restore",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[RestoreSnapshotCommand]{
		commands.WithLogger[RestoreSnapshotCommand](baseLogger),
		commands.WithOperation[RestoreSnapshotCommand]("backup.restore"),
		commands.WithMessageFields(func(msg RestoreSnapshotCommand) map[string]any {
			fields := map[string]any{}
			if msg.ID != "" {
				fields["snapshot"] = msg.ID
			}
			if msg.Clean {
				fields["clean"] = true
			}
			if msg.Force {
				fields["force"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RestoreSnapshotCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RestoreSnapshotHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RestoreSnapshotCommand].
func (h *RestoreSnapshotHandler) Execute(ctx context.Context, msg RestoreSnapshotCommand) error {
	return h.inner.Execute(ctx, msg)
}

// VerifySnapshotHandler checks snapshot integrity against its manifest.
type VerifySnapshotHandler struct {
	inner *commands.Handler[VerifySnapshotCommand]
}

// NewVerifySnapshotHandler constructs a handler wired to the backup service.
func NewVerifySnapshotHandler(service backup.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[VerifySnapshotCommand]) *VerifySnapshotHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg VerifySnapshotCommand) error {
		if service == nil || !gates.backupEnabled() {
			return backup.ErrServiceDisabled
		}

		result, err := service.Verify(ctx, backup.VerifyOptions{ID: strings.TrimSpace(msg.ID)})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Verify: result,
			Metadata: map[string]any{
				"operation": "verify",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[VerifySnapshotCommand]{
		commands.WithLogger[VerifySnapshotCommand](baseLogger),
		commands.WithOperation[VerifySnapshotCommand]("backup.verify"),
		commands.WithMessageFields(func(msg VerifySnapshotCommand) map[string]any {
			fields := map[string]any{}
			if msg.ID != "" {
				fields["snapshot"] = msg.ID
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[VerifySnapshotCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &VerifySnapshotHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[VerifySnapshotCommand].
func (h *VerifySnapshotHandler) Execute(ctx context.Context, msg VerifySnapshotCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PruneSnapshotsHandler applies retention settings to the snapshot store.
type PruneSnapshotsHandler struct {
	inner *commands.Handler[PruneSnapshotsCommand]
}

// NewPruneSnapshotsHandler constructs a handler wired to the backup service.
func NewPruneSnapshotsHandler(service backup.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[PruneSnapshotsCommand]) *PruneSnapshotsHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg PruneSnapshotsCommand) error {
		if service == nil || !gates.backupEnabled() {
			return backup.ErrServiceDisabled
		}

		result, err := service.Prune(ctx, backup.PruneOptions{
			KeepLast: msg.KeepLast,
			MaxAge:   time.Duration(msg.MaxAgeDays) * 24 * time.Hour,
			DryRun:   msg.DryRun,
		})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Prune: result,
			Metadata: map[string]any{
				"operation": "prune",
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[PruneSnapshotsCommand]{
		commands.WithLogger[PruneSnapshotsCommand](baseLogger),
		commands.WithOperation[PruneSnapshotsCommand]("backup.prune"),
		commands.WithMessageFields(func(msg PruneSnapshotsCommand) map[string]any {
			fields := map[string]any{}
			if msg.KeepLast > 0 {
				fields["keep_last"] = msg.KeepLast
			}
			if msg.MaxAgeDays > 0 {
				fields["max_age_days"] = msg.MaxAgeDays
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PruneSnapshotsCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PruneSnapshotsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PruneSnapshotsCommand].
func (h *PruneSnapshotsHandler) Execute(ctx context.Context, msg PruneSnapshotsCommand) error {
	return h.inner.Execute(ctx, msg)
}
