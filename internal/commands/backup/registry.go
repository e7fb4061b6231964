package backupcmd

import (
	"errors"

	"github.com/goliatone/go-sitekit/internal/backup"
	"github.com/goliatone/go-sitekit/internal/commands"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the backup command handlers produced by RegisterBackupCommands.
type HandlerSet struct {
	Create  *CreateSnapshotHandler
	Restore *RestoreSnapshotHandler
	Verify  *VerifySnapshotHandler
	Prune   *PruneSnapshotsHandler
}

// RegisterBackupCommands builds snapshot command handlers and registers them
// with the provided registry.
func RegisterBackupCommands(reg CommandRegistry, service backup.Service, provider interfaces.LoggerProvider, gates FeatureGates) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("backup command registration: backup service is nil")
	}

	logger := commands.CommandLogger(provider, "backup")

	set := &HandlerSet{
		Create:  NewCreateSnapshotHandler(service, logger, gates),
		Restore: NewRestoreSnapshotHandler(service, logger, gates),
		Verify:  NewVerifySnapshotHandler(service, logger, gates),
		Prune:   NewPruneSnapshotsHandler(service, logger, gates),
	}

	if reg != nil {
		for _, handler := range []any{set.Create, set.Restore, set.Verify, set.Prune} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
