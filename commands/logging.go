package commands

import (
	internalcmd "github.com/goliatone/go-sitekit/internal/commands"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// CommandLogger returns the logger namespace used by toolchain command
// handlers. Hosts can call it to keep their own handlers under the same
// logging hierarchy.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	return internalcmd.CommandLogger(provider, module)
}
