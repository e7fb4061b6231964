package buildcmd

import (
	"errors"

	"github.com/goliatone/go-sitekit/internal/commands"
	"github.com/goliatone/go-sitekit/internal/generator"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the build command handlers produced by RegisterBuildCommands.
type HandlerSet struct {
	Build   *BuildSiteHandler
	Diff    *DiffSiteHandler
	Clean   *CleanSiteHandler
	Sitemap *BuildSitemapHandler
}

// RegisterBuildCommands builds generator command handlers and registers them
// with the provided registry. The HandlerSet is returned so callers can wire
// additional integrations (dispatcher, cron) as needed.
func RegisterBuildCommands(reg CommandRegistry, service generator.Service, provider interfaces.LoggerProvider, gates FeatureGates) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("build command registration: generator service is nil")
	}

	logger := commands.CommandLogger(provider, "build")

	set := &HandlerSet{
		Build:   NewBuildSiteHandler(service, logger, gates),
		Diff:    NewDiffSiteHandler(service, logger, gates),
		Clean:   NewCleanSiteHandler(service, logger, gates),
		Sitemap: NewBuildSitemapHandler(service, logger, gates),
	}

	if reg != nil {
		for _, handler := range []any{set.Build, set.Diff, set.Clean, set.Sitemap} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
