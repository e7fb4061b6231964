// Package bootstrap builds a sitekit module wired for command execution so
// host CLIs can construct the toolchain and collect its handlers in one call.
package bootstrap

import (
	"fmt"
	"strings"

	sitekit "github.com/goliatone/go-sitekit"
	"github.com/goliatone/go-sitekit/commands"
	"github.com/goliatone/go-sitekit/internal/di"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// Options captures the tunable configuration for the site CLI module.
type Options struct {
	ProjectDir     string
	OutputDir      string
	BaseURL        string
	Logger         interfaces.LoggerProvider
	Storage        interfaces.StorageProvider
	EnableCommands bool // collect command handlers for CLI execution when true
}

// Resources groups the module runtime and optional command registry used by CLI commands.
type Resources struct {
	Module    *sitekit.Module
	Collector *CommandCollector
}

// CommandCollector records handlers registered by the DI container so CLI commands can
// invoke them directly when dispatcher integrations are requested.
type CommandCollector struct {
	handlers []any
}

// RegisterCommand satisfies commands.CommandRegistry.
func (c *CommandCollector) RegisterCommand(handler any) error {
	c.handlers = append(c.handlers, handler)
	return nil
}

// Handlers returns the collected handlers.
func (c *CommandCollector) Handlers() []any {
	if len(c.handlers) == 0 {
		return nil
	}
	out := make([]any, len(c.handlers))
	copy(out, c.handlers)
	return out
}

// BuildModule initialises a sitekit.Module configured for build operations and, when
// requested, collects command handlers for CLI invocation.
func BuildModule(opts Options) (*Resources, error) {
	cfg := sitekit.DefaultConfig()
	cfg.Generator.Enabled = true
	if trimmed := strings.TrimSpace(opts.ProjectDir); trimmed != "" {
		cfg.ProjectDir = trimmed
	}
	if trimmed := strings.TrimSpace(opts.OutputDir); trimmed != "" {
		cfg.Generator.OutputDir = trimmed
	}
	if trimmed := strings.TrimSpace(opts.BaseURL); trimmed != "" {
		cfg.BaseURL = trimmed
	}

	var collector *CommandCollector
	diOpts := []sitekit.Option{}

	if opts.Logger != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.Logger))
	}
	if opts.Storage != nil {
		diOpts = append(diOpts, di.WithStorage(opts.Storage))
	}

	module, err := sitekit.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise sitekit module: %w", err)
	}

	if opts.EnableCommands {
		collector = &CommandCollector{
			handlers: make([]any, 0),
		}
		if _, err := commands.RegisterContainerCommands(module.Container(), commands.RegistrationOptions{
			Registry:       collector,
			LoggerProvider: opts.Logger,
		}); err != nil {
			return nil, fmt.Errorf("register site commands: %w", err)
		}
	}

	return &Resources{
		Module:    module,
		Collector: collector,
	}, nil
}
