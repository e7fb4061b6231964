// Package bootstrap assembles a sitekit module for the CLI: it reads the
// project configuration file when present and layers flag overrides on top.
package bootstrap

import (
	"fmt"
	"path/filepath"
	"strings"

	sitekit "github.com/goliatone/go-sitekit"
)

// Options carries the CLI overrides applied on top of sitekit.json.
type Options struct {
	// ConfigPath points at the configuration file. Empty resolves to
	// sitekit.json inside the project directory; a missing file yields
	// defaults.
	ConfigPath string
	ProjectDir string
	OutputDir  string
	BaseURL    string
	Workers    int

	SitekitOptions []sitekit.Option
}

// Resources bundles what BuildModule produced.
type Resources struct {
	Module *sitekit.Module
	Config sitekit.Config
}

// BuildModule loads configuration, applies the overrides, and initialises the
// module.
func BuildModule(opts Options) (*Resources, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	if dir := strings.TrimSpace(opts.ProjectDir); dir != "" {
		cfg.ProjectDir = dir
	}
	if out := strings.TrimSpace(opts.OutputDir); out != "" {
		cfg.Generator.OutputDir = out
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.BaseURL = base
	}
	if opts.Workers > 0 {
		cfg.Generator.Workers = opts.Workers
	}

	module, err := sitekit.New(cfg, opts.SitekitOptions...)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: initialise module: %w", err)
	}

	return &Resources{Module: module, Config: cfg}, nil
}

func loadConfig(opts Options) (sitekit.Config, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		dir := strings.TrimSpace(opts.ProjectDir)
		if dir == "" {
			dir = "."
		}
		path = filepath.Join(dir, "sitekit.json")
	}
	cfg, err := sitekit.LoadConfig(path)
	if err != nil {
		return sitekit.Config{}, fmt.Errorf("bootstrap: load config %s: %w", path, err)
	}
	return cfg, nil
}
