package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuildModuleEnablesGenerator(t *testing.T) {
	resources, err := BuildModule(Options{ProjectDir: t.TempDir()})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	if resources.Module == nil {
		t.Fatal("expected module to be initialised")
	}
	container := resources.Module.Container()
	if container.GeneratorService() == nil {
		t.Fatal("expected generator service to be configured")
	}
}

func TestBuildModuleAppliesOverrides(t *testing.T) {
	resources, err := BuildModule(Options{
		ProjectDir: t.TempDir(),
		OutputDir:  "dist",
		BaseURL:    "https://example.test",
		Workers:    2,
	})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	cfg := resources.Config
	if cfg.Generator.OutputDir != "dist" {
		t.Fatalf("expected output dir dist, got %q", cfg.Generator.OutputDir)
	}
	if cfg.BaseURL != "https://example.test" {
		t.Fatalf("expected base URL override, got %q", cfg.BaseURL)
	}
	if cfg.Generator.Workers != 2 {
		t.Fatalf("expected 2 workers, got %d", cfg.Generator.Workers)
	}
}

func TestBuildModuleReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	payload := `{"base_url": "https://from-file.test"}`
	if err := os.WriteFile(filepath.Join(dir, "sitekit.json"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	resources, err := BuildModule(Options{ProjectDir: dir})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	if resources.Config.BaseURL != "https://from-file.test" {
		t.Fatalf("expected base URL from config file, got %q", resources.Config.BaseURL)
	}
}
