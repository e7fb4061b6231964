package bootstrap

import "testing"

func TestBuildModuleEnablesGenerator(t *testing.T) {
	resources, err := BuildModule(Options{ProjectDir: t.TempDir()})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	if resources.Module == nil {
		t.Fatal("expected module to be initialised")
	}
	if resources.Module.Generator() == nil {
		t.Fatal("expected generator service to be configured")
	}
	if resources.Collector != nil {
		t.Fatal("expected no collector without EnableCommands")
	}
}

func TestBuildModuleCollectsCommandHandlers(t *testing.T) {
	resources, err := BuildModule(Options{
		ProjectDir:     t.TempDir(),
		OutputDir:      "dist",
		BaseURL:        "https://example.test",
		EnableCommands: true,
	})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	if resources.Collector == nil {
		t.Fatal("expected command collector")
	}
	if len(resources.Collector.Handlers()) == 0 {
		t.Fatal("expected collected command handlers")
	}
	if got := resources.Module.Container().Config.Generator.OutputDir; got != "dist" {
		t.Fatalf("expected output dir override, got %q", got)
	}
}
