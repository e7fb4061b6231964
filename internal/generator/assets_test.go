package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func fixtureAssetsFS() fstest.MapFS {
	return fstest.MapFS{
		"css/site.css":      {Data: []byte("body{margin:0}")},
		"js/app.js":         {Data: []byte("console.log('ready')")},
		"img/logo.svg":      {Data: []byte("<svg/>")},
		".DS_Store":         {Data: []byte("junk")},
		".cache/bundle.css": {Data: []byte("junk")},
	}
}

func TestBuildCopiesStaticAssets(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, root, _ := newTestGenerator(t, siteSvc, func(_ *Config, deps *Dependencies) {
		deps.Assets = fixtureAssetsFS()
	})

	result, err := svc.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.AssetsCopied != 3 {
		t.Fatalf("expected 3 assets copied, got %d", result.AssetsCopied)
	}

	if got := readOutput(t, root, "assets/css/site.css"); got != "body{margin:0}" {
		t.Fatalf("asset content = %q", got)
	}
	if outputExists(root, "assets/.DS_Store") {
		t.Fatal("dot files should be skipped")
	}
	if outputExists(root, "assets/.cache/bundle.css") {
		t.Fatal("dot directories should be skipped")
	}
}

func TestBuildSkipsUnchangedAssets(t *testing.T) {
	siteSvc := newFixtureService(t)
	assets := fixtureAssetsFS()
	svc, root, _ := newTestGenerator(t, siteSvc, func(_ *Config, deps *Dependencies) {
		deps.Assets = assets
	})
	ctx := context.Background()

	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("first build: %v", err)
	}

	result, err := svc.Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if result.AssetsCopied != 0 || result.AssetsSkipped != 3 {
		t.Fatalf("unchanged assets should skip: copied=%d skipped=%d", result.AssetsCopied, result.AssetsSkipped)
	}

	assets["css/site.css"].Data = []byte("body{margin:0;padding:0}")
	result, err = svc.Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("third build: %v", err)
	}
	if result.AssetsCopied != 1 || result.AssetsSkipped != 2 {
		t.Fatalf("changed asset should rewrite: copied=%d skipped=%d", result.AssetsCopied, result.AssetsSkipped)
	}
	if got := readOutput(t, root, "assets/css/site.css"); got != "body{margin:0;padding:0}" {
		t.Fatalf("asset content after change = %q", got)
	}
}

func TestBuildRemovesOrphanedAssets(t *testing.T) {
	siteSvc := newFixtureService(t)
	assets := fixtureAssetsFS()
	svc, root, _ := newTestGenerator(t, siteSvc, func(_ *Config, deps *Dependencies) {
		deps.Assets = assets
	})
	ctx := context.Background()

	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if !outputExists(root, "assets/js/app.js") {
		t.Fatal("expected app.js after first build")
	}

	delete(assets, "js/app.js")
	result, err := svc.Build(ctx, BuildOptions{})
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if result.OrphansRemoved != 1 {
		t.Fatalf("expected 1 orphan removed, got %d", result.OrphansRemoved)
	}
	if outputExists(root, "assets/js/app.js") {
		t.Fatal("removed asset should disappear from output")
	}
}

func TestWriteAssetRecordsManifestEvenWhenSkipped(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, _, _ := newTestGenerator(t, siteSvc, nil)
	gen := svc.(*service)
	ctx := context.Background()

	payload := []byte("body{}")
	checksum := computeHash(payload)
	previous := &buildManifest{
		Assets: map[string]manifestAsset{
			"assets/site.css": {Output: "assets/site.css", Checksum: checksum},
		},
	}
	next := &buildManifest{Pages: map[string]manifestPage{}, Assets: map[string]manifestAsset{}}

	copied, err := gen.writeAsset(ctx, gen.writer, map[string]struct{}{}, previous, next, assetWrite{
		source:   "site.css",
		output:   "assets/site.css",
		payload:  payload,
		category: categoryAsset,
	})
	if err != nil {
		t.Fatalf("writeAsset: %v", err)
	}
	if copied {
		t.Fatal("matching checksum should skip the write")
	}
	if _, ok := next.Assets["assets/site.css"]; !ok {
		t.Fatal("skipped assets must still land in the next manifest")
	}
}

func TestCleanAfterAssetBuild(t *testing.T) {
	siteSvc := newFixtureService(t)
	svc, root, _ := newTestGenerator(t, siteSvc, func(_ *Config, deps *Dependencies) {
		deps.Assets = fixtureAssetsFS()
	})
	ctx := context.Background()

	if _, err := svc.Build(ctx, BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	result, err := svc.Clean(ctx)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if result.FilesRemoved == 0 {
		t.Fatal("Clean should report removed files")
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read output root: %v", err)
	}
	for _, entry := range entries {
		t.Fatalf("output root should be empty, found %s", filepath.Join(root, entry.Name()))
	}
}

func TestDetectAssetContentType(t *testing.T) {
	cases := map[string]string{
		"assets/site.css":    "text/css",
		"assets/app.js":      "application/javascript",
		"assets/data.json":   "application/json",
		"assets/logo.svg":    "image/svg+xml",
		"assets/photo.jpeg":  "image/jpeg",
		"assets/icon.ico":    "image/x-icon",
		"assets/font.woff2":  "font/woff2",
		"assets/readme.txt":  "text/plain",
		"assets/feed.xml":    "application/xml",
		"assets/unknown.bin": "application/octet-stream",
	}
	for asset, want := range cases {
		if got := detectAssetContentType(asset); got != want {
			t.Fatalf("detectAssetContentType(%q) = %q, want %q", asset, got, want)
		}
	}
}
