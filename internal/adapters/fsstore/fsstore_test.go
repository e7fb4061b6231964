package fsstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-sitekit/pkg/storage"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	provider := New(root, "public")
	ctx := context.Background()

	if _, err := provider.Exec(ctx, "generator.write", "en/index.html", strings.NewReader("<html>home</html>")); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := provider.Query(ctx, "generator.read", "en/index.html")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rows == nil || !rows.Next() {
		t.Fatal("expected one row")
	}
	var data []byte
	if err := rows.Scan(&data); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if string(data) != "<html>home</html>" {
		t.Fatalf("unexpected content %q", data)
	}
	if err := rows.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	on, err := os.ReadFile(filepath.Join(root, "en", "index.html"))
	if err != nil || string(on) != "<html>home</html>" {
		t.Fatalf("file on disk mismatch: %v %q", err, on)
	}
}

func TestWriteTrimsOutputDirPrefix(t *testing.T) {
	root := t.TempDir()
	provider := New(root, "public")
	ctx := context.Background()

	if _, err := provider.Exec(ctx, "generator.write", "public/sitemap.xml", strings.NewReader("<urlset/>")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "sitemap.xml")); err != nil {
		t.Fatalf("expected prefix to be trimmed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "public", "sitemap.xml")); err == nil {
		t.Fatal("prefix must not be duplicated")
	}
}

func TestReadMissingFileReturnsNoRows(t *testing.T) {
	provider := New(t.TempDir(), "public")

	rows, err := provider.Query(context.Background(), "generator.read", "missing.html")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rows != nil {
		t.Fatal("expected nil rows for missing file")
	}
}

func TestListReturnsSortedRelativePaths(t *testing.T) {
	root := t.TempDir()
	provider := New(root, "public")
	ctx := context.Background()

	for _, path := range []string{"index.html", "es/index.html", "assets/site.css"} {
		if _, err := provider.Exec(ctx, "generator.write", path, strings.NewReader("x")); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	rows, err := provider.Query(ctx, "generator.list", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, path)
	}

	want := []string{"assets/site.css", "es/index.html", "index.html"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	root := t.TempDir()
	provider := New(root, "public")
	ctx := context.Background()

	if _, err := provider.Exec(ctx, "generator.write", "old/page.html", strings.NewReader("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := provider.Exec(ctx, "generator.remove", "old"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := provider.Exec(ctx, "generator.remove", "old"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "old")); !os.IsNotExist(err) {
		t.Fatal("expected directory to be gone")
	}
}

func TestCapabilitiesReportFilesystem(t *testing.T) {
	root := t.TempDir()
	provider := New(root, "public")

	reporter, ok := provider.(storage.CapabilityReporter)
	if !ok {
		t.Fatal("expected provider to report capabilities")
	}

	caps := reporter.Capabilities()
	if !caps.FilesystemBased {
		t.Fatal("expected filesystem-based capability")
	}
	if caps.SupportsTx {
		t.Fatal("filesystem adapter must not claim transactions")
	}
	if caps.Metadata["root"] != root {
		t.Fatalf("unexpected root metadata %q", caps.Metadata["root"])
	}
}
