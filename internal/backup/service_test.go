package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type backupFixture struct {
	project string
	service *service
}

func newBackupFixture(t *testing.T) *backupFixture {
	t.Helper()
	project := t.TempDir()
	for _, dir := range []string{"content/data", "public"} {
		if err := os.MkdirAll(filepath.Join(project, dir), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	writeFile(t, project, "content/data/site-config.json", `{"name":"Acme Talent"}`)
	writeFile(t, project, "content/data/pages.json", `{"pages":[]}`)
	writeFile(t, project, "public/index.html", "<html>home</html>")

	svc, err := NewService(Config{
		BackupsDir: filepath.Join(project, "backups"),
		Trees: []Tree{
			{Name: "content", Path: filepath.Join(project, "content")},
			{Name: "public", Path: filepath.Join(project, "public")},
		},
	}, Dependencies{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &backupFixture{project: project, service: svc.(*service)}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func (f *backupFixture) setClock(stamp time.Time) {
	f.service.now = func() time.Time { return stamp }
}

func TestCreateCapturesTreesWithManifest(t *testing.T) {
	fx := newBackupFixture(t)
	fx.setClock(time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC))

	snapshot, err := fx.service.Create(context.Background(), CreateOptions{Label: "Before Launch"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snapshot.ID != "20260314-092653-before-launch" {
		t.Fatalf("unexpected snapshot id %q", snapshot.ID)
	}
	if snapshot.FileCount != 3 {
		t.Fatalf("expected 3 files, got %d", snapshot.FileCount)
	}

	manifest, err := readManifest(snapshot.Path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	entry, ok := manifest.Files["public/index.html"]
	if !ok {
		t.Fatal("manifest missing public/index.html")
	}
	if entry.Size != int64(len("<html>home</html>")) {
		t.Fatalf("unexpected size %d", entry.Size)
	}
	if entry.Hash == "" {
		t.Fatal("manifest entry missing hash")
	}

	copied, err := os.ReadFile(filepath.Join(snapshot.Path, "content", "data", "site-config.json"))
	if err != nil || string(copied) != `{"name":"Acme Talent"}` {
		t.Fatalf("copied content mismatch: %v %q", err, copied)
	}
}

func TestCreateExcludesBackupsDirNestedInTree(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, "content/data/pages.json", `{"pages":[]}`)

	// Backups live inside the tree being captured.
	svc, err := NewService(Config{
		BackupsDir: filepath.Join(project, "backups"),
		Trees:      []Tree{{Name: "project", Path: project}},
	}, Dependencies{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Create(context.Background(), CreateOptions{}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.(*service).Create(context.Background(), CreateOptions{Label: "second"})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	for path := range mustManifest(t, second.Path).Files {
		if filepath.ToSlash(path) != path || len(path) == 0 {
			t.Fatalf("unexpected manifest key %q", path)
		}
		if containsSegment(path, "backups") {
			t.Fatalf("snapshot captured the backups dir: %q", path)
		}
	}
}

func containsSegment(slashPath, segment string) bool {
	for _, part := range splitSlash(slashPath) {
		if part == segment {
			return true
		}
	}
	return false
}

func splitSlash(p string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(p); i++ {
		if i == len(p) || p[i] == '/' {
			if i > start {
				parts = append(parts, p[start:i])
			}
			start = i + 1
		}
	}
	return parts
}

func mustManifest(t *testing.T, dir string) *Manifest {
	t.Helper()
	manifest, err := readManifest(dir)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	return manifest
}

func TestListNewestFirstAndFlagsCorruptManifests(t *testing.T) {
	fx := newBackupFixture(t)
	fx.setClock(time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC))
	if _, err := fx.service.Create(context.Background(), CreateOptions{}); err != nil {
		t.Fatalf("create old: %v", err)
	}
	fx.setClock(time.Date(2026, 1, 3, 10, 0, 0, 0, time.UTC))
	if _, err := fx.service.Create(context.Background(), CreateOptions{}); err != nil {
		t.Fatalf("create new: %v", err)
	}

	// Damage the older snapshot's manifest.
	older := filepath.Join(fx.project, "backups", "20260102-100000")
	if err := os.WriteFile(filepath.Join(older, manifestFileName), []byte("not json"), 0o644); err != nil {
		t.Fatalf("corrupt manifest: %v", err)
	}

	snapshots, err := fx.service.List(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snapshots))
	}
	if snapshots[0].ID != "20260103-100000" || !snapshots[0].Verifiable {
		t.Fatalf("newest first expected, got %+v", snapshots[0])
	}
	if snapshots[1].Verifiable || snapshots[1].Problem == "" {
		t.Fatalf("corrupt snapshot should be unverifiable: %+v", snapshots[1])
	}
}

func TestRestoreRoundTripsContent(t *testing.T) {
	fx := newBackupFixture(t)
	fx.setClock(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	if _, err := fx.service.Create(ctx, CreateOptions{}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Mutate and add live files after the snapshot.
	writeFile(t, fx.project, "public/index.html", "<html>broken deploy</html>")
	writeFile(t, fx.project, "public/stray.html", "<html>stray</html>")

	fx.setClock(time.Date(2026, 4, 1, 12, 5, 0, 0, time.UTC))
	result, err := fx.service.Restore(ctx, RestoreOptions{Clean: true})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if result.SnapshotID != "20260401-120000" {
		t.Fatalf("restored wrong snapshot %q", result.SnapshotID)
	}
	if result.FilesRestored != 1 {
		t.Fatalf("expected 1 restored file, got %d", result.FilesRestored)
	}
	if result.FilesRemoved != 1 {
		t.Fatalf("expected stray file removed, got %d", result.FilesRemoved)
	}
	if result.SafetySnapshot == nil {
		t.Fatal("expected automatic safety snapshot")
	}

	restored, err := os.ReadFile(filepath.Join(fx.project, "public", "index.html"))
	if err != nil || string(restored) != "<html>home</html>" {
		t.Fatalf("restore did not bring content back: %v %q", err, restored)
	}
	if _, err := os.Stat(filepath.Join(fx.project, "public", "stray.html")); !os.IsNotExist(err) {
		t.Fatal("stray file should have been cleaned")
	}

	// The safety snapshot preserves the pre-restore state.
	broken, err := os.ReadFile(filepath.Join(result.SafetySnapshot.Path, "public", "index.html"))
	if err != nil || string(broken) != "<html>broken deploy</html>" {
		t.Fatalf("safety snapshot mismatch: %v %q", err, broken)
	}
}

func TestRestoreRefusesTamperedSnapshotUnlessForced(t *testing.T) {
	fx := newBackupFixture(t)
	fx.setClock(time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	snapshot, err := fx.service.Create(ctx, CreateOptions{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := os.WriteFile(filepath.Join(snapshot.Path, "public", "index.html"), []byte("tampered"), 0o644); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	_, err = fx.service.Restore(ctx, RestoreOptions{ID: snapshot.ID, SkipSafetySnapshot: true})
	if !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("expected ErrSnapshotCorrupt, got %v", err)
	}

	if _, err := fx.service.Restore(ctx, RestoreOptions{ID: snapshot.ID, Force: true, SkipSafetySnapshot: true}); err == nil {
		t.Fatal("forced restore of tampered snapshot must still fail the write-back hash check")
	}
}

func TestVerifyReportsMissingModifiedExtra(t *testing.T) {
	fx := newBackupFixture(t)
	fx.setClock(time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	snapshot, err := fx.service.Create(ctx, CreateOptions{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := os.Remove(filepath.Join(snapshot.Path, "content", "data", "pages.json")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := os.WriteFile(filepath.Join(snapshot.Path, "public", "index.html"), []byte("altered"), 0o644); err != nil {
		t.Fatalf("modify: %v", err)
	}
	if err := os.WriteFile(filepath.Join(snapshot.Path, "public", "uninvited.html"), []byte("x"), 0o644); err != nil {
		t.Fatalf("extra: %v", err)
	}

	result, err := fx.service.Verify(ctx, VerifyOptions{ID: snapshot.ID})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.OK() {
		t.Fatal("verification should fail")
	}
	if len(result.Missing) != 1 || result.Missing[0] != "content/data/pages.json" {
		t.Fatalf("missing mismatch: %v", result.Missing)
	}
	if len(result.Modified) != 1 || result.Modified[0] != "public/index.html" {
		t.Fatalf("modified mismatch: %v", result.Modified)
	}
	if len(result.Extra) != 1 || result.Extra[0] != "public/uninvited.html" {
		t.Fatalf("extra mismatch: %v", result.Extra)
	}
}

func TestPruneKeepsNewestAndRestoreBase(t *testing.T) {
	fx := newBackupFixture(t)
	ctx := context.Background()

	stamps := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC),
	}
	for _, stamp := range stamps {
		fx.setClock(stamp)
		if _, err := fx.service.Create(ctx, CreateOptions{}); err != nil {
			t.Fatalf("create %s: %v", stamp, err)
		}
	}

	// Restore from the oldest so prune must spare it.
	fx.setClock(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	if _, err := fx.service.Restore(ctx, RestoreOptions{ID: "20260101-000000", SkipSafetySnapshot: true}); err != nil {
		t.Fatalf("restore: %v", err)
	}

	result, err := fx.service.Prune(ctx, PruneOptions{KeepLast: 2})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if result.Kept != 3 {
		t.Fatalf("expected 3 kept (2 newest + restore base), got %d", result.Kept)
	}
	if len(result.Removed) != 1 || result.Removed[0] != "20260102-000000" {
		t.Fatalf("removed mismatch: %v", result.Removed)
	}
	if _, err := os.Stat(filepath.Join(fx.project, "backups", "20260101-000000")); err != nil {
		t.Fatalf("restore base must survive prune: %v", err)
	}
}

func TestPruneDryRunRemovesNothing(t *testing.T) {
	fx := newBackupFixture(t)
	ctx := context.Background()
	fx.setClock(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	if _, err := fx.service.Create(ctx, CreateOptions{}); err != nil {
		t.Fatalf("create: %v", err)
	}
	fx.setClock(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	if _, err := fx.service.Create(ctx, CreateOptions{}); err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := fx.service.Prune(ctx, PruneOptions{KeepLast: 1, DryRun: true})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(result.Removed) != 1 || !result.DryRun {
		t.Fatalf("dry run should report one candidate: %+v", result)
	}
	snapshots, err := fx.service.List(ctx, ListOptions{})
	if err != nil || len(snapshots) != 2 {
		t.Fatalf("dry run must not delete: %v %d", err, len(snapshots))
	}
}

func TestDisabledServiceRejectsEverything(t *testing.T) {
	svc := NewDisabledService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateOptions{}); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Restore(ctx, RestoreOptions{}); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("restore: %v", err)
	}
}

func TestSnapshotIDRoundTrip(t *testing.T) {
	stamp := time.Date(2026, 7, 9, 23, 59, 59, 0, time.UTC)
	id := newSnapshotID(stamp, "Quarterly Archive!")
	if id != "20260709-235959-quarterly-archive" {
		t.Fatalf("unexpected id %q", id)
	}
	parsed, err := parseSnapshotID(id)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(stamp) {
		t.Fatalf("round trip mismatch: %s", parsed)
	}
	if _, err := parseSnapshotID("not-a-snapshot"); err == nil {
		t.Fatal("malformed id must not parse")
	}
	if isSnapshotDirName(stagingPrefix + id) {
		t.Fatal("staging dirs must not look like snapshots")
	}
}
