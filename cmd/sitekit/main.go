// Command sitekit drives the static site toolchain: building the published
// tree, validating the dataset, managing snapshots, and monitoring the live
// site.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-sitekit/cmd/sitekit/internal/bootstrap"
	"github.com/goliatone/go-sitekit/internal/backup"
	backupcmd "github.com/goliatone/go-sitekit/internal/commands/backup"
	buildcmd "github.com/goliatone/go-sitekit/internal/commands/build"
	monitorcmd "github.com/goliatone/go-sitekit/internal/commands/monitor"
	sitecheckcmd "github.com/goliatone/go-sitekit/internal/commands/sitecheck"
	"github.com/goliatone/go-sitekit/internal/sitecheck"
)

const version = "0.1.0"

const (
	exitFailure    = 1
	exitUsage      = 2
	exitValidation = 3
)

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:]); err != nil {
		log.Printf("sitekit: %v", err)
		os.Exit(exitCode(err))
	}
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

func exitCode(err error) int {
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return exitFailure
}

type buildExecutor interface {
	Execute(ctx context.Context, msg buildcmd.BuildSiteCommand) error
}

type diffExecutor interface {
	Execute(ctx context.Context, msg buildcmd.DiffSiteCommand) error
}

type cleanExecutor interface {
	Execute(ctx context.Context, msg buildcmd.CleanSiteCommand) error
}

type sitemapExecutor interface {
	Execute(ctx context.Context, msg buildcmd.BuildSitemapCommand) error
}

type validateExecutor interface {
	Execute(ctx context.Context, msg sitecheckcmd.ValidateSiteCommand) error
}

type backupCreateExecutor interface {
	Execute(ctx context.Context, msg backupcmd.CreateSnapshotCommand) error
}

type backupRestoreExecutor interface {
	Execute(ctx context.Context, msg backupcmd.RestoreSnapshotCommand) error
}

type backupVerifyExecutor interface {
	Execute(ctx context.Context, msg backupcmd.VerifySnapshotCommand) error
}

type backupPruneExecutor interface {
	Execute(ctx context.Context, msg backupcmd.PruneSnapshotsCommand) error
}

type monitorRunExecutor interface {
	Execute(ctx context.Context, msg monitorcmd.RunChecksCommand) error
}

type monitorReportExecutor interface {
	Execute(ctx context.Context, msg monitorcmd.ReportCommand) error
}

type snapshotLister interface {
	List(ctx context.Context, opts backup.ListOptions) ([]*backup.Snapshot, error)
}

type handlerSet struct {
	build         buildExecutor
	diff          diffExecutor
	clean         cleanExecutor
	sitemap       sitemapExecutor
	validate      validateExecutor
	backupCreate  backupCreateExecutor
	backupRestore backupRestoreExecutor
	backupVerify  backupVerifyExecutor
	backupPrune   backupPruneExecutor
	monitorRun    monitorRunExecutor
	monitorReport monitorReportExecutor
}

type moduleOptions struct {
	configPath string
	projectDir string
	outputDir  string
	baseURL    string
	workers    int
}

type moduleResources struct {
	handlers  handlerSet
	lister    snapshotLister
	outputDir string
	load      func(context.Context) error
	close     func() error
}

// moduleBuilder is swapped out by tests.
var moduleBuilder = buildModule

func buildModule(opts moduleOptions) (*moduleResources, error) {
	built, err := bootstrap.BuildModule(bootstrap.Options{
		ConfigPath: opts.configPath,
		ProjectDir: opts.projectDir,
		OutputDir:  opts.outputDir,
		BaseURL:    opts.baseURL,
		Workers:    opts.workers,
	})
	if err != nil {
		return nil, err
	}

	module := built.Module
	container := module.Container()
	cfg := built.Config
	logger := module.Logger()

	resources := &moduleResources{
		outputDir: cfg.OutputDir(),
		load:      module.Load,
		close:     module.Close,
	}

	if svc := container.GeneratorService(); svc != nil {
		gates := buildcmd.FeatureGates{GeneratorEnabled: func() bool { return cfg.Generator.Enabled }}
		resources.handlers.build = buildcmd.NewBuildSiteHandler(svc, logger, gates)
		resources.handlers.diff = buildcmd.NewDiffSiteHandler(svc, logger, gates)
		resources.handlers.clean = buildcmd.NewCleanSiteHandler(svc, logger, gates)
		resources.handlers.sitemap = buildcmd.NewBuildSitemapHandler(svc, logger, gates)
	}
	if svc := container.BackupService(); svc != nil {
		gates := backupcmd.FeatureGates{BackupEnabled: func() bool { return cfg.Backup.Enabled }}
		resources.handlers.backupCreate = backupcmd.NewCreateSnapshotHandler(svc, logger, gates)
		resources.handlers.backupRestore = backupcmd.NewRestoreSnapshotHandler(svc, logger, gates)
		resources.handlers.backupVerify = backupcmd.NewVerifySnapshotHandler(svc, logger, gates)
		resources.handlers.backupPrune = backupcmd.NewPruneSnapshotsHandler(svc, logger, gates)
		resources.lister = svc
	}
	if svc := container.ValidationService(); svc != nil {
		resources.handlers.validate = sitecheckcmd.NewValidateSiteHandler(svc, logger, sitecheckcmd.FeatureGates{})
	}
	if svc := container.MonitorService(); svc != nil {
		gates := monitorcmd.FeatureGates{MonitorEnabled: func() bool { return cfg.Monitor.Enabled }}
		resources.handlers.monitorRun = monitorcmd.NewRunChecksHandler(svc, logger, gates, nil)
		resources.handlers.monitorReport = monitorcmd.NewReportHandler(svc, logger, gates)
	}

	return resources, nil
}

func run(args []string) error {
	if len(args) == 0 {
		return usageErrorf("missing subcommand; expected build, diff, clean, sitemap, validate, backup, monitor, serve, or version")
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "build":
		return runBuild(rest)
	case "diff":
		return runDiff(rest)
	case "clean":
		return runClean(rest)
	case "sitemap":
		return runSitemap(rest)
	case "validate":
		return runValidate(rest)
	case "backup":
		return runBackup(rest)
	case "monitor":
		return runMonitor(rest)
	case "serve":
		return runServe(rest)
	case "version":
		log.Printf("sitekit %s", version)
		return nil
	default:
		return usageErrorf("unknown subcommand %q", cmd)
	}
}

// stringList accepts a flag repeatedly and splits comma separated values.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			*l = append(*l, trimmed)
		}
	}
	return nil
}

func moduleFlags(fs *flag.FlagSet) *moduleOptions {
	opts := &moduleOptions{}
	fs.StringVar(&opts.configPath, "config", "", "path to sitekit.json")
	fs.StringVar(&opts.projectDir, "project", "", "project root directory")
	fs.StringVar(&opts.outputDir, "output", "", "output directory override")
	fs.StringVar(&opts.baseURL, "base-url", "", "site base URL override")
	fs.IntVar(&opts.workers, "workers", 0, "render worker count")
	return opts
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return usageErrorf("%s: %v", fs.Name(), err)
	}
	return nil
}

func openModule(opts *moduleOptions) (*moduleResources, func(), error) {
	resources, err := moduleBuilder(*opts)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if resources.close != nil {
			if err := resources.close(); err != nil {
				log.Printf("module=sitekit operation=close error=%v", err)
			}
		}
	}
	return resources, cleanup, nil
}

func loadSite(ctx context.Context, resources *moduleResources) error {
	if resources.load == nil {
		return nil
	}
	return resources.load(ctx)
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	opts := moduleFlags(fs)
	var locales, pages stringList
	fs.Var(&locales, "locale", "restrict the build to a locale (repeatable)")
	fs.Var(&pages, "page", "restrict the build to a page key (repeatable)")
	force := fs.Bool("force", false, "rewrite artifacts even when current")
	drafts := fs.Bool("drafts", false, "include draft pages")
	dryRun := fs.Bool("dry-run", false, "report what would be written without writing")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resources, cleanup, err := openModule(opts)
	if err != nil {
		return err
	}
	defer cleanup()
	if resources.handlers.build == nil {
		return errors.New("build handler not configured")
	}

	ctx := context.Background()
	if err := loadSite(ctx, resources); err != nil {
		return err
	}

	return resources.handlers.build.Execute(ctx, buildcmd.BuildSiteCommand{
		Locales:        locales,
		Pages:          pages,
		Force:          *force,
		IncludeDrafts:  *drafts,
		DryRun:         *dryRun,
		ResultCallback: logBuildResult,
	})
}

func logBuildResult(envelope buildcmd.ResultEnvelope) {
	result := envelope.Build
	if result == nil {
		return
	}
	log.Printf("module=sitekit operation=build summary pages=%d skipped=%d assets=%d feeds=%d sitemap_entries=%d orphans_removed=%d duration=%s dry_run=%t",
		result.PagesRendered, result.PagesSkipped, result.AssetsCopied, result.FeedsWritten,
		result.SitemapEntries, result.OrphansRemoved, result.Duration, result.DryRun)
	for _, diag := range result.Diagnostics {
		if diag.Err != "" {
			log.Printf("module=sitekit operation=build diagnostic page=%s locale=%s error=%s", diag.Key, diag.Locale, diag.Err)
			continue
		}
		log.Printf("module=sitekit operation=build diagnostic page=%s locale=%s missing_tokens=%s",
			diag.Key, diag.Locale, strings.Join(diag.MissingTokens, ","))
	}
}

func runDiff(args []string) error {
	fs := flag.NewFlagSet("diff", flag.ContinueOnError)
	opts := moduleFlags(fs)
	var locales, pages stringList
	fs.Var(&locales, "locale", "restrict the diff to a locale (repeatable)")
	fs.Var(&pages, "page", "restrict the diff to a page key (repeatable)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resources, cleanup, err := openModule(opts)
	if err != nil {
		return err
	}
	defer cleanup()
	if resources.handlers.diff == nil {
		return errors.New("diff handler not configured")
	}

	ctx := context.Background()
	if err := loadSite(ctx, resources); err != nil {
		return err
	}

	return resources.handlers.diff.Execute(ctx, buildcmd.DiffSiteCommand{
		Locales: locales,
		Pages:   pages,
		ResultCallback: func(envelope buildcmd.ResultEnvelope) {
			diff := envelope.Diff
			if diff == nil {
				return
			}
			log.Printf("module=sitekit operation=diff summary added=%d changed=%d removed=%d unchanged=%d in_sync=%t",
				len(diff.Added), len(diff.Changed), len(diff.Removed), diff.Unchanged, diff.InSync())
			for _, entry := range diff.Added {
				log.Printf("module=sitekit operation=diff added page=%s locale=%s output=%s", entry.Key, entry.Locale, entry.Output)
			}
			for _, entry := range diff.Changed {
				log.Printf("module=sitekit operation=diff changed page=%s locale=%s output=%s", entry.Key, entry.Locale, entry.Output)
			}
			for _, entry := range diff.Removed {
				log.Printf("module=sitekit operation=diff removed output=%s", entry.Output)
			}
		},
	})
}

func runClean(args []string) error {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	opts := moduleFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resources, cleanup, err := openModule(opts)
	if err != nil {
		return err
	}
	defer cleanup()
	if resources.handlers.clean == nil {
		return errors.New("clean handler not configured")
	}

	return resources.handlers.clean.Execute(context.Background(), buildcmd.CleanSiteCommand{
		ResultCallback: func(envelope buildcmd.ResultEnvelope) {
			if envelope.Clean == nil {
				return
			}
			log.Printf("module=sitekit operation=clean files_removed=%d", envelope.Clean.FilesRemoved)
		},
	})
}

func runSitemap(args []string) error {
	fs := flag.NewFlagSet("sitemap", flag.ContinueOnError)
	opts := moduleFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resources, cleanup, err := openModule(opts)
	if err != nil {
		return err
	}
	defer cleanup()
	if resources.handlers.sitemap == nil {
		return errors.New("sitemap handler not configured")
	}

	ctx := context.Background()
	if err := loadSite(ctx, resources); err != nil {
		return err
	}

	return resources.handlers.sitemap.Execute(ctx, buildcmd.BuildSitemapCommand{
		ResultCallback: func(envelope buildcmd.ResultEnvelope) {
			if envelope.Sitemap == nil {
				return
			}
			log.Printf("module=sitekit operation=sitemap entries=%d path=%s", envelope.Sitemap.Entries, envelope.Sitemap.Path)
		},
	})
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	opts := moduleFlags(fs)
	strict := fs.Bool("strict", false, "treat warnings as failures")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resources, cleanup, err := openModule(opts)
	if err != nil {
		return err
	}
	defer cleanup()
	if resources.handlers.validate == nil {
		return errors.New("validate handler not configured")
	}

	ctx := context.Background()
	if err := loadSite(ctx, resources); err != nil {
		return err
	}

	var report *sitecheck.Report
	err = resources.handlers.validate.Execute(ctx, sitecheckcmd.ValidateSiteCommand{
		Strict: *strict,
		ResultCallback: func(envelope sitecheckcmd.ResultEnvelope) {
			report = envelope.Report
			if report == nil {
				return
			}
			for _, issue := range report.Issues {
				log.Printf("module=sitekit operation=validate issue severity=%s code=%s path=%s message=%q",
					issue.Severity, issue.Code, issue.Path, issue.Message)
			}
			errCount, warnCount := report.Counts()
			log.Printf("module=sitekit operation=validate summary errors=%d warnings=%d", errCount, warnCount)
		},
	})
	if err != nil {
		return err
	}
	if report != nil && report.Failed(*strict) {
		errCount, warnCount := report.Counts()
		return &exitError{
			code: exitValidation,
			err:  fmt.Errorf("validation failed: %d errors, %d warnings", errCount, warnCount),
		}
	}
	return nil
}

func runBackup(args []string) error {
	if len(args) == 0 {
		return usageErrorf("backup: missing subcommand; expected create, list, restore, verify, or prune")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "create":
		return runBackupCreate(rest)
	case "list":
		return runBackupList(rest)
	case "restore":
		return runBackupRestore(rest)
	case "verify":
		return runBackupVerify(rest)
	case "prune":
		return runBackupPrune(rest)
	default:
		return usageErrorf("backup: unknown subcommand %q", sub)
	}
}

func runBackupCreate(args []string) error {
	fs := flag.NewFlagSet("backup create", flag.ContinueOnError)
	opts := moduleFlags(fs)
	label := fs.String("label", "", "label appended to the snapshot id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resources, cleanup, err := openModule(opts)
	if err != nil {
		return err
	}
	defer cleanup()
	if resources.handlers.backupCreate == nil {
		return errors.New("backup create handler not configured")
	}

	return resources.handlers.backupCreate.Execute(context.Background(), backupcmd.CreateSnapshotCommand{
		Label: *label,
		ResultCallback: func(envelope backupcmd.ResultEnvelope) {
			if envelope.Snapshot == nil {
				return
			}
			log.Printf("module=sitekit operation=backup_create id=%s files=%d size=%d",
				envelope.Snapshot.ID, envelope.Snapshot.FileCount, envelope.Snapshot.TotalSize)
		},
	})
}

func runBackupList(args []string) error {
	fs := flag.NewFlagSet("backup list", flag.ContinueOnError)
	opts := moduleFlags(fs)
	limit := fs.Int("limit", 0, "cap the number of snapshots listed")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resources, cleanup, err := openModule(opts)
	if err != nil {
		return err
	}
	defer cleanup()
	if resources.lister == nil {
		return errors.New("backup service not configured")
	}

	snapshots, err := resources.lister.List(context.Background(), backup.ListOptions{Limit: *limit})
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		log.Printf("module=sitekit operation=backup_list no snapshots")
		return nil
	}
	for _, snapshot := range snapshots {
		line := fmt.Sprintf("module=sitekit operation=backup_list id=%s created=%s files=%d size=%d",
			snapshot.ID, snapshot.CreatedAt.Format(time.RFC3339), snapshot.FileCount, snapshot.TotalSize)
		if snapshot.Label != "" {
			line += " label=" + snapshot.Label
		}
		if !snapshot.Verifiable {
			line += " problem=" + snapshot.Problem
		}
		log.Print(line)
	}
	return nil
}

func runBackupRestore(args []string) error {
	fs := flag.NewFlagSet("backup restore", flag.ContinueOnError)
	opts := moduleFlags(fs)
	id := fs.String("id", "", "snapshot to restore; empty selects the most recent")
	clean := fs.Bool("clean", false, "remove live files absent from the snapshot")
	force := fs.Bool("force", false, "restore even when verification fails")
	noSafety := fs.Bool("no-safety", false, "skip the automatic pre-restore snapshot")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resources, cleanup, err := openModule(opts)
	if err != nil {
		return err
	}
	defer cleanup()
	if resources.handlers.backupRestore == nil {
		return errors.New("backup restore handler not configured")
	}

	return resources.handlers.backupRestore.Execute(context.Background(), backupcmd.RestoreSnapshotCommand{
		ID:                 *id,
		Clean:              *clean,
		Force:              *force,
		SkipSafetySnapshot: *noSafety,
		ResultCallback: func(envelope backupcmd.ResultEnvelope) {
			result := envelope.Restore
			if result == nil {
				return
			}
			line := fmt.Sprintf("module=sitekit operation=backup_restore id=%s restored=%d unchanged=%d removed=%d duration=%s",
				result.SnapshotID, result.FilesRestored, result.FilesUnchanged, result.FilesRemoved, result.Duration)
			if result.SafetySnapshot != nil {
				line += " safety_snapshot=" + result.SafetySnapshot.ID
			}
			log.Print(line)
		},
	})
}

func runBackupVerify(args []string) error {
	fs := flag.NewFlagSet("backup verify", flag.ContinueOnError)
	opts := moduleFlags(fs)
	id := fs.String("id", "", "snapshot to verify; empty selects the most recent")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resources, cleanup, err := openModule(opts)
	if err != nil {
		return err
	}
	defer cleanup()
	if resources.handlers.backupVerify == nil {
		return errors.New("backup verify handler not configured")
	}

	var verify *backup.VerifyResult
	err = resources.handlers.backupVerify.Execute(context.Background(), backupcmd.VerifySnapshotCommand{
		ID: *id,
		ResultCallback: func(envelope backupcmd.ResultEnvelope) {
			verify = envelope.Verify
			if verify == nil {
				return
			}
			log.Printf("module=sitekit operation=backup_verify id=%s checked=%d missing=%d modified=%d extra=%d ok=%t",
				verify.SnapshotID, verify.Checked, len(verify.Missing), len(verify.Modified), len(verify.Extra), verify.OK())
		},
	})
	if err != nil {
		return err
	}
	if verify != nil && !verify.OK() {
		return fmt.Errorf("snapshot %s failed verification: %d missing, %d modified, %d extra",
			verify.SnapshotID, len(verify.Missing), len(verify.Modified), len(verify.Extra))
	}
	return nil
}

func runBackupPrune(args []string) error {
	fs := flag.NewFlagSet("backup prune", flag.ContinueOnError)
	opts := moduleFlags(fs)
	keep := fs.Int("keep", 0, "number of newest snapshots to keep")
	maxAgeDays := fs.Int("max-age-days", 0, "remove snapshots older than this many days")
	dryRun := fs.Bool("dry-run", false, "report what would be removed without removing")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resources, cleanup, err := openModule(opts)
	if err != nil {
		return err
	}
	defer cleanup()
	if resources.handlers.backupPrune == nil {
		return errors.New("backup prune handler not configured")
	}

	return resources.handlers.backupPrune.Execute(context.Background(), backupcmd.PruneSnapshotsCommand{
		KeepLast:   *keep,
		MaxAgeDays: *maxAgeDays,
		DryRun:     *dryRun,
		ResultCallback: func(envelope backupcmd.ResultEnvelope) {
			result := envelope.Prune
			if result == nil {
				return
			}
			log.Printf("module=sitekit operation=backup_prune removed=%d kept=%d bytes_freed=%d dry_run=%t",
				len(result.Removed), result.Kept, result.BytesFreed, result.DryRun)
		},
	})
}

func runMonitor(args []string) error {
	if len(args) == 0 {
		return usageErrorf("monitor: missing subcommand; expected run or report")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "run":
		return runMonitorChecks(rest)
	case "report":
		return runMonitorReport(rest)
	default:
		return usageErrorf("monitor: unknown subcommand %q", sub)
	}
}

func runMonitorChecks(args []string) error {
	fs := flag.NewFlagSet("monitor run", flag.ContinueOnError)
	opts := moduleFlags(fs)
	var targets stringList
	fs.Var(&targets, "target", "restrict checks to a target name (repeatable)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resources, cleanup, err := openModule(opts)
	if err != nil {
		return err
	}
	defer cleanup()
	if resources.handlers.monitorRun == nil {
		return errors.New("monitor run handler not configured")
	}

	ctx := context.Background()
	if err := loadSite(ctx, resources); err != nil {
		return err
	}

	var failed, total int
	err = resources.handlers.monitorRun.Execute(ctx, monitorcmd.RunChecksCommand{
		Targets: targets,
		ResultCallback: func(envelope monitorcmd.ResultEnvelope) {
			report := envelope.Report
			if report == nil {
				return
			}
			total = len(report.Results)
			for _, result := range report.Results {
				line := fmt.Sprintf("module=sitekit operation=monitor_run target=%s url=%s ok=%t status=%d latency=%s",
					result.Target, result.URL, result.OK, result.StatusCode, result.Latency)
				if result.Error != "" {
					line += " error=" + result.Error
				}
				log.Print(line)
				if !result.OK {
					failed++
				}
			}
		},
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("monitor: %d of %d checks failed", failed, total)
	}
	return nil
}

func runMonitorReport(args []string) error {
	fs := flag.NewFlagSet("monitor report", flag.ContinueOnError)
	opts := moduleFlags(fs)
	target := fs.String("target", "", "restrict the summary to one target")
	windowDays := fs.Int("window-days", 0, "history window in days; zero means 30")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resources, cleanup, err := openModule(opts)
	if err != nil {
		return err
	}
	defer cleanup()
	if resources.handlers.monitorReport == nil {
		return errors.New("monitor report handler not configured")
	}

	return resources.handlers.monitorReport.Execute(context.Background(), monitorcmd.ReportCommand{
		Target:     *target,
		WindowDays: *windowDays,
		ResultCallback: func(envelope monitorcmd.ResultEnvelope) {
			summary := envelope.Summary
			if summary == nil {
				return
			}
			log.Printf("module=sitekit operation=monitor_report window=%s targets=%d", summary.Window, len(summary.Targets))
			for _, ts := range summary.Targets {
				line := fmt.Sprintf("module=sitekit operation=monitor_report target=%s checks=%d failures=%d uptime=%.2f%% avg_latency=%s",
					ts.Target, ts.Checks, ts.Failures, ts.UptimePct, ts.AvgLatency)
				if ts.CertExpiry != nil {
					line += " cert_expiry=" + ts.CertExpiry.Format(time.RFC3339)
				}
				log.Print(line)
			}
		},
	})
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	opts := moduleFlags(fs)
	addr := fs.String("addr", ":8080", "listen address")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	resources, cleanup, err := openModule(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	dir := resources.outputDir
	if dir == "" {
		return errors.New("serve: output directory not configured")
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("serve: output directory %s does not exist; run build first", dir)
	}

	log.Printf("module=sitekit operation=serve addr=%s dir=%s", *addr, dir)
	server := &http.Server{
		Addr:              *addr,
		Handler:           http.FileServer(http.Dir(dir)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}
