package runtimeconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

// ErrGeneratorOutputDirRequired indicates the build pipeline has nowhere to write.
var ErrGeneratorOutputDirRequired = errors.New("sitekit config: generator output directory is required when generator is enabled")

// ErrGeneratorWorkersInvalid rejects negative worker counts.
var ErrGeneratorWorkersInvalid = errors.New("sitekit config: generator workers must be zero or positive")

// ErrContentDirRequired indicates the content tree location is missing.
var ErrContentDirRequired = errors.New("sitekit config: content directory is required")

// ErrBackupDirRequired indicates snapshots have nowhere to live.
var ErrBackupDirRequired = errors.New("sitekit config: backup directory is required when backups are enabled")

// ErrBackupRetentionInvalid rejects negative retention limits.
var ErrBackupRetentionInvalid = errors.New("sitekit config: backup retention limits must be zero or positive")

// ErrBackupTreesRequired indicates a snapshot would capture nothing.
var ErrBackupTreesRequired = errors.New("sitekit config: backups need at least one tree to snapshot")

// ErrMonitorTimeoutInvalid rejects negative monitor timeouts.
var ErrMonitorTimeoutInvalid = errors.New("sitekit config: monitor timeout must be zero or positive")

// ErrMonitorExpiryWindowInvalid rejects negative certificate warning windows.
var ErrMonitorExpiryWindowInvalid = errors.New("sitekit config: monitor certificate warning window must be zero or positive")

// ErrBaseURLInvalid indicates the site base URL cannot be parsed.
var ErrBaseURLInvalid = errors.New("sitekit config: base URL is invalid")

// ErrDefaultLocaleUnknown ensures the default locale appears in the locale list.
var ErrDefaultLocaleUnknown = errors.New("sitekit config: default locale must be part of the configured locales")

// ErrThemesFeatureRequired indicates inconsistent theme configuration.
var ErrThemesFeatureRequired = errors.New("sitekit config: themes feature must be enabled to configure a default theme")

// ErrFeedsRequirePosts keeps feed generation behind the posts flag.
var ErrFeedsRequirePosts = errors.New("sitekit config: feeds feature requires posts to be enabled")

// ErrCommandsCronRequiresMonitoring ensures automatic cron wiring only runs when monitoring is enabled.
var ErrCommandsCronRequiresMonitoring = errors.New("sitekit config: command cron auto-registration requires monitoring to be enabled")

// ErrCatalogStorageRequired indicates the catalog feature was enabled without a database.
var ErrCatalogStorageRequired = errors.New("sitekit config: catalog feature requires a storage driver and DSN")

// ErrStorageDriverUnknown rejects drivers the catalog wiring does not understand.
var ErrStorageDriverUnknown = errors.New("sitekit config: storage driver is invalid")

var ErrLoggingProviderRequired = errors.New("sitekit config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("sitekit config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("sitekit config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("sitekit config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the sitekit module.
// Fields intentionally use simple types so host applications can extend them
// later; the CLI loads the same shape from sitekit.json.
type Config struct {
	ProjectDir    string   `json:"project_dir"`
	BaseURL       string   `json:"base_url"`
	DefaultLocale string   `json:"default_locale"`
	Locales       []string `json:"locales"`

	Content    ContentConfig    `json:"content"`
	Generator  GeneratorConfig  `json:"generator"`
	Backup     BackupConfig     `json:"backup"`
	Monitor    MonitorConfig    `json:"monitor"`
	Validation ValidationConfig `json:"validation"`
	Theming    ThemeConfig      `json:"theming"`
	Storage    StorageConfig    `json:"storage"`
	Navigation NavigationConfig `json:"-"`
	Features   Features         `json:"features"`
	Commands   CommandsConfig   `json:"commands"`
	Logging    LoggingConfig    `json:"logging"`
}

// ContentConfig locates the content tree relative to the project directory.
type ContentConfig struct {
	Dir          string `json:"dir"`
	DataDir      string `json:"data_dir"`
	TemplatesDir string `json:"templates_dir"`
	AssetsDir    string `json:"assets_dir"`
	PostsDir     string `json:"posts_dir"`
	ThemesDir    string `json:"themes_dir"`
}

// GeneratorConfig captures behaviour for the build pipeline.
type GeneratorConfig struct {
	Enabled         bool          `json:"enabled"`
	OutputDir       string        `json:"output_dir"`
	Incremental     bool          `json:"incremental"`
	CopyAssets      bool          `json:"copy_assets"`
	GenerateSitemap bool          `json:"generate_sitemap"`
	GenerateRobots  bool          `json:"generate_robots"`
	GenerateFeeds   bool          `json:"generate_feeds"`
	IncludeDrafts   bool          `json:"include_drafts"`
	Workers         int           `json:"workers"`
	RenderTimeout   time.Duration `json:"render_timeout"`
}

// BackupConfig captures snapshot behaviour.
type BackupConfig struct {
	Enabled        bool     `json:"enabled"`
	Dir            string   `json:"dir"`
	Trees          []string `json:"trees"`
	Keep           int      `json:"keep"`
	KeepDays       int      `json:"keep_days"`
	SafetySnapshot bool     `json:"safety_snapshot"`
}

// MonitorConfig captures the availability and certificate checks.
type MonitorConfig struct {
	Enabled        bool            `json:"enabled"`
	Timeout        time.Duration   `json:"timeout"`
	UserAgent      string          `json:"user_agent"`
	ExpiryWarnDays int             `json:"expiry_warn_days"`
	LatencyBudget  time.Duration   `json:"latency_budget"`
	SizeBudgetKB   int             `json:"size_budget_kb"`
	Targets        []MonitorTarget `json:"targets"`
}

// MonitorTarget names an additional URL to probe beyond the site's own pages.
type MonitorTarget struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Expected string `json:"expected"`
}

// ValidationConfig captures validator behaviour.
type ValidationConfig struct {
	Strict bool `json:"strict"`
}

// ThemeConfig captures configuration for template theming.
type ThemeConfig struct {
	DefaultTheme   string `json:"default_theme"`
	DefaultVariant string `json:"default_variant"`
}

// StorageConfig identifies the catalog database.
type StorageConfig struct {
	Driver  string         `json:"driver"`
	DSN     string         `json:"dsn"`
	Options map[string]any `json:"options,omitempty"`
}

// NavigationConfig lets hosts supply a prebuilt urlkit route configuration.
// When absent the monitor derives routes from the loaded site data.
type NavigationConfig struct {
	RouteConfig *urlkit.Config
	Group       string
}

// Features toggles module functionality.
type Features struct {
	Posts   bool `json:"posts"`
	Feeds   bool `json:"feeds"`
	Themes  bool `json:"themes"`
	Catalog bool `json:"catalog"`
	Logger  bool `json:"logger"`
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled                bool   `json:"enabled"`
	AutoRegisterDispatcher bool   `json:"auto_register_dispatcher"`
	AutoRegisterCron       bool   `json:"auto_register_cron"`
	MonitorCron            string `json:"monitor_cron"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `json:"provider"`
	Level     string   `json:"level"`
	Format    string   `json:"format"`
	AddSource bool     `json:"add_source"`
	Focus     []string `json:"focus,omitempty"`
}

// DefaultConfig returns opinionated defaults for a conventional project
// layout: content/ beside public/ and backups/, single locale, sitemap and
// robots maintained on every build.
func DefaultConfig() Config {
	return Config{
		ProjectDir:    ".",
		DefaultLocale: "en",
		Locales:       []string{"en"},
		Content: ContentConfig{
			Dir:          "content",
			DataDir:      "data",
			TemplatesDir: "templates",
			AssetsDir:    "assets",
			PostsDir:     "posts",
			ThemesDir:    "themes",
		},
		Generator: GeneratorConfig{
			Enabled:         true,
			OutputDir:       "public",
			Incremental:     true,
			CopyAssets:      true,
			GenerateSitemap: true,
			GenerateRobots:  true,
			GenerateFeeds:   false,
			Workers:         0,
		},
		Backup: BackupConfig{
			Enabled:        true,
			Dir:            "backups",
			Trees:          []string{"content", "public"},
			Keep:           10,
			SafetySnapshot: true,
		},
		Monitor: MonitorConfig{
			Enabled:        true,
			Timeout:        10 * time.Second,
			UserAgent:      "sitekit-monitor/1.0",
			ExpiryWarnDays: 21,
			LatencyBudget:  2 * time.Second,
			SizeBudgetKB:   512,
		},
		Validation: ValidationConfig{},
		Theming:    ThemeConfig{},
		Features:   Features{},
		Commands:   CommandsConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Load reads a JSON config file and applies it on top of DefaultConfig.
// A missing file is not an error; callers get the defaults back.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("sitekit config: read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("sitekit config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if cfg.Generator.Enabled {
		if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
			return ErrGeneratorOutputDirRequired
		}
		if cfg.Generator.Workers < 0 {
			return ErrGeneratorWorkersInvalid
		}
	}
	if cfg.Backup.Enabled {
		if strings.TrimSpace(cfg.Backup.Dir) == "" {
			return ErrBackupDirRequired
		}
		if len(cfg.Backup.Trees) == 0 {
			return ErrBackupTreesRequired
		}
	}
	if cfg.Backup.Keep < 0 {
		return fmt.Errorf("%w: keep", ErrBackupRetentionInvalid)
	}
	if cfg.Backup.KeepDays < 0 {
		return fmt.Errorf("%w: keep_days", ErrBackupRetentionInvalid)
	}
	if cfg.Monitor.Timeout < 0 {
		return ErrMonitorTimeoutInvalid
	}
	if cfg.Monitor.ExpiryWarnDays < 0 {
		return ErrMonitorExpiryWindowInvalid
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%w: %s", ErrBaseURLInvalid, base)
		}
	}
	if len(cfg.Locales) > 0 && strings.TrimSpace(cfg.DefaultLocale) != "" {
		if !containsFold(cfg.Locales, cfg.DefaultLocale) {
			return fmt.Errorf("%w: %s", ErrDefaultLocaleUnknown, cfg.DefaultLocale)
		}
	}
	if !cfg.Features.Themes {
		if strings.TrimSpace(cfg.Theming.DefaultTheme) != "" {
			return ErrThemesFeatureRequired
		}
	}
	if cfg.Features.Feeds && !cfg.Features.Posts {
		return ErrFeedsRequirePosts
	}
	if cfg.Commands.AutoRegisterCron && !cfg.Monitor.Enabled {
		return ErrCommandsCronRequiresMonitoring
	}
	if cfg.Features.Catalog {
		driver := normalizeDriver(cfg.Storage.Driver)
		if driver == "" || strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrCatalogStorageRequired
		}
		if !isSupportedDriver(driver) {
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
		}
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func containsFold(values []string, want string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func normalizeDriver(driver string) string {
	return strings.ToLower(strings.TrimSpace(driver))
}

func isSupportedDriver(driver string) bool {
	switch driver {
	case "sqlite", "postgres":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
