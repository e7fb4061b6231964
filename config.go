package sitekit

import "github.com/goliatone/go-sitekit/internal/runtimeconfig"

var (
	ErrContentDirRequired             = runtimeconfig.ErrContentDirRequired
	ErrGeneratorOutputDirRequired     = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrGeneratorWorkersInvalid        = runtimeconfig.ErrGeneratorWorkersInvalid
	ErrBackupDirRequired              = runtimeconfig.ErrBackupDirRequired
	ErrBackupRetentionInvalid         = runtimeconfig.ErrBackupRetentionInvalid
	ErrBackupTreesRequired            = runtimeconfig.ErrBackupTreesRequired
	ErrMonitorTimeoutInvalid          = runtimeconfig.ErrMonitorTimeoutInvalid
	ErrMonitorExpiryWindowInvalid     = runtimeconfig.ErrMonitorExpiryWindowInvalid
	ErrBaseURLInvalid                 = runtimeconfig.ErrBaseURLInvalid
	ErrDefaultLocaleUnknown           = runtimeconfig.ErrDefaultLocaleUnknown
	ErrThemesFeatureRequired          = runtimeconfig.ErrThemesFeatureRequired
	ErrFeedsRequirePosts              = runtimeconfig.ErrFeedsRequirePosts
	ErrCommandsCronRequiresMonitoring = runtimeconfig.ErrCommandsCronRequiresMonitoring
	ErrCatalogStorageRequired         = runtimeconfig.ErrCatalogStorageRequired
	ErrStorageDriverUnknown           = runtimeconfig.ErrStorageDriverUnknown
	ErrLoggingProviderRequired        = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown         = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid            = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid           = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	ContentConfig    = runtimeconfig.ContentConfig
	GeneratorConfig  = runtimeconfig.GeneratorConfig
	BackupConfig     = runtimeconfig.BackupConfig
	MonitorConfig    = runtimeconfig.MonitorConfig
	MonitorTarget    = runtimeconfig.MonitorTarget
	ValidationConfig = runtimeconfig.ValidationConfig
	ThemeConfig      = runtimeconfig.ThemeConfig
	StorageConfig    = runtimeconfig.StorageConfig
	NavigationConfig = runtimeconfig.NavigationConfig
	Features         = runtimeconfig.Features
	CommandsConfig   = runtimeconfig.CommandsConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the defaults for a conventional project layout.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a JSON config file on top of the defaults. A missing file
// is not an error.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
