package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

const (
	rootModule      = "sitekit"
	dataModule      = "sitekit.data"
	generatorModule = "sitekit.generator"
	backupModule    = "sitekit.backup"
	monitorModule   = "sitekit.monitor"
	validateModule  = "sitekit.validate"
)

const (
	fieldPageRoute    = "route"
	fieldPageLocale   = "locale"
	fieldPageTemplate = "template"
	fieldSnapshotID   = "snapshot_id"
	fieldSnapshotTree = "tree"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// DataLogger returns the logger namespace reserved for the site data loader.
func DataLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, dataModule)
}

// GeneratorLogger returns the logger namespace reserved for the build pipeline.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// BackupLogger returns the logger namespace reserved for snapshot operations.
func BackupLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, backupModule)
}

// MonitorLogger returns the logger namespace reserved for site checks.
func MonitorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, monitorModule)
}

// ValidateLogger returns the logger namespace reserved for data validation.
func ValidateLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, validateModule)
}

// WithPageContext enriches the provided logger with the fields shared by page
// rendering entries: route, locale, and template. Empty values are ignored.
func WithPageContext(logger interfaces.Logger, route, locale, template string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(route); trimmed != "" {
		fields[fieldPageRoute] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldPageLocale] = trimmed
	}
	if trimmed := strings.TrimSpace(template); trimmed != "" {
		fields[fieldPageTemplate] = trimmed
	}
	return WithFields(logger, fields)
}

// WithSnapshotContext enriches the provided logger with snapshot identifiers.
// Empty values are ignored.
func WithSnapshotContext(logger interfaces.Logger, snapshotID, tree string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(snapshotID); trimmed != "" {
		fields[fieldSnapshotID] = trimmed
	}
	if trimmed := strings.TrimSpace(tree); trimmed != "" {
		fields[fieldSnapshotTree] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
