// Package monitor exposes the uptime monitoring API for sitekit hosts: probe
// the published site, record history, and summarize uptime per target.
package monitor

import internal "github.com/goliatone/go-sitekit/internal/monitor"

type (
	Service        = internal.Service
	Config         = internal.Config
	Dependencies   = internal.Dependencies
	Target         = internal.Target
	Options        = internal.Options
	ReportOptions  = internal.ReportOptions
	Report         = internal.Report
	CheckResult    = internal.CheckResult
	CertInfo       = internal.CertInfo
	Summary        = internal.Summary
	TargetSummary  = internal.TargetSummary
	HistorySource  = internal.HistorySource
	HistoryEntry   = internal.HistoryEntry
	HistoryOptions = internal.HistoryOptions
	Recorder       = internal.Recorder
)

var (
	ErrServiceDisabled = internal.ErrServiceDisabled
	ErrNoHistory       = internal.ErrNoHistory
)

// NewService wires a monitoring service over the configured targets.
func NewService(cfg Config, deps Dependencies) (Service, error) {
	return internal.NewService(cfg, deps)
}

// NewDisabledService returns a Service that fails all operations with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return internal.NewDisabledService()
}
