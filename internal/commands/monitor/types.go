package monitorcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-sitekit/internal/monitor"
)

const (
	runChecksMessageType = "sitekit.monitor.run"
	reportMessageType    = "sitekit.monitor.report"
)

// ResultCallback receives monitoring results. The callback is optional and is
// invoked synchronously from the handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a monitoring command execution.
type ResultEnvelope struct {
	Report   *monitor.Report
	Summary  *monitor.Summary
	Metadata map[string]any
}

// RunChecksCommand probes the configured targets once.
type RunChecksCommand struct {
	Targets        []string       `json:"targets,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (RunChecksCommand) Type() string { return runChecksMessageType }

// Validate ensures target filters are non-empty names.
func (m RunChecksCommand) Validate() error {
	for _, target := range m.Targets {
		if strings.TrimSpace(target) == "" {
			return validation.Errors{
				"targets": validation.NewError("sitekit.monitor.run.target_invalid", "targets must not contain empty names"),
			}
		}
	}
	return nil
}

// ReportCommand summarizes persisted check history.
type ReportCommand struct {
	Target         string         `json:"target,omitempty"`
	WindowDays     int            `json:"window_days,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (ReportCommand) Type() string { return reportMessageType }

// Validate ensures the summary window is non-negative.
func (m ReportCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.WindowDays, validation.Min(0)),
	)
}

// FeatureGates exposes runtime switches used to guard handler execution.
type FeatureGates struct {
	MonitorEnabled func() bool
}

func (g FeatureGates) monitorEnabled() bool {
	if g.MonitorEnabled == nil {
		return true
	}
	return g.MonitorEnabled()
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
