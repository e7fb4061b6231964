package sitecheckcmd

import (
	"github.com/goliatone/go-sitekit/internal/sitecheck"
)

const validateSiteMessageType = "sitekit.check.validate"

// ResultCallback receives the validation report. The callback is optional and
// is invoked synchronously from the handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a validation run.
type ResultEnvelope struct {
	Report   *sitecheck.Report
	Metadata map[string]any
}

// ValidateSiteCommand runs the full validation pass over the site dataset.
type ValidateSiteCommand struct {
	// Strict makes warnings count as failures in the resulting report.
	Strict         bool           `json:"strict,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (ValidateSiteCommand) Type() string { return validateSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (ValidateSiteCommand) Validate() error { return nil }

// FeatureGates exposes runtime switches used to guard handler execution.
type FeatureGates struct {
	ValidationEnabled func() bool
}

func (g FeatureGates) validationEnabled() bool {
	if g.ValidationEnabled == nil {
		return true
	}
	return g.ValidationEnabled()
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
