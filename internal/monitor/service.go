// Package monitor probes the deployed site: availability and latency per
// target, response content, certificate expiry for HTTPS endpoints, and a
// simple performance budget. A failing target is a result with OK=false, not
// an error; Run errs only on internal faults.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-sitekit/internal/logging"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
	"github.com/goliatone/go-sitekit/site"

	urlkit "github.com/goliatone/go-urlkit"
)

// ErrServiceDisabled is returned by every operation on a disabled monitor.
var ErrServiceDisabled = errors.New("monitor: service disabled")

const (
	defaultTimeout        = 10 * time.Second
	defaultUserAgent      = "sitekit-monitor/1.0"
	defaultExpiryWarnDays = 21
)

// Config tunes probing behaviour.
type Config struct {
	Timeout        time.Duration
	UserAgent      string
	ExpiryWarnDays int
	LatencyBudget  time.Duration
	SizeBudgetKB   int
	// Targets extends the probes declared in site-config.json.
	Targets []Target
	// RouteGroup selects the urlkit group used to build page URLs. Empty
	// uses DefaultRouteGroup.
	RouteGroup string
}

// Target is one URL to probe.
type Target struct {
	Name     string
	URL      string
	Expected string
}

// Dependencies wires the collaborators. Data is required; Routes is built
// from the site dataset when absent.
type Dependencies struct {
	Data     site.Service
	Routes   *urlkit.RouteManager
	Client   *http.Client
	Recorder Recorder
	History  HistorySource
	Logger   interfaces.Logger
	Now      func() time.Time
}

// Recorder persists check results when a catalog is configured. Recording
// failures are logged, never fatal.
type Recorder interface {
	RecordCheck(ctx context.Context, result CheckResult) error
}

// HistorySource reads persisted check results back for summaries.
type HistorySource interface {
	CheckHistory(ctx context.Context, opts HistoryOptions) ([]HistoryEntry, error)
}

// HistoryOptions narrows a history read.
type HistoryOptions struct {
	Target string
	Since  time.Time
}

// HistoryEntry is one persisted check result.
type HistoryEntry struct {
	Target     string
	URL        string
	OK         bool
	StatusCode int
	Latency    time.Duration
	CheckedAt  time.Time
	CertExpiry *time.Time
}

// CertInfo captures the leaf certificate of an HTTPS target.
type CertInfo struct {
	Subject       string    `json:"subject"`
	Issuer        string    `json:"issuer"`
	NotAfter      time.Time `json:"not_after"`
	DaysRemaining int       `json:"days_remaining"`
	ExpiryWarning bool      `json:"expiry_warning"`
}

// CheckResult is the outcome of probing one target.
type CheckResult struct {
	Target       string        `json:"target"`
	URL          string        `json:"url"`
	OK           bool          `json:"ok"`
	StatusCode   int           `json:"status_code,omitempty"`
	Latency      time.Duration `json:"latency"`
	BodySize     int64         `json:"body_size"`
	ContentMatch *bool         `json:"content_match,omitempty"`
	OverBudget   bool          `json:"over_budget,omitempty"`
	Cert         *CertInfo     `json:"cert,omitempty"`
	Error        string        `json:"error,omitempty"`
	CheckedAt    time.Time     `json:"checked_at"`
}

// Report aggregates one monitoring run.
type Report struct {
	RanAt   time.Time     `json:"ran_at"`
	Results []CheckResult `json:"results"`
}

// AllOK reports whether every target passed.
func (r *Report) AllOK() bool {
	for _, result := range r.Results {
		if !result.OK {
			return false
		}
	}
	return true
}

// Failures returns the targets that did not pass.
func (r *Report) Failures() []CheckResult {
	var failed []CheckResult
	for _, result := range r.Results {
		if !result.OK {
			failed = append(failed, result)
		}
	}
	return failed
}

// Options narrows one run.
type Options struct {
	// Targets restricts the run to the named targets. Empty runs all.
	Targets []string
}

// Service runs availability checks and summarizes their history.
type Service interface {
	Run(ctx context.Context, opts Options) (*Report, error)
	Report(ctx context.Context, opts ReportOptions) (*Summary, error)
}

type service struct {
	cfg    Config
	deps   Dependencies
	client *http.Client
	logger interfaces.Logger
	now    func() time.Time
}

// NewService validates dependencies and returns a ready monitor.
func NewService(cfg Config, deps Dependencies) (Service, error) {
	if deps.Data == nil {
		return nil, errors.New("monitor: site data service required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.ExpiryWarnDays <= 0 {
		cfg.ExpiryWarnDays = defaultExpiryWarnDays
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	client := deps.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{cfg: cfg, deps: deps, client: client, logger: deps.Logger, now: now}, nil
}

// NewDisabledService returns a monitor that rejects every call.
func NewDisabledService() Service {
	return disabledService{}
}

type disabledService struct{}

func (disabledService) Run(context.Context, Options) (*Report, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Report(context.Context, ReportOptions) (*Summary, error) {
	return nil, ErrServiceDisabled
}

// Run probes every resolved target in order and returns the report. Results
// are recorded to the catalog when a recorder is configured.
func (s *service) Run(ctx context.Context, opts Options) (*Report, error) {
	targets, err := s.resolveTargets(ctx, opts.Targets)
	if err != nil {
		return nil, err
	}

	report := &Report{RanAt: s.now().UTC()}
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result := s.check(ctx, target)
		report.Results = append(report.Results, result)
		if s.deps.Recorder != nil {
			if err := s.deps.Recorder.RecordCheck(ctx, result); err != nil {
				s.logger.Warn("monitor: record check failed", "target", result.Target, "error", err)
			}
		}
	}

	s.logger.Info("monitor: run complete",
		"targets", len(report.Results), "failures", len(report.Failures()))
	return report, nil
}

// check probes one target.
func (s *service) check(ctx context.Context, target Target) CheckResult {
	result := CheckResult{
		Target:    target.Name,
		URL:       target.URL,
		CheckedAt: s.now().UTC(),
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target.URL, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	started := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		result.Latency = time.Since(started)
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	size, err := io.Copy(io.Discard, resp.Body)
	result.Latency = time.Since(started)
	result.BodySize = size
	result.StatusCode = resp.StatusCode
	if err != nil {
		result.Error = fmt.Sprintf("read body: %v", err)
		return result
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 400

	if target.Expected != "" {
		// Content probes re-read the body; Body was drained for sizing, so
		// probe with a second bounded request only when the first succeeded.
		matched, probeErr := s.contentProbe(reqCtx, target)
		if probeErr != nil {
			result.Error = probeErr.Error()
			ok = false
		} else {
			result.ContentMatch = &matched
			if !matched {
				result.Error = fmt.Sprintf("expected content %q not found", target.Expected)
				ok = false
			}
		}
	}

	if resp.TLS != nil && len(resp.TLS.PeerCertificates) > 0 {
		leaf := resp.TLS.PeerCertificates[0]
		days := int(time.Until(leaf.NotAfter).Hours() / 24)
		result.Cert = &CertInfo{
			Subject:       leaf.Subject.CommonName,
			Issuer:        leaf.Issuer.CommonName,
			NotAfter:      leaf.NotAfter.UTC(),
			DaysRemaining: days,
			ExpiryWarning: days < s.cfg.ExpiryWarnDays,
		}
	}

	result.OverBudget = s.overBudget(result)
	result.OK = ok
	if !ok && result.Error == "" {
		result.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return result
}

// contentProbe fetches the target again and reports whether the body contains
// the expected substring.
func (s *service) contentProbe(ctx context.Context, target Target) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read body: %w", err)
	}
	return strings.Contains(string(body), target.Expected), nil
}

// overBudget applies the latency and body-size budgets, the toolchain's
// stand-in for a full performance audit.
func (s *service) overBudget(result CheckResult) bool {
	if s.cfg.LatencyBudget > 0 && result.Latency > s.cfg.LatencyBudget {
		return true
	}
	if s.cfg.SizeBudgetKB > 0 && result.BodySize > int64(s.cfg.SizeBudgetKB)*1024 {
		return true
	}
	return false
}
