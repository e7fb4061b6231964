package monitor

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrNoHistory is returned by Report when no catalog is configured.
var ErrNoHistory = errors.New("monitor: no check history available")

// ReportOptions narrows a history summary.
type ReportOptions struct {
	// Window bounds how far back the summary reads. Zero means 30 days.
	Window time.Duration
	// Target restricts the summary to one target.
	Target string
}

// TargetSummary aggregates the persisted checks for one target.
type TargetSummary struct {
	Target     string        `json:"target"`
	URL        string        `json:"url"`
	Checks     int           `json:"checks"`
	Failures   int           `json:"failures"`
	UptimePct  float64       `json:"uptime_pct"`
	AvgLatency time.Duration `json:"avg_latency"`
	LastOK     *time.Time    `json:"last_ok,omitempty"`
	CertExpiry *time.Time    `json:"cert_expiry,omitempty"`
}

// Summary is the aggregated view over a history window.
type Summary struct {
	Window  time.Duration   `json:"window"`
	Since   time.Time       `json:"since"`
	Targets []TargetSummary `json:"targets"`
}

const defaultSummaryWindow = 30 * 24 * time.Hour

// Report summarizes persisted check history per target: uptime percentage,
// average latency, and the nearest certificate expiry.
func (s *service) Report(ctx context.Context, opts ReportOptions) (*Summary, error) {
	if s.deps.History == nil {
		return nil, ErrNoHistory
	}
	window := opts.Window
	if window <= 0 {
		window = defaultSummaryWindow
	}
	since := s.now().UTC().Add(-window)

	entries, err := s.deps.History.CheckHistory(ctx, HistoryOptions{
		Target: opts.Target,
		Since:  since,
	})
	if err != nil {
		return nil, err
	}

	type bucket struct {
		summary TargetSummary
		latency time.Duration
	}
	buckets := map[string]*bucket{}
	for _, entry := range entries {
		b, ok := buckets[entry.Target]
		if !ok {
			b = &bucket{summary: TargetSummary{Target: entry.Target, URL: entry.URL}}
			buckets[entry.Target] = b
		}
		b.summary.Checks++
		b.latency += entry.Latency
		if entry.OK {
			checkedAt := entry.CheckedAt
			if b.summary.LastOK == nil || checkedAt.After(*b.summary.LastOK) {
				b.summary.LastOK = &checkedAt
			}
		} else {
			b.summary.Failures++
		}
		if entry.CertExpiry != nil {
			if b.summary.CertExpiry == nil || entry.CertExpiry.After(*b.summary.CertExpiry) {
				b.summary.CertExpiry = entry.CertExpiry
			}
		}
	}

	summary := &Summary{Window: window, Since: since}
	for _, b := range buckets {
		if b.summary.Checks > 0 {
			b.summary.UptimePct = 100 * float64(b.summary.Checks-b.summary.Failures) / float64(b.summary.Checks)
			b.summary.AvgLatency = b.latency / time.Duration(b.summary.Checks)
		}
		summary.Targets = append(summary.Targets, b.summary)
	}
	sort.Slice(summary.Targets, func(i, j int) bool {
		return summary.Targets[i].Target < summary.Targets[j].Target
	})
	return summary, nil
}
