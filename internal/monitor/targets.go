package monitor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-sitekit/site"

	urlkit "github.com/goliatone/go-urlkit"
)

// DefaultRouteGroup names the urlkit group the monitor derives from the site
// dataset when no route manager is supplied.
const DefaultRouteGroup = "site"

// resolveTargets expands the site's declared probes and the config extras
// into concrete URLs, optionally narrowed to the named targets.
func (s *service) resolveTargets(ctx context.Context, names []string) ([]Target, error) {
	siteRecord, err := s.deps.Data.Site(ctx)
	if err != nil {
		return nil, fmt.Errorf("monitor: read site record: %w", err)
	}

	manager := s.deps.Routes
	group := strings.TrimSpace(s.cfg.RouteGroup)
	if group == "" {
		group = DefaultRouteGroup
	}
	if manager == nil {
		if manager, err = s.routeManagerFromData(ctx, siteRecord); err != nil {
			return nil, err
		}
		group = DefaultRouteGroup
	}

	var targets []Target
	seen := map[string]struct{}{}
	add := func(target Target) {
		name := strings.TrimSpace(target.Name)
		if name == "" {
			name = target.URL
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		target.Name = name
		targets = append(targets, target)
	}

	for _, probe := range siteRecord.Probes {
		target := Target{Name: probe.Name, URL: probe.URL, Expected: probe.Expected}
		if target.URL == "" && probe.PageKey != "" {
			url, err := buildRouteURL(manager, group, probe.PageKey)
			if err != nil {
				return nil, fmt.Errorf("monitor: probe %q: %w", probe.Name, err)
			}
			target.URL = url
			if target.Name == "" {
				target.Name = probe.PageKey
			}
		}
		if target.URL == "" {
			s.logger.Warn("monitor: probe has no url or page", "probe", probe.Name)
			continue
		}
		add(target)
	}
	for _, extra := range s.cfg.Targets {
		if strings.TrimSpace(extra.URL) == "" {
			continue
		}
		add(extra)
	}

	if len(names) == 0 {
		return targets, nil
	}

	wanted := map[string]struct{}{}
	for _, name := range names {
		wanted[strings.TrimSpace(name)] = struct{}{}
	}
	var filtered []Target
	for _, target := range targets {
		if _, ok := wanted[target.Name]; ok {
			filtered = append(filtered, target)
			delete(wanted, target.Name)
		}
	}
	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for name := range wanted {
			missing = append(missing, name)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("monitor: unknown targets %v", missing)
	}
	return filtered, nil
}

// routeManagerFromData builds a urlkit route manager whose routes are the
// site's own pages, keyed by page key, under the default group.
func (s *service) routeManagerFromData(ctx context.Context, siteRecord *site.Site) (*urlkit.RouteManager, error) {
	pages, err := s.deps.Data.Pages(ctx)
	if err != nil {
		return nil, fmt.Errorf("monitor: read pages: %w", err)
	}

	paths := make(map[string]string, len(pages))
	for _, page := range pages {
		if page.Draft {
			continue
		}
		paths[page.Key] = page.Route
	}

	return urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    DefaultRouteGroup,
				BaseURL: strings.TrimRight(siteRecord.BaseURL, "/"),
				Paths:   paths,
			},
		},
	}), nil
}

// buildRouteURL resolves one route through urlkit. Group and route lookups
// panic inside urlkit on unknown names; recover turns that into an error.
func buildRouteURL(manager *urlkit.RouteManager, groupName, route string) (url string, err error) {
	if manager == nil {
		return "", fmt.Errorf("route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("route %q not found in group %q", route, groupName)
		}
	}()
	group := manager.Group(groupName)
	return group.Builder(route).Build()
}
