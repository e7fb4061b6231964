package render

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-sitekit/pkg/interfaces"
)

// Filter names registered on every renderer the generator owns.
const (
	FilterAbsURL  = "absurl"
	FilterTelHref = "telhref"
)

// RegisterSiteFilters wires the standard filters into renderer. Templates use
// them as {{ route|absurl }} and {{ site.Contact.Phone|telhref }}.
func RegisterSiteFilters(renderer interfaces.TemplateRenderer, baseURL string) error {
	if renderer == nil {
		return nil
	}
	if err := renderer.RegisterFilter(FilterAbsURL, AbsURL(baseURL)); err != nil {
		return err
	}
	return renderer.RegisterFilter(FilterTelHref, TelHref())
}

// AbsURL returns a filter that joins a path with the site base URL. Inputs
// that already carry a scheme pass through unchanged.
func AbsURL(baseURL string) func(any, any) (any, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return func(in any, _ any) (any, error) {
		path := strings.TrimSpace(fmt.Sprint(in))
		if path == "" {
			return base + "/", nil
		}
		if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
			return path, nil
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return base + path, nil
	}
}

// TelHref returns a filter that turns a display phone number into a tel:
// target, keeping digits and a leading plus.
func TelHref() func(any, any) (any, error) {
	return func(in any, _ any) (any, error) {
		raw := strings.TrimSpace(fmt.Sprint(in))
		if raw == "" {
			return "", nil
		}
		var b strings.Builder
		for i, r := range raw {
			switch {
			case r >= '0' && r <= '9':
				b.WriteRune(r)
			case r == '+' && i == 0:
				b.WriteRune(r)
			}
		}
		if b.Len() == 0 {
			return "", fmt.Errorf("telhref: no digits in %q", raw)
		}
		return "tel:" + b.String(), nil
	}
}
