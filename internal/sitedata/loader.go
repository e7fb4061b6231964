package sitedata

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/goliatone/go-sitekit/internal/identity"
	"github.com/goliatone/go-sitekit/internal/util"
	"github.com/goliatone/go-sitekit/internal/validation"
	"github.com/goliatone/go-sitekit/site"
)

func loadSiteConfig(dataFS fs.FS, defaultLocale string, locales []string) (*site.Site, string, error) {
	raw, err := fs.ReadFile(dataFS, validation.DocumentSiteConfig)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", &site.DocumentError{Document: validation.DocumentSiteConfig, Err: site.ErrSiteConfigRequired}
		}
		return nil, "", &site.DocumentError{Document: validation.DocumentSiteConfig, Err: err}
	}

	if err := validation.ValidateDataDocument(validation.DocumentSiteConfig, raw); err != nil {
		return nil, "", &site.DocumentError{Document: validation.DocumentSiteConfig, Err: err}
	}

	var record site.Site
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, "", &site.DocumentError{Document: validation.DocumentSiteConfig, Err: err}
	}

	record.BaseURL = strings.TrimRight(strings.TrimSpace(record.BaseURL), "/")
	if record.BaseURL == "" {
		return nil, "", &site.DocumentError{Document: validation.DocumentSiteConfig, Err: site.ErrBaseURLRequired}
	}

	record.DefaultLocale = strings.ToLower(util.FirstNonEmpty(strings.TrimSpace(record.DefaultLocale), defaultLocale, "en"))
	record.Locales = normalizeLocales(record.DefaultLocale, record.Locales, locales)
	record.ID = identity.SiteUUID(record.BaseURL)
	record.Variants = lowercaseSiteVariants(record.Variants)


	return &record, checksum(raw), nil
}

func loadOfferings(dataFS fs.FS, _ *site.Site) ([]*site.Offering, string, error) {
	raw, err := fs.ReadFile(dataFS, validation.DocumentOfferings)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", nil
		}
		return nil, "", &site.DocumentError{Document: validation.DocumentOfferings, Err: err}
	}

	if err := validation.ValidateDataDocument(validation.DocumentOfferings, raw); err != nil {
		return nil, "", &site.DocumentError{Document: validation.DocumentOfferings, Err: err}
	}

	var records []*site.Offering
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, "", &site.DocumentError{Document: validation.DocumentOfferings, Err: err}
	}

	seenKeys := map[string]struct{}{}
	seenSlugs := map[string]string{}
	for _, record := range records {
		record.Key = strings.ToLower(strings.TrimSpace(record.Key))
		if record.Key == "" {
			return nil, "", &site.DocumentError{Document: validation.DocumentOfferings, Err: site.ErrKeyRequired}
		}
		if _, ok := seenKeys[record.Key]; ok {
			return nil, "", &site.DuplicateKeyError{Resource: "offering", Key: record.Key, Document: validation.DocumentOfferings}
		}
		seenKeys[record.Key] = struct{}{}

		record.Slug = site.NormalizeSlug(util.FirstNonEmpty(strings.TrimSpace(record.Slug), record.Key))
		if !site.IsValidSlug(record.Slug) {
			return nil, "", &site.DocumentError{Document: validation.DocumentOfferings, Err: fmt.Errorf("%w: offering %q", site.ErrSlugInvalid, record.Key)}
		}
		if owner, ok := seenSlugs[record.Slug]; ok {
			return nil, "", &site.DocumentError{
				Document: validation.DocumentOfferings,
				Err:      fmt.Errorf("%w: slug %q shared by %q and %q", site.ErrDuplicateKey, record.Slug, owner, record.Key),
			}
		}
		seenSlugs[record.Slug] = record.Key

		record.ID = identity.OfferingUUID(record.Key)
		record.Variants = lowercaseOfferingVariants(record.Variants)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Order != records[j].Order {
			return records[i].Order < records[j].Order
		}
		return records[i].Key < records[j].Key
	})

	return records, checksum(raw), nil
}

func loadPages(dataFS fs.FS, _ *site.Site) ([]*site.Page, string, error) {
	raw, err := fs.ReadFile(dataFS, validation.DocumentPages)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", nil
		}
		return nil, "", &site.DocumentError{Document: validation.DocumentPages, Err: err}
	}

	if err := validation.ValidateDataDocument(validation.DocumentPages, raw); err != nil {
		return nil, "", &site.DocumentError{Document: validation.DocumentPages, Err: err}
	}

	var records []*site.Page
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, "", &site.DocumentError{Document: validation.DocumentPages, Err: err}
	}

	seenKeys := map[string]struct{}{}
	routeOwners := map[string][]string{}
	for _, record := range records {
		record.Key = strings.ToLower(strings.TrimSpace(record.Key))
		if record.Key == "" {
			return nil, "", &site.DocumentError{Document: validation.DocumentPages, Err: site.ErrKeyRequired}
		}
		if _, ok := seenKeys[record.Key]; ok {
			return nil, "", &site.DuplicateKeyError{Resource: "page", Key: record.Key, Document: validation.DocumentPages}
		}
		seenKeys[record.Key] = struct{}{}

		record.Route = util.NormalizeRoute(record.Route)
		if record.Route == "" {
			return nil, "", &site.DocumentError{Document: validation.DocumentPages, Err: fmt.Errorf("%w: page %q", site.ErrRouteRequired, record.Key)}
		}
		if !strings.HasPrefix(record.Route, "/") {
			return nil, "", &site.DocumentError{Document: validation.DocumentPages, Err: fmt.Errorf("%w: page %q", site.ErrRouteInvalid, record.Key)}
		}

		record.Template = strings.TrimSpace(record.Template)
		if record.Template == "" {
			return nil, "", &site.DocumentError{Document: validation.DocumentPages, Err: fmt.Errorf("%w: page %q", site.ErrTemplateRequired, record.Key)}
		}

		record.Collection = strings.ToLower(strings.TrimSpace(record.Collection))
		switch record.Collection {
		case site.CollectionNone, site.CollectionOfferings, site.CollectionPosts:
		default:
			return nil, "", &site.DocumentError{Document: validation.DocumentPages, Err: fmt.Errorf("%w: page %q collection %q", site.ErrCollectionUnknown, record.Key, record.Collection)}
		}

		record.ID = identity.PageUUID(record.Key)
		record.Variants = lowercasePageVariants(record.Variants)

		// Collection pages publish documents at route/slug, so a plain page
		// and a collection page may share a route prefix. Two collection
		// pages expanding the same collection at the same route still clash.
		routeKey := record.Route
		if record.Collection != site.CollectionNone {
			routeKey = record.Route + "\x00" + record.Collection
		}
		routeOwners[routeKey] = append(routeOwners[routeKey], record.Key)
	}

	for routeKey, owners := range routeOwners {
		if len(owners) > 1 {
			route, _, _ := strings.Cut(routeKey, "\x00")
			sort.Strings(owners)
			return nil, "", &site.DuplicateRouteError{Route: route, Keys: owners}
		}
	}

	return records, checksum(raw), nil
}

func normalizeLocales(defaultLocale string, declared, configured []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(declared)+len(configured)+1)

	add := func(code string) {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}

	add(defaultLocale)
	for _, code := range declared {
		add(code)
	}
	for _, code := range configured {
		add(code)
	}
	return out
}

func lowercaseSiteVariants(in map[string]site.SiteVariant) map[string]site.SiteVariant {
	if len(in) == 0 {
		return in
	}
	out := make(map[string]site.SiteVariant, len(in))
	for locale, variant := range in {
		out[strings.ToLower(strings.TrimSpace(locale))] = variant
	}
	return out
}

func lowercasePageVariants(in map[string]site.PageVariant) map[string]site.PageVariant {
	if len(in) == 0 {
		return in
	}
	out := make(map[string]site.PageVariant, len(in))
	for locale, variant := range in {
		out[strings.ToLower(strings.TrimSpace(locale))] = variant
	}
	return out
}

func lowercaseOfferingVariants(in map[string]site.OfferingVariant) map[string]site.OfferingVariant {
	if len(in) == 0 {
		return in
	}
	out := make(map[string]site.OfferingVariant, len(in))
	for locale, variant := range in {
		out[strings.ToLower(strings.TrimSpace(locale))] = variant
	}
	return out
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
