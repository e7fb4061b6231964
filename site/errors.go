package site

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("site: record not found")

	// ErrDuplicateKey indicates two records in the same data file share a key.
	ErrDuplicateKey = errors.New("site: duplicate key")

	// ErrDuplicateRoute indicates two pages resolve to the same route.
	ErrDuplicateRoute = errors.New("site: duplicate route")

	// ErrSiteConfigRequired indicates site-config.json is missing or empty.
	ErrSiteConfigRequired = errors.New("site: site config is required")

	// ErrBaseURLRequired indicates site-config.json carries no base URL.
	ErrBaseURLRequired = errors.New("site: base URL is required")

	// ErrKeyRequired indicates a record is missing its key.
	ErrKeyRequired = errors.New("site: key is required")

	// ErrRouteRequired indicates a page is missing its route.
	ErrRouteRequired = errors.New("site: route is required")

	// ErrRouteInvalid indicates a page route is not an absolute path.
	ErrRouteInvalid = errors.New("site: route must start with /")

	// ErrTemplateRequired indicates a page names no template file.
	ErrTemplateRequired = errors.New("site: template is required")

	// ErrTitleRequired indicates a record is missing its title.
	ErrTitleRequired = errors.New("site: title is required")

	// ErrSlugInvalid indicates a record slug fails normalization rules.
	ErrSlugInvalid = errors.New("site: invalid slug")

	// ErrLocaleUnknown indicates a variant references a locale the site does
	// not declare.
	ErrLocaleUnknown = errors.New("site: unknown locale")

	// ErrCollectionUnknown indicates a page names a collection the loader
	// does not recognize.
	ErrCollectionUnknown = errors.New("site: unknown collection")

	// ErrNotLoaded indicates the service was queried before Load succeeded.
	ErrNotLoaded = errors.New("site: data not loaded")
)

// NotFoundError reports a missing record with enough context to name it.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("site: %s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DuplicateKeyError reports a key collision inside one data document.
type DuplicateKeyError struct {
	Resource string
	Key      string
	Document string
}

func (e *DuplicateKeyError) Error() string {
	if e.Document != "" {
		return fmt.Sprintf("site: duplicate %s key %q in %s", e.Resource, e.Key, e.Document)
	}
	return fmt.Sprintf("site: duplicate %s key %q", e.Resource, e.Key)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

// DuplicateRouteError reports two pages claiming the same route.
type DuplicateRouteError struct {
	Route string
	Keys  []string
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("site: route %q claimed by pages %v", e.Route, e.Keys)
}

func (e *DuplicateRouteError) Unwrap() error { return ErrDuplicateRoute }

// DocumentError wraps a parse or validation failure with the document path
// that produced it.
type DocumentError struct {
	Document string
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("site: document %s: %v", e.Document, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }
