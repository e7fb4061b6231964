package site

import "context"

// Service exposes the parsed site data to the generator, the validator, and
// the monitor. Implementations load the JSON documents and markdown posts
// under the content directory and hold them in memory until Reload.
type Service interface {
	// Load parses the content directory. Calling Load twice is equivalent to
	// calling Reload.
	Load(ctx context.Context) error

	// Reload discards the in-memory snapshot and parses the content
	// directory again.
	Reload(ctx context.Context) error

	// Site returns the parsed site configuration.
	Site(ctx context.Context) (*Site, error)

	// Pages returns every page in document order.
	Pages(ctx context.Context) ([]*Page, error)

	// Page returns the page with the given key.
	Page(ctx context.Context, key string) (*Page, error)

	// Offerings returns every offering sorted by Order, then key.
	Offerings(ctx context.Context) ([]*Offering, error)

	// Offering returns the offering with the given key or slug.
	Offering(ctx context.Context, key string) (*Offering, error)

	// Posts returns every post, newest first. Drafts are included; callers
	// filter by the Draft flag.
	Posts(ctx context.Context) ([]*Post, error)

	// Post returns the post with the given slug.
	Post(ctx context.Context, slug string) (*Post, error)
}
