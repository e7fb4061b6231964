// Package sitedata loads the JSON documents and markdown posts under the
// content directory and serves them to the generator, validator, and monitor
// through the site.Service contract. The parsed snapshot is immutable; Reload
// swaps it atomically.
package sitedata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-sitekit/internal/markdown"
	"github.com/goliatone/go-sitekit/pkg/interfaces"
	"github.com/goliatone/go-sitekit/site"
)

// Options wires the service dependencies.
type Options struct {
	// DataFS is rooted at content/data and must contain site-config.json.
	DataFS fs.FS
	// PostsFS is rooted at content/posts. Nil disables posts.
	PostsFS fs.FS
	// Parser renders post bodies. A default parser is built when nil.
	Parser *markdown.Parser
	// DefaultLocale seeds the site locale when site-config.json omits it.
	DefaultLocale string
	// Locales extends the site locale list from runtime configuration.
	Locales []string
	Logger  interfaces.Logger
}

// Service implements site.Service.
type Service struct {
	dataFS  fs.FS
	posts   *markdown.Loader
	locale  string
	locales []string
	logger  interfaces.Logger

	mu       sync.RWMutex
	snapshot *snapshot
}

type snapshot struct {
	site           *site.Site
	pages          []*site.Page
	pagesByKey     map[string]*site.Page
	offerings      []*site.Offering
	offeringsByKey map[string]*site.Offering
	posts          []*site.Post
	postsBySlug    map[string]*site.Post
	fingerprint    string
	loadedAt       time.Time
}

// NewService constructs the service. Load must be called before queries.
func NewService(opts Options) *Service {
	svc := &Service{
		dataFS:  opts.DataFS,
		locale:  opts.DefaultLocale,
		locales: append([]string(nil), opts.Locales...),
		logger:  opts.Logger,
	}
	if opts.PostsFS != nil {
		svc.posts = markdown.NewLoader(opts.PostsFS, opts.Parser)
	}
	return svc
}

// Load parses the content directory and swaps the in-memory snapshot.
func (s *Service) Load(ctx context.Context) error {
	siteRecord, siteSum, err := loadSiteConfig(s.dataFS, s.locale, s.locales)
	if err != nil {
		return err
	}

	offerings, offeringsSum, err := loadOfferings(s.dataFS, siteRecord)
	if err != nil {
		return err
	}

	pages, pagesSum, err := loadPages(s.dataFS, siteRecord)
	if err != nil {
		return err
	}

	var posts []*site.Post
	if s.posts != nil {
		posts, err = s.posts.LoadPosts(ctx)
		if err != nil {
			return err
		}
	}

	next := &snapshot{
		site:           siteRecord,
		pages:          pages,
		pagesByKey:     make(map[string]*site.Page, len(pages)),
		offerings:      offerings,
		offeringsByKey: make(map[string]*site.Offering, len(offerings)*2),
		posts:          posts,
		postsBySlug:    make(map[string]*site.Post, len(posts)),
		fingerprint:    combineChecksums(siteSum, offeringsSum, pagesSum, posts),
		loadedAt:       time.Now().UTC(),
	}
	for _, page := range pages {
		next.pagesByKey[page.Key] = page
	}
	for _, offering := range offerings {
		next.offeringsByKey[offering.Key] = offering
		next.offeringsByKey[offering.Slug] = offering
	}
	for _, post := range posts {
		next.postsBySlug[post.Slug] = post
	}

	s.mu.Lock()
	s.snapshot = next
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("site data loaded",
			"pages", len(pages),
			"offerings", len(offerings),
			"posts", len(posts),
			"locales", strings.Join(siteRecord.Locales, ","),
		)
	}
	return nil
}

// Reload re-parses the content directory.
func (s *Service) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// Site returns the parsed site configuration.
func (s *Service) Site(ctx context.Context) (*site.Site, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.site, nil
}

// Pages returns every page in document order.
func (s *Service) Pages(ctx context.Context) ([]*site.Page, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return append([]*site.Page(nil), snap.pages...), nil
}

// Page returns the page with the given key.
func (s *Service) Page(ctx context.Context, key string) (*site.Page, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	page, ok := snap.pagesByKey[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil, &site.NotFoundError{Resource: "page", Key: key}
	}
	return page, nil
}

// Offerings returns every offering sorted by Order, then key.
func (s *Service) Offerings(ctx context.Context) ([]*site.Offering, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return append([]*site.Offering(nil), snap.offerings...), nil
}

// Offering returns the offering with the given key or slug.
func (s *Service) Offering(ctx context.Context, key string) (*site.Offering, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	offering, ok := snap.offeringsByKey[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil, &site.NotFoundError{Resource: "offering", Key: key}
	}
	return offering, nil
}

// Posts returns every post, newest first.
func (s *Service) Posts(ctx context.Context) ([]*site.Post, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return append([]*site.Post(nil), snap.posts...), nil
}

// Post returns the post with the given slug.
func (s *Service) Post(ctx context.Context, slug string) (*site.Post, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	post, ok := snap.postsBySlug[site.NormalizeSlug(slug)]
	if !ok {
		return nil, &site.NotFoundError{Resource: "post", Key: slug}
	}
	return post, nil
}

// Fingerprint identifies the loaded snapshot. The generator records it in the
// build manifest so data edits invalidate incremental skips.
func (s *Service) Fingerprint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return ""
	}
	return s.snapshot.fingerprint
}

// LoadedAt reports when the current snapshot was parsed.
func (s *Service) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return time.Time{}
	}
	return s.snapshot.loadedAt
}

func (s *Service) current(ctx context.Context) (*snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, site.ErrNotLoaded
	}
	return s.snapshot, nil
}

func combineChecksums(siteSum, offeringsSum, pagesSum string, posts []*site.Post) string {
	entries := []string{
		"site=" + siteSum,
		"offerings=" + offeringsSum,
		"pages=" + pagesSum,
	}
	for _, post := range posts {
		entries = append(entries, "post:"+post.Slug+"="+checksum([]byte(post.Title+"\x00"+post.Summary+"\x00"+post.BodyHTML)))
	}
	sort.Strings(entries)

	hasher := sha256.New()
	for _, entry := range entries {
		hasher.Write([]byte(entry))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
