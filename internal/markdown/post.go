package markdown

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-sitekit/internal/identity"
	"github.com/goliatone/go-sitekit/site"
)

type postEnvelope struct {
	Title   string    `yaml:"title"`
	Slug    string    `yaml:"slug"`
	Summary string    `yaml:"summary"`
	Author  string    `yaml:"author"`
	Tags    []string  `yaml:"tags"`
	Date    time.Time `yaml:"date"`
	Updated time.Time `yaml:"updated"`
	Draft   bool      `yaml:"draft"`
}

// ParsePost turns a single markdown source into a post. The slug falls back
// to the file name, the publish date to the file modification time.
func (p *Parser) ParsePost(filePath string, source []byte, modified time.Time) (*site.Post, error) {
	var meta postEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, &site.DocumentError{Document: filePath, Err: fmt.Errorf("parse frontmatter: %w", err)}
	}

	if strings.TrimSpace(meta.Title) == "" {
		return nil, &site.DocumentError{Document: filePath, Err: site.ErrTitleRequired}
	}

	slug := strings.TrimSpace(meta.Slug)
	if slug == "" {
		base := path.Base(filePath)
		slug = strings.TrimSuffix(base, path.Ext(base))
	}
	slug = site.NormalizeSlug(slug)
	if !site.IsValidSlug(slug) {
		return nil, &site.DocumentError{Document: filePath, Err: site.ErrSlugInvalid}
	}

	published := meta.Date
	if published.IsZero() {
		published = modified
	}
	updated := meta.Updated
	if updated.IsZero() {
		updated = published
	}

	rendered, err := p.Render(body)
	if err != nil {
		return nil, &site.DocumentError{Document: filePath, Err: err}
	}

	publishedAt := published.UTC()
	updatedAt := updated.UTC()

	return &site.Post{
		ID:          identity.PostUUID(slug),
		Slug:        slug,
		Title:       strings.TrimSpace(meta.Title),
		Summary:     strings.TrimSpace(meta.Summary),
		Author:      strings.TrimSpace(meta.Author),
		Tags:        append([]string(nil), meta.Tags...),
		Draft:       meta.Draft,
		PublishedAt: &publishedAt,
		UpdatedAt:   &updatedAt,
		BodyHTML:    string(rendered),
		SourcePath:  path.Clean(filePath),
	}, nil
}
