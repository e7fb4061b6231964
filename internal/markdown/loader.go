package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-sitekit/site"
)

// Loader discovers post files inside a filesystem rooted at the posts
// directory.
type Loader struct {
	fs     fs.FS
	parser *Parser
}

// NewLoader constructs a Loader over filesystem. Pass the result of
// os.DirFS(postsDir) in production; tests use fstest.MapFS.
func NewLoader(filesystem fs.FS, parser *Parser) *Loader {
	if parser == nil {
		parser = NewParser(Options{})
	}
	return &Loader{fs: filesystem, parser: parser}
}

// LoadPosts walks the posts directory and parses every markdown file, newest
// first. Files starting with "_" or "." are skipped so drafts in progress can
// be parked without deleting them. Slug collisions fail the whole load.
func (l *Loader) LoadPosts(ctx context.Context) ([]*site.Post, error) {
	if l.fs == nil {
		return nil, nil
	}

	var posts []*site.Post
	seen := map[string]string{}

	err := fs.WalkDir(l.fs, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := entry.Name()
		if entry.IsDir() {
			if path != "." && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(name), ".md") {
			return nil
		}

		data, err := fs.ReadFile(l.fs, path)
		if err != nil {
			return fmt.Errorf("read post %s: %w", path, err)
		}
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat post %s: %w", path, err)
		}

		post, err := l.parser.ParsePost(path, data, info.ModTime())
		if err != nil {
			return err
		}

		if existing, ok := seen[post.Slug]; ok {
			return &site.DuplicateKeyError{Resource: "post", Key: post.Slug, Document: existing + ", " + path}
		}
		seen[post.Slug] = path

		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		left, right := publishedOrZero(posts[i]), publishedOrZero(posts[j])
		if left.Equal(right) {
			return posts[i].Slug < posts[j].Slug
		}
		return left.After(right)
	})

	return posts, nil
}

func publishedOrZero(post *site.Post) time.Time {
	if post == nil || post.PublishedAt == nil {
		return time.Time{}
	}
	return *post.PublishedAt
}
