// Package markdown parses the post sources under content/posts. Each file
// carries YAML frontmatter followed by a markdown body; the body is rendered
// to HTML with goldmark before the post reaches the generator.
package markdown
