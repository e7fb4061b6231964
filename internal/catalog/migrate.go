package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

const migrationsDir = "data/sql/migrations"

// Migrate applies the embedded catalog schema migrations in lexical order.
// Statements within a file are separated by "---bun:split" markers so a
// single migration can carry several DDL statements.
func Migrate(ctx context.Context, db *bun.DB, fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, migrationsDir)
	if err != nil {
		return fmt.Errorf("catalog: read migrations dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	isSQLite := db.Dialect().Name() == dialect.SQLite

	for _, name := range names {
		raw, err := fs.ReadFile(fsys, migrationsDir+"/"+name)
		if err != nil {
			return fmt.Errorf("catalog: read migration %s: %w", name, err)
		}
		content := string(raw)
		if isSQLite {
			// SQLite doesn't understand Postgres JSONB casts in defaults.
			content = strings.ReplaceAll(content, "::jsonb", "")
			content = strings.ReplaceAll(content, "::JSONB", "")
		}
		for _, chunk := range strings.Split(content, "---bun:split") {
			statement := strings.TrimSpace(chunk)
			if statement == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, statement); err != nil {
				return fmt.Errorf("catalog: apply migration %s: %w", name, err)
			}
		}
	}
	return nil
}
