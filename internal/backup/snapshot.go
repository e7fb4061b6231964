package backup

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	slug "github.com/goliatone/go-slug"
)

const snapshotIDLayout = "20060102-150405"

// snapshotIDPattern accepts a UTC timestamp plus an optional label slug.
// Lexical order over matching IDs equals chronological order.
var snapshotIDPattern = regexp.MustCompile(`^\d{8}-\d{6}(-[a-z0-9-]+)?$`)

// Snapshot describes one entry under the backups directory. Entries whose
// manifest is missing or unreadable carry Verifiable=false and the error text.
type Snapshot struct {
	ID         string
	Label      string
	CreatedAt  time.Time
	Path       string
	FileCount  int
	TotalSize  int64
	Trees      []string
	Verifiable bool
	Problem    string
}

// newSnapshotID builds an ID from the clock and an optional label. Labels are
// slugged so IDs stay filesystem and URL safe.
func newSnapshotID(now time.Time, label string) string {
	id := now.UTC().Format(snapshotIDLayout)
	if label = strings.TrimSpace(label); label != "" {
		if slugged, _ := slug.Normalize(label); slugged != "" {
			id += "-" + slugged
		}
	}
	return id
}

// parseSnapshotID recovers the creation time encoded in an ID.
func parseSnapshotID(id string) (time.Time, error) {
	if !snapshotIDPattern.MatchString(id) {
		return time.Time{}, fmt.Errorf("backup: malformed snapshot id %q", id)
	}
	stamp := id
	if len(stamp) > len(snapshotIDLayout) {
		stamp = stamp[:len(snapshotIDLayout)]
	}
	created, err := time.Parse(snapshotIDLayout, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("backup: malformed snapshot id %q: %w", id, err)
	}
	return created.UTC(), nil
}

// isSnapshotDirName reports whether name looks like a completed snapshot.
// Staging directories and arbitrary files are ignored by listings.
func isSnapshotDirName(name string) bool {
	return snapshotIDPattern.MatchString(name)
}
