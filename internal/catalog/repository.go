package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BuildRepository stores generator run history.
type BuildRepository interface {
	Create(ctx context.Context, record *BuildRecord) (*BuildRecord, error)
	List(ctx context.Context, since time.Time) ([]*BuildRecord, error)
}

// CheckRepository stores monitoring probe history.
type CheckRepository interface {
	Create(ctx context.Context, record *CheckRecord) (*CheckRecord, error)
	List(ctx context.Context, target string, since time.Time) ([]*CheckRecord, error)
}

// SnapshotRepository stores backup lifecycle events.
type SnapshotRepository interface {
	Create(ctx context.Context, record *SnapshotRecord) (*SnapshotRecord, error)
	List(ctx context.Context, since time.Time) ([]*SnapshotRecord, error)
	GetBySnapshotID(ctx context.Context, snapshotID string) (*SnapshotRecord, error)
}

// NotFoundError reports a missing catalog record.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog: %s %q not found", e.Resource, e.Key)
}

func newBuildRepository(db *bun.DB) repository.Repository[*BuildRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*BuildRecord]{
		NewRecord: func() *BuildRecord { return &BuildRecord{} },
		GetID: func(r *BuildRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *BuildRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *BuildRecord) string {
			if r == nil {
				return ""
			}
			return r.ID.String()
		},
	})
}

func newCheckRepository(db *bun.DB) repository.Repository[*CheckRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*CheckRecord]{
		NewRecord: func() *CheckRecord { return &CheckRecord{} },
		GetID: func(r *CheckRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *CheckRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *CheckRecord) string {
			if r == nil {
				return ""
			}
			return r.ID.String()
		},
	})
}

func newSnapshotRepository(db *bun.DB) repository.Repository[*SnapshotRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*SnapshotRecord]{
		NewRecord: func() *SnapshotRecord { return &SnapshotRecord{} },
		GetID: func(r *SnapshotRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *SnapshotRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "snapshot_id"
		},
		GetIdentifierValue: func(r *SnapshotRecord) string {
			if r == nil {
				return ""
			}
			return r.SnapshotID
		},
	})
}
