package catalog

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunBuildRepository implements BuildRepository over bun with optional caching.
type BunBuildRepository struct {
	repo repository.Repository[*BuildRecord]
}

// NewBunBuildRepository creates a build repository without caching.
func NewBunBuildRepository(db *bun.DB) *BunBuildRepository {
	return NewBunBuildRepositoryWithCache(db, nil, nil)
}

// NewBunBuildRepositoryWithCache creates a build repository with caching support.
func NewBunBuildRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunBuildRepository {
	return &BunBuildRepository{repo: wrapWithCache(newBuildRepository(db), cacheService, serializer)}
}

func (r *BunBuildRepository) Create(ctx context.Context, record *BuildRecord) (*BuildRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("build repository error: %w", err)
	}
	return created, nil
}

func (r *BunBuildRepository) List(ctx context.Context, since time.Time) ([]*BuildRecord, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if !since.IsZero() {
			q = q.Where("?TableAlias.generated_at >= ?", since)
		}
		return q.Order("generated_at DESC")
	}))
	if err != nil {
		return nil, fmt.Errorf("build repository error: %w", err)
	}
	return records, nil
}

// BunCheckRepository implements CheckRepository over bun with optional caching.
type BunCheckRepository struct {
	repo repository.Repository[*CheckRecord]
}

// NewBunCheckRepository creates a check repository without caching.
func NewBunCheckRepository(db *bun.DB) *BunCheckRepository {
	return NewBunCheckRepositoryWithCache(db, nil, nil)
}

// NewBunCheckRepositoryWithCache creates a check repository with caching support.
func NewBunCheckRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunCheckRepository {
	return &BunCheckRepository{repo: wrapWithCache(newCheckRepository(db), cacheService, serializer)}
}

func (r *BunCheckRepository) Create(ctx context.Context, record *CheckRecord) (*CheckRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("check repository error: %w", err)
	}
	return created, nil
}

func (r *BunCheckRepository) List(ctx context.Context, target string, since time.Time) ([]*CheckRecord, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if target != "" {
			q = q.Where("?TableAlias.target = ?", target)
		}
		if !since.IsZero() {
			q = q.Where("?TableAlias.checked_at >= ?", since)
		}
		return q.Order("checked_at DESC")
	}))
	if err != nil {
		return nil, fmt.Errorf("check repository error: %w", err)
	}
	return records, nil
}

// BunSnapshotRepository implements SnapshotRepository over bun with optional caching.
type BunSnapshotRepository struct {
	repo repository.Repository[*SnapshotRecord]
}

// NewBunSnapshotRepository creates a snapshot repository without caching.
func NewBunSnapshotRepository(db *bun.DB) *BunSnapshotRepository {
	return NewBunSnapshotRepositoryWithCache(db, nil, nil)
}

// NewBunSnapshotRepositoryWithCache creates a snapshot repository with caching support.
func NewBunSnapshotRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunSnapshotRepository {
	return &BunSnapshotRepository{repo: wrapWithCache(newSnapshotRepository(db), cacheService, serializer)}
}

func (r *BunSnapshotRepository) Create(ctx context.Context, record *SnapshotRecord) (*SnapshotRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("snapshot repository error: %w", err)
	}
	return created, nil
}

func (r *BunSnapshotRepository) GetBySnapshotID(ctx context.Context, snapshotID string) (*SnapshotRecord, error) {
	record, err := r.repo.GetByIdentifier(ctx, snapshotID)
	if err != nil {
		return nil, mapRepositoryError(err, "snapshot", snapshotID)
	}
	return record, nil
}

func (r *BunSnapshotRepository) List(ctx context.Context, since time.Time) ([]*SnapshotRecord, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if !since.IsZero() {
			q = q.Where("?TableAlias.occurred_at >= ?", since)
		}
		return q.Order("occurred_at DESC")
	}))
	if err != nil {
		return nil, fmt.Errorf("snapshot repository error: %w", err)
	}
	return records, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
