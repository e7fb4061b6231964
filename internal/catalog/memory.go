package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryBuildRepository keeps build records in memory. It is the default
// backend when no database is configured and the workhorse for tests.
type MemoryBuildRepository struct {
	mu      sync.RWMutex
	records []*BuildRecord
}

// NewMemoryBuildRepository creates an empty in-memory build repository.
func NewMemoryBuildRepository() *MemoryBuildRepository {
	return &MemoryBuildRepository{}
}

func (m *MemoryBuildRepository) Create(_ context.Context, record *BuildRecord) (*BuildRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *record
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	m.records = append(m.records, &copied)
	out := copied
	return &out, nil
}

func (m *MemoryBuildRepository) List(_ context.Context, since time.Time) ([]*BuildRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*BuildRecord
	for _, record := range m.records {
		if !since.IsZero() && record.GeneratedAt.Before(since) {
			continue
		}
		copied := *record
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out, nil
}

// MemoryCheckRepository keeps check records in memory.
type MemoryCheckRepository struct {
	mu      sync.RWMutex
	records []*CheckRecord
}

// NewMemoryCheckRepository creates an empty in-memory check repository.
func NewMemoryCheckRepository() *MemoryCheckRepository {
	return &MemoryCheckRepository{}
}

func (m *MemoryCheckRepository) Create(_ context.Context, record *CheckRecord) (*CheckRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *record
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	m.records = append(m.records, &copied)
	out := copied
	return &out, nil
}

func (m *MemoryCheckRepository) List(_ context.Context, target string, since time.Time) ([]*CheckRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*CheckRecord
	for _, record := range m.records {
		if target != "" && record.Target != target {
			continue
		}
		if !since.IsZero() && record.CheckedAt.Before(since) {
			continue
		}
		copied := *record
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CheckedAt.After(out[j].CheckedAt)
	})
	return out, nil
}

// MemorySnapshotRepository keeps snapshot records in memory.
type MemorySnapshotRepository struct {
	mu      sync.RWMutex
	records []*SnapshotRecord
}

// NewMemorySnapshotRepository creates an empty in-memory snapshot repository.
func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{}
}

func (m *MemorySnapshotRepository) Create(_ context.Context, record *SnapshotRecord) (*SnapshotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *record
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	m.records = append(m.records, &copied)
	out := copied
	return &out, nil
}

func (m *MemorySnapshotRepository) GetBySnapshotID(_ context.Context, snapshotID string) (*SnapshotRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Newest event wins when a snapshot has several lifecycle rows.
	var found *SnapshotRecord
	for _, record := range m.records {
		if record.SnapshotID != snapshotID {
			continue
		}
		if found == nil || record.OccurredAt.After(found.OccurredAt) {
			found = record
		}
	}
	if found == nil {
		return nil, &NotFoundError{Resource: "snapshot", Key: snapshotID}
	}
	copied := *found
	return &copied, nil
}

func (m *MemorySnapshotRepository) List(_ context.Context, since time.Time) ([]*SnapshotRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*SnapshotRecord
	for _, record := range m.records {
		if !since.IsZero() && record.OccurredAt.Before(since) {
			continue
		}
		copied := *record
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out, nil
}
