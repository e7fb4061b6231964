package backup

import (
	"context"
	"fmt"
	"os"
)

// Prune applies the retention policy: a snapshot survives when it sits within
// the KeepLast newest, is younger than MaxAge, or was the base of a restore
// earlier in this process. Zero options keep everything.
func (s *service) Prune(ctx context.Context, opts PruneOptions) (*PruneResult, error) {
	snapshots, err := s.List(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}

	result := &PruneResult{DryRun: opts.DryRun}
	if opts.KeepLast <= 0 && opts.MaxAge <= 0 {
		result.Kept = len(snapshots)
		return result, nil
	}

	cutoff := s.now().UTC().Add(-opts.MaxAge)
	for i, snapshot := range snapshots {
		keep := false
		switch {
		case opts.KeepLast > 0 && i < opts.KeepLast:
			keep = true
		case opts.MaxAge > 0 && snapshot.CreatedAt.After(cutoff):
			keep = true
		case snapshot.ID == s.lastRestored:
			keep = true
		}
		if keep {
			result.Kept++
			continue
		}

		result.Removed = append(result.Removed, snapshot.ID)
		result.BytesFreed += snapshot.TotalSize
		if opts.DryRun {
			continue
		}
		if err := os.RemoveAll(snapshot.Path); err != nil {
			return nil, fmt.Errorf("backup: prune %s: %w", snapshot.ID, err)
		}
		s.logger.Info("backup: snapshot pruned", "snapshot", snapshot.ID)
		s.recordEvent(ctx, SnapshotEvent{
			SnapshotID: snapshot.ID,
			Action:     "prune",
			TotalSize:  snapshot.TotalSize,
			OccurredAt: s.now().UTC(),
		})
	}
	return result, nil
}
