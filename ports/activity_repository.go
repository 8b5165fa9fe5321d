package ports

import (
	"context"

	"cropwise/models"
)

// ActivityRepository defines the interface for the per-crop activity log.
// The storage backend is injected: in-memory for tests and development,
// postgres in production.
type ActivityRepository interface {
	// Append records one activity entry
	Append(ctx context.Context, entry models.ActivityEntry) error

	// ListByCrop returns a crop's entries ordered by created_at descending,
	// newest first, optionally limited (0 = no limit)
	ListByCrop(ctx context.Context, cropID string, limit int) ([]models.ActivityEntry, error)

	// Clear removes all entries for a crop
	Clear(ctx context.Context, cropID string) error
}
