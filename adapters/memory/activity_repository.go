package memory

import (
	"context"
	"sync"

	"cropwise/models"
	"cropwise/ports"
)

// ActivityRepository is the in-memory activity log used by tests and by
// deployments without a database
type ActivityRepository struct {
	mu      sync.RWMutex
	entries []models.ActivityEntry
}

// NewActivityRepository creates an empty in-memory activity log
func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{}
}

var _ ports.ActivityRepository = (*ActivityRepository)(nil)

// Append records one activity entry
func (r *ActivityRepository) Append(ctx context.Context, entry models.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// ListByCrop returns a crop's entries newest first
func (r *ActivityRepository) ListByCrop(ctx context.Context, cropID string, limit int) ([]models.ActivityEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.ActivityEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].CropID != cropID {
			continue
		}
		out = append(out, r.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Clear removes all entries for a crop
func (r *ActivityRepository) Clear(ctx context.Context, cropID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.CropID != cropID {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}
