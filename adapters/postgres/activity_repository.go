package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"cropwise/models"
	"cropwise/ports"
)

// ActivityRepositoryImpl implements ActivityRepository for PostgreSQL
type ActivityRepositoryImpl struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new PostgreSQL activity repository
func NewActivityRepository(db *sqlx.DB) ports.ActivityRepository {
	return &ActivityRepositoryImpl{db: db}
}

// EnsureSchema creates the activity table if it does not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS crop_activity (
			id UUID PRIMARY KEY,
			crop_id TEXT NOT NULL,
			type TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_crop_activity_crop ON crop_activity (crop_id, created_at DESC);
	`)
	return err
}

// Append records one activity entry
func (r *ActivityRepositoryImpl) Append(ctx context.Context, entry models.ActivityEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO crop_activity (id, crop_id, type, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.CropID, entry.Type, entry.Detail, entry.CreatedAt)
	return err
}

// ListByCrop returns a crop's entries newest first
func (r *ActivityRepositoryImpl) ListByCrop(ctx context.Context, cropID string, limit int) ([]models.ActivityEntry, error) {
	query := `
		SELECT id, crop_id, type, detail, created_at
		FROM crop_activity
		WHERE crop_id = $1
		ORDER BY created_at DESC
	`
	var entries []models.ActivityEntry
	var err error
	if limit > 0 {
		err = r.db.SelectContext(ctx, &entries, query+" LIMIT $2", cropID, limit)
	} else {
		err = r.db.SelectContext(ctx, &entries, query, cropID)
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Clear removes all entries for a crop
func (r *ActivityRepositoryImpl) Clear(ctx context.Context, cropID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM crop_activity WHERE crop_id = $1`, cropID)
	return err
}
