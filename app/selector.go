package app

import (
	"context"
	"sync"

	"cropwise/internal"
	"cropwise/models"
	"cropwise/ports"
)

// FeatureSelector maps the user's (crop, feature) choice onto the store.
// A crop-id change clears then reloads all crop-scoped state; a feature-id
// change alone only switches the rendered feature and never refetches.
type FeatureSelector struct {
	mu       sync.Mutex
	store    *CropDataStore
	activity ports.ActivityRepository
	logger   *internal.Logger

	crop    *models.Crop
	feature models.FeatureID
}

// NewFeatureSelector creates a selector with no active crop
func NewFeatureSelector(store *CropDataStore, activity ports.ActivityRepository, logger *internal.Logger) *FeatureSelector {
	return &FeatureSelector{
		store:    store,
		activity: activity,
		logger:   logger,
		feature:  models.FeatureOverview,
	}
}

// Select activates a feature for a crop. When no feature is specified the
// non-interactive overview is shown.
func (fs *FeatureSelector) Select(ctx context.Context, crop models.Crop, feature models.FeatureID) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	cropChanged := fs.crop == nil || fs.crop.ID != crop.ID
	fs.crop = &crop
	fs.feature = feature.Normalize()

	if !cropChanged {
		return nil
	}

	fs.store.Clear()
	if err := fs.store.Load(ctx, crop.ID); err != nil {
		return err
	}

	if fs.activity != nil {
		entry := models.NewActivityEntry(crop.ID, models.ActivityCropSelected, crop.Name)
		if err := fs.activity.Append(ctx, entry); err != nil {
			fs.logger.Warn("activity log append failed: %v", err)
		}
	}
	return nil
}

// ActiveCrop returns the currently selected crop, nil when none
func (fs *FeatureSelector) ActiveCrop() *models.Crop {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.crop == nil {
		return nil
	}
	crop := *fs.crop
	return &crop
}

// ActiveFeature returns the currently rendered feature
func (fs *FeatureSelector) ActiveFeature() models.FeatureID {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.feature
}
