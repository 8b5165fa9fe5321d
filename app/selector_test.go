package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropwise/adapters/memory"
	"cropwise/models"
)

func newTestSelector(backend *stubBackend) (*FeatureSelector, *CropDataStore, *memory.ActivityRepository) {
	store := NewCropDataStore(backend, nil)
	activity := memory.NewActivityRepository()
	return NewFeatureSelector(store, activity, nil), store, activity
}

func TestSelectCropLoadsStore(t *testing.T) {
	backend := &stubBackend{
		diseaseHistoryFn: func(cropID string) ([]models.DiseaseDetection, error) {
			return []models.DiseaseDetection{newTestDetection("det-1", cropID, "Leaf Rust", 87)}, nil
		},
	}
	selector, store, activity := newTestSelector(backend)

	crop := models.Crop{ID: "crop-1", Name: "Wheat", Zipcode: "560001"}
	require.NoError(t, selector.Select(context.Background(), crop, models.FeatureDisease))

	assert.Equal(t, models.FeatureDisease, selector.ActiveFeature())
	assert.Equal(t, "crop-1", store.CropID())
	assert.Len(t, store.Detections(), 1)

	entries, err := activity.ListByCrop(context.Background(), "crop-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActivityCropSelected, entries[0].Type)
}

func TestFeatureSwitchSameCropDoesNotReload(t *testing.T) {
	backend := &stubBackend{}
	selector, _, _ := newTestSelector(backend)
	crop := models.Crop{ID: "crop-1", Name: "Wheat"}

	require.NoError(t, selector.Select(context.Background(), crop, models.FeatureChat))
	require.NoError(t, selector.Select(context.Background(), crop, models.FeatureDisease))
	require.NoError(t, selector.Select(context.Background(), crop, models.FeatureOverview))

	chatHistory, diseaseHistory, _, _, _, _ := backend.counts()
	assert.Equal(t, 1, chatHistory, "history is fetched once per crop, not per feature switch")
	assert.Equal(t, 1, diseaseHistory)
	assert.Equal(t, models.FeatureOverview, selector.ActiveFeature())
}

func TestCropSwitchClearsAndReloads(t *testing.T) {
	backend := &stubBackend{
		diseaseHistoryFn: func(cropID string) ([]models.DiseaseDetection, error) {
			if cropID == "crop-1" {
				return []models.DiseaseDetection{newTestDetection("det-1", cropID, "Leaf Rust", 87)}, nil
			}
			return nil, nil
		},
	}
	selector, store, _ := newTestSelector(backend)

	require.NoError(t, selector.Select(context.Background(), models.Crop{ID: "crop-1", Name: "Wheat"}, models.FeatureDisease))
	require.Len(t, store.Detections(), 1)

	require.NoError(t, selector.Select(context.Background(), models.Crop{ID: "crop-2", Name: "Rice"}, models.FeatureDisease))
	assert.Equal(t, "crop-2", store.CropID())
	assert.Empty(t, store.Detections(), "previous crop's history must not bleed through")
}

func TestSelectNormalizesUnknownFeature(t *testing.T) {
	selector, _, _ := newTestSelector(&stubBackend{})

	require.NoError(t, selector.Select(context.Background(), models.Crop{ID: "crop-1"}, models.FeatureID("bogus")))
	assert.Equal(t, models.FeatureOverview, selector.ActiveFeature())
}

func TestActiveCropReturnsCopy(t *testing.T) {
	selector, _, _ := newTestSelector(&stubBackend{})
	require.NoError(t, selector.Select(context.Background(), models.Crop{ID: "crop-1", Name: "Wheat"}, models.FeatureOverview))

	crop := selector.ActiveCrop()
	require.NotNil(t, crop)
	crop.Name = "mutated"
	assert.Equal(t, "Wheat", selector.ActiveCrop().Name)
}
