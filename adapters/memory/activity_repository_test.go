package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropwise/models"
)

func TestListByCropNewestFirstWithLimit(t *testing.T) {
	repo := NewActivityRepository()
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, models.NewActivityEntry("crop-1", models.ActivityCropSelected, "Wheat")))
	require.NoError(t, repo.Append(ctx, models.NewActivityEntry("crop-2", models.ActivityCropSelected, "Rice")))
	require.NoError(t, repo.Append(ctx, models.NewActivityEntry("crop-1", models.ActivityDetectionCreated, "Leaf Rust")))
	require.NoError(t, repo.Append(ctx, models.NewActivityEntry("crop-1", models.ActivityMessageSent, "disease chat")))

	entries, err := repo.ListByCrop(ctx, "crop-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, models.ActivityMessageSent, entries[0].Type, "newest entry comes first")
	assert.Equal(t, models.ActivityCropSelected, entries[2].Type)

	limited, err := repo.ListByCrop(ctx, "crop-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestClearRemovesOnlyTargetCrop(t *testing.T) {
	repo := NewActivityRepository()
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, models.NewActivityEntry("crop-1", models.ActivityCropSelected, "Wheat")))
	require.NoError(t, repo.Append(ctx, models.NewActivityEntry("crop-2", models.ActivityCropSelected, "Rice")))

	require.NoError(t, repo.Clear(ctx, "crop-1"))

	gone, err := repo.ListByCrop(ctx, "crop-1", 0)
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := repo.ListByCrop(ctx, "crop-2", 0)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
