package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropwise/adapters/memory"
	"cropwise/models"
)

func newTestReportService(detections ...models.DiseaseDetection) (*ReportService, *memory.ActivityRepository) {
	store := newTestStore(&stubBackend{}, detections...)
	activity := memory.NewActivityRepository()
	return NewReportService(store, activity, nil), activity
}

func TestSummarizeComputesStatistics(t *testing.T) {
	d1 := newTestDetection("det-1", "crop-1", "Leaf Rust", 60)
	d1.Severity = "high"
	d2 := newTestDetection("det-2", "crop-1", "Blight", 80)
	d2.Severity = "medium"
	d3 := newTestDetection("det-3", "crop-1", "Mildew", 100)
	d3.Severity = "high"
	svc, _ := newTestReportService(d1, d2, d3)

	summary := svc.Summarize()
	assert.Equal(t, "crop-1", summary.CropID)
	assert.Equal(t, 3, summary.Count)
	assert.InDelta(t, 80.0, summary.MeanConfidence, 0.001)
	assert.InDelta(t, 80.0, summary.MedianConfidence, 0.001)
	assert.InDelta(t, 60.0, summary.MinConfidence, 0.001)
	assert.InDelta(t, 100.0, summary.MaxConfidence, 0.001)
	assert.Equal(t, 2, summary.SeverityCounts["high"])
	assert.Equal(t, 1, summary.SeverityCounts["medium"])
}

func TestSummarizeEmptyHistory(t *testing.T) {
	svc, _ := newTestReportService()

	summary := svc.Summarize()
	assert.Zero(t, summary.Count)
	assert.Zero(t, summary.MeanConfidence)
	assert.Empty(t, summary.SeverityCounts)
}

func TestExportHistoryProducesWorkbook(t *testing.T) {
	svc, activity := newTestReportService(newTestDetection("det-1", "crop-1", "Leaf Rust", 87))

	data, err := svc.ExportHistory(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	// xlsx files are zip archives
	assert.Equal(t, []byte("PK"), data[:2])

	entries, err := activity.ListByCrop(context.Background(), "crop-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActivityReportExported, entries[0].Type)
}
