package app

import (
	"context"

	"github.com/montanaflynn/stats"

	"cropwise/adapters/excel"
	"cropwise/internal"
	"cropwise/models"
	"cropwise/ports"
)

// ReportService computes detection-history statistics for the overview
// feature and exports the history as a spreadsheet
type ReportService struct {
	store    *CropDataStore
	activity ports.ActivityRepository
	logger   *internal.Logger
}

// NewReportService creates a report service over the store's detections
func NewReportService(store *CropDataStore, activity ports.ActivityRepository, logger *internal.Logger) *ReportService {
	return &ReportService{
		store:    store,
		activity: activity,
		logger:   logger,
	}
}

// Summarize computes descriptive statistics over the active crop's
// detection history
func (s *ReportService) Summarize() models.DetectionSummary {
	detections := s.store.Detections()
	summary := models.DetectionSummary{
		CropID:         s.store.CropID(),
		Count:          len(detections),
		SeverityCounts: make(map[string]int),
	}
	if len(detections) == 0 {
		return summary
	}

	confidences := make([]float64, len(detections))
	for i, d := range detections {
		confidences[i] = float64(d.Confidence)
		summary.SeverityCounts[d.Severity]++
	}

	// stats errors only on empty input, which is handled above
	summary.MeanConfidence, _ = stats.Mean(confidences)
	summary.MedianConfidence, _ = stats.Median(confidences)
	summary.MinConfidence, _ = stats.Min(confidences)
	summary.MaxConfidence, _ = stats.Max(confidences)
	return summary
}

// ExportHistory renders the active crop's detection history and summary as
// an xlsx workbook
func (s *ReportService) ExportHistory(ctx context.Context) ([]byte, error) {
	cropID := s.store.CropID()
	data, err := excel.BuildDetectionReport(cropID, s.store.Detections(), s.Summarize())
	if err != nil {
		return nil, err
	}

	if s.activity != nil {
		entry := models.NewActivityEntry(cropID, models.ActivityReportExported, "disease history")
		if aerr := s.activity.Append(ctx, entry); aerr != nil {
			s.logger.Warn("activity log append failed: %v", aerr)
		}
	}
	return data, nil
}
