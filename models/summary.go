package models

// DetectionSummary holds descriptive statistics over a crop's detection
// history, shown on the overview feature and embedded in exported reports
type DetectionSummary struct {
	CropID           string         `json:"crop_id"`
	Count            int            `json:"count"`
	MeanConfidence   float64        `json:"mean_confidence"`
	MedianConfidence float64        `json:"median_confidence"`
	MinConfidence    float64        `json:"min_confidence"`
	MaxConfidence    float64        `json:"max_confidence"`
	SeverityCounts   map[string]int `json:"severity_counts"`
}
