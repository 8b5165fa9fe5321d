package models

import "time"

// NoDataPlaceholder is the user-visible fallback for recommendation text the
// backend failed to provide
const NoDataPlaceholder = "No data available"

// RecommendationKind selects one of the two lazily-fetched AI text blocks on
// a detection record
type RecommendationKind string

const (
	KindPrecautions RecommendationKind = "precautions"
	KindTreatment   RecommendationKind = "treatment"
)

// Valid reports whether the kind is one of the two known recommendation kinds
func (k RecommendationKind) Valid() bool {
	return k == KindPrecautions || k == KindTreatment
}

// DiseaseDetection is one disease-analysis result tied to an uploaded image
// and a crop. It is never mutated after creation except to fill in the
// Precautions/Treatment fields once fetched; nil means not yet fetched.
type DiseaseDetection struct {
	ID          string    `json:"id"`
	CropID      string    `json:"crop_id"`
	DiseaseName string    `json:"disease_name"`
	Cause       string    `json:"cause"`
	Confidence  int       `json:"confidence"` // integer percentage, clamped to [0,100]
	Severity    string    `json:"severity"`
	DetectedAt  time.Time `json:"detected_at"`
	Precautions *string   `json:"precautions,omitempty"`
	Treatment   *string   `json:"treatment,omitempty"`
	SourceImage string    `json:"source_image,omitempty"`
}

// Recommendation returns the stored text for the given kind, or ("", false)
// when that field has not been fetched yet
func (d *DiseaseDetection) Recommendation(kind RecommendationKind) (string, bool) {
	var field *string
	switch kind {
	case KindPrecautions:
		field = d.Precautions
	case KindTreatment:
		field = d.Treatment
	}
	if field == nil {
		return "", false
	}
	return *field, true
}

// SetRecommendation fills in the field for the given kind
func (d *DiseaseDetection) SetRecommendation(kind RecommendationKind, text string) {
	switch kind {
	case KindPrecautions:
		d.Precautions = &text
	case KindTreatment:
		d.Treatment = &text
	}
}

// ClampConfidence forces an externally-reported confidence percentage into
// [0,100]. The value comes from an external model and cannot be trusted.
func ClampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
