package models

// Crop is a reference to an externally-owned crop record. The orchestration
// core never mutates crop attributes; it only rebuilds derived state when the
// referenced crop id changes.
type Crop struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Variety       string    `json:"variety" db:"variety"`
	Zipcode       string    `json:"zipcode" db:"zipcode"`
	ActiveFeature FeatureID `json:"active_feature,omitempty"`
}

// FeatureID identifies a crop-scoped feature the user can activate
type FeatureID string

const (
	// FeatureOverview is the default non-interactive feature showing static
	// crop attributes plus the detection summary
	FeatureOverview FeatureID = "overview"

	// FeatureChat is the general per-crop AI chat
	FeatureChat FeatureID = "chat"

	// FeatureDisease is the disease-detection workflow
	FeatureDisease FeatureID = "disease-detection"
)

// Normalize maps an empty or unknown feature id to the overview feature
func (f FeatureID) Normalize() FeatureID {
	switch f {
	case FeatureChat, FeatureDisease, FeatureOverview:
		return f
	default:
		return FeatureOverview
	}
}
