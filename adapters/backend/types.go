package backend

import (
	"strings"
	"time"

	"cropwise/models"
)

// Tagged response types per endpoint. The backend's shapes are validated and
// defaulted here, at the boundary, so call sites can trust the models.

// chatHistoryRecord is one persisted exchange on the crop chat endpoint.
// Each record expands into two thread messages (user, assistant).
type chatHistoryRecord struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Response  string `json:"response"`
	CreatedAt string `json:"created_at"`
}

// diseaseRecord is one row of GET crops/{id}/disease-history
type diseaseRecord struct {
	ID          string  `json:"id"`
	DiseaseName string  `json:"disease_name"`
	Confidence  int     `json:"confidence"`
	Severity    string  `json:"severity"`
	DetectedAt  string  `json:"detected_at"`
	Cause       string  `json:"cause,omitempty"`
	Precautions *string `json:"precautions,omitempty"`
	Treatment   *string `json:"treatment,omitempty"`
}

// analysisRequest is the POST disease-analysis payload
type analysisRequest struct {
	CropID string `json:"crop_id"`
	Image  string `json:"image"` // base64-encoded
}

// analysisResponse is the POST disease-analysis result
type analysisResponse struct {
	DetectionID string `json:"detection_id"`
	DiseaseName string `json:"disease_name"`
	Cause       string `json:"cause"`
	Confidence  int    `json:"confidence"`
	Severity    string `json:"severity"`
	DetectedAt  string `json:"detected_at"`
}

// diseaseChatRequest is the POST disease-chat payload
type diseaseChatRequest struct {
	DetectionID string `json:"detection_id"`
	Message     string `json:"message"`
}

// diseaseChatResponse is the POST disease-chat result
type diseaseChatResponse struct {
	Response string `json:"response"`
}

// cropChatRequest is the POST crop-chat payload
type cropChatRequest struct {
	CropID  string `json:"crop_id"`
	Message string `json:"message"`
}

// cropChatResponse is the POST crop-chat result
type cropChatResponse struct {
	Content string `json:"content"`
}

// parseTimestamp accepts the formats the backend has been observed to emit;
// an unparseable value falls back to now rather than failing the load
func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Now()
}

// defaultText substitutes the placeholder for empty AI text fields
func defaultText(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.NoDataPlaceholder
	}
	return s
}

// toDetection converts a history row into the domain record, clamping
// confidence and dropping empty optional text so it reads as unfetched
func (r diseaseRecord) toDetection(cropID string) models.DiseaseDetection {
	d := models.DiseaseDetection{
		ID:          r.ID,
		CropID:      cropID,
		DiseaseName: defaultText(r.DiseaseName),
		Cause:       r.Cause,
		Confidence:  models.ClampConfidence(r.Confidence),
		Severity:    defaultText(r.Severity),
		DetectedAt:  parseTimestamp(r.DetectedAt),
	}
	if r.Precautions != nil && strings.TrimSpace(*r.Precautions) != "" {
		d.Precautions = r.Precautions
	}
	if r.Treatment != nil && strings.TrimSpace(*r.Treatment) != "" {
		d.Treatment = r.Treatment
	}
	return d
}

// toDetection converts an analysis response into the domain record
func (r analysisResponse) toDetection(cropID string) models.DiseaseDetection {
	return models.DiseaseDetection{
		ID:          r.DetectionID,
		CropID:      cropID,
		DiseaseName: defaultText(r.DiseaseName),
		Cause:       r.Cause,
		Confidence:  models.ClampConfidence(r.Confidence),
		Severity:    defaultText(r.Severity),
		DetectedAt:  parseTimestamp(r.DetectedAt),
	}
}
