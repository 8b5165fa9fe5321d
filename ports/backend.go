package ports

import (
	"context"

	"cropwise/models"
)

// BackendClient defines the farm-management backend collaborator contract.
// Every call is a suspension point; implementations carry the bearer
// credential and a bounded timeout, and validate/default response fields at
// the boundary (confidence clamping, empty-string fallbacks).
type BackendClient interface {
	// FetchChatHistory returns the crop's general chat log, each backend
	// record expanded into a user+assistant message pair, ordered by
	// created_at ascending
	FetchChatHistory(ctx context.Context, cropID string) ([]models.ChatMessage, error)

	// FetchDiseaseHistory returns the crop's persisted disease detections
	FetchDiseaseHistory(ctx context.Context, cropID string) ([]models.DiseaseDetection, error)

	// AnalyzeImage submits an image for AI disease analysis and returns the
	// resulting detection record
	AnalyzeImage(ctx context.Context, cropID string, image []byte) (*models.DiseaseDetection, error)

	// DiseaseChat sends one conversational turn scoped to a detection.
	// Also used for the synthetic precautions/treatment prompts.
	DiseaseChat(ctx context.Context, detectionID string, message string) (string, error)

	// DeleteDetection removes a detection record from the backend
	DeleteDetection(ctx context.Context, detectionID string) error

	// CropChat sends one conversational turn scoped to a crop
	CropChat(ctx context.Context, cropID string, message string) (string, error)
}
