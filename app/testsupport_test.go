package app

import (
	"context"
	"sync"
	"time"

	"cropwise/models"
	"cropwise/ports"
)

// stubBackend is a function-field test double for ports.BackendClient with
// per-endpoint call counters
type stubBackend struct {
	mu sync.Mutex

	chatHistoryFn    func(cropID string) ([]models.ChatMessage, error)
	diseaseHistoryFn func(cropID string) ([]models.DiseaseDetection, error)
	analyzeFn        func(cropID string, image []byte) (*models.DiseaseDetection, error)
	diseaseChatFn    func(detectionID, message string) (string, error)
	deleteFn         func(detectionID string) error
	cropChatFn       func(cropID, message string) (string, error)

	chatHistoryCalls    int
	diseaseHistoryCalls int
	analyzeCalls        int
	diseaseChatCalls    int
	deleteCalls         int
	cropChatCalls       int
}

var _ ports.BackendClient = (*stubBackend)(nil)

func (b *stubBackend) FetchChatHistory(ctx context.Context, cropID string) ([]models.ChatMessage, error) {
	b.mu.Lock()
	b.chatHistoryCalls++
	fn := b.chatHistoryFn
	b.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(cropID)
}

func (b *stubBackend) FetchDiseaseHistory(ctx context.Context, cropID string) ([]models.DiseaseDetection, error) {
	b.mu.Lock()
	b.diseaseHistoryCalls++
	fn := b.diseaseHistoryFn
	b.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(cropID)
}

func (b *stubBackend) AnalyzeImage(ctx context.Context, cropID string, image []byte) (*models.DiseaseDetection, error) {
	b.mu.Lock()
	b.analyzeCalls++
	fn := b.analyzeFn
	b.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(cropID, image)
}

func (b *stubBackend) DiseaseChat(ctx context.Context, detectionID string, message string) (string, error) {
	b.mu.Lock()
	b.diseaseChatCalls++
	fn := b.diseaseChatFn
	b.mu.Unlock()
	if fn == nil {
		return "stub response", nil
	}
	return fn(detectionID, message)
}

func (b *stubBackend) DeleteDetection(ctx context.Context, detectionID string) error {
	b.mu.Lock()
	b.deleteCalls++
	fn := b.deleteFn
	b.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(detectionID)
}

func (b *stubBackend) CropChat(ctx context.Context, cropID string, message string) (string, error) {
	b.mu.Lock()
	b.cropChatCalls++
	fn := b.cropChatFn
	b.mu.Unlock()
	if fn == nil {
		return "stub content", nil
	}
	return fn(cropID, message)
}

func (b *stubBackend) counts() (chatHistory, diseaseHistory, analyze, diseaseChat, deletes, cropChat int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chatHistoryCalls, b.diseaseHistoryCalls, b.analyzeCalls, b.diseaseChatCalls, b.deleteCalls, b.cropChatCalls
}

// newTestDetection builds a detection record for tests
func newTestDetection(id, cropID, disease string, confidence int) models.DiseaseDetection {
	return models.DiseaseDetection{
		ID:          id,
		CropID:      cropID,
		DiseaseName: disease,
		Cause:       "fungal infection",
		Confidence:  confidence,
		Severity:    "moderate",
		DetectedAt:  time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC),
	}
}

// newTestStore builds a store preloaded with the given detections
func newTestStore(backend *stubBackend, detections ...models.DiseaseDetection) *CropDataStore {
	store := NewCropDataStore(backend, nil)
	backend.mu.Lock()
	backend.diseaseHistoryFn = func(cropID string) ([]models.DiseaseDetection, error) {
		return detections, nil
	}
	backend.mu.Unlock()
	if err := store.Load(context.Background(), "crop-1"); err != nil {
		panic(err)
	}
	return store
}
