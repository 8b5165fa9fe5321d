package app

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"cropwise/internal"
	"cropwise/internal/chat"
	"cropwise/internal/errors"
	"cropwise/models"
	"cropwise/ports"
)

// CropDataStore owns all crop-scoped derived state: the crop chat thread,
// the disease-detection history, per-detection chat threads, the current
// detection and the workflow view. Swapping the active crop discards this
// state entirely; it is reloaded from the backend on next selection.
//
// The epoch counter is the stale-response guard: it increments on every
// Clear, and any async completion that captured an older epoch is discarded
// instead of being applied to another crop's state.
type CropDataStore struct {
	mu      sync.RWMutex
	backend ports.BackendClient
	logger  *internal.Logger

	epoch            uint64
	cropID           string
	chatThread       *chat.Thread
	detections       []models.DiseaseDetection
	detectionThreads map[string]*chat.Thread
	currentID        string
	view             models.WorkflowView
}

// NewCropDataStore creates an empty store
func NewCropDataStore(backend ports.BackendClient, logger *internal.Logger) *CropDataStore {
	return &CropDataStore{
		backend:          backend,
		logger:           logger,
		detectionThreads: make(map[string]*chat.Thread),
		view:             models.ViewHistory,
	}
}

// Epoch returns the current store generation. Callers starting an async
// operation capture it and pass it back to the epoch-checked mutators.
func (s *CropDataStore) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Clear synchronously resets every slice of crop-scoped state to its empty
// default and returns the workflow to the history view. Must run before a
// new Load so no stale data from the previous crop can flicker through.
func (s *CropDataStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.cropID = ""
	s.chatThread = nil
	s.detections = nil
	s.detectionThreads = make(map[string]*chat.Thread)
	s.currentID = ""
	s.view = models.ViewHistory
}

// Load fetches the crop's chat history and disease history concurrently.
// The two slices fail independently: a failed fetch leaves that slice at its
// empty default and never aborts the other. A crop switch while the fetches
// are in flight discards the results.
func (s *CropDataStore) Load(ctx context.Context, cropID string) error {
	s.mu.Lock()
	s.cropID = cropID
	s.chatThread = chat.NewThread(cropID)
	epoch := s.epoch
	s.mu.Unlock()

	var (
		history []models.ChatMessage
		chatErr error

		detections []models.DiseaseDetection
		detErr     error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		history, chatErr = s.backend.FetchChatHistory(gctx, cropID)
		return nil
	})
	g.Go(func() error {
		detections, detErr = s.backend.FetchDiseaseHistory(gctx, cropID)
		return nil
	})
	g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return errors.StaleContext("crop changed while loading; results discarded")
	}

	if chatErr != nil {
		s.logger.Warn("chat history load failed for crop %s: %v", cropID, chatErr)
	} else {
		for _, msg := range history {
			s.chatThread.AppendAt(msg.Role, msg.Text, msg.CreatedAt)
		}
	}

	if detErr != nil {
		s.logger.Warn("disease history load failed for crop %s: %v", cropID, detErr)
	} else {
		s.detections = detections
	}

	return nil
}

// CropID returns the active crop id, empty when no crop is loaded
func (s *CropDataStore) CropID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cropID
}

// View returns the active workflow view
func (s *CropDataStore) View() models.WorkflowView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// transition moves the workflow to the target view, rejecting edges the
// transition table does not allow
func (s *CropDataStore) transition(to models.WorkflowView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !models.CanTransition(s.view, to) {
		return errors.InvalidTransition(string(s.view), string(to))
	}
	s.view = to
	return nil
}

// Chat returns the crop's general chat thread, nil before the first Load
func (s *CropDataStore) Chat() *chat.Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chatThread
}

// Detections returns a copy of the detection history
func (s *CropDataStore) Detections() []models.DiseaseDetection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DiseaseDetection, len(s.detections))
	copy(out, s.detections)
	return out
}

// DetectionByID returns a copy of one detection record
func (s *CropDataStore) DetectionByID(id string) (models.DiseaseDetection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.detections {
		if d.ID == id {
			return d, true
		}
	}
	return models.DiseaseDetection{}, false
}

// CurrentDetection returns the detection the result view is showing
func (s *CropDataStore) CurrentDetection() (models.DiseaseDetection, bool) {
	s.mu.RLock()
	id := s.currentID
	s.mu.RUnlock()
	if id == "" {
		return models.DiseaseDetection{}, false
	}
	return s.DetectionByID(id)
}

// appendDetection adds a freshly analyzed detection to the history, but only
// while the captured epoch is still current
func (s *CropDataStore) appendDetection(epoch uint64, d models.DiseaseDetection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return errors.StaleContext("crop changed during analysis; detection discarded")
	}
	s.detections = append(s.detections, d)
	return nil
}

// setCurrent marks a detection as the one the result view shows
func (s *CropDataStore) setCurrent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = id
}

// removeDetection deletes a detection and its chat thread from local state.
// Reports whether it was present and whether it was the current one.
func (s *CropDataStore) removeDetection(id string) (found, wasCurrent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.detections {
		if d.ID == id {
			s.detections = append(s.detections[:i], s.detections[i+1:]...)
			found = true
			break
		}
	}
	delete(s.detectionThreads, id)
	if s.currentID == id {
		s.currentID = ""
		wasCurrent = true
	}
	return found, wasCurrent
}

// SetRecommendation writes fetched recommendation text onto the detection
// record. Returns false when the detection is no longer present (the crop
// was switched or the record deleted), in which case the text is discarded.
func (s *CropDataStore) SetRecommendation(id string, kind models.RecommendationKind, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.detections {
		if s.detections[i].ID == id {
			s.detections[i].SetRecommendation(kind, text)
			return true
		}
	}
	return false
}

// InvalidateRecommendation clears a populated field so the next Get fetches
// it again
func (s *CropDataStore) InvalidateRecommendation(id string, kind models.RecommendationKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.detections {
		if s.detections[i].ID == id {
			switch kind {
			case models.KindPrecautions:
				s.detections[i].Precautions = nil
			case models.KindTreatment:
				s.detections[i].Treatment = nil
			}
			return
		}
	}
}

// detectionThread returns the per-detection chat thread, nil when none has
// been created this session
func (s *CropDataStore) detectionThread(id string) *chat.Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detectionThreads[id]
}

// ensureDetectionThread returns the detection's thread, creating it when the
// detection has not been chatted with this session
func (s *CropDataStore) ensureDetectionThread(id string) (thread *chat.Thread, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.detectionThreads[id]; ok {
		return t, false
	}
	t := chat.NewThread(id)
	s.detectionThreads[id] = t
	return t, true
}
