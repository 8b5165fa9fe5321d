package app

import (
	"context"
	"fmt"

	"cropwise/internal"
	"cropwise/internal/chat"
	"cropwise/internal/errors"
	"cropwise/models"
	"cropwise/ports"
)

// DiseaseAnalysisWorkflow drives the disease-detection feature through its
// history/upload/analyzing/result views. All view changes go through the
// store's transition table; the analyzing view is transient and exits only
// to result (success) or back to upload (failure).
type DiseaseAnalysisWorkflow struct {
	store    *CropDataStore
	backend  ports.BackendClient
	cache    *RecommendationCache
	activity ports.ActivityRepository
	logger   *internal.Logger
}

// NewDiseaseAnalysisWorkflow wires the workflow to its collaborators
func NewDiseaseAnalysisWorkflow(store *CropDataStore, backend ports.BackendClient, cache *RecommendationCache, activity ports.ActivityRepository, logger *internal.Logger) *DiseaseAnalysisWorkflow {
	return &DiseaseAnalysisWorkflow{
		store:    store,
		backend:  backend,
		cache:    cache,
		activity: activity,
		logger:   logger,
	}
}

// StartNewAnalysis moves from the history view to the upload view
func (w *DiseaseAnalysisWorkflow) StartNewAnalysis() error {
	return w.store.transition(models.ViewUpload)
}

// BackToHistory leaves the result view and clears the current detection
func (w *DiseaseAnalysisWorkflow) BackToHistory() error {
	if err := w.store.transition(models.ViewHistory); err != nil {
		return err
	}
	w.store.setCurrent("")
	return nil
}

// SubmitImage runs one analysis: upload -> analyzing, then on success the
// detection is appended to history, made current, its recommendation cache
// is seeded, its chat thread gets a welcome message and the view moves to
// result. On failure the view returns to upload, the error is surfaced and
// no detection is added. A crop switch mid-analysis discards the result.
func (w *DiseaseAnalysisWorkflow) SubmitImage(ctx context.Context, image []byte, cropID string) (*models.DiseaseDetection, error) {
	if err := w.store.transition(models.ViewAnalyzing); err != nil {
		return nil, err
	}
	epoch := w.store.Epoch()

	detection, err := w.backend.AnalyzeImage(ctx, cropID, image)
	if err != nil {
		if w.store.Epoch() == epoch {
			if terr := w.store.transition(models.ViewUpload); terr != nil {
				w.logger.Error("could not return to upload after failed analysis: %v", terr)
			}
		}
		return nil, errors.Wrap(err, "image analysis failed")
	}

	if err := w.store.appendDetection(epoch, *detection); err != nil {
		return nil, err
	}
	w.store.setCurrent(detection.ID)
	if err := w.store.transition(models.ViewResult); err != nil {
		return nil, err
	}

	w.seedDetectionThread(ctx, detection)
	w.recordActivity(ctx, cropID, models.ActivityDetectionCreated,
		fmt.Sprintf("%s detected with %d%% confidence", detection.DiseaseName, detection.Confidence))

	return detection, nil
}

// seedDetectionThread fetches the two recommendation blocks (seeding the
// cache, so the later on-demand path issues no duplicate call) and composes
// the welcome message from them. If both fetches fail, a static welcome is
// synthesized rather than leaving the thread empty.
func (w *DiseaseAnalysisWorkflow) seedDetectionThread(ctx context.Context, detection *models.DiseaseDetection) {
	thread, _ := w.store.ensureDetectionThread(detection.ID)

	precautions, perr := w.cache.Get(ctx, detection.ID, models.KindPrecautions)
	treatment, terr := w.cache.Get(ctx, detection.ID, models.KindTreatment)

	var welcome string
	if perr != nil && terr != nil {
		welcome = fmt.Sprintf("I detected %s on your crop (%d%% confidence, severity: %s). Ask me anything about this diagnosis.",
			detection.DiseaseName, detection.Confidence, detection.Severity)
	} else {
		welcome = fmt.Sprintf("I detected %s on your crop (%d%% confidence, severity: %s).\n\nPrecautions: %s\n\nTreatment: %s\n\nAsk me anything about this diagnosis.",
			detection.DiseaseName, detection.Confidence, detection.Severity, precautions, treatment)
	}
	thread.Append(models.RoleAssistant, welcome)
}

// SelectDetection opens an existing detection from the history view. A
// thread already built this session is reused verbatim; otherwise a
// contextual welcome is synthesized locally with no network call.
func (w *DiseaseAnalysisWorkflow) SelectDetection(detectionID string) error {
	detection, ok := w.store.DetectionByID(detectionID)
	if !ok {
		return errors.NotFound("detection")
	}
	if err := w.store.transition(models.ViewResult); err != nil {
		return err
	}
	w.store.setCurrent(detectionID)

	thread, created := w.store.ensureDetectionThread(detectionID)
	if created {
		thread.Append(models.RoleAssistant, fmt.Sprintf(
			"This is the record for %s detected on %s with %d%% confidence. Ask me anything about it.",
			detection.DiseaseName, detection.DetectedAt.Format("2006-01-02"), detection.Confidence))
	}
	return nil
}

// DeleteDetection removes a detection from the backend and from local
// history. When the deleted record was the one on screen, the workflow
// returns to the history view.
func (w *DiseaseAnalysisWorkflow) DeleteDetection(ctx context.Context, detectionID string) error {
	detection, ok := w.store.DetectionByID(detectionID)
	if !ok {
		return errors.NotFound("detection")
	}

	if err := w.backend.DeleteDetection(ctx, detectionID); err != nil {
		return errors.Wrap(err, "detection delete failed")
	}

	_, wasCurrent := w.store.removeDetection(detectionID)
	if wasCurrent && w.store.View() == models.ViewResult {
		if err := w.store.transition(models.ViewHistory); err != nil {
			w.logger.Error("could not return to history after delete: %v", err)
		}
	}

	w.recordActivity(ctx, detection.CropID, models.ActivityDetectionDeleted, detection.DiseaseName)
	return nil
}

// SendDetectionMessage sends one conversational turn on a detection's thread
func (w *DiseaseAnalysisWorkflow) SendDetectionMessage(ctx context.Context, detectionID string, text string) (models.ChatMessage, error) {
	if _, ok := w.store.DetectionByID(detectionID); !ok {
		return models.ChatMessage{}, errors.NotFound("detection")
	}
	thread, _ := w.store.ensureDetectionThread(detectionID)

	reply, err := thread.SendAndAwaitReply(ctx, text, func(ctx context.Context, msg string) (string, error) {
		return w.backend.DiseaseChat(ctx, detectionID, msg)
	})
	if err == nil {
		w.recordActivity(ctx, w.store.CropID(), models.ActivityMessageSent, "disease chat")
	}
	return reply, err
}

// View returns the active workflow view
func (w *DiseaseAnalysisWorkflow) View() models.WorkflowView {
	return w.store.View()
}

// Detections returns the crop's detection history
func (w *DiseaseAnalysisWorkflow) Detections() []models.DiseaseDetection {
	return w.store.Detections()
}

// CurrentDetection returns the detection the result view is showing
func (w *DiseaseAnalysisWorkflow) CurrentDetection() (models.DiseaseDetection, bool) {
	return w.store.CurrentDetection()
}

// DetectionThread exposes a detection's chat thread for rendering
func (w *DiseaseAnalysisWorkflow) DetectionThread(detectionID string) *chat.Thread {
	return w.store.detectionThread(detectionID)
}

// recordActivity appends to the activity log best-effort
func (w *DiseaseAnalysisWorkflow) recordActivity(ctx context.Context, cropID string, kind models.ActivityType, detail string) {
	if w.activity == nil {
		return
	}
	if err := w.activity.Append(ctx, models.NewActivityEntry(cropID, kind, detail)); err != nil {
		w.logger.Warn("activity log append failed: %v", err)
	}
}
