package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"cropwise/internal"
	"cropwise/internal/errors"
	"cropwise/models"
	"cropwise/ports"
)

// recommendationPrompts are the synthetic disease-chat prompts used to fill
// the two lazily-fetched text blocks
var recommendationPrompts = map[models.RecommendationKind]string{
	models.KindPrecautions: "What are the precautions for this disease? Answer concisely for a farmer.",
	models.KindTreatment:   "What is the recommended treatment for this disease? Answer concisely for a farmer.",
}

// RecommendationCache memoizes the per-detection precautions and treatment
// text. Each field is fetched at most once per detection unless explicitly
// invalidated; concurrent requests for the same (detection, kind) pair are
// collapsed into a single in-flight call.
type RecommendationCache struct {
	store   *CropDataStore
	backend ports.BackendClient
	logger  *internal.Logger
	group   singleflight.Group
}

// NewRecommendationCache creates a cache bound to the store's detections
func NewRecommendationCache(store *CropDataStore, backend ports.BackendClient, logger *internal.Logger) *RecommendationCache {
	return &RecommendationCache{
		store:   store,
		backend: backend,
		logger:  logger,
	}
}

// Get resolves recommendation text for a detection. Already-populated fields
// resolve from the in-memory record without any network call. On fetch
// failure the field stays unpopulated (a later Get retries) and the
// "no data available" placeholder is returned alongside the error.
func (c *RecommendationCache) Get(ctx context.Context, detectionID string, kind models.RecommendationKind) (string, error) {
	if !kind.Valid() {
		return "", errors.InvalidInput(fmt.Sprintf("unknown recommendation kind %q", kind))
	}

	if d, ok := c.store.DetectionByID(detectionID); ok {
		if text, populated := d.Recommendation(kind); populated {
			return text, nil
		}
	}

	key := detectionID + ":" + string(kind)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A caller that queued behind the winner may find the field already
		// populated; the double check keeps the fetch-at-most-once contract.
		if d, ok := c.store.DetectionByID(detectionID); ok {
			if text, populated := d.Recommendation(kind); populated {
				return text, nil
			}
		}

		text, fetchErr := c.backend.DiseaseChat(ctx, detectionID, recommendationPrompts[kind])
		if fetchErr != nil {
			return nil, fetchErr
		}
		if text == "" {
			text = models.NoDataPlaceholder
		}

		// Write back before resolving; a false return means the detection is
		// gone (crop switched or record deleted) and the text is dropped.
		if !c.store.SetRecommendation(detectionID, kind, text) {
			c.logger.Debug("recommendation for %s/%s resolved after context changed; discarded", detectionID, kind)
		}
		return text, nil
	})
	if err != nil {
		c.logger.Warn("%s fetch failed for detection %s: %v", kind, detectionID, err)
		return models.NoDataPlaceholder, errors.BackendError(string(kind)+" fetch", err)
	}
	return v.(string), nil
}

// Invalidate clears a populated field so the next Get fetches it again
func (c *RecommendationCache) Invalidate(detectionID string, kind models.RecommendationKind) {
	c.store.InvalidateRecommendation(detectionID, kind)
}
