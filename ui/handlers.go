package ui

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"

	"cropwise/internal/errors"
	"cropwise/models"
)

// selectCropRequest is the body of POST /crops/{cropID}/select
type selectCropRequest struct {
	Name    string `json:"name"`
	Variety string `json:"variety"`
	Zipcode string `json:"zipcode"`
	Feature string `json:"feature"`
}

// sendMessageRequest is the body of the chat endpoints
type sendMessageRequest struct {
	Message string `json:"message"`
}

// submitImageRequest is the body of POST /disease/analyses
type submitImageRequest struct {
	Image string `json:"image"` // base64-encoded
}

func (s *Server) handleSelectCrop(w http.ResponseWriter, r *http.Request) {
	var req selectCropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.InvalidInput("invalid request body"))
		return
	}

	crop := models.Crop{
		ID:      chi.URLParam(r, "cropID"),
		Name:    req.Name,
		Variety: req.Variety,
		Zipcode: req.Zipcode,
	}
	if err := s.selector.Select(r.Context(), crop, models.FeatureID(req.Feature)); err != nil {
		s.respondError(w, err)
		return
	}
	s.handleState(w, r)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state := map[string]interface{}{
		"crop":    s.selector.ActiveCrop(),
		"feature": s.selector.ActiveFeature(),
		"view":    s.workflow.View(),
	}
	s.respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.reports.Summarize())
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	crop := s.selector.ActiveCrop()
	if crop == nil {
		s.respondError(w, errors.InvalidInput("no crop is selected"))
		return
	}
	entries, err := s.activity.ListByCrop(r.Context(), crop.ID, 50)
	if err != nil {
		s.respondError(w, errors.Wrap(err, "activity list failed"))
		return
	}
	s.respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	data, err := s.reports.ExportHistory(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="disease-history.xlsx"`)
	w.Write(data)
}

func (s *Server) handleCropChatLog(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.chat.Messages())
}

func (s *Server) handleCropChatSend(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		s.respondError(w, errors.InvalidInput("message is required"))
		return
	}

	// A failed round-trip still appends the fallback assistant message, so
	// the updated log renders either way.
	reply, err := s.chat.SendMessage(r.Context(), req.Message)
	if err != nil && errors.GetCode(err) == errors.CodeSendInFlight {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, reply)
}

func (s *Server) handleListDetections(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.workflow.Detections())
}

func (s *Server) handleSubmitImage(w http.ResponseWriter, r *http.Request) {
	var req submitImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.InvalidInput("invalid request body"))
		return
	}
	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		s.respondError(w, errors.InvalidInput("image must be base64-encoded"))
		return
	}

	crop := s.selector.ActiveCrop()
	if crop == nil {
		s.respondError(w, errors.InvalidInput("no crop is selected"))
		return
	}

	detection, err := s.workflow.SubmitImage(r.Context(), image, crop.ID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, detection)
}

func (s *Server) handleStartNewAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := s.workflow.StartNewAnalysis(); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"view": string(models.ViewUpload)})
}

func (s *Server) handleBackToHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.workflow.BackToHistory(); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"view": string(models.ViewHistory)})
}

func (s *Server) handleSelectDetection(w http.ResponseWriter, r *http.Request) {
	if err := s.workflow.SelectDetection(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"view": string(models.ViewResult)})
}

func (s *Server) handleDeleteDetection(w http.ResponseWriter, r *http.Request) {
	if err := s.workflow.DeleteDetection(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDetectionChatLog(w http.ResponseWriter, r *http.Request) {
	thread := s.workflow.DetectionThread(chi.URLParam(r, "id"))
	if thread == nil {
		s.respondJSON(w, http.StatusOK, []models.ChatMessage{})
		return
	}
	s.respondJSON(w, http.StatusOK, thread.Messages())
}

func (s *Server) handleDetectionChatSend(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		s.respondError(w, errors.InvalidInput("message is required"))
		return
	}

	reply, err := s.workflow.SendDetectionMessage(r.Context(), chi.URLParam(r, "id"), req.Message)
	if err != nil {
		code := errors.GetCode(err)
		if code == errors.CodeSendInFlight || code == errors.CodeNotFound {
			s.respondError(w, err)
			return
		}
	}
	s.respondJSON(w, http.StatusOK, reply)
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	kind := models.RecommendationKind(chi.URLParam(r, "kind"))

	// Fetch failures degrade silently to the placeholder; the user did not
	// explicitly wait on this text.
	text, err := s.cache.Get(r.Context(), chi.URLParam(r, "id"), kind)
	if err != nil && errors.GetCode(err) == errors.CodeInvalidInput {
		s.respondError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(markdown.ToHTML([]byte(text), nil, nil))
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"kind": string(kind), "text": text})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encoding failed: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeInvalidTransition:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeSendInFlight:
		status = http.StatusConflict
	case errors.CodeBackendError, errors.CodeAnalysisFailed:
		status = http.StatusBadGateway
	}
	s.respondJSON(w, status, map[string]string{
		"code":  errors.GetCode(err),
		"error": err.Error(),
	})
}
