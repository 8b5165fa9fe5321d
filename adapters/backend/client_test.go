package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cropwise/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, Token: "test-token", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return client
}

func TestFetchChatHistoryExpandsPairs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crops/crop-1/chat-history", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]chatHistoryRecord{
			{ID: "1", Message: "how is my wheat?", Response: "Looking healthy.", CreatedAt: "2026-08-01T10:00:00Z"},
			{ID: "2", Message: "any pests?", Response: "None detected.", CreatedAt: "2026-08-02T10:00:00Z"},
		})
	})

	messages, err := client.FetchChatHistory(context.Background(), "crop-1")
	require.NoError(t, err)
	require.Len(t, messages, 4, "each stored exchange expands into a user and an assistant message")

	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, "how is my wheat?", messages[0].Text)
	assert.Equal(t, models.RoleAssistant, messages[1].Role)
	assert.Equal(t, "Looking healthy.", messages[1].Text)
	assert.Equal(t, messages[0].CreatedAt, messages[1].CreatedAt, "both halves carry the record timestamp")
}

func TestFetchDiseaseHistoryNormalizesRecords(t *testing.T) {
	precautions := "   "
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]diseaseRecord{
			{ID: "det-1", DiseaseName: "Leaf Rust", Confidence: 140, Severity: "high", DetectedAt: "2026-08-01", Precautions: &precautions},
			{ID: "det-2", DiseaseName: "", Confidence: -3, Severity: "", DetectedAt: "not-a-date"},
		})
	})

	detections, err := client.FetchDiseaseHistory(context.Background(), "crop-1")
	require.NoError(t, err)
	require.Len(t, detections, 2)

	assert.Equal(t, 100, detections[0].Confidence, "confidence is clamped to 0..100")
	assert.Nil(t, detections[0].Precautions, "blank optional text reads as unfetched")
	assert.Equal(t, "crop-1", detections[0].CropID)

	assert.Equal(t, models.NoDataPlaceholder, detections[1].DiseaseName)
	assert.Equal(t, models.NoDataPlaceholder, detections[1].Severity)
	assert.Equal(t, 0, detections[1].Confidence)
	assert.WithinDuration(t, time.Now(), detections[1].DetectedAt, time.Minute, "unparseable timestamp falls back to now")
}

func TestAnalyzeImageEncodesPayload(t *testing.T) {
	image := []byte{0xff, 0xd8, 0xff, 0xe0}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/disease-analysis", r.URL.Path)

		var req analysisRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "crop-1", req.CropID)
		assert.Equal(t, base64.StdEncoding.EncodeToString(image), req.Image)

		json.NewEncoder(w).Encode(analysisResponse{
			DetectionID: "det-9",
			DiseaseName: "Leaf Rust",
			Confidence:  87,
			Severity:    "high",
			DetectedAt:  "2026-08-30T12:00:00Z",
		})
	})

	detection, err := client.AnalyzeImage(context.Background(), "crop-1", image)
	require.NoError(t, err)
	assert.Equal(t, "det-9", detection.ID)
	assert.Equal(t, 87, detection.Confidence)
}

func TestAnalyzeImageRejectsEmptyImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty image")
	})

	_, err := client.AnalyzeImage(context.Background(), "crop-1", nil)
	require.Error(t, err)
}

func TestAnalyzeImageServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusBadGateway)
	})

	_, err := client.AnalyzeImage(context.Background(), "crop-1", []byte("img"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDiseaseChatRoundTrip(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req diseaseChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "det-1", req.DetectionID)
		json.NewEncoder(w).Encode(diseaseChatResponse{Response: "Apply fungicide."})
	})

	reply, err := client.DiseaseChat(context.Background(), "det-1", "what now?")
	require.NoError(t, err)
	assert.Equal(t, "Apply fungicide.", reply)
}

func TestDeleteDetection(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteDetection(context.Background(), "det-1"))
	assert.Equal(t, "/disease-detection/det-1", gotPath)
}

func TestDeleteDetectionNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	err := client.DeleteDetection(context.Background(), "det-404")
	require.Error(t, err)
}

func TestParseTimestampFormats(t *testing.T) {
	ts := parseTimestamp("2026-08-01 10:30:00")
	assert.Equal(t, 2026, ts.Year())
	assert.Equal(t, 30, ts.Minute())

	ts = parseTimestamp("2026-08-01")
	assert.Equal(t, time.August, ts.Month())
}
