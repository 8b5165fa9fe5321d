package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"cropwise/internal/errors"
	"cropwise/models"
	"cropwise/ports"
)

// Client implements ports.BackendClient over HTTP with a bearer credential
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a backend client from config
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
	}, nil
}

var _ ports.BackendClient = (*Client)(nil)

// FetchChatHistory returns the crop's chat log expanded into message pairs
func (c *Client) FetchChatHistory(ctx context.Context, cropID string) ([]models.ChatMessage, error) {
	var records []chatHistoryRecord
	if err := c.getJSON(ctx, fmt.Sprintf("/crops/%s/chat-history", cropID), &records); err != nil {
		return nil, errors.BackendError("chat-history fetch", err)
	}

	messages := make([]models.ChatMessage, 0, len(records)*2)
	for _, rec := range records {
		ts := parseTimestamp(rec.CreatedAt)
		user := models.NewChatMessage(models.RoleUser, rec.Message)
		user.CreatedAt = ts
		assistant := models.NewChatMessage(models.RoleAssistant, rec.Response)
		assistant.CreatedAt = ts
		messages = append(messages, user, assistant)
	}
	return messages, nil
}

// FetchDiseaseHistory returns the crop's persisted detections
func (c *Client) FetchDiseaseHistory(ctx context.Context, cropID string) ([]models.DiseaseDetection, error) {
	var records []diseaseRecord
	if err := c.getJSON(ctx, fmt.Sprintf("/crops/%s/disease-history", cropID), &records); err != nil {
		return nil, errors.BackendError("disease-history fetch", err)
	}

	detections := make([]models.DiseaseDetection, 0, len(records))
	for _, rec := range records {
		detections = append(detections, rec.toDetection(cropID))
	}
	return detections, nil
}

// AnalyzeImage submits an image for AI disease analysis
func (c *Client) AnalyzeImage(ctx context.Context, cropID string, image []byte) (*models.DiseaseDetection, error) {
	if len(image) == 0 {
		return nil, errors.InvalidInput("image is empty")
	}

	req := analysisRequest{
		CropID: cropID,
		Image:  base64.StdEncoding.EncodeToString(image),
	}
	var resp analysisResponse
	if err := c.postJSON(ctx, "/disease-analysis", req, &resp); err != nil {
		return nil, errors.AnalysisFailed(err)
	}

	detection := resp.toDetection(cropID)
	return &detection, nil
}

// DiseaseChat sends one conversational turn scoped to a detection
func (c *Client) DiseaseChat(ctx context.Context, detectionID string, message string) (string, error) {
	req := diseaseChatRequest{DetectionID: detectionID, Message: message}
	var resp diseaseChatResponse
	if err := c.postJSON(ctx, "/disease-chat", req, &resp); err != nil {
		return "", errors.BackendError("disease-chat", err)
	}
	return resp.Response, nil
}

// DeleteDetection removes a detection record from the backend
func (c *Client) DeleteDetection(ctx context.Context, detectionID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.config.BaseURL+"/disease-detection/"+detectionID, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return errors.BackendError("detection delete", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.BackendError("detection delete", fmt.Errorf("http %d", resp.StatusCode))
	}
	return nil
}

// CropChat sends one conversational turn scoped to a crop
func (c *Client) CropChat(ctx context.Context, cropID string, message string) (string, error) {
	req := cropChatRequest{CropID: cropID, Message: message}
	var resp cropChatResponse
	if err := c.postJSON(ctx, "/crop-chat", req, &resp); err != nil {
		return "", errors.BackendError("crop-chat", err)
	}
	return resp.Content, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(httpReq)
	return c.doJSON(httpReq, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(httpReq)
	return c.doJSON(httpReq, out)
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend http %d: %s", resp.StatusCode, string(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
