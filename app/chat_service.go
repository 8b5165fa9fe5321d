package app

import (
	"context"

	"cropwise/internal"
	"cropwise/internal/errors"
	"cropwise/models"
	"cropwise/ports"
)

// CropChatService drives the crop's general chat thread over the crop-chat
// endpoint. The thread itself lives in the store, so a crop switch replaces
// it and any reply still in flight lands on the discarded thread.
type CropChatService struct {
	store    *CropDataStore
	backend  ports.BackendClient
	activity ports.ActivityRepository
	logger   *internal.Logger
}

// NewCropChatService wires the chat service to its collaborators
func NewCropChatService(store *CropDataStore, backend ports.BackendClient, activity ports.ActivityRepository, logger *internal.Logger) *CropChatService {
	return &CropChatService{
		store:    store,
		backend:  backend,
		activity: activity,
		logger:   logger,
	}
}

// SendMessage sends one conversational turn on the active crop's thread
func (s *CropChatService) SendMessage(ctx context.Context, text string) (models.ChatMessage, error) {
	thread := s.store.Chat()
	if thread == nil {
		return models.ChatMessage{}, errors.InvalidInput("no crop is selected")
	}
	cropID := s.store.CropID()

	reply, err := thread.SendAndAwaitReply(ctx, text, func(ctx context.Context, msg string) (string, error) {
		return s.backend.CropChat(ctx, cropID, msg)
	})
	if err == nil && s.activity != nil {
		entry := models.NewActivityEntry(cropID, models.ActivityMessageSent, "crop chat")
		if aerr := s.activity.Append(ctx, entry); aerr != nil {
			s.logger.Warn("activity log append failed: %v", aerr)
		}
	}
	return reply, err
}

// Messages returns the active crop's chat log for rendering
func (s *CropChatService) Messages() []models.ChatMessage {
	thread := s.store.Chat()
	if thread == nil {
		return nil
	}
	return thread.Messages()
}
