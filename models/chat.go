package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole identifies who authored a chat message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is a single immutable entry in a conversation thread.
// Ordering is by CreatedAt ascending with insertion order breaking ties.
type ChatMessage struct {
	ID        uuid.UUID   `json:"id"`
	Role      MessageRole `json:"role"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewChatMessage creates a message stamped with the current time
func NewChatMessage(role MessageRole, text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.New(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}
