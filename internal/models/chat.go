package models

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	ID          uuid.UUID
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Content     string
	CreatedAt   time.Time
}

// Conversation is a distinct chat counterpart with the time of the last exchanged message
type Conversation struct {
	UserID        uuid.UUID
	Name          string
	LastMessageAt time.Time
}
