package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/models"
	"github.com/reviveshine/lib2usexpress/internal/repository"
)

const defaultThreadLimit = 50

type ChatService struct {
	chatRepo repository.ChatRepo
}

func NewService(chatRepo repository.ChatRepo) *ChatService {
	return &ChatService{chatRepo: chatRepo}
}

// Send stores a direct message from sender to recipient
func (s *ChatService) Send(ctx context.Context, senderID, recipientID uuid.UUID, content string) (models.ChatMessage, error) {
	if senderID == recipientID {
		return models.ChatMessage{}, fmt.Errorf("self messaging: %w", apperrors.ErrForbidden)
	}

	msg, err := s.chatRepo.SaveMessage(ctx, models.ChatMessage{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	})
	if err != nil {
		return msg, err
	}

	return msg, nil
}

// Thread returns the two way conversation between the user and the counterpart
func (s *ChatService) Thread(ctx context.Context, userID, otherID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = defaultThreadLimit
	}
	return s.chatRepo.GetThread(ctx, userID, otherID, limit)
}

// Conversations lists the user's chat counterparts, newest activity first
func (s *ChatService) Conversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	return s.chatRepo.ListConversations(ctx, userID)
}
