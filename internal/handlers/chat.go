package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/handlers/render"
	"github.com/reviveshine/lib2usexpress/internal/logger"
	"github.com/reviveshine/lib2usexpress/internal/models"
)

type chatService interface {
	// Send message to a recipient
	// Has to return apperrors.ErrRecipientNotFound for unknown recipients
	Send(ctx context.Context, senderID, recipientID uuid.UUID, content string) (models.ChatMessage, error)

	// Two way thread between the user and the other party, newest first
	Thread(ctx context.Context, userID, otherID uuid.UUID, limit int) ([]models.ChatMessage, error)

	Conversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
}

type messageResponse struct {
	ID          uuid.UUID `json:"id"`
	SenderID    uuid.UUID `json:"senderId"`
	RecipientID uuid.UUID `json:"recipientId"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

func messageToResponse(m models.ChatMessage) messageResponse {
	return messageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		CreatedAt:   m.CreatedAt,
	}
}

func handleSendMessage(svc chatService, l logger.Logger) http.Handler {
	type request struct {
		RecipientID uuid.UUID `json:"recipientId" validate:"required"`
		Content     string    `json:"content" validate:"required,min=1,max=2000"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		msg, err := svc.Send(r.Context(), user.ID, data.RecipientID, data.Content)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrRecipientNotFound):
				render.ServiceError(w, "Recipient not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrForbidden):
				render.ServiceError(w, "Can't message yourself", http.StatusBadRequest)
			default:
				l.Error("failed to send message", "error", err, "senderID", user.ID)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, messageToResponse(msg), http.StatusCreated)
	})
}

func handleGetThread(svc chatService, l logger.Logger) http.Handler {
	type response struct {
		Messages []messageResponse `json:"messages"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		otherID, err := uuid.Parse(r.URL.Query().Get("with"))
		if err != nil {
			render.ServiceError(w, "Query parameter 'with' must be a user id", http.StatusBadRequest)
			return
		}

		limit := 0
		if s := r.URL.Query().Get("limit"); s != "" {
			limit, err = strconv.Atoi(s)
			if err != nil || limit < 1 || limit > 200 {
				render.ServiceError(w, "Invalid limit", http.StatusBadRequest)
				return
			}
		}

		messages, err := svc.Thread(r.Context(), user.ID, otherID, limit)
		if err != nil {
			l.Error("failed to get thread", "error", err, "userID", user.ID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := response{Messages: make([]messageResponse, 0, len(messages))}
		for _, m := range messages {
			res.Messages = append(res.Messages, messageToResponse(m))
		}

		render.JSON(w, res)
	})
}

func handleListConversations(svc chatService, l logger.Logger) http.Handler {
	type conversationResponse struct {
		UserID        uuid.UUID `json:"userId"`
		Name          string    `json:"name"`
		LastMessageAt time.Time `json:"lastMessageAt"`
	}
	type response struct {
		Conversations []conversationResponse `json:"conversations"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		conversations, err := svc.Conversations(r.Context(), user.ID)
		if err != nil {
			l.Error("failed to list conversations", "error", err, "userID", user.ID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := response{Conversations: make([]conversationResponse, 0, len(conversations))}
		for _, c := range conversations {
			res.Conversations = append(res.Conversations, conversationResponse{
				UserID:        c.UserID,
				Name:          c.Name,
				LastMessageAt: c.LastMessageAt,
			})
		}

		render.JSON(w, res)
	})
}
