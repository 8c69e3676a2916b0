package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/handlers/render"
	"github.com/reviveshine/lib2usexpress/internal/logger"
	"github.com/reviveshine/lib2usexpress/internal/models"
)

// Limit on ids in one bulk status request
const maxBulkStatusIDs = 100

type presenceService interface {
	// Record user activity, setting the stored status to online
	Heartbeat(ctx context.Context, userID uuid.UUID) (time.Time, error)

	// Explicit status write
	// Has to return apperrors.ErrPresenceInvalidStatus for unknown statuses
	SetStatus(ctx context.Context, userID uuid.UUID, status string) (models.Presence, error)

	// Computed status of a single user. Unknown users read as offline
	GetStatus(ctx context.Context, userID uuid.UUID) (models.PresenceStatus, error)

	// Computed statuses for many users at once
	GetBulkStatus(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]models.PresenceStatus, error)

	ListOnlineUsers(ctx context.Context) ([]models.OnlineUser, error)
}

type presenceStatusResponse struct {
	Status   string     `json:"status"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}

func statusToResponse(s models.PresenceStatus) presenceStatusResponse {
	return presenceStatusResponse{
		Status:   s.Status,
		IsOnline: s.IsOnline,
		LastSeen: s.LastSeen,
	}
}

func handleHeartbeat(ps presenceService, l logger.Logger) http.Handler {
	type response struct {
		Success   bool      `json:"success"`
		Timestamp time.Time `json:"timestamp"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		at, err := ps.Heartbeat(r.Context(), user.ID)
		if err != nil {
			l.Error("failed to record heartbeat", "error", err, "userID", user.ID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Success: true, Timestamp: at})
	})
}

func handleSetStatus(ps presenceService, l logger.Logger) http.Handler {
	type request struct {
		Status string `json:"status" validate:"required,oneof=online away offline"`
	}
	type response struct {
		Success  bool      `json:"success"`
		Status   string    `json:"status"`
		LastSeen time.Time `json:"lastSeen"`
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

		p, err := ps.SetStatus(r.Context(), user.ID, data.Status)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrPresenceInvalidStatus):
				render.ServiceError(w, "Invalid status", http.StatusBadRequest)
			default:
				l.Error("failed to set status", "error", err, "userID", user.ID)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{Success: true, Status: p.Status, LastSeen: p.LastSeen})
	})
}

func handleGetStatus(ps presenceService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.PathValue("userId"))
		if err != nil {
			render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
			return
		}

		status, err := ps.GetStatus(r.Context(), userID)
		if err != nil {
			l.Error("failed to get presence status", "error", err, "userID", userID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, statusToResponse(status))
	})
}

func handleBulkStatus(ps presenceService, l logger.Logger) http.Handler {
	type response struct {
		Statuses map[string]presenceStatusResponse `json:"statuses"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("ids")
		if raw == "" {
			render.ServiceError(w, "Query parameter 'ids' is required", http.StatusBadRequest)
			return
		}

		parts := strings.Split(raw, ",")
		if len(parts) > maxBulkStatusIDs {
			render.ServiceError(w, "Too many ids requested", http.StatusBadRequest)
			return
		}

		ids := make([]uuid.UUID, 0, len(parts))
		for _, part := range parts {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				render.ServiceError(w, "Invalid user id: "+part, http.StatusBadRequest)
				return
			}
			ids = append(ids, id)
		}

		statuses, err := ps.GetBulkStatus(r.Context(), ids)
		if err != nil {
			l.Error("failed to get bulk status", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := response{Statuses: make(map[string]presenceStatusResponse, len(statuses))}
		for id, s := range statuses {
			res.Statuses[id.String()] = statusToResponse(s)
		}

		render.JSON(w, res)
	})
}

func handleOnlineUsers(ps presenceService, l logger.Logger) http.Handler {
	type onlineUserResponse struct {
		UserID       uuid.UUID `json:"userId"`
		Name         string    `json:"name"`
		UserType     string    `json:"userType"`
		Status       string    `json:"status"`
		LastActivity time.Time `json:"lastActivity"`
	}
	type response struct {
		Users []onlineUserResponse `json:"users"`
		Count int                  `json:"count"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		users, err := ps.ListOnlineUsers(r.Context())
		if err != nil {
			l.Error("failed to list online users", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		res := response{Users: make([]onlineUserResponse, 0, len(users)), Count: len(users)}
		for _, u := range users {
			res.Users = append(res.Users, onlineUserResponse{
				UserID:       u.UserID,
				Name:         u.Name,
				UserType:     u.UserType,
				Status:       u.Status,
				LastActivity: u.LastActivity,
			})
		}

		render.JSON(w, res)
	})
}
