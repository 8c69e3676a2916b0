package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/handlers/render"
	"github.com/reviveshine/lib2usexpress/internal/logger"
	"github.com/reviveshine/lib2usexpress/internal/models"
)

type adminService interface {
	// Mark seller verified
	// Has to return apperrors.ErrForbidden if the user is not a seller
	VerifySeller(ctx context.Context, sellerID uuid.UUID) (models.User, error)

	// Lock the account and revoke its refresh tokens
	DisableUser(ctx context.Context, userID uuid.UUID) (models.User, error)

	EnableUser(ctx context.Context, userID uuid.UUID) (models.User, error)
}

func handleVerifySeller(svc adminService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
			return
		}

		user, err := svc.VerifySeller(r.Context(), sellerID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrForbidden):
				render.ServiceError(w, "User is not a seller", http.StatusConflict)
			default:
				l.Error("failed to verify seller", "error", err, "sellerID", sellerID)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, userToResponse(user))
	})
}

func handleDisableUser(svc adminService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
			return
		}

		admin, ok := UserFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if admin.ID == userID {
			render.ServiceError(w, "Can't disable own account", http.StatusConflict)
			return
		}

		user, err := svc.DisableUser(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				l.Error("failed to disable user", "error", err, "userID", userID)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, userToResponse(user))
	})
}

func handleEnableUser(svc adminService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
			return
		}

		user, err := svc.EnableUser(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				l.Error("failed to enable user", "error", err, "userID", userID)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, userToResponse(user))
	})
}
