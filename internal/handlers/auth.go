package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/handlers/render"
	"github.com/reviveshine/lib2usexpress/internal/logger"
	"github.com/reviveshine/lib2usexpress/internal/models"
	"github.com/reviveshine/lib2usexpress/internal/service/auth"
)

type authService interface {
	// Register user and issue the first token pair
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	Register(ctx context.Context, params auth.RegisterParams) (models.User, models.TokenPair, error)

	// Login user with email and password
	// Has to return apperrors.ErrUserNotFound on bad credentials and
	// apperrors.ErrUserDisabled for locked accounts
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// Rotate the refresh token and issue a fresh pair
	// If token expired: has to return apperrors.ErrRefreshTokenExpired
	// If token reused: has to return apperrors.ErrRefreshTokenIsUsed
	// If token not found: has to return apperrors.ErrRefreshTokenNotFound
	RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error)

	// Invalidate one refresh token. Idempotent
	Logout(ctx context.Context, refresh string) error

	// Revoke every outstanding refresh token of the user
	LogoutAll(ctx context.Context, userID uuid.UUID) error
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	UserType  string    `json:"userType"`
	Location  string    `json:"location"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

type tokensResponse struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

func userToResponse(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserType:  u.UserType,
		Location:  u.Location,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
	}
}

func pairToResponse(pair models.TokenPair) tokensResponse {
	return tokensResponse{
		AccessToken:      pair.Access.Value,
		AccessExpiresAt:  pair.Access.ExpiresAt,
		RefreshToken:     pair.Refresh.Value,
		RefreshExpiresAt: pair.Refresh.ExpiresAt,
	}
}

func handleRegister(as authService, l logger.Logger) http.Handler {
	type request struct {
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required,min=8,max=72"`
		FirstName string `json:"firstName" validate:"required,min=1,max=100"`
		LastName  string `json:"lastName" validate:"required,min=1,max=100"`
		UserType  string `json:"userType" validate:"required,oneof=buyer seller"`
		Location  string `json:"location" validate:"max=200"`
	}
	type response struct {
		User   userResponse   `json:"user"`
		Tokens tokensResponse `json:"tokens"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, pair, err := as.Register(r.Context(), auth.RegisterParams{
			Email:     data.Email,
			Password:  data.Password,
			FirstName: data.FirstName,
			LastName:  data.LastName,
			UserType:  data.UserType,
			Location:  data.Location,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User already exists", http.StatusConflict)
			default:
				l.Error("failed to register user", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONWithStatus(w, response{User: userToResponse(user), Tokens: pairToResponse(pair)}, http.StatusCreated)
	})
}

func handleLogin(as authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		User   userResponse   `json:"user"`
		Tokens tokensResponse `json:"tokens"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, pair, err := as.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrUserDisabled):
				render.ServiceError(w, "Account is disabled", http.StatusForbidden)
			default:
				l.Error("failed to login user", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{User: userToResponse(user), Tokens: pairToResponse(pair)})
	})
}

func handleTokenRefresh(as authService, l logger.Logger) http.Handler {
	type request struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := as.RefreshPair(r.Context(), data.RefreshToken)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrRefreshTokenExpired):
				render.ServiceError(w, "Refresh token expired", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrUserDisabled):
				render.ServiceError(w, "Account is disabled", http.StatusForbidden)
			case errors.Is(err, apperrors.ErrRefreshTokenIsUsed),
				errors.Is(err, apperrors.ErrRefreshTokenNotFound),
				errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "Refresh token not found", http.StatusUnauthorized)
			default:
				l.Error("failed to refresh token pair", "error", err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, pairToResponse(pair))
	})
}

func handleLogout(as authService, l logger.Logger) http.Handler {
	type request struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		if err := as.Logout(r.Context(), data.RefreshToken); err != nil {
			l.Error("failed to logout", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Message: "Logged out"})
	})
}

func handleLogoutAll(as authService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if err := as.LogoutAll(r.Context(), user.ID); err != nil {
			l.Error("failed to logout all sessions", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Message: "All sessions revoked"})
	})
}
