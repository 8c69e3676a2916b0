package handlers

import (
	"context"

	"github.com/reviveshine/lib2usexpress/internal/handlers/middleware"
	"github.com/reviveshine/lib2usexpress/internal/models"
)

// UserFromContext extracts the authenticated user set by the auth middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	return middleware.UserFromContext(ctx)
}
