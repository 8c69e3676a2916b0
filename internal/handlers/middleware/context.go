package middleware

import (
	"context"

	"github.com/reviveshine/lib2usexpress/internal/models"
)

type contextKey string

const userContextKey contextKey = "authenticated-user"

// ContextWithUser returns a copy of ctx carrying the authenticated user.
func ContextWithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the authenticated user set by the auth middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}
