package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/reviveshine/lib2usexpress/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with same email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Update profile fields the user may change on it's own
	// Nil fields in update are left untouched
	UpdateProfile(ctx context.Context, userID uuid.UUID, update models.ProfileUpdate) (models.User, error)

	// Admin moderation
	SetVerified(ctx context.Context, userID uuid.UUID, verified bool) (models.User, error)
	SetDisabled(ctx context.Context, userID uuid.UUID, disabledAt *time.Time) (models.User, error)
}

type CreateUserParams struct {
	Email          string
	HashedPassword string
	FirstName      string
	LastName       string
	UserType       string
	Location       string
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save token in repository and return the saved row
	Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Return the token even if it is expired, used or revoked
	// If token not found must return apperrors.ErrRefreshTokenNotFound
	Get(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Mark token used and return it in one atomic statement
	// Concurrent calls with the same token must have exactly one winner:
	// already used token must return apperrors.ErrRefreshTokenIsUsed and
	// must not overwrite the existing used_at
	GetAndMarkUsed(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Revoke every outstanding (not used, not revoked) token of the user
	// Returns number of revoked tokens
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Presence repository interface
// Rows are upserted per user and never deleted
type PresenceRepo interface {
	// Set last_activity = now and status = online, creating the row if needed
	Heartbeat(ctx context.Context, userID uuid.UUID, now time.Time) error

	// Explicit status write: updates status, last_seen and last_activity
	SetStatus(ctx context.Context, userID uuid.UUID, status string, now time.Time) (models.Presence, error)

	// Get stored presence row
	// Missing row is a normal case, the bool result reports existence
	Get(ctx context.Context, userID uuid.UUID) (models.Presence, bool, error)

	// Get stored rows for the given ids; missing ids are simply absent from the result
	GetMany(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]models.Presence, error)

	// Flip status to offline only if it is still 'online' and last_activity
	// is before the cutoff. Single conditional update (lazy expiry write-back)
	MarkOfflineIfStale(ctx context.Context, userID uuid.UUID, cutoff time.Time) error

	// All users with stored status online or away and last_activity after
	// the cutoff, enriched with name and user type. Coarse filter, does not
	// apply the lazy expiry correction
	ListActiveSince(ctx context.Context, cutoff time.Time) ([]models.OnlineUser, error)
}

// Product repository interface
type ProductRepo interface {
	Create(ctx context.Context, product models.Product) (models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.Product, error)
	List(ctx context.Context, opts ListProductsOpts) ([]models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ListProductsOpts struct {
	SellerID *uuid.UUID
	Limit    int
	Offset   int
}

// Chat repository interface
type ChatRepo interface {
	SaveMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error)

	// Two way thread between two users ordered by creation time
	GetThread(ctx context.Context, userID, otherID uuid.UUID, limit int) ([]models.ChatMessage, error)

	// Distinct counterparts of the user with last message time, newest first
	ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
}

// Storage aggregates all repositories backed by the same connection or transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Presence() PresenceRepo
	Product() ProductRepo
	Chat() ChatRepo

	InTx(ctx context.Context, fn func(Storage) error) error
}
