package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const tokenCols = `id, user_id, token, created_at, expires_at, used_at, revoked_at`

const saveToken = `-- name: SaveRefreshToken
INSERT INTO refresh_tokens (id, user_id, token, created_at, expires_at, used_at, revoked_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + tokenCols

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, saveToken, token.ID, token.UserID, token.Token, token.CreatedAt, token.ExpiresAt, token.UsedAt, token.RevokedAt)
	saved, err := pgx.CollectOneRow(rows, rowToRefreshToken)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}
	return saved, nil
}

const getToken = `-- name: GetToken by token string itself
SELECT ` + tokenCols + `
FROM refresh_tokens
WHERE token = $1
`

// Get token
// It should return result even if it expired, used or revoked already
func (r *RefreshTokenRepo) Get(ctx context.Context, tokenString string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getToken, tokenString)
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

const getAndMarkTokenUsed = `-- name: Mark token used if it is still live
UPDATE refresh_tokens
SET used_at = $2
WHERE token = $1 AND used_at IS NULL AND revoked_at IS NULL
RETURNING ` + tokenCols

// GetAndMarkUsed marks token as used and returns the row
// The conditional update closes the concurrent refresh race: the row comes
// back only to the caller whose update matched, everyone else falls through
// to the dead-token lookup.
// Already used token returns apperrors.ErrRefreshTokenIsUsed.
// Revoked token is reported as not found.
func (r *RefreshTokenRepo) GetAndMarkUsed(ctx context.Context, tokenString string) (models.RefreshToken, error) {
	now := time.Now().Truncate(time.Microsecond) // pg keeps microseconds
	rows, _ := r.DB.Query(ctx, getAndMarkTokenUsed, tokenString, now)
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Lost the update: the token is used, revoked or never existed
	default:
		return token, fmt.Errorf("db error: %w", err)
	}

	token, err = r.Get(ctx, tokenString)
	switch {
	case err != nil:
		return token, err
	case token.RevokedAt != nil:
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenIsUsed)
	}
}

const revokeAllForUser = `-- name: Revoke all outstanding tokens of the user
UPDATE refresh_tokens
SET revoked_at = $2
WHERE user_id = $1 AND used_at IS NULL AND revoked_at IS NULL
`

func (r *RefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.DB.Exec(ctx, revokeAllForUser, userID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.ExpiresAt, &t.UsedAt, &t.RevokedAt)
	return t, err
}
