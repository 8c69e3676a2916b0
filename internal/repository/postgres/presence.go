package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reviveshine/lib2usexpress/internal/models"
)

type PresenceRepo struct {
	DB DBTX
}

const heartbeat = `-- name: Heartbeat
INSERT INTO user_presence (user_id, status, last_activity, last_seen)
VALUES ($1, 'online', $2, $2)
ON CONFLICT (user_id) DO UPDATE
SET status = 'online', last_activity = EXCLUDED.last_activity
`

// Heartbeat upsert is commutative and idempotent per user, last writer wins
func (r *PresenceRepo) Heartbeat(ctx context.Context, userID uuid.UUID, now time.Time) error {
	_, err := r.DB.Exec(ctx, heartbeat, userID, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const setStatus = `-- name: SetStatus
INSERT INTO user_presence (user_id, status, last_activity, last_seen)
VALUES ($1, $2, $3, $3)
ON CONFLICT (user_id) DO UPDATE
SET status = EXCLUDED.status, last_activity = EXCLUDED.last_activity, last_seen = EXCLUDED.last_seen
RETURNING user_id, status, last_activity, last_seen
`

func (r *PresenceRepo) SetStatus(ctx context.Context, userID uuid.UUID, status string, now time.Time) (models.Presence, error) {
	rows, _ := r.DB.Query(ctx, setStatus, userID, status, now)
	p, err := pgx.CollectOneRow(rows, rowToPresence)
	if err != nil {
		return p, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

const getPresence = `-- name: GetPresence
SELECT user_id, status, last_activity, last_seen
FROM user_presence
WHERE user_id = $1
`

func (r *PresenceRepo) Get(ctx context.Context, userID uuid.UUID) (models.Presence, bool, error) {
	rows, _ := r.DB.Query(ctx, getPresence, userID)
	p, err := pgx.CollectOneRow(rows, rowToPresence)

	switch {
	case err == nil:
		return p, true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return p, false, nil
	default:
		return p, false, fmt.Errorf("db error: %w", err)
	}
}

const getManyPresence = `-- name: GetManyPresence
SELECT user_id, status, last_activity, last_seen
FROM user_presence
WHERE user_id = ANY($1)
`

func (r *PresenceRepo) GetMany(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]models.Presence, error) {
	rows, _ := r.DB.Query(ctx, getManyPresence, userIDs)
	list, err := pgx.CollectRows(rows, rowToPresence)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	byID := make(map[uuid.UUID]models.Presence, len(list))
	for _, p := range list {
		byID[p.UserID] = p
	}
	return byID, nil
}

const markOfflineIfStale = `-- name: MarkOfflineIfStale
UPDATE user_presence
SET status = 'offline'
WHERE user_id = $1 AND status = 'online' AND last_activity < $2
`

// MarkOfflineIfStale is the lazy expiry write-back: one conditional update,
// a concurrent heartbeat that bumped last_activity simply makes it a no-op
func (r *PresenceRepo) MarkOfflineIfStale(ctx context.Context, userID uuid.UUID, cutoff time.Time) error {
	_, err := r.DB.Exec(ctx, markOfflineIfStale, userID, cutoff)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const listActiveSince = `-- name: ListActiveSince
SELECT p.user_id, u.first_name || ' ' || u.last_name, u.user_type, p.status, p.last_activity
FROM user_presence p
JOIN users u ON u.id = p.user_id
WHERE p.last_activity > $1 AND p.status IN ('online', 'away')
ORDER BY p.last_activity DESC
`

func (r *PresenceRepo) ListActiveSince(ctx context.Context, cutoff time.Time) ([]models.OnlineUser, error) {
	rows, _ := r.DB.Query(ctx, listActiveSince, cutoff)
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.OnlineUser, error) {
		var u models.OnlineUser
		err := row.Scan(&u.UserID, &u.Name, &u.UserType, &u.Status, &u.LastActivity)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func rowToPresence(row pgx.CollectableRow) (models.Presence, error) {
	var p models.Presence
	err := row.Scan(&p.UserID, &p.Status, &p.LastActivity, &p.LastSeen)
	return p, err
}
