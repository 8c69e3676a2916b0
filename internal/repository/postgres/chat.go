package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/models"
)

type ChatRepo struct {
	DB DBTX
}

const saveMessage = `-- name: SaveMessage
INSERT INTO chat_messages (id, sender_id, recipient_id, content, created_at)
VALUES ($1, $2, $3, $4, clock_timestamp())
RETURNING id, sender_id, recipient_id, content, created_at
`

// clock_timestamp keeps messages of one transaction ordered, now() would not

func (r *ChatRepo) SaveMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	rows, _ := r.DB.Query(ctx, saveMessage, msg.ID, msg.SenderID, msg.RecipientID, msg.Content)
	saved, err := pgx.CollectOneRow(rows, rowToChatMessage)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return saved, apperrors.ErrRecipientNotFound
		}
		return saved, fmt.Errorf("db error: %w", err)
	}

	return saved, nil
}

const getThread = `-- name: GetThread
SELECT id, sender_id, recipient_id, content, created_at
FROM chat_messages
WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
ORDER BY created_at DESC
LIMIT $3
`

func (r *ChatRepo) GetThread(ctx context.Context, userID, otherID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, _ := r.DB.Query(ctx, getThread, userID, otherID, limit)
	list, err := pgx.CollectRows(rows, rowToChatMessage)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

const listConversations = `-- name: ListConversations
SELECT c.other_id, u.first_name || ' ' || u.last_name, c.last_message_at
FROM (
    SELECT CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS other_id,
           MAX(created_at) AS last_message_at
    FROM chat_messages
    WHERE sender_id = $1 OR recipient_id = $1
    GROUP BY 1
) c
JOIN users u ON u.id = c.other_id
ORDER BY c.last_message_at DESC
`

func (r *ChatRepo) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	rows, _ := r.DB.Query(ctx, listConversations, userID)
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Conversation, error) {
		var c models.Conversation
		err := row.Scan(&c.UserID, &c.Name, &c.LastMessageAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

func rowToChatMessage(row pgx.CollectableRow) (models.ChatMessage, error) {
	var m models.ChatMessage
	err := row.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.CreatedAt)
	return m, err
}
