package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/models"
	"github.com/reviveshine/lib2usexpress/internal/repository"
)

// OnlineWindow is how long after the last heartbeat a user still counts as online
const OnlineWindow = 5 * time.Minute

// PresenceService tracks the best effort online signal
//
// Staleness is corrected lazily: the point read flips a stale 'online' row to
// 'offline' and persists that, there is no background sweep. The online users
// listing is a coarse filter on stored state, so it may briefly disagree with
// a concurrent point read. That tension is intentional: the list stays a
// single cheap query and only the point read pays the write.
type PresenceService struct {
	repo repository.PresenceRepo

	// now is replaceable in tests to simulate clock advance
	now func() time.Time
}

func NewService(repo repository.PresenceRepo) *PresenceService {
	return &PresenceService{
		repo: repo,
		now:  time.Now,
	}
}

// Heartbeat bumps last_activity and sets the user online
// Side effect only, fails on storage errors alone
func (s *PresenceService) Heartbeat(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	now := s.now()
	if err := s.repo.Heartbeat(ctx, userID, now); err != nil {
		return now, fmt.Errorf("heartbeat failed. Err: %w", err)
	}
	return now, nil
}

// SetStatus writes an explicit status transition
// Status is validated before any write happens
func (s *PresenceService) SetStatus(ctx context.Context, userID uuid.UUID, status string) (models.Presence, error) {
	if !models.ValidPresenceStatus(status) {
		return models.Presence{}, fmt.Errorf("status %q: %w", status, apperrors.ErrPresenceInvalidStatus)
	}

	p, err := s.repo.SetStatus(ctx, userID, status, s.now())
	if err != nil {
		return p, fmt.Errorf("set status failed. Err: %w", err)
	}
	return p, nil
}

// GetStatus is the precise point read
// A stale stored 'online' is reported as offline and the correction is
// persisted before returning (lazy expiry). Unknown users read as offline.
func (s *PresenceService) GetStatus(ctx context.Context, userID uuid.UUID) (models.PresenceStatus, error) {
	p, found, err := s.repo.Get(ctx, userID)
	if err != nil {
		return models.PresenceStatus{}, fmt.Errorf("get status failed. Err: %w", err)
	}
	if !found {
		return models.PresenceStatus{Status: models.PresenceOffline, IsOnline: false, LastSeen: nil}, nil
	}

	now := s.now()
	status := s.computeStatus(p, now)

	if p.Status == models.PresenceOnline && !status.IsOnline {
		// Persist the correction before answering, not after
		cutoff := now.Add(-OnlineWindow)
		if err := s.repo.MarkOfflineIfStale(ctx, userID, cutoff); err != nil {
			return status, fmt.Errorf("stale status correction failed. Err: %w", err)
		}
	}

	return status, nil
}

// GetBulkStatus reads many users at once
// Unknown ids read as offline with nil lastSeen, the call never fails on them.
// Unlike the point read it does not persist lazy expiry corrections
func (s *PresenceService) GetBulkStatus(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]models.PresenceStatus, error) {
	stored, err := s.repo.GetMany(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("bulk status failed. Err: %w", err)
	}

	now := s.now()
	statuses := make(map[uuid.UUID]models.PresenceStatus, len(userIDs))
	for _, id := range userIDs {
		p, found := stored[id]
		if !found {
			statuses[id] = models.PresenceStatus{Status: models.PresenceOffline, IsOnline: false, LastSeen: nil}
			continue
		}
		statuses[id] = s.computeStatus(p, now)
	}

	return statuses, nil
}

// ListOnlineUsers returns everyone with recent activity and stored status
// online or away. Coarse filter on stored state, see the service doc
func (s *PresenceService) ListOnlineUsers(ctx context.Context) ([]models.OnlineUser, error) {
	cutoff := s.now().Add(-OnlineWindow)
	users, err := s.repo.ListActiveSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("online users listing failed. Err: %w", err)
	}
	return users, nil
}

// computeStatus derives the caller visible view from the stored row
// isOnline is purely activity based. Stored 'online' older than the window
// reads as offline, a stale 'away' keeps its status
func (s *PresenceService) computeStatus(p models.Presence, now time.Time) models.PresenceStatus {
	isOnline := now.Sub(p.LastActivity) < OnlineWindow

	status := p.Status
	if status == models.PresenceOnline && !isOnline {
		status = models.PresenceOffline
	}

	lastSeen := p.LastSeen
	return models.PresenceStatus{
		Status:   status,
		IsOnline: isOnline,
		LastSeen: &lastSeen,
	}
}
