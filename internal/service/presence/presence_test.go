package presence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/models"
)

// In memory presence repo with recorded mark-offline calls
type fakePresenceRepo struct {
	rows map[uuid.UUID]models.Presence

	markedOffline []uuid.UUID
}

func newFakeRepo() *fakePresenceRepo {
	return &fakePresenceRepo{rows: map[uuid.UUID]models.Presence{}}
}

func (r *fakePresenceRepo) Heartbeat(_ context.Context, userID uuid.UUID, now time.Time) error {
	p, ok := r.rows[userID]
	if !ok {
		p = models.Presence{UserID: userID, LastSeen: now}
	}
	p.Status = models.PresenceOnline
	p.LastActivity = now
	r.rows[userID] = p
	return nil
}

func (r *fakePresenceRepo) SetStatus(_ context.Context, userID uuid.UUID, status string, now time.Time) (models.Presence, error) {
	p := models.Presence{UserID: userID, Status: status, LastActivity: now, LastSeen: now}
	r.rows[userID] = p
	return p, nil
}

func (r *fakePresenceRepo) Get(_ context.Context, userID uuid.UUID) (models.Presence, bool, error) {
	p, ok := r.rows[userID]
	return p, ok, nil
}

func (r *fakePresenceRepo) GetMany(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]models.Presence, error) {
	byID := map[uuid.UUID]models.Presence{}
	for _, id := range userIDs {
		if p, ok := r.rows[id]; ok {
			byID[id] = p
		}
	}
	return byID, nil
}

func (r *fakePresenceRepo) MarkOfflineIfStale(_ context.Context, userID uuid.UUID, cutoff time.Time) error {
	r.markedOffline = append(r.markedOffline, userID)
	if p, ok := r.rows[userID]; ok && p.Status == models.PresenceOnline && p.LastActivity.Before(cutoff) {
		p.Status = models.PresenceOffline
		r.rows[userID] = p
	}
	return nil
}

func (r *fakePresenceRepo) ListActiveSince(_ context.Context, cutoff time.Time) ([]models.OnlineUser, error) {
	var users []models.OnlineUser
	for _, p := range r.rows {
		if p.LastActivity.After(cutoff) && (p.Status == models.PresenceOnline || p.Status == models.PresenceAway) {
			users = append(users, models.OnlineUser{UserID: p.UserID, Status: p.Status, LastActivity: p.LastActivity})
		}
	}
	return users, nil
}

// Service with frozen clock that tests may advance
func newTestService(repo *fakePresenceRepo, start time.Time) (*PresenceService, *time.Time) {
	now := start
	s := NewService(repo)
	s.now = func() time.Time { return now }
	return s, &now
}

func Test_PresenceService(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("heartbeat sets online", func(t *testing.T) {
		repo := newFakeRepo()
		s, _ := newTestService(repo, start)
		userID := uuid.New()

		at, err := s.Heartbeat(t.Context(), userID)
		require.NoError(t, err)
		require.Equal(t, start, at)

		status, err := s.GetStatus(t.Context(), userID)
		require.NoError(t, err)
		require.Equal(t, models.PresenceOnline, status.Status)
		require.True(t, status.IsOnline)
	})

	t.Run("set status validates input", func(t *testing.T) {
		repo := newFakeRepo()
		s, _ := newTestService(repo, start)

		_, err := s.SetStatus(t.Context(), uuid.New(), "sleeping")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrPresenceInvalidStatus)
		assert.Empty(t, repo.rows, "invalid status must not be written")
	})

	t.Run("unknown user reads offline", func(t *testing.T) {
		repo := newFakeRepo()
		s, _ := newTestService(repo, start)

		status, err := s.GetStatus(t.Context(), uuid.New())

		require.NoError(t, err)
		require.Equal(t, models.PresenceOffline, status.Status)
		require.False(t, status.IsOnline)
		require.Nil(t, status.LastSeen, "never seen user has no last seen time")
	})

	t.Run("online within the window", func(t *testing.T) {
		repo := newFakeRepo()
		s, now := newTestService(repo, start)
		userID := uuid.New()
		_, err := s.Heartbeat(t.Context(), userID)
		require.NoError(t, err)

		*now = start.Add(OnlineWindow - time.Second)

		status, err := s.GetStatus(t.Context(), userID)
		require.NoError(t, err)
		require.True(t, status.IsOnline, "299s after heartbeat still online")
		require.Equal(t, models.PresenceOnline, status.Status)
	})

	t.Run("stale online reads offline and persists correction", func(t *testing.T) {
		repo := newFakeRepo()
		s, now := newTestService(repo, start)
		userID := uuid.New()
		_, err := s.Heartbeat(t.Context(), userID)
		require.NoError(t, err)

		*now = start.Add(OnlineWindow + time.Second)

		status, err := s.GetStatus(t.Context(), userID)
		require.NoError(t, err)
		require.False(t, status.IsOnline, "301s after heartbeat no longer online")
		require.Equal(t, models.PresenceOffline, status.Status)
		require.Equal(t, []uuid.UUID{userID}, repo.markedOffline, "correction must be written back")
		require.Equal(t, models.PresenceOffline, repo.rows[userID].Status)
	})

	t.Run("exactly at the window boundary is offline", func(t *testing.T) {
		repo := newFakeRepo()
		s, now := newTestService(repo, start)
		userID := uuid.New()
		_, err := s.Heartbeat(t.Context(), userID)
		require.NoError(t, err)

		*now = start.Add(OnlineWindow)

		status, err := s.GetStatus(t.Context(), userID)
		require.NoError(t, err)
		require.False(t, status.IsOnline, "window is strict: equal age is not online")
	})

	t.Run("stale away keeps its status", func(t *testing.T) {
		repo := newFakeRepo()
		s, now := newTestService(repo, start)
		userID := uuid.New()
		_, err := s.SetStatus(t.Context(), userID, models.PresenceAway)
		require.NoError(t, err)

		*now = start.Add(OnlineWindow + time.Minute)

		status, err := s.GetStatus(t.Context(), userID)
		require.NoError(t, err)
		require.Equal(t, models.PresenceAway, status.Status, "only stored online expires")
		require.False(t, status.IsOnline)
		require.Empty(t, repo.markedOffline, "away rows are not corrected")
	})

	t.Run("fresh away is away but online", func(t *testing.T) {
		repo := newFakeRepo()
		s, _ := newTestService(repo, start)
		userID := uuid.New()
		_, err := s.SetStatus(t.Context(), userID, models.PresenceAway)
		require.NoError(t, err)

		status, err := s.GetStatus(t.Context(), userID)
		require.NoError(t, err)
		require.Equal(t, models.PresenceAway, status.Status)
		require.True(t, status.IsOnline, "isOnline is activity based, not status based")
	})

	t.Run("bulk mixes known and unknown", func(t *testing.T) {
		repo := newFakeRepo()
		s, now := newTestService(repo, start)
		active := uuid.New()
		stale := uuid.New()
		unknown := uuid.New()

		_, err := s.Heartbeat(t.Context(), stale)
		require.NoError(t, err)
		*now = start.Add(OnlineWindow + time.Second)
		_, err = s.Heartbeat(t.Context(), active)
		require.NoError(t, err)

		statuses, err := s.GetBulkStatus(t.Context(), []uuid.UUID{active, stale, unknown})

		require.NoError(t, err)
		require.Len(t, statuses, 3)
		assert.True(t, statuses[active].IsOnline)
		assert.Equal(t, models.PresenceOffline, statuses[stale].Status)
		assert.False(t, statuses[stale].IsOnline)
		assert.Equal(t, models.PresenceOffline, statuses[unknown].Status)
		assert.Nil(t, statuses[unknown].LastSeen)

		assert.Empty(t, repo.markedOffline, "bulk read must not persist corrections")
	})

	t.Run("list online users filters by activity", func(t *testing.T) {
		repo := newFakeRepo()
		s, now := newTestService(repo, start)
		old := uuid.New()
		fresh := uuid.New()

		_, err := s.Heartbeat(t.Context(), old)
		require.NoError(t, err)
		*now = start.Add(OnlineWindow + time.Second)
		_, err = s.Heartbeat(t.Context(), fresh)
		require.NoError(t, err)

		users, err := s.ListOnlineUsers(t.Context())

		require.NoError(t, err)
		require.Len(t, users, 1)
		require.Equal(t, fresh, users[0].UserID)
	})
}
