package models

import (
	"time"

	"github.com/google/uuid"
)

// Presence statuses
// Status 'online' is trustworthy only while the activity window has not passed
const (
	PresenceOnline  = "online"
	PresenceAway    = "away"
	PresenceOffline = "offline"
)

// ValidPresenceStatus reports if status may be written by a client
func ValidPresenceStatus(status string) bool {
	switch status {
	case PresenceOnline, PresenceAway, PresenceOffline:
		return true
	default:
		return false
	}
}

// Presence is the stored last known state for a user
// Rows are upserted on every heartbeat and never deleted
type Presence struct {
	UserID       uuid.UUID
	Status       string
	LastActivity time.Time // last heartbeat or explicit status write
	LastSeen     time.Time // last explicit status transition
}

// PresenceStatus is the computed view returned to callers
// LastSeen is nil when the user has no presence record at all
type PresenceStatus struct {
	Status   string
	IsOnline bool
	LastSeen *time.Time
}

// OnlineUser is a row of the online users listing, enriched from the users table
type OnlineUser struct {
	UserID       uuid.UUID
	Name         string
	UserType     string
	Status       string
	LastActivity time.Time
}
