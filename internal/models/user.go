package models

import (
	"time"

	"github.com/google/uuid"
)

// User types supported by the marketplace
const (
	UserTypeBuyer  = "buyer"
	UserTypeSeller = "seller"
	UserTypeAdmin  = "admin"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Email          string
	HashedPassword string
	FirstName      string
	LastName       string
	UserType       string
	Location       string

	// Sellers may list products only after an admin verified them
	Verified bool

	// Not nil means the user was disabled by an admin and can't login or refresh
	DisabledAt *time.Time
}

// ProfileUpdate holds the only fields a user may change on it's own profile
// Nil field means "leave as is"
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Location  *string
}
