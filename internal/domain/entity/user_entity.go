package entity

import (
	"time"
)

// User is the account an author profile hangs off.
// Passwords are stored as bcrypt hashes in Password field.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity is the caller resolved from a verified token.
type Identity struct {
	UserID    int64
	Username  string
	SessionID string
}

// Owns reports whether the identity is the given user.
func (i *Identity) Owns(userID int64) bool {
	return i != nil && i.UserID != 0 && i.UserID == userID
}
