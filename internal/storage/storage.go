// Package storage persists the secrets of end users registered with SnapTrade.
// The secret is returned once by registerUser and is required for every
// user-scoped call, so the partner must keep it.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrUserNotFound is returned when no user has the requested ID.
var ErrUserNotFound = errors.New("user not found")

// User is a registered end user.
type User struct {
	ID        string
	Secret    string
	CreatedAt time.Time
}

// UserStore persists registered users.
type UserStore interface {
	// SaveUser inserts the user or replaces the secret of an existing one.
	SaveUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	DeleteUser(ctx context.Context, id string) error
	// ListUsers returns users ordered by ID.
	ListUsers(ctx context.Context) ([]*User, error)
	Close() error
}
