package repositories

import (
	"context"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
)

// UserRepository defines the account operations of the content API
type UserRepository interface {
	// Login exchanges credentials for a session
	Login(ctx context.Context, identifier, password string) (*entities.Session, error)

	// Register creates an account and returns its session
	Register(ctx context.Context, username, email, password string) (*entities.Session, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)
}

// SessionStore is the on-device key/value storage backing the session
type SessionStore interface {
	// Get returns the value for key; ok is false when it is absent
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores a value
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys; absent keys are ignored
	Delete(ctx context.Context, keys ...string) error
}
