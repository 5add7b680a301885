package entities

import (
	"time"
)

// User is an account in the content API
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Confirmed bool      `json:"confirmed,omitempty"`
	Blocked   bool      `json:"blocked,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Session is the authenticated state held on the device
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
	// ExpiresAt is read from the token when it carries an exp claim.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Authenticated reports whether the session carries a token and a user.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != "" && s.User.ID != ""
}

// Expired reports whether the token expiry has passed at now.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
