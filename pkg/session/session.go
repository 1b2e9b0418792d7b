// Package session stores the authenticated backend session for the CLI.
//
// The conversation backend issues a bearer token on login. This package
// persists that token together with the user identity so subsequent CLI
// invocations can reuse it, with automatic expiration.
//
// # Usage
//
//	store, err := session.NewFileStore("") // uses ~/.config/intentflow/
//	if err != nil {
//	    return err
//	}
//	sess := session.New(resp.UserID, resp.Username, resp.SessionToken, session.DefaultTTL)
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
package session

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long a stored session stays usable (30 days).
const DefaultTTL = 30 * 24 * time.Hour

// ErrExpired is returned when a stored session has exceeded its TTL.
var ErrExpired = errors.New("session expired")

// Session stores the authenticated user and bearer token.
type Session struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// New creates a session expiring ttl from now.
func New(userID, username, token string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		UserID:    userID,
		Username:  username,
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves the stored session.
	// Returns nil, nil if no session exists.
	// Returns nil, ErrExpired if a session exists but has expired.
	Get(ctx context.Context) (*Session, error)

	// Set stores the session, replacing any existing one.
	Set(ctx context.Context, sess *Session) error

	// Delete removes the stored session.
	Delete(ctx context.Context) error
}
