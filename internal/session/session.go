// Package session carries the authenticated caller's identity through the
// request path. Operations that act on behalf of a user take a *Session
// argument instead of reading shared process state.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type contextKey struct{}

// Session identifies the authenticated user of a request.
type Session struct {
	UserID   uuid.UUID
	Username string
	// TokenID is the access token JTI, used to revoke the token on logout.
	TokenID string
	// ExpiresAt is when the access token lapses; zero when unknown.
	ExpiresAt time.Time
}

// New creates a session for the given user.
func New(userID uuid.UUID, username string) *Session {
	return &Session{UserID: userID, Username: username}
}

// Valid reports whether the session identifies a user.
func (s *Session) Valid() bool {
	return s != nil && s.UserID != uuid.Nil
}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	if !ok || !s.Valid() {
		return nil, false
	}
	return s, true
}
