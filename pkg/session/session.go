// Package session stores the authenticated GitHub login on disk so the CLI
// keeps working across invocations without re-running the device flow.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/contriblens/contriblens/pkg/github"
)

// DefaultTTL is how long a stored login stays valid before the user must
// authenticate again. GitHub device-flow tokens do not expire on their own.
const DefaultTTL = 30 * 24 * time.Hour

// Session holds an access token and the profile it belongs to.
type Session struct {
	ID          string          `json:"id"`
	AccessToken string          `json:"access_token"`
	User        *github.Profile `json:"user"`
	ExpiresAt   time.Time       `json:"expires_at"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsExpired reports whether the session has exceeded its TTL.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Login returns the stored user's login, empty for a nil session or user.
func (s *Session) Login() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.Login
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. Returns nil, nil when the session does
	// not exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates a session for the given token and user.
func New(accessToken string, user *github.Profile, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:          id,
		AccessToken: accessToken,
		User:        user,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}, nil
}
