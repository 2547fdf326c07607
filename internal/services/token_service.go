package services

import (
	"sync"
	"time"
)

// TokenService issues and validates the per-session anti-forgery token.
//
// The token is two concatenated random base-36 fragments: enough to deter a
// same-session forged submission, not a cryptographically strong secret.
// The upstream acceptor treats it as an opaque marker, so strengthening it
// here would add nothing without a server-side contract change.
//
// The token is never rotated within a session lifetime. Whether a long-lived
// session should rotate is an open design question; the current behaviour
// matches the deployed survey and is kept deliberately.
type TokenService struct {
	mu       sync.Mutex
	token    string
	issuedAt time.Time
}

// NewTokenService returns an empty store; the token is created lazily on
// first request.
func NewTokenService() *TokenService {
	return &TokenService{}
}

// GetToken returns the session token, creating it on first call. Subsequent
// calls within the same session return the identical string.
func (s *TokenService) GetToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		s.token = randBase36(13) + randBase36(13)
		s.issuedAt = time.Now()
	}
	return s.token
}

// Validate compares a candidate against the stored token by exact string
// equality. An empty store (no token issued yet) matches nothing.
func (s *TokenService) Validate(candidate string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.token != "" && candidate == s.token
}

// IssuedAt reports when the current token was created, zero if none exists.
func (s *TokenService) IssuedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.issuedAt
}
