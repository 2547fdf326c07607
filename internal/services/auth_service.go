package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrOperatorDisabled     = errors.New("operator access is not configured")
	ErrInvalidOperatorToken = errors.New("invalid operator token")
	ErrInvalidSession       = errors.New("invalid or expired session")
)

// AuthService guards the operator endpoints: journal clear, event queries,
// and the session reset hook. The operator presents a long-lived token whose
// bcrypt hash is configured out of band; a successful login yields a
// short-lived JWT.
type AuthService struct {
	tokenHash string
	jwtSecret []byte
	ttl       time.Duration
}

// NewAuthService builds the operator guard. An empty tokenHash disables
// operator access entirely. An empty jwtSecret gets a random per-process
// secret, which is fine because operator sessions do not need to survive a
// restart.
func NewAuthService(tokenHash, jwtSecret string) *AuthService {
	secret := []byte(jwtSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
	}
	return &AuthService{
		tokenHash: tokenHash,
		jwtSecret: secret,
		ttl:       time.Hour,
	}
}

// Enabled reports whether operator access is configured.
func (s *AuthService) Enabled() bool {
	return s.tokenHash != ""
}

// Login verifies the operator token against the configured hash and issues
// a session JWT.
func (s *AuthService) Login(token string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrOperatorDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.tokenHash), []byte(token)); err != nil {
		return "", time.Time{}, ErrInvalidOperatorToken
	}

	expiresAt := time.Now().Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   "operator",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifySession validates an operator session JWT.
func (s *AuthService) VerifySession(tokenString string) error {
	if !s.Enabled() {
		return ErrOperatorDisabled
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidSession
	}
	return nil
}

// HashOperatorToken produces a bcrypt hash suitable for the
// QS_OPERATOR_TOKEN_HASH setting. Used by the CLI helper.
func HashOperatorToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
