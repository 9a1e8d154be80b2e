// Package auth provides admin credentials and JWT tokens for the admin API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. An admin POSTs username + password to /admin/login
// 2. The service checks the bcrypt hash and issues a signed JWT (subject = admin ID)
// 3. The client sends the token back as "Authorization: Bearer <token>" (or in the
//    "token" cookie) on every /admin request
// 4. RequireAuth validates the signature and expiry and stores the admin ID in the
//    request context
//
// JWT is stateless: validation needs only the secret, no DB lookup.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "faq-chatbot"

	// DefaultTokenTTL is used when the configured TTL is zero.
	DefaultTokenTTL = time.Hour
)

// TokenService handles JWT creation and validation with an HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token lifetime.
// The secret should be at least 32 bytes of random data in production:
//
//	JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL reports how long issued tokens stay valid.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate issues a signed token for the given admin using the configured TTL.
func (s *TokenService) Generate(adminID int64) (string, error) {
	return s.GenerateWithDuration(adminID, s.ttl)
}

// GenerateWithDuration issues a token with an explicit lifetime. Tests use a
// negative duration to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(adminID int64, d time.Duration) (string, error) {
	now := time.Now()

	c := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(adminID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		Issuer:    issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies tokenStr and returns the admin ID it was issued for.
//
// SECURITY: WithValidMethods pins HS256, which blocks the "alg: none" attack and
// algorithm-confusion tricks. The keyfunc double-checks the method family.
func (s *TokenService) Validate(tokenStr string) (int64, error) {
	var c jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("auth: token expired")
		}
		return 0, fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return 0, fmt.Errorf("auth: invalid token claims")
	}

	adminID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || adminID <= 0 {
		return 0, fmt.Errorf("auth: token has no valid subject")
	}

	return adminID, nil
}
