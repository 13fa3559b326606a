package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the session token lifetime.
const DefaultTokenTTL = 24 * time.Hour

// Claims are the session token claims. Subject carries the user id and
// ID (jti) identifies the token in the revocation set.
type Claims = jwt.RegisteredClaims

// TokenService mints and parses signed session tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService creates a TokenService signing with HMAC-SHA256.
func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Mint issues a signed token embedding the user id, issued-at and
// expiry, with a unique token id for revocation tracking.
func (s *TokenService) Mint(userID string) (string, *Claims, error) {
	now := time.Now()

	claims := &Claims{
		Issuer:    s.issuer,
		Subject:   userID,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}

	return token, claims, nil
}

// Parse validates a token's signature and time claims.
// Returns ErrTokenExpired past the TTL and ErrTokenMalformed for any
// structural or signature problem.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
