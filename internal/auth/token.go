package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents the JWT claims. They are a snapshot taken at issue time:
// later changes to the user do not affect a token already handed out.
type Claims struct {
	UID   int64  `json:"userId"`
	Email string `json:"email"`
	Admin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// UserID returns the id of the user the token was issued to. Nil claims have
// no user and return 0.
func (c *Claims) UserID() int64 {
	if c == nil {
		return 0
	}
	return c.UID
}

// IsAdmin reports whether the token carries admin rights.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Admin
}

// FailureKind says why a token was rejected.
type FailureKind int

const (
	Malformed FailureKind = iota + 1
	Expired
	Unsupported
	Invalid
)

func (k FailureKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case Expired:
		return "expired"
	case Unsupported:
		return "unsupported"
	}
	return "invalid"
}

// TokenError is returned by Verify for every rejected token.
type TokenError struct {
	Kind FailureKind
	Err  error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%s token: %v", e.Kind, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

var errUnsupportedAlg = errors.New("signing method is not HMAC")

// Tokens issues and verifies HMAC-signed tokens with a single secret.
type Tokens struct {
	secret []byte
}

// NewTokens returns a token service keyed by secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

// Issue creates a signed token for a user that expires after ttl. A ttl of
// zero or less yields a token that is already expired.
func (t *Tokens) Issue(userID int64, email string, isAdmin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:   userID,
		Email: email,
		Admin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and checks its signature and expiry. Any failure is
// a *TokenError.
func (t *Tokens) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", errUnsupportedAlg, token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, &TokenError{Kind: classify(err), Err: err}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, &TokenError{Kind: Invalid, Err: errors.New("token is not valid")}
	}
	return claims, nil
}

func classify(err error) FailureKind {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Malformed
	case errors.Is(err, errUnsupportedAlg), errors.Is(err, jwt.ErrTokenUnverifiable):
		return Unsupported
	case errors.Is(err, jwt.ErrTokenExpired):
		return Expired
	}
	return Invalid
}
