package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the console reads from the session token.
type Claims struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// ParseClaims decodes the token payload without verifying the signature.
// The result only drives client-side gating; the backend verifies tokens.
func ParseClaims(token string) (*Claims, error) {
	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	return &c, nil
}

// expiry returns the exp claim in Unix milliseconds, or 0 when absent.
func (c *Claims) expiry() int64 {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.UnixMilli()
}

// Expired reports whether exp lies before now.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.Time.After(now)
}
