package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the claims the Free Mentors API puts into its bearer
// tokens. They are read without signature verification: the server is
// the only party that can validate the token, this is display data.
type TokenClaims struct {
	jwt.RegisteredClaims

	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
}

// ParseTokenClaims extracts claims from a bearer token without validating it.
// Opaque (non-JWT) tokens yield an error; callers treat that as "unknown".
func ParseTokenClaims(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Expiry returns the exp claim, if present
func (c *TokenClaims) Expiry() (time.Time, bool) {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

// ExpiredAt reports whether the token's exp claim lies before now.
// Tokens without exp never expire locally.
func (c *TokenClaims) ExpiredAt(now time.Time) bool {
	exp, ok := c.Expiry()
	return ok && now.After(exp)
}
