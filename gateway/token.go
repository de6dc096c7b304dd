package gateway

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of the session token the client needs locally:
// the user id (room joins, notification endpoints) and the expiry.
type TokenClaims struct {
	UserID    string
	ExpiresAt time.Time
}

// ParseTokenClaims decodes the bearer token without verifying the signature.
// The client never validates tokens; the backend does. It only needs to read
// who the token belongs to and whether it is still worth attaching.
func ParseTokenClaims(tokenString string) (*TokenClaims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}

	out := &TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		out.UserID = sub
	} else if uid, ok := claims["userId"].(string); ok {
		// 老版本token将用户ID放在userId字段
		out.UserID = uid
	}
	if out.UserID == "" {
		return nil, fmt.Errorf("token has no user id claim")
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// Expired reports whether the token carries an expiry in the past.
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}
