package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of backend token claims the client reads.
type Claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// InspectToken decodes the claims of a backend token without verifying its
// signature. Only the backend holds the signing key; the client reads claims
// for bookkeeping and never for authorization.
func InspectToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("token is not a readable JWT: %w", err)
	}
	return claims, nil
}

// TokenExpiry returns the exp claim of a JWT. Opaque tokens and tokens without
// exp report false.
func TokenExpiry(tokenStr string) (time.Time, bool) {
	claims, err := InspectToken(tokenStr)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
