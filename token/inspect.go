package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of access-token claims the client cares about. Zero
// fields mean the claim was absent or the token is not a JWT.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Inspect describes the inspect operation and its observable behavior.
//
// Inspect may return an error when input validation, dependency calls, or security checks fail.
// Inspect does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Inspect(raw string) (Claims, bool) {
	if raw == "" {
		return Claims{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Claims{}, false
	}

	var out Claims
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	return out, true
}

// ExpiryOf describes the expiryof operation and its observable behavior.
//
// ExpiryOf may return an error when input validation, dependency calls, or security checks fail.
// ExpiryOf does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ExpiryOf(raw string) time.Time {
	claims, ok := Inspect(raw)
	if !ok {
		return time.Time{}
	}
	return claims.ExpiresAt
}
