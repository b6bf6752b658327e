// Package jwtx inspects the bearer tokens issued by the console backend.
// The console never verifies signatures: it only needs to know whether a
// stored token is already past its expiry before spending a network call.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaque is returned for tokens that are not parseable JWTs.
var ErrOpaque = errors.New("jwtx: token is not a JWT")

// Claims are the backend's access-token claims. The backend puts the user id
// in "sub".
type Claims struct {
	jwt.RegisteredClaims
}

// Peek parses token without verifying its signature.
func Peek(token string) (*Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, ErrOpaque
	}
	return &claims, nil
}

// Expired reports whether token is a JWT whose exp is at or before now.
// Opaque tokens and JWTs without exp are never considered expired.
func Expired(token string, now time.Time) bool {
	claims, err := Peek(token)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
