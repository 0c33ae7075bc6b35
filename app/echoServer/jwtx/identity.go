package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// ContextKey is where the normalized identity lives on the request.
const ContextKey = "identity"

// Identity is the one canonical shape of the caller's token payload.
// It is built once by the auth middleware; handlers never re-parse
// claims.
type Identity struct {
	ID   int64
	Role string
}

// FromClaims normalizes raw JWT claims into an Identity.
func FromClaims(claims jwt.MapClaims) (Identity, error) {
	sub, ok := claims["sub"].(float64)
	if !ok {
		return Identity{}, errors.New("sub missing in claims")
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return Identity{}, errors.New("role missing in claims")
	}
	return Identity{ID: int64(sub), Role: role}, nil
}

// FromContext returns the identity stored by the auth middleware.
func FromContext(c echo.Context) (Identity, error) {
	id, ok := c.Get(ContextKey).(Identity)
	if !ok {
		return Identity{}, errors.New("no identity in context")
	}
	return id, nil
}
