package models

import "github.com/golang-jwt/jwt/v4"

// Token audiences. REST sessions and socket tokens are minted separately so
// the transport layer never sees session credentials.
const (
	AudienceSession = "session"
	AudienceSocket  = "socket"
)

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
