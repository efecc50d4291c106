package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess TokenType = "access"
)

// Claims is the app-facing token payload.
type Claims struct {
	Type      TokenType `json:"typ"`
	UserID    uuid.UUID `json:"uid"`
	SessionID string    `json:"sid"`
	Admin     bool      `json:"adm,omitempty"`

	jwt.RegisteredClaims
}

func (c *Claims) GetUserID() uuid.UUID { return c.UserID }

func (c *Claims) GetSessionID() string { return c.SessionID }

func (c *Claims) IsAdmin() bool { return c.Admin }

func (c *Claims) IsExpired() bool {
	return c.ExpiresAt == nil || time.Now().After(c.ExpiresAt.Time)
}
