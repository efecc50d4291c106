// Package token issues and verifies HS256 access tokens. Every token is
// bound to a server-side session id so logout can revoke it early.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Alijeyrad/jyotish_backend/config"
)

type Config struct {
	Secret    []byte
	Issuer    string
	Audience  string
	AccessTTL time.Duration
}

type Manager struct {
	cfg    Config
	parser *jwt.Parser
	now    func() time.Time
}

func New(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 16 {
		return nil, ErrConfig{Msg: "secret must be at least 16 bytes"}
	}
	if cfg.Issuer == "" {
		return nil, ErrConfig{Msg: "Issuer is required"}
	}
	if cfg.Audience == "" {
		return nil, ErrConfig{Msg: "Audience is required"}
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}

	p := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	return &Manager{cfg: cfg, parser: p, now: time.Now}, nil
}

// NewFromConfig builds a Manager from the central configuration.
func NewFromConfig(cfg *config.Config) (*Manager, error) {
	j := cfg.Authentication.JWT
	return New(Config{
		Secret:    []byte(j.Secret),
		Issuer:    j.Issuer,
		Audience:  j.Audience,
		AccessTTL: time.Duration(j.AccessTTLMinutes) * time.Minute,
	})
}

func (m *Manager) AccessTTL() time.Duration { return m.cfg.AccessTTL }

func (m *Manager) IssueAccess(userID uuid.UUID, sessionID string, admin bool) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.cfg.AccessTTL)

	claims := &Claims{
		Type:      TokenTypeAccess,
		UserID:    userID,
		SessionID: sessionID,
		Admin:     admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			Issuer:    m.cfg.Issuer,
			Audience:  jwt.ClaimStrings{m.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tok, err := m.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return m.cfg.Secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken{Err: err}
	}
	if !tok.Valid {
		return nil, ErrInvalidToken{Err: jwt.ErrTokenSignatureInvalid}
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrInvalidToken{Err: ErrWrongTokenType}
	}
	if claims.UserID == uuid.Nil || claims.SessionID == "" {
		return nil, ErrInvalidToken{Err: jwt.ErrTokenInvalidClaims}
	}
	return claims, nil
}
