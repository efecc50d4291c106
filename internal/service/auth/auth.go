package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/service/user"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
	"github.com/Alijeyrad/jyotish_backend/pkg/token"
	"github.com/Alijeyrad/jyotish_backend/pkg/util/password"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type RegisterRequest struct {
	Name     string
	Username string
	Email    string
	Mobile   string
	Address  string
	Password string
}

type LoginRequest struct {
	// Identifier is a username or an email address.
	Identifier string
	Password   string
}

type AuthTokens struct {
	AccessToken string
	ExpiresAt   time.Time
	ExpiresIn   int64 // seconds until access token expires
	User        *model.User
}

type Options struct {
	SessionTTL time.Duration
	Region     string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthTokens, error)
	Login(ctx context.Context, req LoginRequest) (*AuthTokens, error)
	Logout(ctx context.Context, sessionID string) error
	// Authenticate verifies a bearer token and that its session is live.
	Authenticate(ctx context.Context, raw string) (*token.Claims, error)
	// RevokeUser ends every session of userID.
	RevokeUser(ctx context.Context, userID uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type authService struct {
	users    store.UserStore
	sessions SessionStore
	tokens   *token.Manager
	hasher   *password.Hasher
	opts     Options
}

func New(users store.UserStore, sessions SessionStore, tokens *token.Manager, hasher *password.Hasher, opts Options) Service {
	if opts.SessionTTL < tokens.AccessTTL() {
		opts.SessionTTL = tokens.AccessTTL()
	}
	return &authService{users: users, sessions: sessions, tokens: tokens, hasher: hasher, opts: opts}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthTokens, error) {
	if err := user.ValidateName(req.Name); err != nil {
		return nil, err
	}
	username, err := user.NormalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	email, err := user.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	mobile, err := user.NormalizeMobile(req.Mobile, s.opts.Region)
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Validate(req.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         strings.TrimSpace(req.Name),
		Username:     username,
		Email:        email,
		Mobile:       mobile,
		Address:      strings.TrimSpace(req.Address),
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, user.MapStoreError(err)
	}
	slog.Info("user registered", "user_id", u.ID)

	return s.createSession(ctx, u)
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthTokens, error) {
	id := strings.ToLower(strings.TrimSpace(req.Identifier))
	if id == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		u   *model.User
		err error
	)
	if strings.Contains(id, "@") {
		u, err = s.users.GetUserByEmail(ctx, id)
	} else {
		u, err = s.users.GetUserByUsername(ctx, id)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.hasher.Verify(u.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(u.PasswordHash) {
		if hash, err := s.hasher.Hash(req.Password); err == nil {
			if err := s.users.SetUserPassword(ctx, u.ID, hash); err != nil {
				slog.Warn("password rehash failed", "user_id", u.ID, "error", err)
			}
		}
	}

	return s.createSession(ctx, u)
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *authService) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	return s.sessions.DeleteUser(ctx, userID)
}

func (s *authService) Authenticate(ctx context.Context, raw string) (*token.Claims, error) {
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if sess.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *authService) createSession(ctx context.Context, u *model.User) (*AuthTokens, error) {
	sessionID := uuid.Must(uuid.NewV7()).String()

	err := s.sessions.Create(ctx, Session{
		ID:        sessionID,
		UserID:    u.ID,
		IsAdmin:   u.IsAdmin,
		CreatedAt: time.Now(),
	}, s.opts.SessionTTL)
	if err != nil {
		return nil, err
	}

	access, exp, err := s.tokens.IssueAccess(u.ID, sessionID, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &AuthTokens{
		AccessToken: access,
		ExpiresAt:   exp,
		ExpiresIn:   int64(s.tokens.AccessTTL().Seconds()),
		User:        u,
	}, nil
}
