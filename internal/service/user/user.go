package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
	"github.com/Alijeyrad/jyotish_backend/pkg/util/password"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type UpdateRequest struct {
	Name     *string
	Username *string
	Email    *string
	Mobile   *string
	Address  *string

	// Notification channels; true opts in.
	AppointmentEmail *bool
	AppointmentSMS   *bool
}

type ListRequest struct {
	Page    int
	PerPage int
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByMobile(ctx context.Context, mobile string) (*model.User, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*model.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, req ListRequest) ([]model.User, error)
	Block(ctx context.Context, id uuid.UUID, until time.Time) (*model.User, error)
	Unblock(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type UserService struct {
	users  store.UserStore
	hasher *password.Hasher
	region string
	now    func() time.Time
}

var _ Service = (*UserService)(nil)

// New builds the directory. region is the default phone region for numbers
// entered without a country code.
func New(users store.UserStore, hasher *password.Hasher, region string) *UserService {
	if region == "" {
		region = "IN"
	}
	return &UserService{users: users, hasher: hasher, region: region, now: time.Now}
}

// MapStoreError converts store sentinels to directory errors.
func MapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrUsernameTaken):
		return ErrUsernameTaken
	case errors.Is(err, store.ErrEmailTaken):
		return ErrEmailTaken
	case errors.Is(err, store.ErrMobileTaken):
		return ErrMobileTaken
	}
	return err
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	return u, MapStoreError(err)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.GetUserByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	return u, MapStoreError(err)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	return u, MapStoreError(err)
}

// GetByMobile accepts any format the phone parser understands.
func (s *UserService) GetByMobile(ctx context.Context, mobile string) (*model.User, error) {
	normalized, err := NormalizeMobile(mobile, s.region)
	if err != nil {
		return nil, ErrUserNotFound
	}
	u, err := s.users.GetUserByMobile(ctx, normalized)
	return u, MapStoreError(err)
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*model.User, error) {
	var p model.UserPatch

	if req.Name != nil {
		if err := ValidateName(*req.Name); err != nil {
			return nil, err
		}
		name := strings.TrimSpace(*req.Name)
		p.Name = &name
	}
	if req.Username != nil {
		v, err := NormalizeUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		p.Username = &v
	}
	if req.Email != nil {
		v, err := NormalizeEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		p.Email = &v
	}
	if req.Mobile != nil {
		v, err := NormalizeMobile(*req.Mobile, s.region)
		if err != nil {
			return nil, err
		}
		p.Mobile = &v
	}
	if req.Address != nil {
		addr := strings.TrimSpace(*req.Address)
		p.Address = &addr
	}
	if req.AppointmentEmail != nil {
		p.EmailOptOut = lo.ToPtr(!*req.AppointmentEmail)
	}
	if req.AppointmentSMS != nil {
		p.SMSOptOut = lo.ToPtr(!*req.AppointmentSMS)
	}
	if p.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	u, err := s.users.UpdateUser(ctx, id, p)
	return u, MapStoreError(err)
}

func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return MapStoreError(err)
	}
	if err := s.hasher.Verify(u.PasswordHash, current); err != nil {
		return ErrWrongPassword
	}
	if err := s.hasher.Validate(next); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return MapStoreError(s.users.SetUserPassword(ctx, id, hash))
}

// Delete removes the user; their appointments go with them.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return MapStoreError(err)
	}
	slog.Info("user deleted", "user_id", id)
	return nil
}

func (s *UserService) List(ctx context.Context, req ListRequest) ([]model.User, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 20
	}
	users, err := s.users.ListUsers(ctx, req.PerPage, (req.Page-1)*req.PerPage)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Block(ctx context.Context, id uuid.UUID, until time.Time) (*model.User, error) {
	if !until.After(s.now()) {
		return nil, ErrBlockInPast
	}
	u, err := s.users.SetUserBlockedUntil(ctx, id, &until)
	if err != nil {
		return nil, MapStoreError(err)
	}
	slog.Info("user blocked", "user_id", id, "until", until.Format(time.RFC3339))
	return u, nil
}

func (s *UserService) Unblock(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.users.SetUserBlockedUntil(ctx, id, nil)
	return u, MapStoreError(err)
}

// ---------------------------------------------------------------------------
// Admin bootstrap
// ---------------------------------------------------------------------------

type AdminRequest struct {
	Name     string
	Username string
	Email    string
	Mobile   string
	Password string
}

// EnsureAdmin promotes the user named by req.Username, or creates it with
// admin rights when it does not exist. It reports whether a user was
// created. An existing user's password is left alone.
func (s *UserService) EnsureAdmin(ctx context.Context, req AdminRequest) (*model.User, bool, error) {
	username, err := NormalizeUsername(req.Username)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		if !existing.IsAdmin {
			if err := s.users.SetUserAdmin(ctx, existing.ID, true); err != nil {
				return nil, false, MapStoreError(err)
			}
			existing.IsAdmin = true
			slog.Info("user promoted to admin", "user_id", existing.ID)
		}
		return existing, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, fmt.Errorf("find user: %w", err)
	}

	if err := ValidateName(req.Name); err != nil {
		return nil, false, err
	}
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, false, err
	}
	mobile, err := NormalizeMobile(req.Mobile, s.region)
	if err != nil {
		return nil, false, err
	}
	if err := s.hasher.Validate(req.Password); err != nil {
		return nil, false, err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         strings.TrimSpace(req.Name),
		Username:     username,
		Email:        email,
		Mobile:       mobile,
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, false, MapStoreError(err)
	}
	slog.Info("admin user created", "user_id", u.ID)
	return u, true, nil
}
