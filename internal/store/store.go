// Package store persists users, appointments, slots and booking settings in
// Postgres through pgx. Service packages depend on the interfaces declared
// here; memstore provides an in-process implementation for tests.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByMobile(ctx context.Context, mobile string) (*model.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]model.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, p model.UserPatch) (*model.User, error)
	SetUserPassword(ctx context.Context, id uuid.UUID, hash string) error
	SetUserBlockedUntil(ctx context.Context, id uuid.UUID, until *time.Time) (*model.User, error)
	SetUserAdmin(ctx context.Context, id uuid.UUID, admin bool) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type AppointmentStore interface {
	InsertAppointment(ctx context.Context, a *model.Appointment) error
	GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	ListAppointmentsByUser(ctx context.Context, userID uuid.UUID) ([]model.Appointment, error)
	// ListAppointmentsBetween returns appointments with start in [start, end).
	ListAppointmentsBetween(ctx context.Context, start, end time.Time) ([]model.Appointment, error)
	ListAppointmentsAt(ctx context.Context, instant time.Time) ([]model.Appointment, error)
	UpdateAppointment(ctx context.Context, id uuid.UUID, p model.AppointmentPatch) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
	// CompleteAppointmentsBefore moves confirmed appointments starting before
	// cutoff to completed and returns how many changed.
	CompleteAppointmentsBefore(ctx context.Context, cutoff, now time.Time) (int64, error)
}

type SlotStore interface {
	// InsertSlot is insert-or-ignore on the instant. created is false when a
	// slot already existed; the existing row is returned unchanged.
	InsertSlot(ctx context.Context, date time.Time, enabled bool) (slot *model.Slot, created bool, err error)
	GetSlot(ctx context.Context, id uuid.UUID) (*model.Slot, error)
	ListSlotsBetween(ctx context.Context, start, end time.Time) ([]model.Slot, error)
	SetSlotEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*model.Slot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error
}

type SettingStore interface {
	GetSetting(ctx context.Context, key string) (*model.Setting, error)
	ListSettings(ctx context.Context) ([]model.Setting, error)
	UpsertSetting(ctx context.Context, s model.Setting) (*model.Setting, error)
}

type Store interface {
	UserStore
	AppointmentStore
	SlotStore
	SettingStore
	Ping(ctx context.Context) error
}

// Postgres implements Store on a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
