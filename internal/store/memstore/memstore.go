// Package memstore is an in-process store.Store. It enforces the same unique
// rules as the Postgres schema so services behave identically against it.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
)

type Store struct {
	mu           sync.Mutex
	users        map[uuid.UUID]model.User
	appointments map[uuid.UUID]model.Appointment
	slots        map[uuid.UUID]model.Slot
	settings     map[string]model.Setting

	// Now stamps created_at/updated_at. Defaults to time.Now.
	Now func() time.Time
	// PingErr is returned by Ping when set.
	PingErr error
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:        map[uuid.UUID]model.User{},
		appointments: map[uuid.UUID]model.Appointment{},
		slots:        map[uuid.UUID]model.Slot{},
		settings:     map[string]model.Setting{},
		Now:          time.Now,
	}
}

func (s *Store) Ping(context.Context) error { return s.PingErr }

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *Store) userConflict(u model.User) error {
	for _, other := range s.users {
		if other.ID == u.ID {
			continue
		}
		switch {
		case other.Username == u.Username:
			return store.ErrUsernameTaken
		case other.Email == u.Email:
			return store.ErrEmailTaken
		case other.Mobile == u.Mobile:
			return store.ErrMobileTaken
		}
	}
	return nil
}

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.userConflict(*u); err != nil {
		return err
	}
	now := s.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s *Store) findUser(match func(model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return s.findUser(func(u model.User) bool { return u.ID == id })
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	return s.findUser(func(u model.User) bool { return u.Username == username })
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return s.findUser(func(u model.User) bool { return u.Email == email })
}

func (s *Store) GetUserByMobile(_ context.Context, mobile string) (*model.User, error) {
	return s.findUser(func(u model.User) bool { return u.Mobile == mobile })
}

func (s *Store) ListUsers(_ context.Context, limit, offset int) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := lo.Values(s.users)
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return []model.User{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) mutateUser(id uuid.UUID, fn func(*model.User) error) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if err := fn(&u); err != nil {
		return nil, err
	}
	u.UpdatedAt = s.Now()
	s.users[id] = u
	return &u, nil
}

func (s *Store) UpdateUser(_ context.Context, id uuid.UUID, p model.UserPatch) (*model.User, error) {
	return s.mutateUser(id, func(u *model.User) error {
		if p.Name != nil {
			u.Name = *p.Name
		}
		if p.Username != nil {
			u.Username = *p.Username
		}
		if p.Email != nil {
			u.Email = *p.Email
		}
		if p.Mobile != nil {
			u.Mobile = *p.Mobile
		}
		if p.Address != nil {
			u.Address = *p.Address
		}
		if p.EmailOptOut != nil {
			u.EmailOptOut = *p.EmailOptOut
		}
		if p.SMSOptOut != nil {
			u.SMSOptOut = *p.SMSOptOut
		}
		return s.userConflict(*u)
	})
}

func (s *Store) SetUserPassword(_ context.Context, id uuid.UUID, hash string) error {
	_, err := s.mutateUser(id, func(u *model.User) error {
		u.PasswordHash = hash
		return nil
	})
	return err
}

func (s *Store) SetUserBlockedUntil(_ context.Context, id uuid.UUID, until *time.Time) (*model.User, error) {
	return s.mutateUser(id, func(u *model.User) error {
		u.BlockedUntil = until
		return nil
	})
}

func (s *Store) SetUserAdmin(_ context.Context, id uuid.UUID, admin bool) error {
	_, err := s.mutateUser(id, func(u *model.User) error {
		u.IsAdmin = admin
		return nil
	})
	return err
}

func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	// cascade
	for aid, a := range s.appointments {
		if a.UserID == id {
			delete(s.appointments, aid)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Appointments
// ---------------------------------------------------------------------------

// appointmentConflict mirrors the two partial unique indexes.
func (s *Store) appointmentConflict(a model.Appointment) error {
	if a.Status == model.StatusCancelled {
		return nil
	}
	for _, other := range s.appointments {
		if other.ID == a.ID || other.Status == model.StatusCancelled {
			continue
		}
		if other.Date.Equal(a.Date) {
			return store.ErrDateTaken
		}
		if other.UserID == a.UserID && !a.WeekStart.IsZero() && other.WeekStart.Equal(a.WeekStart) {
			return store.ErrWeekTaken
		}
	}
	return nil
}

func (s *Store) InsertAppointment(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[a.UserID]; !ok {
		return store.ErrNotFound
	}
	if err := s.appointmentConflict(*a); err != nil {
		return err
	}
	now := s.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	s.appointments[a.ID] = *a
	return nil
}

func (s *Store) GetAppointment(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *Store) filterAppointments(match func(model.Appointment) bool, desc bool) []model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := lo.Filter(lo.Values(s.appointments), func(a model.Appointment, _ int) bool { return match(a) })
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func (s *Store) ListAppointmentsByUser(_ context.Context, userID uuid.UUID) ([]model.Appointment, error) {
	return s.filterAppointments(func(a model.Appointment) bool { return a.UserID == userID }, true), nil
}

func (s *Store) ListAppointmentsBetween(_ context.Context, start, end time.Time) ([]model.Appointment, error) {
	return s.filterAppointments(func(a model.Appointment) bool {
		return !a.Date.Before(start) && a.Date.Before(end)
	}, false), nil
}

func (s *Store) ListAppointmentsAt(_ context.Context, instant time.Time) ([]model.Appointment, error) {
	return s.filterAppointments(func(a model.Appointment) bool { return a.Date.Equal(instant) }, false), nil
}

func (s *Store) UpdateAppointment(_ context.Context, id uuid.UUID, p model.AppointmentPatch) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.End != nil {
		a.End = *p.End
	}
	if p.WeekStart != nil {
		a.WeekStart = *p.WeekStart
	}
	if err := s.appointmentConflict(a); err != nil {
		return nil, err
	}
	a.UpdatedAt = s.Now()
	s.appointments[id] = a
	return &a, nil
}

func (s *Store) DeleteAppointment(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.appointments, id)
	return nil
}

func (s *Store) CompleteAppointmentsBefore(_ context.Context, cutoff, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, a := range s.appointments {
		if a.Status == model.StatusConfirmed && a.Date.Before(cutoff) {
			a.Status = model.StatusCompleted
			a.UpdatedAt = now
			s.appointments[id] = a
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Slots
// ---------------------------------------------------------------------------

func (s *Store) InsertSlot(_ context.Context, date time.Time, enabled bool) (*model.Slot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sl := range s.slots {
		if sl.Date.Equal(date) {
			return &sl, false, nil
		}
	}
	sl := model.Slot{ID: uuid.Must(uuid.NewV7()), Date: date, IsEnabled: enabled, CreatedAt: s.Now()}
	s.slots[sl.ID] = sl
	return &sl, true, nil
}

func (s *Store) GetSlot(_ context.Context, id uuid.UUID) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sl, nil
}

func (s *Store) ListSlotsBetween(_ context.Context, start, end time.Time) ([]model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := lo.Filter(lo.Values(s.slots), func(sl model.Slot, _ int) bool {
		return !sl.Date.Before(start) && sl.Date.Before(end)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) SetSlotEnabled(_ context.Context, id uuid.UUID, enabled bool) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	sl.IsEnabled = enabled
	s.slots[id] = sl
	return &sl, nil
}

func (s *Store) DeleteSlot(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.slots, id)
	return nil
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

func (s *Store) GetSetting(_ context.Context, key string) (*model.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.settings[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &st, nil
}

func (s *Store) ListSettings(_ context.Context) ([]model.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := lo.Values(s.settings)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Store) UpsertSetting(_ context.Context, st model.Setting) (*model.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.settings[st.Key]; ok && st.Description == "" {
		st.Description = prev.Description
	}
	st.UpdatedAt = s.Now()
	s.settings[st.Key] = st
	return &st, nil
}
