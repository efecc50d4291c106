// Package ledger owns appointment records. It enforces the server-side
// invariants of a booking (initial status, fixed duration, week key) and
// answers the lookups the booking validator needs. Authorization is the
// caller's concern.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
	"github.com/Alijeyrad/jyotish_backend/pkg/util/calendar"
)

type Ledger struct {
	store    store.AppointmentStore
	loc      *time.Location
	duration time.Duration
}

func New(st store.AppointmentStore, loc *time.Location, duration time.Duration) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	if duration <= 0 {
		duration = 15 * time.Minute
	}
	return &Ledger{store: st, loc: loc, duration: duration}
}

func (l *Ledger) Location() *time.Location { return l.loc }
func (l *Ledger) Duration() time.Duration  { return l.duration }

func (l *Ledger) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return l.store.GetAppointment(ctx, id)
}

func (l *Ledger) ByUser(ctx context.Context, userID uuid.UUID) ([]model.Appointment, error) {
	return l.store.ListAppointmentsByUser(ctx, userID)
}

// ByDateRange returns appointments starting in [start, end).
func (l *Ledger) ByDateRange(ctx context.Context, start, end time.Time) ([]model.Appointment, error) {
	if !end.After(start) {
		return []model.Appointment{}, nil
	}
	return l.store.ListAppointmentsBetween(ctx, start, end)
}

func (l *Ledger) ByExactDate(ctx context.Context, instant time.Time) ([]model.Appointment, error) {
	return l.store.ListAppointmentsAt(ctx, instant)
}

// Create records a confirmed appointment for userID at start. The end time
// is always start plus the fixed duration.
func (l *Ledger) Create(ctx context.Context, userID uuid.UUID, start time.Time) (*model.Appointment, error) {
	return l.insert(ctx, userID, start, calendar.WeekStart(start, l.loc))
}

// CreateExempt is Create without a week key, so the stored row does not
// count against the weekly unique index.
func (l *Ledger) CreateExempt(ctx context.Context, userID uuid.UUID, start time.Time) (*model.Appointment, error) {
	return l.insert(ctx, userID, start, time.Time{})
}

func (l *Ledger) insert(ctx context.Context, userID uuid.UUID, start, week time.Time) (*model.Appointment, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("new appointment id: %w", err)
	}
	a := &model.Appointment{
		ID:        id,
		UserID:    userID,
		Date:      start,
		End:       start.Add(l.duration),
		Status:    model.StatusConfirmed,
		WeekStart: week,
	}
	if err := l.store.InsertAppointment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update applies a partial change. A new Date recomputes End and, unless
// the appointment is exempt, WeekStart; a caller-supplied End is ignored.
func (l *Ledger) Update(ctx context.Context, id uuid.UUID, p model.AppointmentPatch) (*model.Appointment, error) {
	p.End, p.WeekStart = nil, nil
	if p.Status != nil && !p.Status.Valid() {
		return nil, fmt.Errorf("invalid status %q", *p.Status)
	}
	if p.Date != nil {
		cur, err := l.store.GetAppointment(ctx, id)
		if err != nil {
			return nil, err
		}
		end := p.Date.Add(l.duration)
		p.End = &end
		if !cur.WeekStart.IsZero() {
			week := calendar.WeekStart(*p.Date, l.loc)
			p.WeekStart = &week
		}
	}
	return l.store.UpdateAppointment(ctx, id, p)
}

func (l *Ledger) Delete(ctx context.Context, id uuid.UUID) error {
	return l.store.DeleteAppointment(ctx, id)
}

// CompleteBefore marks confirmed appointments starting before cutoff as
// completed. Running it again with the same cutoff changes nothing.
func (l *Ledger) CompleteBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	return l.store.CompleteAppointmentsBefore(ctx, cutoff, now)
}

// ActiveInWeek reports whether userID holds a non-cancelled appointment in
// the Sunday-anchored week containing t, ignoring exclude.
func (l *Ledger) ActiveInWeek(ctx context.Context, userID uuid.UUID, t time.Time, exclude uuid.UUID) (bool, error) {
	start, end := calendar.WeekBounds(t, l.loc)
	appts, err := l.store.ListAppointmentsBetween(ctx, start, end)
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(appts, func(a model.Appointment) bool {
		return a.UserID == userID && a.ID != exclude && a.Status != model.StatusCancelled
	}), nil
}

// ActiveAt reports whether any non-cancelled appointment starts at instant.
func (l *Ledger) ActiveAt(ctx context.Context, instant time.Time, exclude uuid.UUID) (bool, error) {
	appts, err := l.store.ListAppointmentsAt(ctx, instant)
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(appts, func(a model.Appointment) bool {
		return a.ID != exclude && a.Status != model.StatusCancelled
	}), nil
}
