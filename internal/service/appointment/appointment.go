package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/service/booking"
	"github.com/Alijeyrad/jyotish_backend/internal/service/ledger"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
	"github.com/Alijeyrad/jyotish_backend/pkg/observability"
	"github.com/Alijeyrad/jyotish_backend/pkg/util/calendar"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Actor is the authenticated caller.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

type ListRequest struct {
	// UserID lets an admin list another user's appointments.
	UserID *uuid.UUID
	From   *time.Time
	To     *time.Time
}

type BookRequest struct {
	Date    time.Time
	EndTime *time.Time
}

type UpdateRequest struct {
	Date   *time.Time
	Status *model.AppointmentStatus
}

// Notifier receives cancellations.
type Notifier interface {
	SendCancellation(ctx context.Context, user model.User, appt model.Appointment) error
}

type Options struct {
	Now func() time.Time
	// CompletionHour is the local hour after which a day's appointments are
	// considered done. Defaults to 19.
	CompletionHour int
	Notifier       Notifier
	Metrics        *observability.BookingMetrics
	Logger         *slog.Logger
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Book(ctx context.Context, actor Actor, req BookRequest) (*model.Appointment, error)
	List(ctx context.Context, actor Actor, req ListRequest) ([]model.Appointment, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateRequest) (*model.Appointment, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*model.Appointment, error)
	Complete(ctx context.Context, actor Actor, id uuid.UUID) (*model.Appointment, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	// CompletePast moves every confirmed appointment whose day has passed
	// the completion hour to completed. It is safe to call repeatedly.
	CompletePast(ctx context.Context) (int64, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	users     store.UserStore
	ledger    *ledger.Ledger
	validator booking.Service
	opts      Options
	log       *slog.Logger
}

func New(users store.UserStore, l *ledger.Ledger, v booking.Service, opts Options) Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CompletionHour <= 0 || opts.CompletionHour > 24 {
		opts.CompletionHour = 19
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &appointmentService{
		users:     users,
		ledger:    l,
		validator: v,
		opts:      opts,
		log:       log.With("component", "appointment"),
	}
}

func mapErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return booking.FromStoreError(err)
}

func (s *appointmentService) Book(ctx context.Context, actor Actor, req BookRequest) (*model.Appointment, error) {
	u, err := s.users.GetUserByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return s.validator.Book(ctx, booking.Request{User: *u, Start: req.Date, End: req.EndTime})
}

func (s *appointmentService) List(ctx context.Context, actor Actor, req ListRequest) ([]model.Appointment, error) {
	if !actor.IsAdmin {
		return s.ledger.ByUser(ctx, actor.UserID)
	}
	if req.UserID != nil {
		return s.ledger.ByUser(ctx, *req.UserID)
	}

	loc := s.ledger.Location()
	from, to := calendar.WeekBounds(s.opts.Now(), loc)
	if req.From != nil {
		from = *req.From
	}
	if req.To != nil {
		to = *req.To
	} else if req.From != nil {
		to = calendar.StartOfDay(from, loc).AddDate(0, 0, 7)
	}
	if !to.After(from) {
		return nil, ErrInvalidRange
	}
	return s.ledger.ByDateRange(ctx, from, to)
}

// load fetches id and checks the actor owns it or is an admin.
func (s *appointmentService) load(ctx context.Context, actor Actor, id uuid.UUID) (*model.Appointment, error) {
	a, err := s.ledger.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	if !actor.IsAdmin && a.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return a, nil
}

func (s *appointmentService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Appointment, error) {
	return s.load(ctx, actor, id)
}

func (s *appointmentService) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateRequest) (*model.Appointment, error) {
	if req.Date == nil && req.Status == nil {
		return nil, ErrEmptyUpdate
	}
	a, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil && *req.Status != a.Status {
		if err := checkTransition(actor, a.Status, *req.Status); err != nil {
			return nil, err
		}
	}

	if req.Date != nil && !req.Date.Equal(a.Date) {
		if a.Status.Terminal() {
			return nil, ErrInvalidTransition
		}
		owner, err := s.users.GetUserByID(ctx, a.UserID)
		if err != nil {
			return nil, fmt.Errorf("load owner: %w", mapErr(err))
		}
		check := booking.Request{User: *owner, Start: *req.Date, ExcludeID: a.ID, ActorIsAdmin: actor.IsAdmin}
		if err := s.validator.Check(ctx, check); err != nil {
			return nil, err
		}
	}

	updated, err := s.ledger.Update(ctx, id, model.AppointmentPatch{Status: req.Status, Date: req.Date})
	if err != nil {
		return nil, mapErr(err)
	}
	if a.Status != model.StatusCancelled && updated.Status == model.StatusCancelled {
		s.notifyCancelled(ctx, *updated)
	}
	return updated, nil
}

// checkTransition allows confirmed -> cancelled for owners and admins and
// confirmed -> completed for admins only.
func checkTransition(actor Actor, from, to model.AppointmentStatus) error {
	if !to.Valid() || from.Terminal() {
		return ErrInvalidTransition
	}
	switch to {
	case model.StatusCancelled:
		return nil
	case model.StatusCompleted:
		if !actor.IsAdmin {
			return ErrForbidden
		}
		return nil
	}
	return ErrInvalidTransition
}

func (s *appointmentService) transition(ctx context.Context, actor Actor, id uuid.UUID, to model.AppointmentStatus) (*model.Appointment, error) {
	a, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(actor, a.Status, to); err != nil {
		return nil, err
	}
	updated, err := s.ledger.Update(ctx, id, model.AppointmentPatch{Status: &to})
	if err != nil {
		return nil, mapErr(err)
	}
	return updated, nil
}

func (s *appointmentService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*model.Appointment, error) {
	a, err := s.transition(ctx, actor, id, model.StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.log.Info("appointment cancelled", "appointment_id", a.ID, "by", actor.UserID)
	s.notifyCancelled(ctx, *a)
	return a, nil
}

func (s *appointmentService) Complete(ctx context.Context, actor Actor, id uuid.UUID) (*model.Appointment, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	return s.transition(ctx, actor, id, model.StatusCompleted)
}

func (s *appointmentService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	return mapErr(s.ledger.Delete(ctx, id))
}

// cutoff returns the instant before which confirmed appointments are done:
// the start of tomorrow once today's completion hour has passed, otherwise
// the start of today.
func (s *appointmentService) cutoff(now time.Time) time.Time {
	loc := s.ledger.Location()
	today := calendar.StartOfDay(now, loc)
	if now.In(loc).Hour() >= s.opts.CompletionHour {
		return today.AddDate(0, 0, 1)
	}
	return today
}

func (s *appointmentService) CompletePast(ctx context.Context) (int64, error) {
	now := s.opts.Now()
	cutoff := s.cutoff(now)

	n, err := s.ledger.CompleteBefore(ctx, cutoff, now)
	if err != nil {
		return 0, fmt.Errorf("complete past appointments: %w", err)
	}
	s.opts.Metrics.RecordCompleted(ctx, n)
	if n > 0 {
		s.log.Info("appointments auto-completed", "count", n, "cutoff", cutoff.Format(time.RFC3339))
	}
	return n, nil
}

func (s *appointmentService) notifyCancelled(ctx context.Context, a model.Appointment) {
	if s.opts.Notifier == nil {
		return
	}
	go func() {
		ctx := context.WithoutCancel(ctx)
		u, err := s.users.GetUserByID(ctx, a.UserID)
		if err != nil {
			s.log.Warn("cancellation notice skipped", "appointment_id", a.ID, "error", err)
			return
		}
		if err := s.opts.Notifier.SendCancellation(ctx, *u, a); err != nil {
			s.log.Error("send cancellation failed", "appointment_id", a.ID, "error", err)
		}
	}()
}
