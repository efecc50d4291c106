// Package booking decides whether a user may hold an appointment at a given
// instant and records it when they may.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/service/bookingconfig"
	"github.com/Alijeyrad/jyotish_backend/internal/service/ledger"
	"github.com/Alijeyrad/jyotish_backend/internal/service/slot"
	"github.com/Alijeyrad/jyotish_backend/pkg/observability"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Request struct {
	User  model.User
	Start time.Time
	// End is what the client proposed. It is only compared against the
	// fixed duration for logging; the stored end is always derived.
	End *time.Time
	// ExcludeID skips an existing appointment in the weekly and conflict
	// checks, so a reschedule does not collide with itself.
	ExcludeID uuid.UUID
	// ActorIsAdmin is set when an admin acts on another user's booking.
	// It lifts the booking window only; the other rules follow User.
	ActorIsAdmin bool
}

// Notifier receives confirmed bookings.
type Notifier interface {
	SendConfirmation(ctx context.Context, user model.User, appt model.Appointment) error
}

type Options struct {
	// AdminBypass lets admins skip the weekly, disabled-day and grid checks.
	AdminBypass bool
	// EnforceWindow rejects non-admin bookings made outside the weekly window.
	EnforceWindow bool

	Now      func() time.Time
	Notifier Notifier
	Metrics  *observability.BookingMetrics
	Logger   *slog.Logger
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Check runs every rule without writing anything.
	Check(ctx context.Context, req Request) error
	// Book checks, persists a confirmed appointment and notifies the user.
	Book(ctx context.Context, req Request) (*model.Appointment, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type validator struct {
	ledger *ledger.Ledger
	slots  slot.Service
	config bookingconfig.Service
	loc    *time.Location
	opts   Options
	log    *slog.Logger
}

func New(l *ledger.Ledger, slots slot.Service, cfg bookingconfig.Service, opts Options) Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &validator{
		ledger: l,
		slots:  slots,
		config: cfg,
		loc:    l.Location(),
		opts:   opts,
		log:    log.With("component", "booking"),
	}
}

func (v *validator) Check(ctx context.Context, req Request) error {
	now := v.opts.Now().In(v.loc)
	start := req.Start.In(v.loc)
	u := req.User

	if u.IsBlockedAt(now) {
		return &BlockedError{Until: *u.BlockedUntil}
	}

	rules, err := v.config.Rules(ctx)
	if err != nil {
		return fmt.Errorf("load booking config: %w", err)
	}

	if v.opts.EnforceWindow && !u.IsAdmin && !req.ActorIsAdmin && !rules.Window.IsOpen(now) {
		return &WindowClosedError{Opens: rules.Window.NextOpening(now, v.loc)}
	}

	if !v.bypass(u) {
		taken, err := v.ledger.ActiveInWeek(ctx, u.ID, start, req.ExcludeID)
		if err != nil {
			return fmt.Errorf("check weekly limit: %w", err)
		}
		if taken {
			return ErrWeeklyLimitExceeded
		}
		if rules.IsDisabled(start.Weekday()) {
			return ErrDayUnavailable
		}
		if !rules.Grid.Contains(start) {
			return ErrInvalidTimeSlot
		}
	}

	enabled, err := v.slots.EnabledAt(ctx, req.Start)
	if err != nil {
		return fmt.Errorf("check slot: %w", err)
	}
	if !enabled {
		return ErrSlotUnavailable
	}

	booked, err := v.ledger.ActiveAt(ctx, req.Start, req.ExcludeID)
	if err != nil {
		return fmt.Errorf("check conflict: %w", err)
	}
	if booked {
		return ErrSlotAlreadyBooked
	}
	return nil
}

func (v *validator) bypass(u model.User) bool {
	return v.opts.AdminBypass && u.IsAdmin
}

func (v *validator) Book(ctx context.Context, req Request) (*model.Appointment, error) {
	appt, err := v.book(ctx, req)
	v.opts.Metrics.RecordOutcome(ctx, Reason(err))
	if err != nil {
		return nil, err
	}

	if v.opts.Notifier != nil {
		go v.notify(context.WithoutCancel(ctx), req.User, *appt)
	}
	return appt, nil
}

func (v *validator) book(ctx context.Context, req Request) (*model.Appointment, error) {
	if err := v.Check(ctx, req); err != nil {
		return nil, err
	}

	if req.End != nil && !req.End.Equal(req.Start.Add(v.ledger.Duration())) {
		v.log.Debug("ignoring client end time", "user_id", req.User.ID, "end", req.End.Format(time.RFC3339))
	}

	create := v.ledger.Create
	if v.bypass(req.User) {
		create = v.ledger.CreateExempt
	}
	appt, err := create(ctx, req.User.ID, req.Start)
	if err != nil {
		return nil, FromStoreError(err)
	}

	v.log.Info("appointment booked",
		"appointment_id", appt.ID,
		"user_id", appt.UserID,
		"date", appt.Date.In(v.loc).Format(time.RFC3339),
	)
	return appt, nil
}

func (v *validator) notify(ctx context.Context, u model.User, appt model.Appointment) {
	if err := v.opts.Notifier.SendConfirmation(ctx, u, appt); err != nil {
		v.log.Error("send confirmation failed", "appointment_id", appt.ID, "error", err)
	}
}
