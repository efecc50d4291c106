// Package slot is the registry of admin-curated bookable instants. Whether a
// slot is booked is never stored; it is projected from the ledger on read.
package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/service/bookingconfig"
	"github.com/Alijeyrad/jyotish_backend/internal/service/ledger"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
	"github.com/Alijeyrad/jyotish_backend/pkg/util/calendar"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
	StatusDisabled  Status = "disabled"
)

// DeriveStatus: disabled wins over booked, booked over available.
func DeriveStatus(enabled, booked bool) Status {
	switch {
	case !enabled:
		return StatusDisabled
	case booked:
		return StatusBooked
	default:
		return StatusAvailable
	}
}

// View is a slot annotated with its derived booking state.
type View struct {
	model.Slot
	IsBooked bool   `json:"is_booked"`
	Status   Status `json:"status"`
}

type GenerateResult struct {
	Days    int `json:"days"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

const maxGenerateDays = 62

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	ListForDate(ctx context.Context, date time.Time) ([]View, error)
	Create(ctx context.Context, instant time.Time, enabled bool) (slot *model.Slot, created bool, err error)
	Update(ctx context.Context, id uuid.UUID, enabled bool) (*model.Slot, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Generate creates enabled slots on the configured grid for each
	// non-disabled day in [from, from+days).
	Generate(ctx context.Context, from time.Time, days int) (GenerateResult, error)
	// EnabledAt reports whether an enabled slot exists at exactly instant.
	EnabledAt(ctx context.Context, instant time.Time) (bool, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type slotService struct {
	slots  store.SlotStore
	ledger *ledger.Ledger
	config bookingconfig.Service
	loc    *time.Location
}

func New(slots store.SlotStore, l *ledger.Ledger, cfg bookingconfig.Service) Service {
	return &slotService{slots: slots, ledger: l, config: cfg, loc: l.Location()}
}

func mapErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *slotService) ListForDate(ctx context.Context, date time.Time) ([]View, error) {
	start, end := calendar.DayBounds(date, s.loc)

	slots, err := s.slots.ListSlotsBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	appts, err := s.ledger.ByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	booked := map[int64]struct{}{}
	for _, a := range appts {
		if a.Status != model.StatusCancelled {
			booked[a.Date.UnixNano()] = struct{}{}
		}
	}

	return lo.Map(slots, func(sl model.Slot, _ int) View {
		_, isBooked := booked[sl.Date.UnixNano()]
		return View{Slot: sl, IsBooked: isBooked, Status: DeriveStatus(sl.IsEnabled, isBooked)}
	}), nil
}

func (s *slotService) Create(ctx context.Context, instant time.Time, enabled bool) (*model.Slot, bool, error) {
	sl, created, err := s.slots.InsertSlot(ctx, instant.Truncate(time.Minute), enabled)
	if err != nil {
		return nil, false, fmt.Errorf("insert slot: %w", err)
	}
	return sl, created, nil
}

func (s *slotService) Update(ctx context.Context, id uuid.UUID, enabled bool) (*model.Slot, error) {
	sl, err := s.slots.SetSlotEnabled(ctx, id, enabled)
	if err != nil {
		return nil, mapErr(err)
	}
	return sl, nil
}

// Delete removes the slot even when an appointment sits on it; the booking
// itself is unaffected.
func (s *slotService) Delete(ctx context.Context, id uuid.UUID) error {
	return mapErr(s.slots.DeleteSlot(ctx, id))
}

func (s *slotService) Generate(ctx context.Context, from time.Time, days int) (GenerateResult, error) {
	if days < 1 || days > maxGenerateDays {
		return GenerateResult{}, ErrInvalidRange
	}
	rules, err := s.config.Rules(ctx)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("load booking config: %w", err)
	}

	res := GenerateResult{Days: days}
	day := calendar.StartOfDay(from, s.loc)
	for i := 0; i < days; i++ {
		d := day.AddDate(0, 0, i)
		if rules.IsDisabled(d.Weekday()) {
			continue
		}
		for _, at := range rules.Grid.Instants(d, s.loc) {
			_, created, err := s.slots.InsertSlot(ctx, at, true)
			if err != nil {
				return res, fmt.Errorf("insert slot %s: %w", at.Format(time.RFC3339), err)
			}
			if created {
				res.Created++
			} else {
				res.Skipped++
			}
		}
	}
	return res, nil
}

func (s *slotService) EnabledAt(ctx context.Context, instant time.Time) (bool, error) {
	// a one-minute window keeps the lookup on the range index
	slots, err := s.slots.ListSlotsBetween(ctx, instant, instant.Add(time.Minute))
	if err != nil {
		return false, fmt.Errorf("list slots: %w", err)
	}
	return lo.ContainsBy(slots, func(sl model.Slot) bool {
		return sl.Date.Equal(instant) && sl.IsEnabled
	}), nil
}
