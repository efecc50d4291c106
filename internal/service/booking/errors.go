package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/Alijeyrad/jyotish_backend/internal/store"
)

var (
	ErrBlockedAccount      = errors.New("account is blocked")
	ErrWindowClosed        = errors.New("booking window is closed")
	ErrWeeklyLimitExceeded = errors.New("only one appointment per week is allowed")
	ErrDayUnavailable      = errors.New("appointments are not available on this day")
	ErrInvalidTimeSlot     = errors.New("time is outside the bookable grid")
	ErrSlotUnavailable     = errors.New("no enabled slot at this time")
	ErrSlotAlreadyBooked   = errors.New("slot is already booked")
)

// BlockedError is returned for a user whose block has not expired.
type BlockedError struct {
	Until time.Time
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("account is blocked until %s", e.Until.Format(time.DateOnly))
}

func (e *BlockedError) Is(target error) bool { return target == ErrBlockedAccount }

// WindowClosedError carries the next instant the booking window opens.
type WindowClosedError struct {
	Opens time.Time
}

func (e *WindowClosedError) Error() string {
	return fmt.Sprintf("booking window is closed, next opening %s", e.Opens.Format(time.RFC3339))
}

func (e *WindowClosedError) Is(target error) bool { return target == ErrWindowClosed }

// FromStoreError maps unique-index violations raised by the ledger onto the
// validator rule they back up.
func FromStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrDateTaken):
		return ErrSlotAlreadyBooked
	case errors.Is(err, store.ErrWeekTaken):
		return ErrWeeklyLimitExceeded
	}
	return err
}

// Reason returns a short label for a rejection, or "error" for anything
// that is not a booking rule.
func Reason(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, ErrBlockedAccount):
		return "blocked"
	case errors.Is(err, ErrWindowClosed):
		return "window_closed"
	case errors.Is(err, ErrWeeklyLimitExceeded):
		return "weekly_limit"
	case errors.Is(err, ErrDayUnavailable):
		return "day_unavailable"
	case errors.Is(err, ErrInvalidTimeSlot):
		return "invalid_time"
	case errors.Is(err, ErrSlotUnavailable):
		return "slot_unavailable"
	case errors.Is(err, ErrSlotAlreadyBooked):
		return "already_booked"
	}
	return "error"
}
