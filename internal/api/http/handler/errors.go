package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/jyotish_backend/internal/service/appointment"
	"github.com/Alijeyrad/jyotish_backend/internal/service/auth"
	"github.com/Alijeyrad/jyotish_backend/internal/service/booking"
	"github.com/Alijeyrad/jyotish_backend/internal/service/bookingconfig"
	"github.com/Alijeyrad/jyotish_backend/internal/service/slot"
	"github.com/Alijeyrad/jyotish_backend/internal/service/user"
	"github.com/Alijeyrad/jyotish_backend/pkg/reqctx"
	"github.com/Alijeyrad/jyotish_backend/pkg/util/password"
)

// ErrorHandler renders errors that escape handlers and middleware
// (fiber.Error from auth, RBAC, limiters, body binding) in the same JSON
// shape as handler responses.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "error"
		switch fe.Code {
		case fiber.StatusUnauthorized:
			code = "unauthorized"
		case fiber.StatusForbidden:
			code = "forbidden"
		case fiber.StatusNotFound:
			code = "not_found"
		case fiber.StatusTooManyRequests:
			code = "rate_limited"
		case fiber.StatusBadRequest:
			code = "validation_error"
		}
		return fail(c, fe.Code, code, fe.Message, nil)
	}
	return respondError(c, err)
}

// respondError maps a service error onto its HTTP response.
func respondError(c fiber.Ctx, err error) error {
	var blocked *booking.BlockedError
	if errors.As(err, &blocked) {
		return fail(c, fiber.StatusForbidden, "blocked_account", err.Error(), fiber.Map{
			"blocked_until": blocked.Until.Format(time.RFC3339),
		})
	}
	var closed *booking.WindowClosedError
	if errors.As(err, &closed) {
		return fail(c, fiber.StatusForbidden, "window_closed", err.Error(), fiber.Map{
			"opens_at": closed.Opens.Format(time.RFC3339),
		})
	}

	switch {
	case errors.Is(err, booking.ErrBlockedAccount):
		return fail(c, fiber.StatusForbidden, "blocked_account", err.Error(), nil)
	case errors.Is(err, booking.ErrWindowClosed):
		return fail(c, fiber.StatusForbidden, "window_closed", err.Error(), nil)
	case errors.Is(err, booking.ErrWeeklyLimitExceeded):
		return fail(c, fiber.StatusConflict, "weekly_limit_exceeded", err.Error(), nil)
	case errors.Is(err, booking.ErrDayUnavailable):
		return fail(c, fiber.StatusUnprocessableEntity, "day_unavailable", err.Error(), nil)
	case errors.Is(err, booking.ErrInvalidTimeSlot):
		return fail(c, fiber.StatusUnprocessableEntity, "invalid_time_slot", err.Error(), nil)
	case errors.Is(err, booking.ErrSlotUnavailable):
		return fail(c, fiber.StatusConflict, "slot_unavailable", err.Error(), nil)
	case errors.Is(err, booking.ErrSlotAlreadyBooked):
		return fail(c, fiber.StatusConflict, "slot_already_booked", err.Error(), nil)

	case errors.Is(err, appointment.ErrNotFound),
		errors.Is(err, slot.ErrNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, bookingconfig.ErrUnknownKey):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrForbidden):
		return forbidden(c, err.Error())
	case errors.Is(err, appointment.ErrInvalidTransition):
		return fail(c, fiber.StatusConflict, "invalid_transition", err.Error(), nil)

	case errors.Is(err, user.ErrUsernameTaken),
		errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, user.ErrMobileTaken):
		return conflict(c, err.Error())

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrSessionNotFound):
		return fail(c, fiber.StatusUnauthorized, "unauthorized", err.Error(), nil)

	case errors.Is(err, appointment.ErrEmptyUpdate),
		errors.Is(err, appointment.ErrInvalidRange),
		errors.Is(err, slot.ErrInvalidRange),
		errors.Is(err, bookingconfig.ErrInvalidValue),
		errors.Is(err, user.ErrWrongPassword),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, user.ErrInvalidPhone),
		errors.Is(err, user.ErrInvalidUsername),
		errors.Is(err, user.ErrInvalidName),
		errors.Is(err, user.ErrEmptyUpdate),
		errors.Is(err, user.ErrBlockInPast),
		errors.Is(err, password.ErrTooShort):
		return badRequest(c, err.Error())
	}

	attrs := append([]any{"error", err, "path", c.Path()}, reqctx.LogAttrs(c.Context())...)
	slog.ErrorContext(c.Context(), "unhandled request error", attrs...)
	return internalError(c)
}
