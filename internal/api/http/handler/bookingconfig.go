package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/jyotish_backend/internal/service/bookingconfig"
)

type BookingConfigHandler struct {
	svc      bookingconfig.Service
	loc      *time.Location
	enforced bool
	now      func() time.Time
}

// NewBookingConfigHandler takes the booking timezone and whether the
// weekly window is enforced for clients, both reported by Window.
func NewBookingConfigHandler(svc bookingconfig.Service, loc *time.Location, enforced bool) *BookingConfigHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingConfigHandler{svc: svc, loc: loc, enforced: enforced, now: time.Now}
}

// GET /api/v1/booking-config
func (h *BookingConfigHandler) List(c fiber.Ctx) error {
	entries, err := h.svc.All(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, entries)
}

// PUT /api/v1/booking-config/:key
func (h *BookingConfigHandler) Set(c fiber.Ctx) error {
	var body struct {
		Value *string `json:"value" validate:"required"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c, err)
	}

	st, err := h.svc.Set(c.Context(), c.Params("key"), *body.Value)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, st)
}

// GET /api/v1/booking-config/window
func (h *BookingConfigHandler) Window(c fiber.Ctx) error {
	w, err := h.svc.BookingWindow(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	now := h.now().In(h.loc)
	return ok(c, fiber.Map{
		"open":         w.IsOpen(now),
		"enforced":     h.enforced,
		"day":          int(w.Day),
		"day_name":     w.Day.String(),
		"start_hour":   w.StartHour,
		"end_hour":     w.EndHour,
		"timezone":     h.loc.String(),
		"next_opening": w.NextOpening(now, h.loc),
	})
}
