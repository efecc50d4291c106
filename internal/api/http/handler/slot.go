package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/jyotish_backend/internal/service/slot"
	"github.com/Alijeyrad/jyotish_backend/pkg/util/calendar"
)

type SlotHandler struct {
	svc slot.Service
	loc *time.Location
}

func NewSlotHandler(svc slot.Service, loc *time.Location) *SlotHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SlotHandler{svc: svc, loc: loc}
}

// GET /api/v1/slots?date=YYYY-MM-DD
func (h *SlotHandler) ListForDate(c fiber.Ctx) error {
	raw := c.Query("date")
	if raw == "" {
		return badRequest(c, "date is required")
	}
	day, err := calendar.ParseDate(raw, h.loc)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}

	views, err := h.svc.ListForDate(c.Context(), day)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, views)
}

// POST /api/v1/slots
func (h *SlotHandler) Create(c fiber.Ctx) error {
	var body struct {
		Date      time.Time `json:"date" validate:"required"`
		IsEnabled *bool     `json:"is_enabled"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c, err)
	}

	enabled := true
	if body.IsEnabled != nil {
		enabled = *body.IsEnabled
	}

	s, inserted, err := h.svc.Create(c.Context(), body.Date, enabled)
	if err != nil {
		return respondError(c, err)
	}
	if !inserted {
		return ok(c, s)
	}
	return created(c, s)
}

// POST /api/v1/slots/generate
func (h *SlotHandler) Generate(c fiber.Ctx) error {
	var body struct {
		From string `json:"from" validate:"required"`
		Days int    `json:"days" validate:"required,min=1"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c, err)
	}
	from, err := calendar.ParseDate(body.From, h.loc)
	if err != nil {
		return badRequest(c, "from must be YYYY-MM-DD")
	}

	res, err := h.svc.Generate(c.Context(), from, body.Days)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, res)
}

// PATCH /api/v1/slots/:id
func (h *SlotHandler) Update(c fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "invalid slot id")
	}

	var body struct {
		IsEnabled *bool `json:"is_enabled" validate:"required"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c, err)
	}

	s, err := h.svc.Update(c.Context(), id, *body.IsEnabled)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, s)
}

// DELETE /api/v1/slots/:id
func (h *SlotHandler) Delete(c fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "invalid slot id")
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return noContent(c)
}
