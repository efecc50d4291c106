package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/service/appointment"
	"github.com/Alijeyrad/jyotish_backend/pkg/util/calendar"
)

type AppointmentHandler struct {
	svc appointment.Service
	loc *time.Location
}

func NewAppointmentHandler(svc appointment.Service, loc *time.Location) *AppointmentHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentHandler{svc: svc, loc: loc}
}

func actorFrom(c fiber.Ctx) (appointment.Actor, bool) {
	claims := claimsOrNil(c)
	if claims == nil {
		return appointment.Actor{}, false
	}
	return appointment.Actor{UserID: claims.UserID, IsAdmin: claims.IsAdmin()}, true
}

// parseBound accepts an RFC 3339 instant or a YYYY-MM-DD local date.
func (h *AppointmentHandler) parseBound(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := parseInstant(s); err == nil {
		return &t, nil
	}
	t, err := calendar.ParseDate(s, h.loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GET /api/v1/appointments
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		UserID string `query:"user_id"`
		From   string `query:"from"`
		To     string `query:"to"`
	}
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query parameters")
	}

	var req appointment.ListRequest
	if q.UserID != "" {
		id, err := uuid.Parse(q.UserID)
		if err != nil {
			return badRequest(c, "invalid user_id")
		}
		req.UserID = &id
	}
	var err error
	if req.From, err = h.parseBound(q.From); err != nil {
		return badRequest(c, "invalid from")
	}
	if req.To, err = h.parseBound(q.To); err != nil {
		return badRequest(c, "invalid to")
	}

	appts, err := h.svc.List(c.Context(), actor, req)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, appts)
}

// POST /api/v1/appointments
func (h *AppointmentHandler) Book(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		Date    time.Time  `json:"date" validate:"required"`
		EndTime *time.Time `json:"end_time"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c, err)
	}

	a, err := h.svc.Book(c.Context(), actor, appointment.BookRequest{Date: body.Date, EndTime: body.EndTime})
	if err != nil {
		return respondError(c, err)
	}
	return created(c, a)
}

// POST /api/v1/appointments/complete-past
func (h *AppointmentHandler) CompletePast(c fiber.Ctx) error {
	n, err := h.svc.CompletePast(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.Map{"completed": n})
}

// GET /api/v1/appointments/:id
func (h *AppointmentHandler) GetByID(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	a, err := h.svc.Get(c.Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, a)
}

// PATCH /api/v1/appointments/:id
func (h *AppointmentHandler) Update(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Date   *time.Time `json:"date"`
		Status *string    `json:"status" validate:"omitempty,oneof=confirmed completed cancelled"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c, err)
	}

	req := appointment.UpdateRequest{Date: body.Date}
	if body.Status != nil {
		st := model.AppointmentStatus(*body.Status)
		req.Status = &st
	}

	a, err := h.svc.Update(c.Context(), actor, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, a)
}

// PATCH /api/v1/appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	a, err := h.svc.Cancel(c.Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, a)
}

// PATCH /api/v1/appointments/:id/complete
func (h *AppointmentHandler) Complete(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	a, err := h.svc.Complete(c.Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, a)
}

// DELETE /api/v1/appointments/:id
func (h *AppointmentHandler) Delete(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	if err := h.svc.Delete(c.Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	return noContent(c)
}
