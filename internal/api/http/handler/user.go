package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/service/auth"
	"github.com/Alijeyrad/jyotish_backend/internal/service/user"
)

type UserHandler struct {
	svc  user.Service
	auth auth.Service
}

func NewUserHandler(svc user.Service, authSvc auth.Service) *UserHandler {
	return &UserHandler{svc: svc, auth: authSvc}
}

// GET /api/v1/users/me
func (h *UserHandler) GetMe(c fiber.Ctx) error {
	claims := claimsOrNil(c)
	if claims == nil {
		return unauthorized(c)
	}

	u, err := h.svc.GetByID(c.Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, u)
}

// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c fiber.Ctx) error {
	claims := claimsOrNil(c)
	if claims == nil {
		return unauthorized(c)
	}

	var body struct {
		Name     *string `json:"name"`
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Mobile   *string `json:"mobile"`
		Address  *string `json:"address"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c, err)
	}

	u, err := h.svc.Update(c.Context(), claims.UserID, user.UpdateRequest{
		Name:     body.Name,
		Username: body.Username,
		Email:    body.Email,
		Mobile:   body.Mobile,
		Address:  body.Address,
	})
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, u)
}

// GET /api/v1/users/me/notification-prefs
func (h *UserHandler) GetPrefs(c fiber.Ctx) error {
	claims := claimsOrNil(c)
	if claims == nil {
		return unauthorized(c)
	}

	u, err := h.svc.GetByID(c.Context(), claims.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, u.NotificationPrefs())
}

// PUT /api/v1/users/me/notification-prefs
func (h *UserHandler) UpdatePrefs(c fiber.Ctx) error {
	claims := claimsOrNil(c)
	if claims == nil {
		return unauthorized(c)
	}

	var body struct {
		AppointmentEmail *bool `json:"appointment_email" validate:"required"`
		AppointmentSMS   *bool `json:"appointment_sms" validate:"required"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c, err)
	}

	u, err := h.svc.Update(c.Context(), claims.UserID, user.UpdateRequest{
		AppointmentEmail: body.AppointmentEmail,
		AppointmentSMS:   body.AppointmentSMS,
	})
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, u.NotificationPrefs())
}

// PATCH /api/v1/users/me/password
func (h *UserHandler) ChangePassword(c fiber.Ctx) error {
	claims := claimsOrNil(c)
	if claims == nil {
		return unauthorized(c)
	}

	var body struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c, err)
	}

	if err := h.svc.ChangePassword(c.Context(), claims.UserID, body.CurrentPassword, body.NewPassword); err != nil {
		return respondError(c, err)
	}
	return noContent(c)
}

// DELETE /api/v1/users/me
func (h *UserHandler) DeleteMe(c fiber.Ctx) error {
	claims := claimsOrNil(c)
	if claims == nil {
		return unauthorized(c)
	}

	if err := h.svc.Delete(c.Context(), claims.UserID); err != nil {
		return respondError(c, err)
	}
	// the account is gone; its sessions go with it
	_ = h.auth.RevokeUser(c.Context(), claims.UserID)
	return noContent(c)
}

// GET /api/v1/users
func (h *UserHandler) List(c fiber.Ctx) error {
	var q struct {
		Page    int `query:"page"`
		PerPage int `query:"per_page"`
	}
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query parameters")
	}

	users, err := h.svc.List(c.Context(), user.ListRequest{Page: q.Page, PerPage: q.PerPage})
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, users)
}

// GET /api/v1/users/lookup?username=|email=|mobile=
func (h *UserHandler) Lookup(c fiber.Ctx) error {
	var (
		u   *model.User
		err error
	)
	switch {
	case c.Query("username") != "":
		u, err = h.svc.GetByUsername(c.Context(), c.Query("username"))
	case c.Query("email") != "":
		u, err = h.svc.GetByEmail(c.Context(), c.Query("email"))
	case c.Query("mobile") != "":
		u, err = h.svc.GetByMobile(c.Context(), c.Query("mobile"))
	default:
		return badRequest(c, "one of username, email or mobile is required")
	}
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, u)
}

// POST /api/v1/users/:id/block
func (h *UserHandler) Block(c fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "invalid user id")
	}

	var body struct {
		Until time.Time `json:"until" validate:"required"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c, err)
	}

	u, err := h.svc.Block(c.Context(), id, body.Until)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, u)
}

// POST /api/v1/users/:id/unblock
func (h *UserHandler) Unblock(c fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return badRequest(c, "invalid user id")
	}

	u, err := h.svc.Unblock(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, u)
}
