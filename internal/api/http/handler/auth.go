package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/jyotish_backend/internal/service/auth"
)

type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func tokenResponse(t *auth.AuthTokens) fiber.Map {
	return fiber.Map{
		"access_token": t.AccessToken,
		"token_type":   "Bearer",
		"expires_at":   t.ExpiresAt,
		"expires_in":   t.ExpiresIn,
		"user":         t.User,
	}
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var body struct {
		Name     string `json:"name" validate:"required"`
		Username string `json:"username" validate:"required"`
		Email    string `json:"email" validate:"required"`
		Mobile   string `json:"mobile" validate:"required"`
		Address  string `json:"address"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c, err)
	}

	tokens, err := h.svc.Register(c.Context(), auth.RegisterRequest{
		Name:     body.Name,
		Username: body.Username,
		Email:    body.Email,
		Mobile:   body.Mobile,
		Address:  body.Address,
		Password: body.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	return created(c, tokenResponse(tokens))
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body struct {
		Identifier string `json:"identifier" validate:"required"`
		Password   string `json:"password" validate:"required"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return invalidBody(c, err)
	}

	tokens, err := h.svc.Login(c.Context(), auth.LoginRequest{
		Identifier: body.Identifier,
		Password:   body.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	return ok(c, tokenResponse(tokens))
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	claims := claimsOrNil(c)
	if claims == nil {
		return unauthorized(c)
	}
	if err := h.svc.Logout(c.Context(), claims.SessionID); err != nil {
		return respondError(c, err)
	}
	return noContent(c)
}
