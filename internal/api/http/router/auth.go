package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/jyotish_backend/internal/api/http/handler"
)

func (r *Router) registerAuthRoutes(api fiber.Router, h *handler.AuthHandler, authRequired, throttle fiber.Handler) {
	group := api.Group("/auth")
	group.Post("/register", throttle, h.Register)
	group.Post("/login", throttle, h.Login)
	group.Post("/logout", authRequired, h.Logout)
}
