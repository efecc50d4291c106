package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/jyotish_backend/internal/api/http/handler"
	"github.com/Alijeyrad/jyotish_backend/pkg/authorize"
)

func (r *Router) registerBookingConfigRoutes(
	api fiber.Router,
	h *handler.BookingConfigHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	cfg := api.Group("/booking-config", authRequired)

	cfg.Get("/", requirePerm(authorize.ResourceBookingConfig, authorize.ActionList), h.List)
	cfg.Get("/window", requirePerm(authorize.ResourceBookingConfig, authorize.ActionRead), h.Window)
	cfg.Put("/:key", requirePerm(authorize.ResourceBookingConfig, authorize.ActionUpdate), h.Set)
}
