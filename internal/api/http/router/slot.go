package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/jyotish_backend/internal/api/http/handler"
	"github.com/Alijeyrad/jyotish_backend/pkg/authorize"
)

func (r *Router) registerSlotRoutes(
	api fiber.Router,
	h *handler.SlotHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	slots := api.Group("/slots", authRequired)

	slots.Get("/", requirePerm(authorize.ResourceSlot, authorize.ActionList), h.ListForDate)
	slots.Post("/", requirePerm(authorize.ResourceSlot, authorize.ActionCreate), h.Create)
	slots.Post("/generate", requirePerm(authorize.ResourceSlot, authorize.ActionExecute), h.Generate)
	slots.Patch("/:id", requirePerm(authorize.ResourceSlot, authorize.ActionUpdate), h.Update)
	slots.Delete("/:id", requirePerm(authorize.ResourceSlot, authorize.ActionDelete), h.Delete)
}
