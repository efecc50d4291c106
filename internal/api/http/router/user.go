package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/jyotish_backend/internal/api/http/handler"
	"github.com/Alijeyrad/jyotish_backend/pkg/authorize"
)

func (r *Router) registerUserRoutes(
	api fiber.Router,
	h *handler.UserHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	users := api.Group("/users", authRequired)

	users.Get("/me", requirePerm(authorize.ResourceUser, authorize.ActionRead), h.GetMe)
	users.Patch("/me", requirePerm(authorize.ResourceUser, authorize.ActionUpdate), h.UpdateMe)
	users.Patch("/me/password", requirePerm(authorize.ResourceUser, authorize.ActionUpdate), h.ChangePassword)
	users.Delete("/me", requirePerm(authorize.ResourceUser, authorize.ActionDelete), h.DeleteMe)
	users.Get("/me/notification-prefs", requirePerm(authorize.ResourceUser, authorize.ActionRead), h.GetPrefs)
	users.Put("/me/notification-prefs", requirePerm(authorize.ResourceUser, authorize.ActionUpdate), h.UpdatePrefs)

	// admin
	users.Get("/", requirePerm(authorize.ResourceUser, authorize.ActionList), h.List)
	users.Get("/lookup", requirePerm(authorize.ResourceUser, authorize.ActionList), h.Lookup)
	users.Post("/:id/block", requirePerm(authorize.ResourceUser, authorize.ActionBlock), h.Block)
	users.Post("/:id/unblock", requirePerm(authorize.ResourceUser, authorize.ActionBlock), h.Unblock)
}
