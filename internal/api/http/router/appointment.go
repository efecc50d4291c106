package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/jyotish_backend/internal/api/http/handler"
	"github.com/Alijeyrad/jyotish_backend/pkg/authorize"
)

func (r *Router) registerAppointmentRoutes(
	api fiber.Router,
	ah *handler.AppointmentHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	appts := api.Group("/appointments", authRequired)

	appts.Get("/", requirePerm(authorize.ResourceAppointment, authorize.ActionList), ah.List)
	appts.Post("/", requirePerm(authorize.ResourceAppointment, authorize.ActionCreate), ah.Book)
	appts.Post("/complete-past", requirePerm(authorize.ResourceAppointment, authorize.ActionExecute), ah.CompletePast)

	a := appts.Group("/:id")
	a.Get("/", requirePerm(authorize.ResourceAppointment, authorize.ActionRead), ah.GetByID)
	a.Patch("/", requirePerm(authorize.ResourceAppointment, authorize.ActionUpdate), ah.Update)
	a.Patch("/cancel", requirePerm(authorize.ResourceAppointment, authorize.ActionCancel), ah.Cancel)
	a.Patch("/complete", requirePerm(authorize.ResourceAppointment, authorize.ActionComplete), ah.Complete)
	a.Delete("/", requirePerm(authorize.ResourceAppointment, authorize.ActionDelete), ah.Delete)
}
