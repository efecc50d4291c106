package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Alijeyrad/jyotish_backend/config"
	"github.com/Alijeyrad/jyotish_backend/internal/api/http/handler"
	"github.com/Alijeyrad/jyotish_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/jyotish_backend/internal/service/appointment"
	"github.com/Alijeyrad/jyotish_backend/internal/service/auth"
	"github.com/Alijeyrad/jyotish_backend/internal/service/bookingconfig"
	"github.com/Alijeyrad/jyotish_backend/internal/service/slot"
	"github.com/Alijeyrad/jyotish_backend/internal/service/user"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
	"github.com/Alijeyrad/jyotish_backend/pkg/authorize"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

const readinessTimeout = 2 * time.Second

type Params struct {
	fx.In

	Cfg            *config.Config
	Store          store.Store
	Auth           authorize.IAuthorization
	AuthSvc        auth.Service
	UserSvc        user.Service
	ConfigSvc      bookingconfig.Service
	SlotSvc        slot.Service
	AppointmentSvc appointment.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Middlewares
	authRequired := middleware.AuthRequired(r.p.AuthSvc)
	throttle := middleware.NewAuthThrottle(
		r.p.Cfg.Server.RateLimit.AuthPerMinute,
		r.p.Cfg.Server.RateLimit.AuthBurst,
	).Handler()

	requirePerm := func(res authorize.Resource, act authorize.Action) fiber.Handler {
		return middleware.RequirePermission(r.p.Auth, res, act)
	}

	// 3. Handlers
	loc := r.p.Cfg.Booking.Location()
	authH := handler.NewAuthHandler(r.p.AuthSvc)
	userH := handler.NewUserHandler(r.p.UserSvc, r.p.AuthSvc)
	configH := handler.NewBookingConfigHandler(r.p.ConfigSvc, loc, r.p.Cfg.Booking.EnforceWindow)
	slotH := handler.NewSlotHandler(r.p.SlotSvc, loc)
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc, loc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, authH, authRequired, throttle)
	r.registerUserRoutes(api, userH, authRequired, requirePerm)
	r.registerBookingConfigRoutes(api, configH, authRequired, requirePerm)
	r.registerSlotRoutes(api, slotH, authRequired, requirePerm)
	r.registerAppointmentRoutes(api, appointmentH, authRequired, requirePerm)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			ctx, cancel := context.WithTimeout(c.Context(), readinessTimeout)
			defer cancel()
			return r.p.Store.Ping(ctx) == nil
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
