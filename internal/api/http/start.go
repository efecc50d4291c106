package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"

	"github.com/Alijeyrad/jyotish_backend/config"
	"github.com/Alijeyrad/jyotish_backend/internal/api/http/router"
	"github.com/Alijeyrad/jyotish_backend/internal/app"
)

// Start runs the API server, the notification subscriber and the
// completion sweep until the process is signalled.
func Start(cfg *config.Config, timeout time.Duration, extra ...fx.Option) {
	opts := []fx.Option{
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		app.WorkerModule,
		router.Module,
		Module,

		// NewServer registers the listen hook; something has to ask for it
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
	}
	fx.New(append(opts, extra...)...).Run()
}
