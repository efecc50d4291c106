package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/jyotish_backend/config"
	"github.com/Alijeyrad/jyotish_backend/internal/service/appointment"
	"github.com/Alijeyrad/jyotish_backend/internal/service/notification"
)

// WorkerModule registers the background workers that run beside the API.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc      fx.Lifecycle
	Cfg     *config.Config
	NC      *nats.Conn `optional:"true"`
	Gateway *notification.Gateway
	Appts   appointment.Service
}

func RegisterWorkers(p WorkerParams) {
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.NC != nil {
				if _, err := p.Gateway.Subscribe(p.NC); err != nil {
					return err
				}
				slog.Info("notification_worker: started")
			}

			interval := time.Duration(p.Cfg.Booking.SweepIntervalMinutes) * time.Minute
			if interval <= 0 {
				close(done)
				slog.Info("completion_sweep: disabled")
				return nil
			}
			go func() {
				defer close(done)
				RunCompletionSweep(sweepCtx, p.Appts, interval)
			}()
			slog.Info("completion_sweep: started", "interval", interval)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// subscription drain is handled by ProvideNatsClient
			stopSweep()
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}

// RunCompletionSweep calls CompletePast once immediately and then on every
// tick until ctx is cancelled.
func RunCompletionSweep(ctx context.Context, svc appointment.Service, interval time.Duration) {
	sweep := func() {
		if _, err := svc.CompletePast(ctx); err != nil && ctx.Err() == nil {
			slog.Error("completion_sweep: failed", "error", err)
		}
	}

	sweep()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
