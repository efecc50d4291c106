package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Alijeyrad/jyotish_backend/config"
	"github.com/Alijeyrad/jyotish_backend/internal/app"
	"github.com/Alijeyrad/jyotish_backend/pkg/logs"
)

// NewJobsCommand groups one-shot batch jobs, meant for cron.
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "One-shot batch jobs",
	}

	cmd.AddCommand(NewCompleteCommand())
	cmd.AddCommand(NewGenerateSlotsCommand())

	return cmd
}

// runWithServices starts the infra and service graph, fills targets via
// fx.Populate, runs fn and stops the graph again.
func runWithServices(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config) error, targets ...any) error {
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
	if err != nil {
		return err
	}
	slog.SetDefault(logs.New(cfg))

	fxApp := fx.New(
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		fx.Populate(targets...),
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
	)
	if err := fxApp.Err(); err != nil {
		return fmt.Errorf("build services: %w", err)
	}

	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	startCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := fxApp.Stop(stopCtx); err != nil {
			slog.Warn("shutdown failed", "error", err)
		}
	}()

	return fn(cmd.Context(), cfg)
}
