package system

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/jyotish_backend/config"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
	"github.com/Alijeyrad/jyotish_backend/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			pool, err := database.NewPoolFromCentral(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer pool.Close()

			applied, err := store.Migrate(ctx, pool)
			if err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			if len(applied) == 0 {
				fmt.Println("Database is up to date.")
				return nil
			}
			for _, name := range applied {
				fmt.Println("applied", name)
			}
			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}
