package system

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/jyotish_backend/config"
	"github.com/Alijeyrad/jyotish_backend/internal/service/user"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
	"github.com/Alijeyrad/jyotish_backend/pkg/database"
	"github.com/Alijeyrad/jyotish_backend/pkg/util/password"
)

func NewSeedAdminCommand() *cobra.Command {
	var req user.AdminRequest

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an admin account or promote an existing user",
		Long: `Promotes --username to admin when the user exists. Otherwise creates it
with --name, --email and --mobile. When --password is empty a random one is
generated and printed once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.TimeoutSeconds)*time.Second)
			defer cancel()

			pool, err := database.NewPoolFromCentral(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer pool.Close()

			generated := req.Password == ""
			if generated {
				if req.Password, err = password.Generate(20); err != nil {
					return err
				}
			}

			svc := user.New(store.New(pool), password.NewHasher(password.FromCentralConfig(cfg)), cfg.Booking.DefaultRegion)
			u, created, err := svc.EnsureAdmin(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to seed admin: %w", err)
			}

			if !created {
				fmt.Printf("User %s is an admin. Existing sessions keep their old role until they log in again.\n", u.Username)
				return nil
			}
			fmt.Printf("Created admin %s (%s).\n", u.Username, u.ID)
			if generated {
				fmt.Printf("Generated password: %s\n", req.Password)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "admin", "admin username")
	cmd.Flags().StringVar(&req.Name, "name", "Administrator", "display name for a new admin")
	cmd.Flags().StringVar(&req.Email, "email", "", "email for a new admin")
	cmd.Flags().StringVar(&req.Mobile, "mobile", "", "mobile number for a new admin")
	cmd.Flags().StringVar(&req.Password, "password", "", "password for a new admin (generated when empty)")

	return cmd
}
