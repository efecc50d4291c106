package jobs

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/jyotish_backend/config"
	"github.com/Alijeyrad/jyotish_backend/internal/service/appointment"
)

func NewCompleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Mark confirmed appointments from past days as completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc appointment.Service
			return runWithServices(cmd, func(ctx context.Context, _ *config.Config) error {
				n, err := svc.CompletePast(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Completed %d appointment(s).\n", n)
				return nil
			}, &svc)
		},
	}
}
