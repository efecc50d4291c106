package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/jyotish_backend/config"
	"github.com/Alijeyrad/jyotish_backend/internal/service/slot"
	"github.com/Alijeyrad/jyotish_backend/pkg/util/calendar"
)

func NewGenerateSlotsCommand() *cobra.Command {
	var (
		from string
		days int
	)

	cmd := &cobra.Command{
		Use:   "generate-slots",
		Short: "Create grid slots for a range of days",
		Long: `Creates an enabled slot at every grid point of every day in the range,
skipping disabled weekdays. Existing slots are left untouched, so the job
is safe to re-run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc slot.Service
			return runWithServices(cmd, func(ctx context.Context, cfg *config.Config) error {
				loc := cfg.Booking.Location()
				start := calendar.StartOfDay(time.Now(), loc).AddDate(0, 0, 1)
				if from != "" {
					d, err := calendar.ParseDate(from, loc)
					if err != nil {
						return fmt.Errorf("--from must be YYYY-MM-DD: %w", err)
					}
					start = d
				}

				res, err := svc.Generate(ctx, start, days)
				if err != nil {
					return err
				}
				fmt.Printf("Generated slots for %d day(s) from %s: %d created, %d already present.\n",
					res.Days, start.Format(time.DateOnly), res.Created, res.Skipped)
				return nil
			}, &svc)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (default tomorrow)")
	cmd.Flags().IntVar(&days, "days", 7, "number of days to fill")

	return cmd
}
