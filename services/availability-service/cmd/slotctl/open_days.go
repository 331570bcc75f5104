package main

import (
	"fmt"

	"github.com/barberdesk/barberdesk/services/availability-service/internal/availability"
	"github.com/spf13/cobra"
)

func newOpenDaysCmd(g *globalFlags) *cobra.Command {
	var (
		from string
		days int
	)
	cmd := &cobra.Command{
		Use:   "open-days",
		Short: "List the dates that have at least one open window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days <= 0 || days > availability.MaxOpenDaysLookahead {
				return fmt.Errorf("--days must be between 1 and %d", availability.MaxOpenDaysLookahead)
			}
			engine, err := g.engine(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			start := engine.Today()
			if from != "" {
				if start, err = availability.ParseDate(from); err != nil {
					return err
				}
			}
			schedule, err := g.schedule()
			if err != nil {
				return err
			}

			open := engine.OpenDays(start, days, schedule)
			labels := make([]string, 0, len(open))
			for _, d := range open {
				labels = append(labels, d.String())
			}
			return g.print(cmd.OutOrStdout(), "open_days", labels)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date (YYYY-MM-DD), defaults to today")
	cmd.Flags().IntVar(&days, "days", 14, "number of days to inspect")
	return cmd
}
