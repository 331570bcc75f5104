package main

import (
	"fmt"

	"github.com/barberdesk/barberdesk/services/availability-service/internal/availability"
	"github.com/spf13/cobra"
)

func newSlotsCmd(g *globalFlags) *cobra.Command {
	var (
		appointmentsPath string
		date             string
		barber           string
		duration         int
		exclude          string
		now              string
	)
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List bookable start times for one barber and date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := g.engine(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			d, err := availability.ParseDate(date)
			if err != nil {
				return err
			}
			at, err := parseNow(now, engine.Location())
			if err != nil {
				return err
			}
			schedule, err := g.schedule()
			if err != nil {
				return err
			}
			var existing []availability.AppointmentRecord
			if appointmentsPath != "" {
				if err := readJSON(appointmentsPath, &existing); err != nil {
					return fmt.Errorf("appointments: %w", err)
				}
			}

			res, err := engine.Slots(availability.SlotRequest{
				Date:                   d,
				BarberID:               barber,
				ServiceDurationMinutes: duration,
				ExcludeAppointmentID:   exclude,
				Now:                    at,
			}, schedule, existing)
			if err != nil {
				return err
			}
			return g.print(cmd.OutOrStdout(), "slots", res.Slots)
		},
	}
	cmd.Flags().StringVar(&appointmentsPath, "appointments", "", "appointments JSON file")
	cmd.Flags().StringVar(&date, "date", "", "calendar date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&barber, "barber", "", "barber id")
	cmd.Flags().IntVar(&duration, "duration", availability.DefaultAppointmentDurationMinutes, "service duration in minutes")
	cmd.Flags().StringVar(&exclude, "exclude", "", "appointment id being edited")
	cmd.Flags().StringVar(&now, "now", "", "current moment (RFC3339), defaults to the wall clock")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("barber")
	return cmd
}
