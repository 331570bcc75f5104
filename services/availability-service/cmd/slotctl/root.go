package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/barberdesk/barberdesk/services/availability-service/internal/availability"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	schedulePath string
	utcOffset    string
	asJSON       bool
	verbose      bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "slotctl",
		Short:         "Compute barber availability from schedule and appointment files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.schedulePath, "schedule", "", "weekly schedule JSON file")
	root.PersistentFlags().StringVar(&g.utcOffset, "utc-offset", "", "schedule location: offset (-03:00) or IANA name (default -03:00)")
	root.PersistentFlags().BoolVar(&g.asJSON, "json", false, "print JSON instead of one value per line")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log schedule data problems to stderr")
	_ = root.MarkPersistentFlagRequired("schedule")

	root.AddCommand(newSlotsCmd(g), newOpenDaysCmd(g))
	return root
}

func (g *globalFlags) engine(errOut io.Writer, opts ...availability.Option) (*availability.Engine, error) {
	loc, err := availability.ParseLocation(g.utcOffset)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.DiscardHandler)
	if g.verbose {
		logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return availability.NewEngine(loc, logger, opts...), nil
}

func (g *globalFlags) schedule() (availability.WeeklySchedule, error) {
	var s availability.WeeklySchedule
	if err := readJSON(g.schedulePath, &s); err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	return s, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (g *globalFlags) print(out io.Writer, key string, values []string) error {
	if g.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string][]string{key: values})
	}
	for _, v := range values {
		if _, err := fmt.Fprintln(out, v); err != nil {
			return err
		}
	}
	return nil
}

func parseNow(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--now must be RFC3339: %w", err)
	}
	return t.In(loc), nil
}
