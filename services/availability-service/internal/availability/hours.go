package availability

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrScheduleData marks business-hours rows that cannot be turned into an operating window.
var ErrScheduleData = errors.New("malformed business hours")

// DaySchedule is one weekday row of a branch's business hours, as stored.
type DaySchedule struct {
	Weekday    time.Weekday `json:"weekday"`
	IsOpen     bool         `json:"is_open"`
	OpenTime   string       `json:"open_time"`
	CloseTime  string       `json:"close_time"`
	LunchStart string       `json:"lunch_start,omitempty"`
	LunchEnd   string       `json:"lunch_end,omitempty"`
}

type WeeklySchedule []DaySchedule

// Day returns the row for wd, if any. The first matching row wins.
func (s WeeklySchedule) Day(wd time.Weekday) (DaySchedule, bool) {
	for _, d := range s {
		if d.Weekday == wd {
			return d, true
		}
	}
	return DaySchedule{}, false
}

// Segment is a continuous bookable interval [Start, End) in minutes of day.
type Segment struct {
	Start int
	End   int
}

// OperatingWindow is the parsed form of an open day. Lunch bounds are only meaningful
// when HasLunch is set.
type OperatingWindow struct {
	Open       int
	Close      int
	HasLunch   bool
	LunchStart int
	LunchEnd   int
}

// Segments splits the window around the lunch break. Empty segments are dropped.
func (w OperatingWindow) Segments() []Segment {
	if !w.HasLunch {
		return []Segment{{Start: w.Open, End: w.Close}}
	}
	out := make([]Segment, 0, 2)
	if w.LunchStart > w.Open {
		out = append(out, Segment{Start: w.Open, End: w.LunchStart})
	}
	if w.Close > w.LunchEnd {
		out = append(out, Segment{Start: w.LunchEnd, End: w.Close})
	}
	return out
}

// Resolver maps calendar dates to operating windows. Weekdays are derived in loc, never
// in the process's local zone.
type Resolver struct {
	loc    *time.Location
	logger *slog.Logger
}

func NewResolver(loc *time.Location, logger *slog.Logger) *Resolver {
	if loc == nil {
		loc = DefaultLocation
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{loc: loc, logger: logger}
}

func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Weekday returns the day of week of date (0=Sunday).
func (r *Resolver) Weekday(date Date) time.Weekday {
	// Noon keeps the result stable for zones with midnight DST transitions.
	return time.Date(date.Year, date.Month, date.Day, 12, 0, 0, 0, r.loc).Weekday()
}

// Resolve returns the operating window for date, or nil when the branch is closed.
// Malformed rows are logged and treated as closed.
func (r *Resolver) Resolve(date Date, schedule WeeklySchedule) *OperatingWindow {
	wd := r.Weekday(date)
	day, ok := schedule.Day(wd)
	if !ok || !day.IsOpen {
		return nil
	}
	w, err := parseWindow(day)
	if err != nil {
		r.logger.Warn("business hours treated as closed",
			"date", date.String(),
			"weekday", int(wd),
			"err", err,
		)
		return nil
	}
	return &w
}

// HasAnyOpenWindow reports whether date has at least one non-empty segment.
func (r *Resolver) HasAnyOpenWindow(date Date, schedule WeeklySchedule) bool {
	w := r.Resolve(date, schedule)
	return w != nil && len(w.Segments()) > 0
}

func parseWindow(day DaySchedule) (OperatingWindow, error) {
	open, err := ParseClock(day.OpenTime)
	if err != nil {
		return OperatingWindow{}, fmt.Errorf("%w: open_time: %v", ErrScheduleData, err)
	}
	closeAt, err := ParseClock(day.CloseTime)
	if err != nil {
		return OperatingWindow{}, fmt.Errorf("%w: close_time: %v", ErrScheduleData, err)
	}
	if open >= closeAt {
		return OperatingWindow{}, fmt.Errorf("%w: open_time %s is not before close_time %s", ErrScheduleData, day.OpenTime, day.CloseTime)
	}
	w := OperatingWindow{Open: open, Close: closeAt}

	hasStart, hasEnd := day.LunchStart != "", day.LunchEnd != ""
	switch {
	case !hasStart && !hasEnd:
		return w, nil
	case hasStart != hasEnd:
		return OperatingWindow{}, fmt.Errorf("%w: lunch_start and lunch_end must be set together", ErrScheduleData)
	}

	ls, err := ParseClock(day.LunchStart)
	if err != nil {
		return OperatingWindow{}, fmt.Errorf("%w: lunch_start: %v", ErrScheduleData, err)
	}
	le, err := ParseClock(day.LunchEnd)
	if err != nil {
		return OperatingWindow{}, fmt.Errorf("%w: lunch_end: %v", ErrScheduleData, err)
	}
	if ls == le {
		return w, nil
	}
	if ls > le || ls < open || le > closeAt {
		return OperatingWindow{}, fmt.Errorf("%w: lunch %s-%s outside %s-%s", ErrScheduleData, day.LunchStart, day.LunchEnd, day.OpenTime, day.CloseTime)
	}
	w.HasLunch = true
	w.LunchStart = ls
	w.LunchEnd = le
	return w, nil
}
