package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// SlotStepMinutes is the spacing between candidate start times.
	SlotStepMinutes = 30
	// GraceBufferMinutes is the minimum lead time between now and the first slot offered today.
	GraceBufferMinutes = 30
	// DefaultAppointmentDurationMinutes is used for existing appointments whose service
	// duration could not be resolved.
	DefaultAppointmentDurationMinutes = 30

	minutesPerDay = 24 * 60
	dateLayout    = "2006-01-02"
)

// DefaultLocation is the regional offset the branch schedules are stored in (UTC-3).
var DefaultLocation = time.FixedZone("UTC-03:00", -3*60*60)

var errBadClock = errors.New("malformed clock time")

// Date is a calendar date without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: date %q", ErrInvalidRequest, s)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.In(time.UTC).AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool {
	return d.In(time.UTC).Before(o.In(time.UTC))
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseClock converts "HH:MM" (or "HH:MM:SS", as stored by Postgres TIME columns) into
// minutes of day. "24:00" is accepted as the end of the day.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", errBadClock, s)
	}
	h, ok := clockField(parts[0], 1, 2)
	if !ok {
		return 0, fmt.Errorf("%w: %q", errBadClock, s)
	}
	m, ok := clockField(parts[1], 2, 2)
	if !ok {
		return 0, fmt.Errorf("%w: %q", errBadClock, s)
	}
	if len(parts) == 3 {
		if sec, ok := clockField(parts[2], 2, 2); !ok || sec != 0 {
			return 0, fmt.Errorf("%w: %q", errBadClock, s)
		}
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", errBadClock, s)
	}
	return h*60 + m, nil
}

// clockField parses an unsigned decimal of minLen..maxLen ASCII digits.
func clockField(s string, minLen, maxLen int) (int, bool) {
	if len(s) < minLen || len(s) > maxLen {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// FormatClock renders minutes of day as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ParseLocation accepts an IANA zone name ("America/Sao_Paulo") or a fixed offset
// ("-03:00", "+0530", "UTC"). An empty string yields DefaultLocation.
func ParseLocation(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLocation, nil
	}
	if strings.EqualFold(s, "utc") || s == "Z" {
		return time.UTC, nil
	}
	if s[0] == '+' || s[0] == '-' {
		layout := "-07:00"
		if !strings.Contains(s, ":") {
			layout = "-0700"
		}
		t, err := time.Parse(layout, s)
		if err != nil {
			return nil, fmt.Errorf("invalid utc offset %q: %w", s, err)
		}
		_, offset := t.Zone()
		return time.FixedZone("UTC"+s, offset), nil
	}
	loc, err := time.LoadLocation(s)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s, err)
	}
	return loc, nil
}
