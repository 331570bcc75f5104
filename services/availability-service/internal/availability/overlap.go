package availability

import "strings"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Active reports whether an appointment in this status still holds its time.
// Unknown statuses block the time: an unrecognised row must not free a slot.
func (s Status) Active() bool {
	switch Status(strings.ToLower(strings.TrimSpace(string(s)))) {
	case StatusCompleted, StatusCancelled, "canceled", StatusNoShow:
		return false
	}
	return true
}

// AppointmentRecord is the read-only projection of an existing appointment.
type AppointmentRecord struct {
	AppointmentID   string `json:"appointment_id"`
	BarberID        string `json:"barber_id"`
	Date            Date   `json:"date"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Status          Status `json:"status"`
}

// Interval returns the record as [start, end) minutes of day. Durations that could not
// be resolved fall back to DefaultAppointmentDurationMinutes.
func (a AppointmentRecord) Interval() (int, int, error) {
	start, err := ParseClock(a.StartTime)
	if err != nil {
		return 0, 0, err
	}
	d := a.DurationMinutes
	if d <= 0 {
		d = DefaultAppointmentDurationMinutes
	}
	return start, start + d, nil
}

func (a AppointmentRecord) blocks(barberID string, date Date, excludeID string) bool {
	if a.BarberID != barberID || a.Date != date {
		return false
	}
	if excludeID != "" && a.AppointmentID == excludeID {
		return false
	}
	return a.Status.Active()
}

// Overlaps reports whether [start, start+duration) intersects any active appointment of
// barberID on date, ignoring excludeID. Touching intervals do not conflict.
// A blocking record with an unreadable start time conflicts with everything.
func Overlaps(start, duration int, existing []AppointmentRecord, barberID string, date Date, excludeID string) bool {
	end := start + duration
	for _, a := range existing {
		if !a.blocks(barberID, date, excludeID) {
			continue
		}
		aStart, aEnd, err := a.Interval()
		if err != nil {
			return true
		}
		if start < aEnd && end > aStart {
			return true
		}
	}
	return false
}
