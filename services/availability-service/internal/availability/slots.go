package availability

import "time"

// SlotRequest asks for the bookable start times of one barber on one date.
type SlotRequest struct {
	Date                   Date
	BarberID               string
	ServiceDurationMinutes int
	// ExcludeAppointmentID is the appointment being edited; it never conflicts with itself.
	ExcludeAppointmentID string
	// Now is the reference moment for the "today" cutoff. Zero means the engine clock.
	Now time.Time
}

// SlotResult holds chronologically ordered "HH:MM" start labels.
type SlotResult struct {
	Slots []string
}

// Generator walks an operating window and emits the start times that pass every rule.
type Generator struct {
	loc *time.Location
}

func NewGenerator(loc *time.Location) *Generator {
	if loc == nil {
		loc = DefaultLocation
	}
	return &Generator{loc: loc}
}

// Generate computes the slots for req inside window (nil = closed). existing may contain
// records for other barbers or dates; they are ignored. req.Now must be set.
func (g *Generator) Generate(req SlotRequest, window *OperatingWindow, existing []AppointmentRecord) SlotResult {
	res := SlotResult{Slots: []string{}}
	if window == nil || req.ServiceDurationMinutes <= 0 {
		return res
	}

	cutoff, limited := g.cutoff(req, *window)
	for _, seg := range window.Segments() {
		for start := seg.Start; start < seg.End; start += SlotStepMinutes {
			if limited && start < cutoff {
				continue
			}
			if start+req.ServiceDurationMinutes > seg.End {
				continue
			}
			if Overlaps(start, req.ServiceDurationMinutes, existing, req.BarberID, req.Date, req.ExcludeAppointmentID) {
				continue
			}
			res.Slots = append(res.Slots, FormatClock(start))
		}
	}

	if label, ok := g.editedStart(req, existing, cutoff, limited); ok && !contains(res.Slots, label) {
		res.Slots = append([]string{label}, res.Slots...)
	}
	return res
}

// cutoff returns the earliest start allowed for req.Date and whether the limit applies.
// Today: now + grace buffer, rounded up to the slot step and clamped to close.
// Past dates: everything is behind the cutoff.
func (g *Generator) cutoff(req SlotRequest, w OperatingWindow) (int, bool) {
	now := req.Now.In(g.loc)
	today := DateOf(now)
	switch {
	case req.Date.Before(today):
		return w.Close, true
	case req.Date != today:
		return 0, false
	}

	c := minutesOfDay(now) + GraceBufferMinutes
	if rem := c % SlotStepMinutes; rem != 0 {
		c += SlotStepMinutes - rem
	}
	if c > w.Close {
		c = w.Close
	}
	return c, true
}

// editedStart returns the original start of the appointment being edited when the
// time-passed rule removed it, so the current value stays selectable.
func (g *Generator) editedStart(req SlotRequest, existing []AppointmentRecord, cutoff int, limited bool) (string, bool) {
	if req.ExcludeAppointmentID == "" || !limited {
		return "", false
	}
	for _, a := range existing {
		if a.AppointmentID != req.ExcludeAppointmentID {
			continue
		}
		if a.BarberID != req.BarberID || a.Date != req.Date {
			return "", false
		}
		start, err := ParseClock(a.StartTime)
		if err != nil || start >= cutoff {
			return "", false
		}
		return FormatClock(start), true
	}
	return "", false
}

func contains(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}
