package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/barberdesk/barberdesk/libs/db"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/availability"
)

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// ListForBarberDay returns the appointments of one barber on one date that still hold
// their time. Durations come from the booked service; 0 means unresolved and the engine
// applies its default.
func (r *AppointmentRepository) ListForBarberDay(ctx context.Context, branchID, barberID string, date availability.Date) ([]availability.AppointmentRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id::text, a.barber_id::text, a.appointment_date, a.start_time,
			COALESCE(s.duration_minutes, 0), a.status
		FROM appointments a
		LEFT JOIN services s ON s.id = a.service_id
		WHERE a.branch_id = $1
			AND a.barber_id = $2
			AND a.appointment_date = $3::date
			AND lower(a.status) NOT IN ('cancelled', 'canceled', 'completed', 'no_show')
		ORDER BY a.start_time ASC
	`, branchID, barberID, date.String())
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	var out []availability.AppointmentRecord
	for rows.Next() {
		var (
			rec    availability.AppointmentRecord
			day    time.Time
			status string
		)
		if err := rows.Scan(&rec.AppointmentID, &rec.BarberID, &day, &rec.StartTime, &rec.DurationMinutes, &status); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		rec.Date = availability.DateOf(day)
		rec.Status = availability.Status(status)
		out = append(out, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
