package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/barberdesk/barberdesk/libs/db"
	"github.com/barberdesk/barberdesk/services/availability-service/internal/availability"
)

// ScheduleRepository reads branch business hours. Time columns are kept as text so a
// badly edited row reaches the resolver (which closes the day) instead of failing the query.
type ScheduleRepository struct {
	pool *db.Pool
}

func NewScheduleRepository(pool *db.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

func (r *ScheduleRepository) WeeklySchedule(ctx context.Context, branchID string) (availability.WeeklySchedule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, is_open, open_time, close_time,
			COALESCE(lunch_start, ''), COALESCE(lunch_end, '')
		FROM branch_business_hours
		WHERE branch_id = $1
		ORDER BY weekday ASC
	`, branchID)
	if err != nil {
		return nil, fmt.Errorf("query business hours: %w", err)
	}
	defer rows.Close()

	schedule := availability.WeeklySchedule{}
	for rows.Next() {
		var (
			day     availability.DaySchedule
			weekday int16
		)
		if err := rows.Scan(&weekday, &day.IsOpen, &day.OpenTime, &day.CloseTime, &day.LunchStart, &day.LunchEnd); err != nil {
			return nil, fmt.Errorf("scan business hours: %w", err)
		}
		day.Weekday = time.Weekday(weekday)
		schedule = append(schedule, day)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return schedule, nil
}
