package storage

import (
	"context"

	"github.com/barberdesk/barberdesk/libs/db"
	"github.com/jackc/pgx/v5"
)

// ServiceRepository is the read side of the branch service catalog.
type ServiceRepository struct {
	pool *db.Pool
}

func NewServiceRepository(pool *db.Pool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

// ServiceDuration returns the configured duration in minutes. A missing service or a
// NULL duration yields pgx.ErrNoRows.
func (r *ServiceRepository) ServiceDuration(ctx context.Context, branchID, serviceID string) (int, error) {
	var mins *int
	err := r.pool.QueryRow(ctx, `
		SELECT duration_minutes
		FROM services
		WHERE branch_id = $1 AND id = $2
	`, branchID, serviceID).Scan(&mins)
	if err != nil {
		return 0, err
	}
	if mins == nil || *mins <= 0 {
		return 0, pgx.ErrNoRows
	}
	return *mins, nil
}
