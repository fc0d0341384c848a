package dashboard

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetDaySummary(ctx context.Context, dayStart, dayEnd time.Time) (*DaySummary, error)
	GetGymSeatTotals(ctx context.Context, dayStart, dayEnd time.Time) ([]GymSeatTotal, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetDaySummary(ctx context.Context, dayStart, dayEnd time.Time) (*DaySummary, error) {
	query := `
		SELECT
		  COUNT(*) FILTER (WHERE status NOT IN ('CANCELED', 'FAILED'))                    AS total_bookings,
		  COALESCE(SUM(capacity) FILTER (WHERE status NOT IN ('CANCELED', 'FAILED')), 0)  AS seats_booked,
		  COUNT(*) FILTER (WHERE is_private AND status NOT IN ('CANCELED', 'FAILED'))     AS private_bookings,
		  COUNT(*) FILTER (WHERE NOT is_private AND status NOT IN ('CANCELED', 'FAILED')) AS group_bookings,
		  COUNT(*) FILTER (WHERE status = 'CANCELED')                                     AS canceled_bookings
		FROM classes_bookings
		WHERE date_booking >= $1 AND date_booking < $2
	`

	var summary DaySummary
	if err := r.db.GetContext(ctx, &summary, query, dayStart, dayEnd); err != nil {
		return nil, err
	}

	return &summary, nil
}

func (r *repository) GetGymSeatTotals(ctx context.Context, dayStart, dayEnd time.Time) ([]GymSeatTotal, error) {
	query := `
		SELECT
		  g.id       AS gym_id,
		  g.gym_name AS gym_name,
		  COUNT(b.*) FILTER (WHERE b.status NOT IN ('CANCELED', 'FAILED'))                   AS bookings,
		  COALESCE(SUM(b.capacity) FILTER (WHERE b.status NOT IN ('CANCELED', 'FAILED')), 0) AS seats_booked
		FROM gyms g
		LEFT JOIN classes_schedules s ON s.gyms_id = g.id
		LEFT JOIN classes_bookings b ON b.classes_schedules_id = s.id
		  AND b.date_booking >= $1 AND b.date_booking < $2
		GROUP BY g.id, g.gym_name
		ORDER BY g.id
	`

	var totals []GymSeatTotal
	if err := r.db.SelectContext(ctx, &totals, query, dayStart, dayEnd); err != nil {
		return nil, err
	}

	return totals, nil
}
