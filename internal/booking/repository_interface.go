package booking

import (
	"context"
	"time"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/schedule"

	"github.com/jmoiron/sqlx"
)

// Repository methods accept an optional transaction; the write path passes
// one so every read happens under the schedule row lock.
type Repository interface {
	GetScheduleRow(ctx context.Context, tx *sqlx.Tx, id string, forUpdate bool) (*schedule.ClassSchedule, error)
	GymClosureAt(ctx context.Context, tx *sqlx.Tx, gymID int, at time.Time) (*schedule.AdvanceConfig, error)
	ScheduleOverrideAt(ctx context.Context, tx *sqlx.Tx, scheduleID string, at time.Time) (*schedule.AdvanceConfig, error)
	BaseCapacity(ctx context.Context, tx *sqlx.Tx, scheduleID string) (int, error)
	CountSeats(ctx context.Context, tx *sqlx.Tx, scheduleID string, dayStart, dayEnd time.Time) (int, error)

	InsertBooking(ctx context.Context, tx *sqlx.Tx, b *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id string) (*Booking, error)
	UpdateBooking(ctx context.Context, tx *sqlx.Tx, b *Booking) (*Booking, error)
	UpdateStatus(ctx context.Context, tx *sqlx.Tx, id, status string) (*Booking, error)
	UpdateNote(ctx context.Context, id, note string) (*Booking, error)
	UpdateTrainer(ctx context.Context, id string, trainerUserID *string) (*Booking, error)
	DuplicateExists(ctx context.Context, tx *sqlx.Tx, scheduleID, email string, dayStart, dayEnd time.Time, excludeID string) (bool, error)
	List(ctx context.Context, filters ListFilters) (*ListResult, error)
}
