package booking

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/schedule"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const bookingColumns = "id, classes_schedules_id, name, email, phone, capacity, date_booking, status, is_private, trainer_user_id, note, created_at, updated_at"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) q(tx *sqlx.Tx) sqlx.ExtContext {
	if tx != nil {
		return tx
	}
	return r.db
}

// GetScheduleRow loads a schedule, optionally with FOR UPDATE. The row lock
// is what serializes concurrent seat accounting per schedule.
func (r *repository) GetScheduleRow(ctx context.Context, tx *sqlx.Tx, id string, forUpdate bool) (*schedule.ClassSchedule, error) {
	query := `
		SELECT id, start_time, end_time, gyms_id, description, is_private, is_active, created_at, updated_at
		FROM classes_schedules
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var s schedule.ClassSchedule
	if err := sqlx.GetContext(ctx, r.q(tx), &s, query, id); err != nil {
		return nil, err
	}

	return &s, nil
}

// GymClosureAt finds an active gym-wide closure whose inclusive window
// contains the instant. Overlapping closures resolve newest-first.
func (r *repository) GymClosureAt(ctx context.Context, tx *sqlx.Tx, gymID int, at time.Time) (*schedule.AdvanceConfig, error) {
	query := `
		SELECT id, classes_schedules_id, gyms_id, start_date, end_date, is_close_gym, capacity, old_capacity, description, is_active, created_at, updated_at
		FROM advance_configs
		WHERE is_active = TRUE AND is_close_gym = TRUE AND classes_schedules_id IS NULL
		  AND gyms_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var cfg schedule.AdvanceConfig
	err := sqlx.GetContext(ctx, r.q(tx), &cfg, query, gymID, at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ScheduleOverrideAt finds the newest active override targeting one
// schedule whose window contains the instant. The row may be a capacity
// override or a per-class closure.
func (r *repository) ScheduleOverrideAt(ctx context.Context, tx *sqlx.Tx, scheduleID string, at time.Time) (*schedule.AdvanceConfig, error) {
	query := `
		SELECT id, classes_schedules_id, gyms_id, start_date, end_date, is_close_gym, capacity, old_capacity, description, is_active, created_at, updated_at
		FROM advance_configs
		WHERE is_active = TRUE AND classes_schedules_id = $1
		  AND start_date <= $2 AND end_date >= $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var cfg schedule.AdvanceConfig
	err := sqlx.GetContext(ctx, r.q(tx), &cfg, query, scheduleID, at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (r *repository) BaseCapacity(ctx context.Context, tx *sqlx.Tx, scheduleID string) (int, error) {
	var capacity int
	err := sqlx.GetContext(ctx, r.q(tx), &capacity,
		`SELECT capacity FROM classes_capacities WHERE classes_schedules_id = $1`, scheduleID)
	if err != nil {
		return 0, err
	}
	return capacity, nil
}

// CountSeats sums seats held by live bookings for the schedule across the
// whole calendar day. No rows means zero, never null.
func (r *repository) CountSeats(ctx context.Context, tx *sqlx.Tx, scheduleID string, dayStart, dayEnd time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(capacity), 0)
		FROM classes_bookings
		WHERE classes_schedules_id = $1
		  AND date_booking >= $2 AND date_booking < $3
		  AND status NOT IN ('CANCELED', 'FAILED')
	`

	var used int
	if err := sqlx.GetContext(ctx, r.q(tx), &used, query, scheduleID, dayStart, dayEnd); err != nil {
		return 0, err
	}

	return used, nil
}

func (r *repository) InsertBooking(ctx context.Context, tx *sqlx.Tx, b *Booking) (*Booking, error) {
	query := `
		INSERT INTO classes_bookings
			(id, classes_schedules_id, name, email, phone, capacity, date_booking, status, is_private, trainer_user_id, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + bookingColumns

	var created Booking
	err := sqlx.GetContext(ctx, r.q(tx), &created, query,
		uuid.New().String(), b.ScheduleID, b.Name, b.Email, b.Phone, b.Capacity,
		b.DateBooking, b.Status, b.IsPrivate, b.TrainerUserID, b.Note)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetBookingByID(ctx context.Context, id string) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM classes_bookings WHERE id = $1`

	var b Booking
	if err := r.db.GetContext(ctx, &b, query, id); err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *repository) UpdateBooking(ctx context.Context, tx *sqlx.Tx, b *Booking) (*Booking, error) {
	query := `
		UPDATE classes_bookings
		SET classes_schedules_id = $2, name = $3, email = $4, phone = $5, capacity = $6,
		    date_booking = $7, status = $8, is_private = $9, trainer_user_id = $10, note = $11,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookingColumns

	var updated Booking
	err := sqlx.GetContext(ctx, r.q(tx), &updated, query,
		b.ID, b.ScheduleID, b.Name, b.Email, b.Phone, b.Capacity,
		b.DateBooking, b.Status, b.IsPrivate, b.TrainerUserID, b.Note)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repository) UpdateStatus(ctx context.Context, tx *sqlx.Tx, id, status string) (*Booking, error) {
	query := `
		UPDATE classes_bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookingColumns

	var updated Booking
	if err := sqlx.GetContext(ctx, r.q(tx), &updated, query, id, status); err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repository) UpdateNote(ctx context.Context, id, note string) (*Booking, error) {
	query := `
		UPDATE classes_bookings
		SET note = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookingColumns

	var updated Booking
	if err := r.db.GetContext(ctx, &updated, query, id, note); err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repository) UpdateTrainer(ctx context.Context, id string, trainerUserID *string) (*Booking, error) {
	query := `
		UPDATE classes_bookings
		SET trainer_user_id = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookingColumns

	var updated Booking
	if err := r.db.GetContext(ctx, &updated, query, id, trainerUserID); err != nil {
		return nil, err
	}

	return &updated, nil
}

// DuplicateExists reports whether the same email already holds a live
// booking for the slot. excludeID skips the booking being updated.
func (r *repository) DuplicateExists(ctx context.Context, tx *sqlx.Tx, scheduleID, email string, dayStart, dayEnd time.Time, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM classes_bookings
			WHERE classes_schedules_id = $1 AND email = $2
			  AND date_booking >= $3 AND date_booking < $4
			  AND status NOT IN ('CANCELED', 'FAILED')
			  AND ($5 = '' OR id <> $5::uuid)
		)
	`

	var exists bool
	if err := sqlx.GetContext(ctx, r.q(tx), &exists, query, scheduleID, email, dayStart, dayEnd, excludeID); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) (*ListResult, error) {
	where := `
		FROM classes_bookings b
		JOIN classes_schedules s ON s.id = b.classes_schedules_id
		WHERE 1=1
	`
	args := []interface{}{}

	if filters.ScheduleID != "" {
		args = append(args, filters.ScheduleID)
		where += " AND b.classes_schedules_id = $" + strconv.Itoa(len(args))
	}
	if filters.GymID != 0 {
		args = append(args, filters.GymID)
		where += " AND s.gyms_id = $" + strconv.Itoa(len(args))
	}
	if filters.Email != "" {
		args = append(args, filters.Email)
		where += " AND b.email = $" + strconv.Itoa(len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += " AND b.status = $" + strconv.Itoa(len(args))
	}
	if filters.Date != nil {
		args = append(args, *filters.Date)
		where += " AND b.date_booking::date = $" + strconv.Itoa(len(args)) + "::date"
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+where, args...); err != nil {
		return nil, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit)
	limitPos := len(args)
	args = append(args, offset)
	offsetPos := len(args)

	query := "SELECT b.id, b.classes_schedules_id, b.name, b.email, b.phone, b.capacity, b.date_booking, b.status, b.is_private, b.trainer_user_id, b.note, b.created_at, b.updated_at " +
		where +
		" ORDER BY b.date_booking DESC, b.created_at DESC LIMIT $" + strconv.Itoa(limitPos) + " OFFSET $" + strconv.Itoa(offsetPos)

	var bookings []Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, err
	}

	return &ListResult{Total: total, Bookings: bookings}, nil
}

func IsNotFound(err error) bool {
	return err == sql.ErrNoRows
}
