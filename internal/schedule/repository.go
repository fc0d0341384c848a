package schedule

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	scheduleColumns = "id, start_time, end_time, gyms_id, description, is_private, is_active, created_at, updated_at"
	configColumns   = "id, classes_schedules_id, gyms_id, start_date, end_date, is_close_gym, capacity, old_capacity, description, is_active, created_at, updated_at"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// q returns the transaction when one is open, else the pool, so the same
// query text serves both paths.
func (r *repository) q(tx *sqlx.Tx) sqlx.ExtContext {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) InsertSchedule(ctx context.Context, tx *sqlx.Tx, s *ClassSchedule) (*ClassSchedule, error) {
	query := `
		INSERT INTO classes_schedules (id, start_time, end_time, gyms_id, description, is_private)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + scheduleColumns

	var created ClassSchedule
	err := sqlx.GetContext(ctx, r.q(tx), &created, query,
		uuid.New().String(), s.StartTime, s.EndTime, s.GymID, s.Description, s.IsPrivate)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetSchedule(ctx context.Context, id string) (*ScheduleWithCapacity, error) {
	query := `
		SELECT s.id, s.start_time, s.end_time, s.gyms_id, s.description, s.is_private,
		       s.is_active, s.created_at, s.updated_at, c.capacity
		FROM classes_schedules s
		JOIN classes_capacities c ON c.classes_schedules_id = s.id
		WHERE s.id = $1
	`

	var s ScheduleWithCapacity
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *repository) ListSchedules(ctx context.Context, filters ListFilters) ([]ScheduleWithCapacity, error) {
	query := `
		SELECT s.id, s.start_time, s.end_time, s.gyms_id, s.description, s.is_private,
		       s.is_active, s.created_at, s.updated_at, c.capacity
		FROM classes_schedules s
		JOIN classes_capacities c ON c.classes_schedules_id = s.id
		WHERE 1=1
	`
	args := []interface{}{}

	if filters.GymID != 0 {
		args = append(args, filters.GymID)
		query += " AND s.gyms_id = $" + strconv.Itoa(len(args))
	}
	if filters.IsPrivate != nil {
		args = append(args, *filters.IsPrivate)
		query += " AND s.is_private = $" + strconv.Itoa(len(args))
	}
	if filters.ActiveOnly {
		query += " AND s.is_active = TRUE"
	}
	query += " ORDER BY s.start_time ASC"

	var schedules []ScheduleWithCapacity
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *repository) UpdateSchedule(ctx context.Context, tx *sqlx.Tx, s *ClassSchedule) (*ClassSchedule, error) {
	query := `
		UPDATE classes_schedules
		SET start_time = $2, end_time = $3, gyms_id = $4, description = $5,
		    is_private = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + scheduleColumns

	var updated ClassSchedule
	err := sqlx.GetContext(ctx, r.q(tx), &updated, query,
		s.ID, s.StartTime, s.EndTime, s.GymID, s.Description, s.IsPrivate, s.IsActive)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repository) DeleteSchedule(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM classes_schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *repository) SetSchedulesActiveByGym(ctx context.Context, tx *sqlx.Tx, gymID int, active bool) (int64, error) {
	result, err := r.q(tx).ExecContext(ctx,
		`UPDATE classes_schedules SET is_active = $2, updated_at = NOW() WHERE gyms_id = $1`, gymID, active)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// LockSchedule takes the per-schedule row lock that the booking guard
// holds while counting seats, so base-capacity rewrites serialize
// against in-flight bookings.
func (r *repository) LockSchedule(ctx context.Context, tx *sqlx.Tx, scheduleID string) error {
	var id string
	return sqlx.GetContext(ctx, r.q(tx), &id,
		`SELECT id FROM classes_schedules WHERE id = $1 FOR UPDATE`, scheduleID)
}

func (r *repository) InsertCapacity(ctx context.Context, tx *sqlx.Tx, scheduleID string, capacity int) (*Capacity, error) {
	query := `
		INSERT INTO classes_capacities (id, classes_schedules_id, capacity)
		VALUES ($1, $2, $3)
		RETURNING id, classes_schedules_id, capacity, created_at, updated_at
	`

	var c Capacity
	err := sqlx.GetContext(ctx, r.q(tx), &c, query, uuid.New().String(), scheduleID, capacity)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *repository) GetCapacity(ctx context.Context, tx *sqlx.Tx, scheduleID string) (*Capacity, error) {
	query := `
		SELECT id, classes_schedules_id, capacity, created_at, updated_at
		FROM classes_capacities
		WHERE classes_schedules_id = $1
	`

	var c Capacity
	if err := sqlx.GetContext(ctx, r.q(tx), &c, query, scheduleID); err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *repository) SetBaseCapacity(ctx context.Context, tx *sqlx.Tx, scheduleID string, capacity int) error {
	result, err := r.q(tx).ExecContext(ctx,
		`UPDATE classes_capacities SET capacity = $2, updated_at = NOW() WHERE classes_schedules_id = $1`,
		scheduleID, capacity)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *repository) InsertConfig(ctx context.Context, tx *sqlx.Tx, cfg *AdvanceConfig) (*AdvanceConfig, error) {
	query := `
		INSERT INTO advance_configs
			(id, classes_schedules_id, gyms_id, start_date, end_date, is_close_gym, capacity, old_capacity, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + configColumns

	var created AdvanceConfig
	err := sqlx.GetContext(ctx, r.q(tx), &created, query,
		uuid.New().String(), cfg.ScheduleID, cfg.GymID, cfg.StartDate, cfg.EndDate,
		cfg.IsCloseGym, cfg.Capacity, cfg.OldCapacity, cfg.Description)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetConfigByID(ctx context.Context, id string) (*AdvanceConfig, error) {
	query := `SELECT ` + configColumns + ` FROM advance_configs WHERE id = $1`

	var cfg AdvanceConfig
	if err := r.db.GetContext(ctx, &cfg, query, id); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (r *repository) ListConfigs(ctx context.Context, filters ConfigFilters) ([]AdvanceConfig, error) {
	query := `SELECT ` + configColumns + ` FROM advance_configs WHERE 1=1`
	args := []interface{}{}

	if filters.GymID != 0 {
		args = append(args, filters.GymID)
		query += " AND gyms_id = $" + strconv.Itoa(len(args))
	}
	if filters.ScheduleID != "" {
		args = append(args, filters.ScheduleID)
		query += " AND classes_schedules_id = $" + strconv.Itoa(len(args))
	}
	if filters.ActiveOnly {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY start_date DESC, created_at DESC"

	var configs []AdvanceConfig
	if err := r.db.SelectContext(ctx, &configs, query, args...); err != nil {
		return nil, err
	}

	return configs, nil
}

func (r *repository) UpdateConfig(ctx context.Context, tx *sqlx.Tx, cfg *AdvanceConfig) (*AdvanceConfig, error) {
	query := `
		UPDATE advance_configs
		SET start_date = $2, end_date = $3, capacity = $4, old_capacity = $5,
		    description = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + configColumns

	var updated AdvanceConfig
	err := sqlx.GetContext(ctx, r.q(tx), &updated, query,
		cfg.ID, cfg.StartDate, cfg.EndDate, cfg.Capacity, cfg.OldCapacity,
		cfg.Description, cfg.IsActive)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// ConfigsCoveringAt lists active overrides whose inclusive window contains
// the given instant.
func (r *repository) ConfigsCoveringAt(ctx context.Context, tx *sqlx.Tx, at time.Time) ([]AdvanceConfig, error) {
	query := `
		SELECT ` + configColumns + `
		FROM advance_configs
		WHERE is_active = TRUE AND start_date <= $1 AND end_date >= $1
		ORDER BY created_at DESC
	`

	var configs []AdvanceConfig
	if err := sqlx.SelectContext(ctx, r.q(tx), &configs, query, at); err != nil {
		return nil, err
	}

	return configs, nil
}

// ConfigsEndedBefore lists active overrides whose window closed before the
// given instant and are due for revert.
func (r *repository) ConfigsEndedBefore(ctx context.Context, tx *sqlx.Tx, at time.Time) ([]AdvanceConfig, error) {
	query := `
		SELECT ` + configColumns + `
		FROM advance_configs
		WHERE is_active = TRUE AND end_date < $1
		ORDER BY created_at DESC
	`

	var configs []AdvanceConfig
	if err := sqlx.SelectContext(ctx, r.q(tx), &configs, query, at); err != nil {
		return nil, err
	}

	return configs, nil
}

// OtherActiveOverlap reports whether some other active override still
// covers the instant for the same gym (closures) or schedule (capacity
// overrides); reverting while one exists would clobber its effect.
func (r *repository) OtherActiveOverlap(ctx context.Context, tx *sqlx.Tx, excludeID string, gymID int, scheduleID *string, at time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM advance_configs
			WHERE id <> $1 AND is_active = TRUE
			  AND start_date <= $2 AND end_date >= $2
			  AND (
				($3::uuid IS NOT NULL AND classes_schedules_id = $3)
				OR ($3::uuid IS NULL AND classes_schedules_id IS NULL AND gyms_id = $4)
			  )
		)
	`

	var exists bool
	if err := sqlx.GetContext(ctx, r.q(tx), &exists, query, excludeID, at, scheduleID, gymID); err != nil {
		return false, err
	}

	return exists, nil
}

// DeleteInactiveConfigsBefore purges retired overrides that ended before
// the cutoff. Active rows are never touched.
func (r *repository) DeleteInactiveConfigsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM advance_configs WHERE is_active = FALSE AND end_date < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// SeatsHeldOn sums seats held by live bookings for the schedule inside the
// given day window. Used to warn admins lowering a ceiling below what is
// already booked.
func (r *repository) SeatsHeldOn(ctx context.Context, scheduleID string, dayStart, dayEnd time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(capacity), 0)
		FROM classes_bookings
		WHERE classes_schedules_id = $1
		  AND date_booking >= $2 AND date_booking < $3
		  AND status NOT IN ('CANCELED', 'FAILED')
	`

	var held int
	if err := r.db.GetContext(ctx, &held, query, scheduleID, dayStart, dayEnd); err != nil {
		return 0, err
	}

	return held, nil
}

func IsNotFound(err error) bool {
	return err == sql.ErrNoRows
}
