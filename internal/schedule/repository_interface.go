package schedule

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository methods accept an optional transaction; nil runs the query on
// the plain connection pool.
type Repository interface {
	InsertSchedule(ctx context.Context, tx *sqlx.Tx, s *ClassSchedule) (*ClassSchedule, error)
	GetSchedule(ctx context.Context, id string) (*ScheduleWithCapacity, error)
	ListSchedules(ctx context.Context, filters ListFilters) ([]ScheduleWithCapacity, error)
	UpdateSchedule(ctx context.Context, tx *sqlx.Tx, s *ClassSchedule) (*ClassSchedule, error)
	DeleteSchedule(ctx context.Context, id string) error
	SetSchedulesActiveByGym(ctx context.Context, tx *sqlx.Tx, gymID int, active bool) (int64, error)
	LockSchedule(ctx context.Context, tx *sqlx.Tx, scheduleID string) error

	InsertCapacity(ctx context.Context, tx *sqlx.Tx, scheduleID string, capacity int) (*Capacity, error)
	GetCapacity(ctx context.Context, tx *sqlx.Tx, scheduleID string) (*Capacity, error)
	SetBaseCapacity(ctx context.Context, tx *sqlx.Tx, scheduleID string, capacity int) error

	InsertConfig(ctx context.Context, tx *sqlx.Tx, cfg *AdvanceConfig) (*AdvanceConfig, error)
	GetConfigByID(ctx context.Context, id string) (*AdvanceConfig, error)
	ListConfigs(ctx context.Context, filters ConfigFilters) ([]AdvanceConfig, error)
	UpdateConfig(ctx context.Context, tx *sqlx.Tx, cfg *AdvanceConfig) (*AdvanceConfig, error)
	ConfigsCoveringAt(ctx context.Context, tx *sqlx.Tx, at time.Time) ([]AdvanceConfig, error)
	ConfigsEndedBefore(ctx context.Context, tx *sqlx.Tx, at time.Time) ([]AdvanceConfig, error)
	OtherActiveOverlap(ctx context.Context, tx *sqlx.Tx, excludeID string, gymID int, scheduleID *string, at time.Time) (bool, error)
	DeleteInactiveConfigsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	SeatsHeldOn(ctx context.Context, scheduleID string, dayStart, dayEnd time.Time) (int, error)
}
