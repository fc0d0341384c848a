package schedule

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/activitylog"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/apperr"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/dateutil"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/logger"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/metrics"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var timeOfDayRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

const fkViolation = "23503"

type Actor struct {
	UserID    string
	UserName  string
	IPAddress string
}

type Service struct {
	db       *sqlx.DB
	repo     Repository
	recorder activitylog.Recorder
	loc      *time.Location
	now      func() time.Time
}

func NewService(db *sqlx.DB, repo Repository, recorder activitylog.Recorder, loc *time.Location) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		recorder: recorder,
		loc:      loc,
		now:      time.Now,
	}
}

func validateTimes(start, end string) error {
	if !timeOfDayRe.MatchString(start) || !timeOfDayRe.MatchString(end) {
		return apperr.BadRequest("start_time and end_time must be HH:MM")
	}
	// HH:MM strings compare correctly as text.
	if end <= start {
		return apperr.BadRequest("end_time must be after start_time")
	}
	return nil
}

func (s *Service) CreateSchedule(ctx context.Context, req CreateScheduleRequest, actor Actor) (*ScheduleWithCapacity, error) {
	if err := validateTimes(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if req.Capacity <= 0 {
		return nil, apperr.BadRequest("capacity must be greater than zero")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	created, err := s.repo.InsertSchedule(ctx, tx, &ClassSchedule{
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		GymID:       req.GymID,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		return nil, err
	}

	capRow, err := s.repo.InsertCapacity(ctx, tx, created.ID, req.Capacity)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activitylog.Record{
		UserID:    actor.UserID,
		UserName:  actor.UserName,
		Service:   activitylog.ServiceSchedule,
		Action:    "CREATE",
		Details:   map[string]interface{}{"schedule_id": created.ID, "gyms_id": created.GymID, "capacity": capRow.Capacity},
		IPAddress: actor.IPAddress,
	})

	return &ScheduleWithCapacity{ClassSchedule: *created, Capacity: capRow.Capacity}, nil
}

func (s *Service) GetSchedule(ctx context.Context, id string) (*ScheduleWithCapacity, error) {
	sched, err := s.repo.GetSchedule(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperr.NotFound("Schedule not found")
		}
		return nil, err
	}
	return sched, nil
}

func (s *Service) ListSchedules(ctx context.Context, filters ListFilters) ([]ScheduleWithCapacity, error) {
	return s.repo.ListSchedules(ctx, filters)
}

func (s *Service) UpdateSchedule(ctx context.Context, id string, req UpdateScheduleRequest, actor Actor) (*ScheduleWithCapacity, error) {
	existing, err := s.GetSchedule(ctx, id)
	if err != nil {
		return nil, err
	}

	next := existing.ClassSchedule
	if req.StartTime != nil {
		next.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		next.EndTime = *req.EndTime
	}
	if req.GymID != nil {
		next.GymID = *req.GymID
	}
	if req.Description != nil {
		next.Description = *req.Description
	}
	if req.IsPrivate != nil {
		next.IsPrivate = *req.IsPrivate
	}
	if req.IsActive != nil {
		next.IsActive = *req.IsActive
	}

	if err := validateTimes(next.StartTime, next.EndTime); err != nil {
		return nil, err
	}

	capacity := existing.Capacity
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return nil, apperr.BadRequest("capacity must be greater than zero")
		}
		capacity = *req.Capacity
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	updated, err := s.repo.UpdateSchedule(ctx, tx, &next)
	if err != nil {
		return nil, err
	}
	if req.Capacity != nil {
		if err := s.repo.SetBaseCapacity(ctx, tx, id, capacity); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, activitylog.Record{
		UserID:    actor.UserID,
		UserName:  actor.UserName,
		Service:   activitylog.ServiceSchedule,
		Action:    "UPDATE",
		Details:   map[string]interface{}{"schedule_id": id},
		IPAddress: actor.IPAddress,
	})

	return &ScheduleWithCapacity{ClassSchedule: *updated, Capacity: capacity}, nil
}

// DeleteSchedule removes an unreferenced schedule. Postgres blocks the
// delete while bookings still point at it; that surfaces as a Conflict so
// admins know to cancel or move the bookings first.
func (s *Service) DeleteSchedule(ctx context.Context, id string, actor Actor) error {
	if err := s.repo.DeleteSchedule(ctx, id); err != nil {
		if IsNotFound(err) {
			return apperr.NotFound("Schedule not found")
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == fkViolation {
			return apperr.Conflict("Schedule still has bookings; cancel or move them first")
		}
		return err
	}

	s.recorder.Record(ctx, activitylog.Record{
		UserID:    actor.UserID,
		UserName:  actor.UserName,
		Service:   activitylog.ServiceSchedule,
		Action:    "DELETE",
		Details:   map[string]interface{}{"schedule_id": id},
		IPAddress: actor.IPAddress,
	})

	return nil
}

func (s *Service) parseWindow(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := dateutil.ParseDate(startDate, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.BadRequest("start_date must be YYYY-MM-DD")
	}
	end, err := dateutil.ParseDate(endDate, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.BadRequest("end_date must be YYYY-MM-DD")
	}

	// Windows are stored as checkpoint instants so containment checks are
	// inclusive on both bounds.
	startCp := dateutil.Checkpoint(start, s.loc)
	endCp := dateutil.Checkpoint(end, s.loc)
	if endCp.Before(startCp) {
		return time.Time{}, time.Time{}, apperr.BadRequest("end_date must not be before start_date")
	}

	return startCp, endCp, nil
}

func (s *Service) windowCoversToday(start, end time.Time) bool {
	today := dateutil.Checkpoint(s.now(), s.loc)
	return !start.After(today) && !end.Before(today)
}

// CreateAdvanceConfig stores a date-ranged override. When the window is
// already in effect today the base state is materialized in the same
// transaction, so live reads and the nightly rollover can never disagree.
func (s *Service) CreateAdvanceConfig(ctx context.Context, req CreateAdvanceConfigRequest, actor Actor) (*AdvanceConfigResult, error) {
	start, end, err := s.parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if req.ScheduleID == nil && !req.IsCloseGym {
		return nil, apperr.BadRequest("a gym-wide config must set is_close_gym")
	}
	if req.ScheduleID != nil && !req.IsCloseGym && req.Capacity == nil {
		return nil, apperr.BadRequest("a capacity override requires capacity")
	}

	cfg := &AdvanceConfig{
		ScheduleID:  req.ScheduleID,
		GymID:       req.GymID,
		StartDate:   start,
		EndDate:     end,
		IsCloseGym:  req.IsCloseGym,
		Capacity:    req.Capacity,
		Description: req.Description,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if req.ScheduleID != nil {
		base, err := s.repo.GetCapacity(ctx, tx, *req.ScheduleID)
		if err != nil {
			if IsNotFound(err) {
				return nil, apperr.NotFound("Schedule capacity not found")
			}
			return nil, err
		}
		old := base.Capacity
		cfg.OldCapacity = &old
	}

	created, err := s.repo.InsertConfig(ctx, tx, cfg)
	if err != nil {
		return nil, err
	}

	if s.windowCoversToday(start, end) {
		if err := s.materialize(ctx, tx, created); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	warning := s.overbookedWarning(ctx, created)

	s.recorder.Record(ctx, activitylog.Record{
		UserID:    actor.UserID,
		UserName:  actor.UserName,
		Service:   activitylog.ServiceSchedule,
		Action:    "CREATE_ADVANCE_CONFIG",
		Details:   map[string]interface{}{"config_id": created.ID, "gyms_id": created.GymID, "is_close_gym": created.IsCloseGym},
		IPAddress: actor.IPAddress,
	})

	return &AdvanceConfigResult{Config: created, Warning: warning}, nil
}

// materialize pushes an in-effect override into base state: gym closures
// deactivate the gym's schedules, capacity overrides rewrite the base
// ceiling. Per-class closures are resolved live and need no base write.
func (s *Service) materialize(ctx context.Context, tx *sqlx.Tx, cfg *AdvanceConfig) error {
	if cfg.IsCloseGym && cfg.ScheduleID == nil {
		_, err := s.repo.SetSchedulesActiveByGym(ctx, tx, cfg.GymID, false)
		return err
	}
	if !cfg.IsCloseGym && cfg.ScheduleID != nil && cfg.Capacity != nil {
		if err := s.repo.LockSchedule(ctx, tx, *cfg.ScheduleID); err != nil {
			return err
		}
		return s.repo.SetBaseCapacity(ctx, tx, *cfg.ScheduleID, *cfg.Capacity)
	}
	return nil
}

// revert undoes a materialized override unless another active override
// still covers the same gym or schedule right now.
func (s *Service) revert(ctx context.Context, tx *sqlx.Tx, cfg *AdvanceConfig) error {
	today := dateutil.Checkpoint(s.now(), s.loc)

	overlap, err := s.repo.OtherActiveOverlap(ctx, tx, cfg.ID, cfg.GymID, cfg.ScheduleID, today)
	if err != nil {
		return err
	}
	if overlap {
		return nil
	}

	if cfg.IsCloseGym && cfg.ScheduleID == nil {
		_, err := s.repo.SetSchedulesActiveByGym(ctx, tx, cfg.GymID, true)
		return err
	}
	if !cfg.IsCloseGym && cfg.ScheduleID != nil && cfg.OldCapacity != nil {
		if err := s.repo.LockSchedule(ctx, tx, *cfg.ScheduleID); err != nil {
			return err
		}
		return s.repo.SetBaseCapacity(ctx, tx, *cfg.ScheduleID, *cfg.OldCapacity)
	}
	return nil
}

func (s *Service) overbookedWarning(ctx context.Context, cfg *AdvanceConfig) string {
	if cfg.IsCloseGym || cfg.ScheduleID == nil || cfg.Capacity == nil {
		return ""
	}
	if !s.windowCoversToday(cfg.StartDate, cfg.EndDate) {
		return ""
	}

	dayStart, dayEnd := dateutil.DayBounds(s.now(), s.loc)
	held, err := s.repo.SeatsHeldOn(ctx, *cfg.ScheduleID, dayStart, dayEnd)
	if err != nil {
		logger.Errorf("overbooked warning check failed for schedule %s: %v", *cfg.ScheduleID, err)
		return ""
	}
	if held > *cfg.Capacity {
		return fmt.Sprintf("Existing bookings hold %d seats, above the new capacity of %d", held, *cfg.Capacity)
	}
	return ""
}

func (s *Service) GetAdvanceConfig(ctx context.Context, id string) (*AdvanceConfig, error) {
	cfg, err := s.repo.GetConfigByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperr.NotFound("Advance config not found")
		}
		return nil, err
	}
	return cfg, nil
}

func (s *Service) ListAdvanceConfigs(ctx context.Context, filters ConfigFilters) ([]AdvanceConfig, error) {
	return s.repo.ListConfigs(ctx, filters)
}

func (s *Service) UpdateAdvanceConfig(ctx context.Context, id string, req UpdateAdvanceConfigRequest, actor Actor) (*AdvanceConfigResult, error) {
	existing, err := s.GetAdvanceConfig(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *existing
	if req.StartDate != nil || req.EndDate != nil {
		startStr := next.StartDate.In(s.loc).Format(dateutil.DateLayout)
		endStr := next.EndDate.In(s.loc).Format(dateutil.DateLayout)
		if req.StartDate != nil {
			startStr = *req.StartDate
		}
		if req.EndDate != nil {
			endStr = *req.EndDate
		}
		start, end, err := s.parseWindow(startStr, endStr)
		if err != nil {
			return nil, err
		}
		next.StartDate, next.EndDate = start, end
	}
	if req.Capacity != nil {
		if next.IsCloseGym || next.ScheduleID == nil {
			return nil, apperr.BadRequest("capacity only applies to schedule overrides")
		}
		next.Capacity = req.Capacity
	}
	if req.Description != nil {
		next.Description = *req.Description
	}
	if req.IsActive != nil {
		next.IsActive = *req.IsActive
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	updated, err := s.repo.UpdateConfig(ctx, tx, &next)
	if err != nil {
		return nil, err
	}

	deactivated := existing.IsActive && !updated.IsActive
	switch {
	case deactivated:
		if err := s.revert(ctx, tx, updated); err != nil {
			return nil, err
		}
	case updated.IsActive && s.windowCoversToday(updated.StartDate, updated.EndDate):
		if err := s.materialize(ctx, tx, updated); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	warning := ""
	if updated.IsActive {
		warning = s.overbookedWarning(ctx, updated)
	}

	s.recorder.Record(ctx, activitylog.Record{
		UserID:    actor.UserID,
		UserName:  actor.UserName,
		Service:   activitylog.ServiceSchedule,
		Action:    "UPDATE_ADVANCE_CONFIG",
		Details:   map[string]interface{}{"config_id": id},
		IPAddress: actor.IPAddress,
	})

	return &AdvanceConfigResult{Config: updated, Warning: warning}, nil
}

// RolloverStats summarizes one nightly rollover run.
type RolloverStats struct {
	Applied int
	Retired int
}

// RunDailyRollover re-applies every override whose window covers today and
// retires the ones whose window has passed, reverting their base effect
// unless another active override still holds it. Everything happens in one
// transaction; re-running it on the same day writes the same state again,
// so a crashed or doubled run is harmless.
func (s *Service) RunDailyRollover(ctx context.Context) (RolloverStats, error) {
	var stats RolloverStats
	today := dateutil.Checkpoint(s.now(), s.loc)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		metrics.RecordRolloverRun("error")
		return stats, err
	}
	defer tx.Rollback()

	covering, err := s.repo.ConfigsCoveringAt(ctx, tx, today)
	if err != nil {
		metrics.RecordRolloverRun("error")
		return stats, err
	}
	for i := range covering {
		if err := s.materialize(ctx, tx, &covering[i]); err != nil {
			metrics.RecordRolloverRun("error")
			return stats, err
		}
		stats.Applied++
	}

	ended, err := s.repo.ConfigsEndedBefore(ctx, tx, today)
	if err != nil {
		metrics.RecordRolloverRun("error")
		return stats, err
	}
	for i := range ended {
		cfg := ended[i]
		cfg.IsActive = false
		retired, err := s.repo.UpdateConfig(ctx, tx, &cfg)
		if err != nil {
			metrics.RecordRolloverRun("error")
			return stats, err
		}
		if err := s.revert(ctx, tx, retired); err != nil {
			metrics.RecordRolloverRun("error")
			return stats, err
		}
		stats.Retired++
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordRolloverRun("error")
		return stats, err
	}

	metrics.RecordRolloverRun("success")
	logger.Infof("advance config rollover: %d applied, %d retired", stats.Applied, stats.Retired)
	return stats, nil
}

// CleanupInactiveConfigs deletes retired overrides older than the retention
// window. The activity log keeps the history.
func (s *Service) CleanupInactiveConfigs(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	deleted, err := s.repo.DeleteInactiveConfigsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logger.Infof("purged %d retired advance configs older than %s", deleted, retention)
	}
	return deleted, nil
}

// DeleteAdvanceConfig retires an override: it is deactivated rather than
// removed so the audit trail keeps the row, and any materialized effect is
// reverted in the same transaction.
func (s *Service) DeleteAdvanceConfig(ctx context.Context, id string, actor Actor) error {
	existing, err := s.GetAdvanceConfig(ctx, id)
	if err != nil {
		return err
	}
	if !existing.IsActive {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	next := *existing
	next.IsActive = false
	updated, err := s.repo.UpdateConfig(ctx, tx, &next)
	if err != nil {
		return err
	}
	if err := s.revert(ctx, tx, updated); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.recorder.Record(ctx, activitylog.Record{
		UserID:    actor.UserID,
		UserName:  actor.UserName,
		Service:   activitylog.ServiceSchedule,
		Action:    "DELETE_ADVANCE_CONFIG",
		Details:   map[string]interface{}{"config_id": id},
		IPAddress: actor.IPAddress,
	})

	return nil
}
