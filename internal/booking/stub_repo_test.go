package booking

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/schedule"

	"github.com/jmoiron/sqlx"
)

// stubRepo keeps the whole booking state in memory and mirrors the SQL
// semantics closely enough to drive the guard: inclusive override windows,
// newest-first tie-break, whole-day seat sums.
type stubRepo struct {
	schedules map[string]*schedule.ClassSchedule
	baseCaps  map[string]int
	configs   []schedule.AdvanceConfig
	bookings  map[string]*Booking

	nextID    int
	lockedIDs []string
	countErr  error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		schedules: map[string]*schedule.ClassSchedule{},
		baseCaps:  map[string]int{},
		bookings:  map[string]*Booking{},
	}
}

func (r *stubRepo) addSchedule(id string, gymID int, private bool, baseCap int) {
	r.schedules[id] = &schedule.ClassSchedule{
		ID:        id,
		StartTime: "18:00",
		EndTime:   "19:30",
		GymID:     gymID,
		IsPrivate: private,
		IsActive:  true,
	}
	r.baseCaps[id] = baseCap
}

func (r *stubRepo) addBooking(b Booking) *Booking {
	r.nextID++
	if b.ID == "" {
		b.ID = fmt.Sprintf("b-%d", r.nextID)
	}
	stored := b
	r.bookings[stored.ID] = &stored
	return &stored
}

func (r *stubRepo) GetScheduleRow(_ context.Context, _ *sqlx.Tx, id string, forUpdate bool) (*schedule.ClassSchedule, error) {
	if forUpdate {
		r.lockedIDs = append(r.lockedIDs, id)
	}
	s, ok := r.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func contains(cfg schedule.AdvanceConfig, at time.Time) bool {
	return !cfg.StartDate.After(at) && !cfg.EndDate.Before(at)
}

func (r *stubRepo) matchingConfigs(at time.Time, pred func(schedule.AdvanceConfig) bool) []schedule.AdvanceConfig {
	var out []schedule.AdvanceConfig
	for _, cfg := range r.configs {
		if cfg.IsActive && contains(cfg, at) && pred(cfg) {
			out = append(out, cfg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubRepo) GymClosureAt(_ context.Context, _ *sqlx.Tx, gymID int, at time.Time) (*schedule.AdvanceConfig, error) {
	matches := r.matchingConfigs(at, func(cfg schedule.AdvanceConfig) bool {
		return cfg.IsCloseGym && cfg.ScheduleID == nil && cfg.GymID == gymID
	})
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (r *stubRepo) ScheduleOverrideAt(_ context.Context, _ *sqlx.Tx, scheduleID string, at time.Time) (*schedule.AdvanceConfig, error) {
	matches := r.matchingConfigs(at, func(cfg schedule.AdvanceConfig) bool {
		return cfg.ScheduleID != nil && *cfg.ScheduleID == scheduleID
	})
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (r *stubRepo) BaseCapacity(_ context.Context, _ *sqlx.Tx, scheduleID string) (int, error) {
	capVal, ok := r.baseCaps[scheduleID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	return capVal, nil
}

func (r *stubRepo) CountSeats(_ context.Context, _ *sqlx.Tx, scheduleID string, dayStart, dayEnd time.Time) (int, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	sum := 0
	for _, b := range r.bookings {
		if b.ScheduleID == scheduleID && HoldsSeats(b.Status) &&
			!b.DateBooking.Before(dayStart) && b.DateBooking.Before(dayEnd) {
			sum += b.Capacity
		}
	}
	return sum, nil
}

func (r *stubRepo) InsertBooking(_ context.Context, _ *sqlx.Tx, b *Booking) (*Booking, error) {
	return r.addBooking(*b), nil
}

func (r *stubRepo) GetBookingByID(_ context.Context, id string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *b
	return &copied, nil
}

func (r *stubRepo) UpdateBooking(_ context.Context, _ *sqlx.Tx, b *Booking) (*Booking, error) {
	if _, ok := r.bookings[b.ID]; !ok {
		return nil, sql.ErrNoRows
	}
	stored := *b
	r.bookings[b.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *stubRepo) UpdateStatus(_ context.Context, _ *sqlx.Tx, id, status string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	b.Status = status
	copied := *b
	return &copied, nil
}

func (r *stubRepo) UpdateNote(_ context.Context, id, note string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	b.Note = note
	copied := *b
	return &copied, nil
}

func (r *stubRepo) UpdateTrainer(_ context.Context, id string, trainerUserID *string) (*Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	b.TrainerUserID = trainerUserID
	copied := *b
	return &copied, nil
}

func (r *stubRepo) DuplicateExists(_ context.Context, _ *sqlx.Tx, scheduleID, email string, dayStart, dayEnd time.Time, excludeID string) (bool, error) {
	for _, b := range r.bookings {
		if b.ID == excludeID {
			continue
		}
		if b.ScheduleID == scheduleID && b.Email == email && HoldsSeats(b.Status) &&
			!b.DateBooking.Before(dayStart) && b.DateBooking.Before(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRepo) List(_ context.Context, _ ListFilters) (*ListResult, error) {
	out := make([]Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, *b)
	}
	return &ListResult{Total: int64(len(out)), Bookings: out}, nil
}
