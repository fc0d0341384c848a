package booking

import (
	"context"
	"time"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/apperr"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/dateutil"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/schedule"

	"github.com/jmoiron/sqlx"
)

// ClosureStatus is the closed-world answer to "can this slot take
// bookings". String comparisons on reasons are not part of the contract.
type ClosureStatus int

const (
	Open ClosureStatus = iota
	GymClosed
	ClassClosed
)

func (s ClosureStatus) Closed() bool {
	return s != Open
}

// Reason returns the human message shown to clients for a closed slot.
func (s ClosureStatus) Reason() string {
	switch s {
	case GymClosed:
		return "Gym Closed"
	case ClassClosed:
		return "Class Closed"
	default:
		return ""
	}
}

// ResolvedCapacity is the authoritative seat ceiling for one (schedule,
// date) pair after closures and overrides are applied.
type ResolvedCapacity struct {
	MaxCapacity int
	Status      ClosureStatus
}

// Availability is the shared read result: the public listing endpoint and
// the locked write guard both consume exactly this.
type Availability struct {
	Schedule       *schedule.ClassSchedule `json:"schedule"`
	MaxCapacity    int                     `json:"max_capacity"`
	CurrentBooked  int                     `json:"current_booked"`
	AvailableSeats int                     `json:"available_seats"`
	Status         ClosureStatus           `json:"-"`
	IsCloseGym     bool                    `json:"is_close_gym"`
	IsClassClosed  bool                    `json:"is_class_closed"`
	ClosureReason  string                  `json:"closure_reason,omitempty"`
}

// Calculator composes the capacity resolver and the booking counter. It is
// pure read composition; locking is the caller's choice via the tx and
// forUpdate arguments.
type Calculator struct {
	repo Repository
	loc  *time.Location
}

func NewCalculator(repo Repository, loc *time.Location) *Calculator {
	return &Calculator{repo: repo, loc: loc}
}

// ResolveCapacity determines the seat ceiling for the schedule on the
// target date: gym-wide closure first, then the newest schedule override,
// then the base capacity row. Window containment is evaluated at the 07:00
// checkpoint of the target date, inclusive on both bounds.
func (c *Calculator) ResolveCapacity(ctx context.Context, tx *sqlx.Tx, sched *schedule.ClassSchedule, date time.Time) (ResolvedCapacity, error) {
	checkpoint := dateutil.Checkpoint(date, c.loc)

	closure, err := c.repo.GymClosureAt(ctx, tx, sched.GymID, checkpoint)
	if err != nil {
		return ResolvedCapacity{}, err
	}
	if closure != nil {
		return ResolvedCapacity{MaxCapacity: 0, Status: GymClosed}, nil
	}

	override, err := c.repo.ScheduleOverrideAt(ctx, tx, sched.ID, checkpoint)
	if err != nil {
		return ResolvedCapacity{}, err
	}
	if override != nil {
		if override.IsCloseGym {
			return ResolvedCapacity{MaxCapacity: 0, Status: ClassClosed}, nil
		}
		if override.Capacity != nil {
			return ResolvedCapacity{MaxCapacity: *override.Capacity, Status: Open}, nil
		}
	}

	base, err := c.repo.BaseCapacity(ctx, tx, sched.ID)
	if err != nil {
		if IsNotFound(err) {
			return ResolvedCapacity{}, apperr.NotFound("Capacity record not found for schedule")
		}
		return ResolvedCapacity{}, err
	}

	return ResolvedCapacity{MaxCapacity: base, Status: Open}, nil
}

// CountBookedSeats sums live seats for the whole calendar day of date.
func (c *Calculator) CountBookedSeats(ctx context.Context, tx *sqlx.Tx, scheduleID string, date time.Time) (int, error) {
	dayStart, dayEnd := dateutil.DayBounds(date, c.loc)
	return c.repo.CountSeats(ctx, tx, scheduleID, dayStart, dayEnd)
}

// CheckAvailability is the single source of truth for open seats. The
// public listing calls it with tx=nil, forUpdate=false; the write guard
// calls it inside a transaction with forUpdate=true.
func (c *Calculator) CheckAvailability(ctx context.Context, tx *sqlx.Tx, scheduleID string, date time.Time, forUpdate bool) (*Availability, error) {
	sched, err := c.repo.GetScheduleRow(ctx, tx, scheduleID, forUpdate)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperr.NotFound("Schedule not found")
		}
		return nil, err
	}

	resolved, err := c.ResolveCapacity(ctx, tx, sched, date)
	if err != nil {
		return nil, err
	}

	booked, err := c.CountBookedSeats(ctx, tx, scheduleID, date)
	if err != nil {
		return nil, err
	}

	available := resolved.MaxCapacity - booked
	if available < 0 {
		available = 0
	}

	return &Availability{
		Schedule:       sched,
		MaxCapacity:    resolved.MaxCapacity,
		CurrentBooked:  booked,
		AvailableSeats: available,
		Status:         resolved.Status,
		IsCloseGym:     resolved.Status == GymClosed,
		IsClassClosed:  resolved.Status == ClassClosed,
		ClosureReason:  resolved.Status.Reason(),
	}, nil
}
