package booking

import (
	"context"
	"time"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/apperr"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/dateutil"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/metrics"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/schedule"

	"github.com/jmoiron/sqlx"
)

type Actor struct {
	UserID    string
	UserName  string
	IPAddress string
}

// ScheduleLister is the slice of the schedule repository the public
// availability listing needs.
type ScheduleLister interface {
	ListSchedules(ctx context.Context, filters schedule.ListFilters) ([]schedule.ScheduleWithCapacity, error)
}

// Service enforces the capacity invariant: every seat-affecting mutation
// runs inside a transaction that locks the schedule row, re-reads
// availability under that lock, and only then writes. Side effects are
// returned as events for the caller to dispatch after commit.
type Service struct {
	db        *sqlx.DB
	repo      Repository
	calc      *Calculator
	schedules ScheduleLister
	loc       *time.Location
	now       func() time.Time
}

func NewService(db *sqlx.DB, repo Repository, schedules ScheduleLister, loc *time.Location) *Service {
	return &Service{
		db:        db,
		repo:      repo,
		calc:      NewCalculator(repo, loc),
		schedules: schedules,
		loc:       loc,
		now:       time.Now,
	}
}

// CheckAvailability is the unlocked read path.
func (s *Service) CheckAvailability(ctx context.Context, scheduleID string, date time.Time) (*Availability, error) {
	return s.calc.CheckAvailability(ctx, nil, scheduleID, date, false)
}

// ListAvailable reports open seats for every matching active schedule on
// the date. It loops the same CheckAvailability the write guard uses.
func (s *Service) ListAvailable(ctx context.Context, date time.Time, gymID int, isPrivate *bool) ([]Availability, error) {
	scheds, err := s.schedules.ListSchedules(ctx, schedule.ListFilters{
		GymID:      gymID,
		IsPrivate:  isPrivate,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Availability, 0, len(scheds))
	for _, sc := range scheds {
		avail, err := s.calc.CheckAvailability(ctx, nil, sc.ID, date, false)
		if err != nil {
			return nil, err
		}
		results = append(results, *avail)
	}

	return results, nil
}

func (s *Service) parseBookingDate(value string) (time.Time, error) {
	date, err := dateutil.ParseDate(value, s.loc)
	if err != nil {
		return time.Time{}, apperr.BadRequest("date_booking must be YYYY-MM-DD")
	}
	if dateutil.BeforeToday(date, s.now(), s.loc) {
		return time.Time{}, apperr.BadRequest("Cannot book a past date")
	}
	return dateutil.Checkpoint(date, s.loc), nil
}

// guardSeats applies the capacity rule under the already-held lock.
// previousQty is the caller's own live holding in the target slot; it
// never goes negative against seats taken by others.
func guardSeats(avail *Availability, previousQty, requested int) error {
	seatsTakenByOthers := avail.CurrentBooked - previousQty
	if seatsTakenByOthers < 0 {
		seatsTakenByOthers = 0
	}

	if seatsTakenByOthers+requested > avail.MaxCapacity {
		remaining := avail.MaxCapacity - seatsTakenByOthers
		if remaining < 0 {
			remaining = 0
		}
		metrics.RecordCapacityConflict()
		return apperr.CapacityConflict(remaining, requested)
	}

	return nil
}

func (s *Service) validateSlot(avail *Availability, trainerUserID *string) error {
	if avail.Status.Closed() {
		return apperr.Conflict("%s", avail.ClosureReason)
	}
	if !avail.Schedule.IsActive {
		return apperr.Conflict("Schedule is not active")
	}
	if trainerUserID != nil && !avail.Schedule.IsPrivate {
		return apperr.BadRequest("A trainer can only be assigned to private classes")
	}
	return nil
}

// Create books seats for a slot. The schedule row lock serializes
// concurrent creates so the last seat goes to exactly one caller.
func (s *Service) Create(ctx context.Context, req CreateBookingRequest, actor Actor) (*Booking, []Event, error) {
	date, err := s.parseBookingDate(req.DateBooking)
	if err != nil {
		return nil, nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	avail, err := s.calc.CheckAvailability(ctx, tx, req.ScheduleID, date, true)
	if err != nil {
		metrics.RecordBooking("create", "error")
		return nil, nil, err
	}
	if err := s.validateSlot(avail, req.TrainerUserID); err != nil {
		metrics.RecordBooking("create", "rejected")
		return nil, nil, err
	}

	dayStart, dayEnd := dateutil.DayBounds(date, s.loc)
	duplicate, err := s.repo.DuplicateExists(ctx, tx, req.ScheduleID, req.Email, dayStart, dayEnd, "")
	if err != nil {
		return nil, nil, err
	}
	if duplicate {
		metrics.RecordBooking("create", "rejected")
		return nil, nil, apperr.Conflict("This email already has a booking for that class and date")
	}

	if err := guardSeats(avail, 0, req.Capacity); err != nil {
		metrics.RecordBooking("create", "conflict")
		return nil, nil, err
	}

	created, err := s.repo.InsertBooking(ctx, tx, &Booking{
		ScheduleID:    req.ScheduleID,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Capacity:      req.Capacity,
		DateBooking:   date,
		Status:        StatusSucceed,
		IsPrivate:     avail.Schedule.IsPrivate,
		TrainerUserID: req.TrainerUserID,
		Note:          req.Note,
	})
	if err != nil {
		metrics.RecordBooking("create", "error")
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	metrics.RecordBooking("create", "success")
	events := []Event{{Type: EventCreated, Booking: created, Actor: actor, Schedule: avail.Schedule}}
	return created, events, nil
}

func (s *Service) GetBooking(ctx context.Context, id string) (*Booking, error) {
	b, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperr.NotFound("Booking not found")
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, filters ListFilters) (*ListResult, error) {
	return s.repo.List(ctx, filters)
}

// Update reschedules or resizes a booking. Whether the booking's own seats
// offset the destination count depends on the slot change: a booking that
// stays in its (schedule, date) slot frees its old seats into the same
// count it rebooks from, while a moved booking competes for the target
// slot like a brand-new one.
func (s *Service) Update(ctx context.Context, id string, req UpdateBookingRequest, actor Actor) (*Booking, []Event, error) {
	existing, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	targetScheduleID := existing.ScheduleID
	if req.ScheduleID != nil {
		targetScheduleID = *req.ScheduleID
	}

	targetDate := existing.DateBooking
	if req.DateBooking != nil {
		targetDate, err = s.parseBookingDate(*req.DateBooking)
		if err != nil {
			return nil, nil, err
		}
	} else if dateutil.BeforeToday(targetDate, s.now(), s.loc) {
		return nil, nil, apperr.BadRequest("Cannot reschedule a past booking")
	}

	targetCapacity := existing.Capacity
	if req.Capacity != nil {
		targetCapacity = *req.Capacity
	}

	slotChange := SlotMoved
	if targetScheduleID == existing.ScheduleID && dateutil.SameDay(targetDate, existing.DateBooking, s.loc) {
		slotChange = SlotSame
	}

	trainer := existing.TrainerUserID
	if req.TrainerUserID != nil {
		trainer = req.TrainerUserID
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	avail, err := s.calc.CheckAvailability(ctx, tx, targetScheduleID, targetDate, true)
	if err != nil {
		metrics.RecordBooking("update", "error")
		return nil, nil, err
	}
	if err := s.validateSlot(avail, trainer); err != nil {
		metrics.RecordBooking("update", "rejected")
		return nil, nil, err
	}

	email := existing.Email
	if req.Email != nil {
		email = *req.Email
	}
	dayStart, dayEnd := dateutil.DayBounds(targetDate, s.loc)
	duplicate, err := s.repo.DuplicateExists(ctx, tx, targetScheduleID, email, dayStart, dayEnd, existing.ID)
	if err != nil {
		return nil, nil, err
	}
	if duplicate {
		metrics.RecordBooking("update", "rejected")
		return nil, nil, apperr.Conflict("This email already has a booking for that class and date")
	}

	previousQty := 0
	if slotChange == SlotSame && HoldsSeats(existing.Status) {
		previousQty = existing.Capacity
	}
	if err := guardSeats(avail, previousQty, targetCapacity); err != nil {
		metrics.RecordBooking("update", "conflict")
		return nil, nil, err
	}

	next := *existing
	next.ScheduleID = targetScheduleID
	next.DateBooking = targetDate
	next.Capacity = targetCapacity
	next.IsPrivate = avail.Schedule.IsPrivate
	next.TrainerUserID = trainer
	if req.Name != nil {
		next.Name = *req.Name
	}
	if req.Email != nil {
		next.Email = *req.Email
	}
	if req.Phone != nil {
		next.Phone = *req.Phone
	}
	if req.Note != nil {
		next.Note = *req.Note
	}
	if slotChange == SlotMoved {
		next.Status = StatusRescheduled
	}

	updated, err := s.repo.UpdateBooking(ctx, tx, &next)
	if err != nil {
		metrics.RecordBooking("update", "error")
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	metrics.RecordBooking("update", "success")
	eventType := EventUpdated
	if slotChange == SlotMoved {
		eventType = EventRescheduled
	}
	events := []Event{{Type: eventType, Booking: updated, Previous: existing, Actor: actor, Schedule: avail.Schedule}}
	return updated, events, nil
}

// SetStatus transitions a booking. Freeing transitions (into CANCELED or
// FAILED) always succeed; transitions that re-acquire seats run the full
// locked availability check because the seats may be gone.
func (s *Service) SetStatus(ctx context.Context, id, status string, actor Actor) (*Booking, []Event, error) {
	if !validStatuses[status] {
		return nil, nil, apperr.BadRequest("Unknown status %s", status)
	}

	existing, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if existing.Status == status {
		return existing, nil, nil
	}

	reacquires := HoldsSeats(status) && !HoldsSeats(existing.Status)

	var updated *Booking
	if reacquires {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return nil, nil, err
		}
		defer tx.Rollback()

		avail, err := s.calc.CheckAvailability(ctx, tx, existing.ScheduleID, existing.DateBooking, true)
		if err != nil {
			metrics.RecordBooking("status", "error")
			return nil, nil, err
		}
		if avail.Status.Closed() {
			metrics.RecordBooking("status", "rejected")
			return nil, nil, apperr.Conflict("%s", avail.ClosureReason)
		}
		if err := guardSeats(avail, 0, existing.Capacity); err != nil {
			metrics.RecordBooking("status", "conflict")
			return nil, nil, err
		}

		updated, err = s.repo.UpdateStatus(ctx, tx, id, status)
		if err != nil {
			return nil, nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, nil, err
		}
	} else {
		updated, err = s.repo.UpdateStatus(ctx, nil, id, status)
		if err != nil {
			if IsNotFound(err) {
				return nil, nil, apperr.NotFound("Booking not found")
			}
			return nil, nil, err
		}
	}

	metrics.RecordBooking("status", "success")
	eventType := EventStatusChanged
	if status == StatusCanceled {
		eventType = EventCanceled
	}
	events := []Event{{Type: eventType, Booking: updated, Previous: existing, Actor: actor}}
	return updated, events, nil
}

// Cancel frees the booking's seats.
func (s *Service) Cancel(ctx context.Context, id string, actor Actor) (*Booking, []Event, error) {
	return s.SetStatus(ctx, id, StatusCanceled, actor)
}

// MarkPaymented flags the booking as paid. Seat accounting is unaffected
// unless the booking was previously freed.
func (s *Service) MarkPaymented(ctx context.Context, id string, actor Actor) (*Booking, []Event, error) {
	return s.SetStatus(ctx, id, StatusPaymented, actor)
}

func (s *Service) SetNote(ctx context.Context, id, note string, actor Actor) (*Booking, []Event, error) {
	if _, err := s.GetBooking(ctx, id); err != nil {
		return nil, nil, err
	}

	updated, err := s.repo.UpdateNote(ctx, id, note)
	if err != nil {
		return nil, nil, err
	}

	events := []Event{{Type: EventNoteUpdated, Booking: updated, Actor: actor}}
	return updated, events, nil
}

func (s *Service) SetTrainer(ctx context.Context, id string, trainerUserID *string, actor Actor) (*Booking, []Event, error) {
	existing, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if trainerUserID != nil && !existing.IsPrivate {
		return nil, nil, apperr.BadRequest("A trainer can only be assigned to private classes")
	}

	updated, err := s.repo.UpdateTrainer(ctx, id, trainerUserID)
	if err != nil {
		return nil, nil, err
	}

	events := []Event{{Type: EventTrainerChanged, Booking: updated, Previous: existing, Actor: actor}}
	return updated, events, nil
}
