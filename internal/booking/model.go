package booking

import "time"

// Booking statuses. Every status except CANCELED and FAILED holds seats.
const (
	StatusPending     = "PENDING"
	StatusSucceed     = "SUCCEED"
	StatusFailed      = "FAILED"
	StatusCanceled    = "CANCELED"
	StatusRescheduled = "RESCHEDULED"
	StatusPaymented   = "PAYMENTED"
)

var validStatuses = map[string]bool{
	StatusPending:     true,
	StatusSucceed:     true,
	StatusFailed:      true,
	StatusCanceled:    true,
	StatusRescheduled: true,
	StatusPaymented:   true,
}

// HoldsSeats reports whether a booking in the given status counts against
// the schedule's capacity.
func HoldsSeats(status string) bool {
	return status != StatusCanceled && status != StatusFailed
}

type Booking struct {
	ID            string    `db:"id" json:"id"`
	ScheduleID    string    `db:"classes_schedules_id" json:"classes_schedules_id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	Phone         string    `db:"phone" json:"phone"`
	Capacity      int       `db:"capacity" json:"capacity"`
	DateBooking   time.Time `db:"date_booking" json:"date_booking"`
	Status        string    `db:"status" json:"status"`
	IsPrivate     bool      `db:"is_private" json:"is_private"`
	TrainerUserID *string   `db:"trainer_user_id" json:"trainer_user_id,omitempty"`
	Note          string    `db:"note" json:"note"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type CreateBookingRequest struct {
	ScheduleID    string  `json:"classes_schedules_id" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	Phone         string  `json:"phone" binding:"omitempty,phone_th"`
	Capacity      int     `json:"capacity" binding:"required,gt=0"`
	DateBooking   string  `json:"date_booking" binding:"required"`
	TrainerUserID *string `json:"trainer_user_id"`
	Note          string  `json:"note"`
}

type UpdateBookingRequest struct {
	ScheduleID    *string `json:"classes_schedules_id"`
	Name          *string `json:"name"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone" binding:"omitempty,phone_th"`
	Capacity      *int    `json:"capacity" binding:"omitempty,gt=0"`
	DateBooking   *string `json:"date_booking"`
	TrainerUserID *string `json:"trainer_user_id"`
	Note          *string `json:"note"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type SetNoteRequest struct {
	Note string `json:"note"`
}

type SetTrainerRequest struct {
	TrainerUserID *string `json:"trainer_user_id"`
}

type ListFilters struct {
	ScheduleID string
	GymID      int
	Email      string
	Status     string
	Date       *time.Time
	Limit      int
	Offset     int
}

type ListResult struct {
	Total    int64     `json:"total"`
	Bookings []Booking `json:"bookings"`
}

// SlotChange tags whether an update keeps the (schedule, date) slot. A
// moved booking frees its old slot entirely, so its own seats never offset
// the destination count.
type SlotChange int

const (
	SlotSame SlotChange = iota
	SlotMoved
)

func (sc SlotChange) String() string {
	if sc == SlotMoved {
		return "moved"
	}
	return "same"
}
