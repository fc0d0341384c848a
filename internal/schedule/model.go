package schedule

import "time"

// ClassSchedule is a recurring class template. Bookings reference it by id
// together with a concrete date.
type ClassSchedule struct {
	ID          string    `db:"id" json:"id"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	GymID       int       `db:"gyms_id" json:"gyms_id"`
	Description string    `db:"description" json:"description"`
	IsPrivate   bool      `db:"is_private" json:"is_private"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Capacity is the base seat ceiling for one schedule, before any
// date-ranged override applies.
type Capacity struct {
	ID         string    `db:"id" json:"id"`
	ScheduleID string    `db:"classes_schedules_id" json:"classes_schedules_id"`
	Capacity   int       `db:"capacity" json:"capacity"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// AdvanceConfig is a date-ranged override. Gym closures carry a nil
// ScheduleID; capacity overrides carry a nil-free ScheduleID and Capacity.
// OldCapacity snapshots the base capacity at creation so the rollover job
// can restore it when the window ends.
type AdvanceConfig struct {
	ID          string    `db:"id" json:"id"`
	ScheduleID  *string   `db:"classes_schedules_id" json:"classes_schedules_id,omitempty"`
	GymID       int       `db:"gyms_id" json:"gyms_id"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	IsCloseGym  bool      `db:"is_close_gym" json:"is_close_gym"`
	Capacity    *int      `db:"capacity" json:"capacity,omitempty"`
	OldCapacity *int      `db:"old_capacity" json:"old_capacity,omitempty"`
	Description string    `db:"description" json:"description"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleWithCapacity joins the template with its base ceiling for list
// and detail responses.
type ScheduleWithCapacity struct {
	ClassSchedule
	Capacity int `db:"capacity" json:"capacity"`
}

type CreateScheduleRequest struct {
	StartTime   string `json:"start_time" binding:"required,hhmm"`
	EndTime     string `json:"end_time" binding:"required,hhmm"`
	GymID       int    `json:"gyms_id" binding:"required"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
	Capacity    int    `json:"capacity" binding:"required,gt=0"`
}

type UpdateScheduleRequest struct {
	StartTime   *string `json:"start_time" binding:"omitempty,hhmm"`
	EndTime     *string `json:"end_time" binding:"omitempty,hhmm"`
	GymID       *int    `json:"gyms_id"`
	Description *string `json:"description"`
	IsPrivate   *bool   `json:"is_private"`
	IsActive    *bool   `json:"is_active"`
	Capacity    *int    `json:"capacity" binding:"omitempty,gt=0"`
}

type ListFilters struct {
	GymID      int
	IsPrivate  *bool
	ActiveOnly bool
}

type CreateAdvanceConfigRequest struct {
	ScheduleID  *string `json:"classes_schedules_id"`
	GymID       int     `json:"gyms_id" binding:"required"`
	StartDate   string  `json:"start_date" binding:"required"`
	EndDate     string  `json:"end_date" binding:"required"`
	IsCloseGym  bool    `json:"is_close_gym"`
	Capacity    *int    `json:"capacity" binding:"omitempty,gt=0"`
	Description string  `json:"description"`
}

type UpdateAdvanceConfigRequest struct {
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Capacity    *int    `json:"capacity" binding:"omitempty,gt=0"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type ConfigFilters struct {
	GymID      int
	ScheduleID string
	ActiveOnly bool
}

// AdvanceConfigResult carries the stored config plus a warning when
// existing bookings already exceed a lowered ceiling.
type AdvanceConfigResult struct {
	Config  *AdvanceConfig `json:"config"`
	Warning string         `json:"warning,omitempty"`
}
