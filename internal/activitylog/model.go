package activitylog

import (
	"encoding/json"
	"time"
)

const (
	ServiceBooking    = "BOOKING"
	ServiceSchedule   = "SCHEDULE"
	ServiceUser       = "USER"
	ServiceTrainerGym = "TRAINER_GYM"
)

type Entry struct {
	ID        string          `db:"id" json:"id"`
	UserID    *string         `db:"user_id" json:"user_id,omitempty"`
	UserName  string          `db:"user_name" json:"user_name"`
	Service   string          `db:"service" json:"service"`
	Action    string          `db:"action" json:"action"`
	Details   json.RawMessage `db:"details" json:"details,omitempty"`
	IPAddress string          `db:"ip_address" json:"ip_address,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Record is what callers hand to the recorder; Details is marshalled to
// JSONB on insert.
type Record struct {
	UserID    string
	UserName  string
	Service   string
	Action    string
	Details   map[string]interface{}
	IPAddress string
}

type ListFilters struct {
	Service string
	Action  string
	UserID  string
	Limit   int
	Offset  int
}

type ListResult struct {
	Total int64   `json:"total"`
	Logs  []Entry `json:"logs"`
}
