package dashboard

// DaySummary aggregates one day's bookings. Counts exclude freed bookings
// unless named otherwise.
type DaySummary struct {
	Date             string `json:"date"`
	TotalBookings    int    `db:"total_bookings" json:"total_bookings"`
	SeatsBooked      int    `db:"seats_booked" json:"seats_booked"`
	PrivateBookings  int    `db:"private_bookings" json:"private_bookings"`
	GroupBookings    int    `db:"group_bookings" json:"group_bookings"`
	CanceledBookings int    `db:"canceled_bookings" json:"canceled_bookings"`
}

type GymSeatTotal struct {
	GymID       int    `db:"gym_id" json:"gym_id"`
	GymName     string `db:"gym_name" json:"gym_name"`
	Bookings    int    `db:"bookings" json:"bookings"`
	SeatsBooked int    `db:"seats_booked" json:"seats_booked"`
}

type Summary struct {
	Day  DaySummary     `json:"day"`
	Gyms []GymSeatTotal `json:"gyms"`
}
