package email

import "fmt"

// BookingInfo carries what the templates need, so this package never
// depends on the booking domain types.
type BookingInfo struct {
	Name      string
	Email     string
	ClassTime string
	Date      string
	Seats     int
}

func BookingConfirmed(info BookingInfo) Message {
	body := fmt.Sprintf(`Hi %s,

Your class booking is confirmed!

Class time: %s
Date: %s
Seats: %d

See you on the mats!

- Sting Hive Muay Thai`, info.Name, info.ClassTime, info.Date, info.Seats)

	return Message{
		Type:    "booking_confirmed",
		To:      info.Email,
		Name:    info.Name,
		Subject: "Booking Confirmed - Sting Hive Muay Thai",
		Body:    body,
	}
}

func BookingRescheduled(info BookingInfo) Message {
	body := fmt.Sprintf(`Hi %s,

Your booking has been rescheduled.

New class time: %s
Date: %s
Seats: %d

See you on the mats!

- Sting Hive Muay Thai`, info.Name, info.ClassTime, info.Date, info.Seats)

	return Message{
		Type:    "booking_rescheduled",
		To:      info.Email,
		Name:    info.Name,
		Subject: "Booking Rescheduled - Sting Hive Muay Thai",
		Body:    body,
	}
}

func BookingCanceled(info BookingInfo) Message {
	body := fmt.Sprintf(`Hi %s,

Your booking has been cancelled.

Class time: %s
Date: %s

We hope to see you again soon.

- Sting Hive Muay Thai`, info.Name, info.ClassTime, info.Date)

	return Message{
		Type:    "booking_canceled",
		To:      info.Email,
		Name:    info.Name,
		Subject: "Booking Cancelled - Sting Hive Muay Thai",
		Body:    body,
	}
}
