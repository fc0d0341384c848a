package booking

import (
	"context"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/activitylog"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/dateutil"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/email"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/logger"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/schedule"
)

type EventType string

const (
	EventCreated        EventType = "BOOKING_CREATED"
	EventUpdated        EventType = "BOOKING_UPDATED"
	EventRescheduled    EventType = "BOOKING_RESCHEDULED"
	EventCanceled       EventType = "BOOKING_CANCELED"
	EventStatusChanged  EventType = "BOOKING_STATUS_CHANGED"
	EventNoteUpdated    EventType = "BOOKING_NOTE_UPDATED"
	EventTrainerChanged EventType = "BOOKING_TRAINER_CHANGED"
)

// Event is the outbox entry a service call returns. The transaction is
// already committed by the time anyone sees one, so dispatching can never
// roll a booking back.
type Event struct {
	Type     EventType
	Booking  *Booking
	Previous *Booking
	Schedule *schedule.ClassSchedule
	Actor    Actor
}

// Dispatcher fans events out to the mail queue and the audit log. Both
// sinks are best effort: failures are logged and swallowed.
type Dispatcher struct {
	mailer   email.Enqueuer
	recorder activitylog.Recorder
}

func NewDispatcher(mailer email.Enqueuer, recorder activitylog.Recorder) *Dispatcher {
	return &Dispatcher{mailer: mailer, recorder: recorder}
}

func (d *Dispatcher) Dispatch(ctx context.Context, events []Event) {
	for _, ev := range events {
		d.notify(ctx, ev)
		d.audit(ctx, ev)
	}
}

func (d *Dispatcher) notify(ctx context.Context, ev Event) {
	info := email.BookingInfo{
		Name:  ev.Booking.Name,
		Email: ev.Booking.Email,
		Date:  ev.Booking.DateBooking.Format(dateutil.DateLayout),
		Seats: ev.Booking.Capacity,
	}
	if ev.Schedule != nil {
		info.ClassTime = ev.Schedule.StartTime + " - " + ev.Schedule.EndTime
	}

	var msg email.Message
	switch ev.Type {
	case EventCreated:
		msg = email.BookingConfirmed(info)
	case EventRescheduled:
		msg = email.BookingRescheduled(info)
	case EventCanceled:
		msg = email.BookingCanceled(info)
	default:
		return
	}

	if err := d.mailer.Enqueue(ctx, msg); err != nil {
		logger.Errorf("failed to enqueue %s email for booking %s: %v", ev.Type, ev.Booking.ID, err)
	}
}

func (d *Dispatcher) audit(ctx context.Context, ev Event) {
	details := map[string]interface{}{
		"booking_id":  ev.Booking.ID,
		"schedule_id": ev.Booking.ScheduleID,
		"status":      ev.Booking.Status,
		"capacity":    ev.Booking.Capacity,
		"date":        ev.Booking.DateBooking.Format(dateutil.DateLayout),
	}
	if ev.Previous != nil {
		details["previous_schedule_id"] = ev.Previous.ScheduleID
		details["previous_status"] = ev.Previous.Status
		details["previous_capacity"] = ev.Previous.Capacity
	}

	d.recorder.Record(ctx, activitylog.Record{
		UserID:    ev.Actor.UserID,
		UserName:  ev.Actor.UserName,
		Service:   activitylog.ServiceBooking,
		Action:    string(ev.Type),
		Details:   details,
		IPAddress: ev.Actor.IPAddress,
	})
}
