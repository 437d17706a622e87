package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/hackgods/barbershop-booking/internal/appointment"
)

type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// Availability decides which time slots a barber offers on a date.
type Availability interface {
	Slots(ctx context.Context, barberID, date string) ([]TimeSlot, error)
	// CanBook reports whether a booking of durationMinutes starting at clock fits the
	// barber's day. Callers check the slot grid first.
	CanBook(ctx context.Context, barberID, date, clock string, durationMinutes int) (bool, error)
}

// DefaultTimeSlots is the shop's half-hourly grid from 9:00 AM to 7:30 PM.
// A few slots are blocked out for breaks.
func DefaultTimeSlots() []TimeSlot {
	return []TimeSlot{
		{"9:00 AM", true}, {"9:30 AM", true}, {"10:00 AM", false}, {"10:30 AM", true},
		{"11:00 AM", true}, {"11:30 AM", true}, {"12:00 PM", false}, {"12:30 PM", true},
		{"1:00 PM", true}, {"1:30 PM", true}, {"2:00 PM", true}, {"2:30 PM", false},
		{"3:00 PM", true}, {"3:30 PM", true}, {"4:00 PM", true}, {"4:30 PM", true},
		{"5:00 PM", true}, {"5:30 PM", true}, {"6:00 PM", true}, {"6:30 PM", true},
		{"7:00 PM", false}, {"7:30 PM", true},
	}
}

// StaticAvailability returns the same grid for every barber and date and never
// looks at existing bookings.
type StaticAvailability struct {
	slots []TimeSlot
}

func NewStaticAvailability(slots []TimeSlot) *StaticAvailability {
	return &StaticAvailability{slots: append([]TimeSlot(nil), slots...)}
}

func (a *StaticAvailability) Slots(ctx context.Context, barberID, date string) ([]TimeSlot, error) {
	return append([]TimeSlot(nil), a.slots...), nil
}

func (a *StaticAvailability) CanBook(ctx context.Context, barberID, date, clock string, durationMinutes int) (bool, error) {
	return true, nil
}

// UpcomingLister is the slice of the appointment store ConflictAvailability reads.
type UpcomingLister interface {
	Upcoming(ctx context.Context) ([]appointment.Appointment, error)
}

// ConflictAvailability blocks slots that fall inside an upcoming appointment of the
// same barber on the same date.
type ConflictAvailability struct {
	base         Availability
	appointments UpcomingLister
}

func NewConflictAvailability(base Availability, appointments UpcomingLister) *ConflictAvailability {
	return &ConflictAvailability{base: base, appointments: appointments}
}

func (a *ConflictAvailability) Slots(ctx context.Context, barberID, date string) ([]TimeSlot, error) {
	slots, err := a.base.Slots(ctx, barberID, date)
	if err != nil {
		return nil, err
	}

	busy, err := a.busy(ctx, barberID, date)
	if err != nil {
		return nil, err
	}
	if len(busy) == 0 {
		return slots, nil
	}

	for i, slot := range slots {
		if !slot.Available {
			continue
		}
		m, err := clockMinutes(slot.Time)
		if err != nil {
			continue
		}
		for _, b := range busy {
			// Half-open: a slot starting exactly when a booking ends is free.
			if m >= b.start && m < b.end {
				slots[i].Available = false
				break
			}
		}
	}
	return slots, nil
}

// CanBook rejects a booking whose whole length, not just its start, overlaps an
// upcoming appointment of the same barber.
func (a *ConflictAvailability) CanBook(ctx context.Context, barberID, date, clock string, durationMinutes int) (bool, error) {
	ok, err := a.base.CanBook(ctx, barberID, date, clock, durationMinutes)
	if err != nil || !ok {
		return ok, err
	}

	start, err := clockMinutes(clock)
	if err != nil {
		return false, fmt.Errorf("parse slot time %q: %w", clock, err)
	}
	want := interval{start: start, end: start + bookingLength(durationMinutes)}

	busy, err := a.busy(ctx, barberID, date)
	if err != nil {
		return false, err
	}
	for _, b := range busy {
		if want.overlaps(b) {
			return false, nil
		}
	}
	return true, nil
}

func (a *ConflictAvailability) busy(ctx context.Context, barberID, date string) ([]interval, error) {
	upcoming, err := a.appointments.Upcoming(ctx)
	if err != nil {
		return nil, fmt.Errorf("load upcoming appointments: %w", err)
	}

	var busy []interval
	for _, appt := range upcoming {
		if appt.BarberID != barberID || appt.Date != date {
			continue
		}
		start, err := clockMinutes(appt.Time)
		if err != nil {
			continue
		}
		busy = append(busy, interval{start: start, end: start + bookingLength(appt.DurationMinutes)})
	}
	return busy, nil
}

const slotMinutes = 30

type interval struct {
	start int
	end   int
}

func (i interval) overlaps(o interval) bool {
	return i.start < o.end && o.start < i.end
}

// bookingLength treats a missing duration as one slot.
func bookingLength(minutes int) int {
	if minutes <= 0 {
		return slotMinutes
	}
	return minutes
}

func clockMinutes(clock string) (int, error) {
	t, err := time.Parse(appointment.TimeLayout, clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
