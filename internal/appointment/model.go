package appointment

import (
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	StatusUpcoming  AppointmentStatus = "upcoming"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "3:04 PM"
)

// Appointment carries barber and service fields copied at booking time.
// They are never re-read from the catalog.
type Appointment struct {
	ID              string
	BarberID        string
	BarberName      string
	ServiceID       string
	ServiceName     string
	Date            string
	Time            string
	DurationMinutes int
	Status          AppointmentStatus
	Price           float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StartsAt combines Date and Time in loc.
func (a Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return ParseStart(a.Date, a.Time, loc)
}

// EndsAt is StartsAt plus the booked duration.
func (a Appointment) EndsAt(loc *time.Location) (time.Time, error) {
	start, err := a.StartsAt(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(a.DurationMinutes) * time.Minute), nil
}

// IsPast reports whether the appointment belongs in the past view.
func (a Appointment) IsPast() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}

// Draft is the input to Service.Create.
type Draft struct {
	BarberID        string
	BarberName      string
	ServiceID       string
	ServiceName     string
	Date            string
	Time            string
	DurationMinutes int
	Price           float64
	Status          AppointmentStatus
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID string
	Payload       []byte
	CreatedAt     time.Time
}

func ParseStart(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse appointment start %q %q: %w", date, clock, err)
	}
	return t, nil
}
