package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hackgods/barbershop-booking/internal/appointment"
	"github.com/hackgods/barbershop-booking/internal/catalog"
	redisclient "github.com/hackgods/barbershop-booking/internal/redis"
)

var (
	ErrIncompleteDraft = errors.New("draft is missing an earlier step")
	ErrUnknownTimeSlot = errors.New("time is not one of the bookable slots")
	ErrSlotUnavailable = errors.New("time slot is not available")
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
)

type Step string

const (
	StepBarber   Step = "select_barber"
	StepService  Step = "select_service"
	StepDateTime Step = "select_datetime"
	StepConfirm  Step = "confirm"
)

// Draft is the in-progress booking. It is a plain value: each step returns a new
// copy and it can be serialized between requests.
type Draft struct {
	BarberID        string  `json:"barberId,omitempty"`
	BarberName      string  `json:"barberName,omitempty"`
	ServiceID       string  `json:"serviceId,omitempty"`
	ServiceName     string  `json:"serviceName,omitempty"`
	ServicePrice    float64 `json:"servicePrice,omitempty"`
	ServiceDuration int     `json:"serviceDuration,omitempty"`
	Date            string  `json:"date,omitempty"`
	Time            string  `json:"time,omitempty"`
}

// Next reports which step the draft is waiting on.
func (d Draft) Next() Step {
	switch {
	case d.BarberID == "":
		return StepBarber
	case d.ServiceID == "":
		return StepService
	case d.Date == "" || d.Time == "":
		return StepDateTime
	default:
		return StepConfirm
	}
}

type Flow struct {
	catalog      *catalog.Catalog
	store        *appointment.Service
	availability Availability
	locker       redisclient.Locker
	loc          *time.Location
	now          func() time.Time
}

func NewFlow(cat *catalog.Catalog, store *appointment.Service, availability Availability, locker redisclient.Locker) *Flow {
	return &Flow{
		catalog:      cat,
		store:        store,
		availability: availability,
		locker:       locker,
		loc:          time.Local,
		now:          time.Now,
	}
}

// WithLocation sets the zone used to decide whether a date or slot is in the past.
func (f *Flow) WithLocation(loc *time.Location) *Flow {
	if loc != nil {
		f.loc = loc
	}
	return f
}

// WithClock replaces time.Now.
func (f *Flow) WithClock(now func() time.Time) *Flow {
	if now != nil {
		f.now = now
	}
	return f
}

func (f *Flow) Start() Draft {
	return Draft{}
}

// SelectBarber sets the barber. Choosing a different barber clears the date and time
// since slots are per barber.
func (f *Flow) SelectBarber(d Draft, barberID string) (Draft, error) {
	b, err := f.catalog.Barber(strings.TrimSpace(barberID))
	if err != nil {
		return d, err
	}
	if d.BarberID != b.ID {
		d.Date, d.Time = "", ""
	}
	d.BarberID = b.ID
	d.BarberName = b.Name
	return d, nil
}

// SelectService copies the service name, price and duration onto the draft.
func (f *Flow) SelectService(d Draft, serviceID string) (Draft, error) {
	if d.Next() == StepBarber {
		return d, ErrIncompleteDraft
	}
	s, err := f.catalog.Service(strings.TrimSpace(serviceID))
	if err != nil {
		return d, err
	}
	d.ServiceID = s.ID
	d.ServiceName = s.Name
	d.ServicePrice = s.Price
	d.ServiceDuration = s.DurationMinutes
	return d, nil
}

func (f *Flow) SelectDateTime(ctx context.Context, d Draft, date, clock string) (Draft, error) {
	if next := d.Next(); next == StepBarber || next == StepService {
		return d, ErrIncompleteDraft
	}
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if err := f.checkDate(date); err != nil {
		return d, err
	}
	if err := f.checkSlot(ctx, d.BarberID, date, clock, d.ServiceDuration); err != nil {
		return d, err
	}
	d.Date = date
	d.Time = clock
	return d, nil
}

// Confirm books the draft. The slot is re-checked under the barber's day lock so two
// confirmations that would overlap cannot both pass a conflict-aware policy.
func (f *Flow) Confirm(ctx context.Context, d Draft) (*appointment.Appointment, error) {
	if d.Next() != StepConfirm {
		return nil, ErrIncompleteDraft
	}
	if err := f.checkDate(d.Date); err != nil {
		return nil, err
	}

	var created *appointment.Appointment
	key := redisclient.ScheduleKey(d.BarberID, d.Date)

	err := f.locker.WithSlotLock(ctx, key, func(lockCtx context.Context) error {
		if err := f.checkSlot(lockCtx, d.BarberID, d.Date, d.Time, d.ServiceDuration); err != nil {
			return err
		}

		appt, err := f.store.Create(lockCtx, appointment.Draft{
			BarberID:        d.BarberID,
			BarberName:      d.BarberName,
			ServiceID:       d.ServiceID,
			ServiceName:     d.ServiceName,
			Date:            d.Date,
			Time:            d.Time,
			DurationMinutes: d.ServiceDuration,
			Price:           d.ServicePrice,
			Status:          appointment.StatusUpcoming,
		})
		if err != nil {
			return err
		}
		created = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	return created, nil
}

// AvailableSlots lists the time grid for a barber on a date under the active policy.
// Slots that have already started today are reported unavailable.
func (f *Flow) AvailableSlots(ctx context.Context, barberID, date string) ([]TimeSlot, error) {
	if _, err := f.catalog.Barber(barberID); err != nil {
		return nil, err
	}
	if err := f.checkDate(date); err != nil {
		return nil, err
	}
	slots, err := f.availability.Slots(ctx, barberID, date)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].Available && f.started(date, slots[i].Time) {
			slots[i].Available = false
		}
	}
	return slots, nil
}

// checkDate rejects malformed dates and days before today.
func (f *Flow) checkDate(date string) error {
	day, err := time.ParseInLocation(appointment.DateLayout, date, f.loc)
	if err != nil {
		return &appointment.ValidationError{Field: "date", Message: "date must be formatted as YYYY-MM-DD"}
	}
	now := f.now().In(f.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, f.loc)
	if day.Before(today) {
		return &appointment.ValidationError{Field: "date", Message: "date must not be in the past"}
	}
	return nil
}

func (f *Flow) started(date, clock string) bool {
	start, err := appointment.ParseStart(date, clock, f.loc)
	if err != nil {
		return false
	}
	return !start.After(f.now())
}

func (f *Flow) checkSlot(ctx context.Context, barberID, date, clock string, durationMinutes int) error {
	slots, err := f.availability.Slots(ctx, barberID, date)
	if err != nil {
		return fmt.Errorf("load availability: %w", err)
	}

	found := false
	for _, s := range slots {
		if s.Time != clock {
			continue
		}
		if !s.Available {
			return ErrSlotUnavailable
		}
		found = true
		break
	}
	if !found {
		return ErrUnknownTimeSlot
	}

	if f.started(date, clock) {
		return &appointment.ValidationError{Field: "time", Message: "time slot has already started"}
	}

	ok, err := f.availability.CanBook(ctx, barberID, date, clock, durationMinutes)
	if err != nil {
		return fmt.Errorf("check availability: %w", err)
	}
	if !ok {
		return ErrSlotUnavailable
	}
	return nil
}
