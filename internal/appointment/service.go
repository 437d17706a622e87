package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/barbershop-booking/internal/events"
)

var ErrInvalidStatusTransition = errors.New("invalid status transition")

type Service struct {
	repo      Repository
	publisher events.Publisher
	loc       *time.Location
	now       func() time.Time
}

// NewService builds the appointment store. A nil publisher disables event fan-out;
// events are still written to the repository log.
func NewService(repo Repository, publisher events.Publisher) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		loc:       time.Local,
		now:       time.Now,
	}
}

// WithLocation sets the zone appointment dates and times are interpreted in.
func (s *Service) WithLocation(loc *time.Location) *Service {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// Create validates the draft, assigns a fresh id and appends the appointment.
func (s *Service) Create(ctx context.Context, d Draft) (*Appointment, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	appt := Appointment{
		ID:              uuid.NewString(),
		BarberID:        d.BarberID,
		BarberName:      d.BarberName,
		ServiceID:       d.ServiceID,
		ServiceName:     d.ServiceName,
		Date:            d.Date,
		Time:            d.Time,
		DurationMinutes: d.DurationMinutes,
		Status:          d.Status,
		Price:           d.Price,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.repo.CreateAppointment(ctx, appt)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.logEvent(ctx, created.ID, events.AppointmentCreated, map[string]any{
		"barber_id":  created.BarberID,
		"service_id": created.ServiceID,
		"date":       created.Date,
		"time":       created.Time,
		"price":      created.Price,
	})

	return created, nil
}

// Cancel moves an upcoming appointment to cancelled. Cancelling an already
// cancelled appointment returns it unchanged.
func (s *Service) Cancel(ctx context.Context, id string) (*Appointment, error) {
	return s.transition(ctx, id, StatusCancelled, events.AppointmentCancelled, "client")
}

// Complete moves an upcoming appointment to completed.
func (s *Service) Complete(ctx context.Context, id string) (*Appointment, error) {
	return s.transition(ctx, id, StatusCompleted, events.AppointmentCompleted, "manual")
}

func (s *Service) transition(ctx context.Context, id string, to AppointmentStatus, eventType, reason string) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if appt.Status == to {
		return appt, nil
	}
	if !ValidTransition(appt.Status, to) {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, to)
	if err != nil {
		if !errors.Is(err, ErrAppointmentNotFound) {
			return nil, fmt.Errorf("update appointment status: %w", err)
		}
		// Status changed underneath us; report what it changed to.
		current, getErr := s.repo.GetAppointmentByID(ctx, id)
		if getErr != nil {
			return nil, fmt.Errorf("reload appointment: %w", getErr)
		}
		if current.Status == to {
			return current, nil
		}
		return nil, ErrInvalidStatusTransition
	}

	s.logEvent(ctx, updated.ID, eventType, map[string]any{
		"from":   string(appt.Status),
		"reason": reason,
	})

	return updated, nil
}

// CompleteElapsed marks every upcoming appointment that ended before now as completed
// and returns how many it moved.
func (s *Service) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	upcoming, err := s.repo.ListAppointmentsByStatus(ctx, StatusUpcoming)
	if err != nil {
		return 0, fmt.Errorf("list upcoming appointments: %w", err)
	}

	completed := 0
	for _, appt := range upcoming {
		end, err := appt.EndsAt(s.loc)
		if err != nil {
			log.Printf("skipping appointment %s: %v", appt.ID, err)
			continue
		}
		if !end.Before(now) {
			continue
		}

		_, err = s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusUpcoming, StatusCompleted)
		if err != nil {
			if !errors.Is(err, ErrAppointmentNotFound) {
				log.Printf("failed to complete appointment %s: %v", appt.ID, err)
			}
			continue
		}
		completed++
		s.logEvent(ctx, appt.ID, events.AppointmentCompleted, map[string]any{
			"from":   string(StatusUpcoming),
			"reason": "elapsed",
		})
	}

	return completed, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// All returns every appointment in insertion order.
func (s *Service) All(ctx context.Context) ([]Appointment, error) {
	appts, err := s.repo.ListAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// Upcoming is read from the repository on each call.
func (s *Service) Upcoming(ctx context.Context) ([]Appointment, error) {
	appts, err := s.repo.ListAppointmentsByStatus(ctx, StatusUpcoming)
	if err != nil {
		return nil, fmt.Errorf("list upcoming appointments: %w", err)
	}
	return appts, nil
}

// Past holds completed and cancelled appointments.
func (s *Service) Past(ctx context.Context) ([]Appointment, error) {
	appts, err := s.repo.ListAppointmentsByStatus(ctx, StatusCompleted, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("list past appointments: %w", err)
	}
	return appts, nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID string, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}

	now := s.now()

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: appointmentID,
		Payload:       data,
		CreatedAt:     now,
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		log.Printf("failed to insert event log %s for appointment %s: %v", eventType, appointmentID, err)
	}

	if s.publisher == nil {
		return
	}
	err = s.publisher.Publish(ctx, events.Event{
		Type:          eventType,
		AppointmentID: appointmentID,
		Payload:       data,
		OccurredAt:    now,
	})
	if err != nil {
		log.Printf("failed to publish event %s for appointment %s: %v", eventType, appointmentID, err)
	}
}
