package appointment

import (
	"context"
	"errors"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDuplicateID         = errors.New("appointment id already exists")
)

// Repository contains all storage interactions needed by the service.
// List methods return appointments in insertion order.
type Repository interface {
	CreateAppointment(ctx context.Context, appt Appointment) (*Appointment, error)
	GetAppointmentByID(ctx context.Context, id string) (*Appointment, error)

	ListAppointments(ctx context.Context) ([]Appointment, error)
	ListAppointmentsByStatus(ctx context.Context, statuses ...AppointmentStatus) ([]Appointment, error)

	// UpdateAppointmentStatus only applies when the current status equals from.
	// Otherwise it returns ErrAppointmentNotFound.
	UpdateAppointmentStatus(ctx context.Context, id string, from, to AppointmentStatus) (*Appointment, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
