package appointment

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps appointments in process memory for the lifetime of the store.
// One RWMutex serializes writers.
type MemoryRepository struct {
	mu           sync.RWMutex
	appointments []Appointment
	index        map[string]int
	events       []EventLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		index: make(map[string]int),
	}
}

// Seed appends records as-is, keeping their status. Used for demo data.
func (r *MemoryRepository) Seed(appts ...Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range appts {
		if _, exists := r.index[a.ID]; exists {
			return ErrDuplicateID
		}
		r.index[a.ID] = len(r.appointments)
		r.appointments = append(r.appointments, a)
	}
	return nil
}

func (r *MemoryRepository) CreateAppointment(ctx context.Context, appt Appointment) (*Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[appt.ID]; exists {
		return nil, ErrDuplicateID
	}

	now := time.Now()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	if appt.UpdatedAt.IsZero() {
		appt.UpdatedAt = appt.CreatedAt
	}

	r.index[appt.ID] = len(r.appointments)
	r.appointments = append(r.appointments, appt)

	out := appt
	return &out, nil
}

func (r *MemoryRepository) GetAppointmentByID(ctx context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	out := r.appointments[i]
	return &out, nil
}

func (r *MemoryRepository) ListAppointments(ctx context.Context) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Appointment(nil), r.appointments...), nil
}

func (r *MemoryRepository) ListAppointmentsByStatus(ctx context.Context, statuses ...AppointmentStatus) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Appointment
	for _, a := range r.appointments {
		for _, s := range statuses {
			if a.Status == s {
				result = append(result, a)
				break
			}
		}
	}
	return result, nil
}

func (r *MemoryRepository) UpdateAppointmentStatus(ctx context.Context, id string, from, to AppointmentStatus) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok || r.appointments[i].Status != from {
		return nil, ErrAppointmentNotFound
	}

	r.appointments[i].Status = to
	r.appointments[i].UpdatedAt = time.Now()

	out := r.appointments[i]
	return &out, nil
}

func (r *MemoryRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev.ID = int64(len(r.events) + 1)
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	r.events = append(r.events, ev)
	return nil
}

// Events returns the recorded event log in insertion order.
func (r *MemoryRepository) Events() []EventLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]EventLog(nil), r.events...)
}
