package appointment

import (
	"strings"
	"time"
)

// ValidationError reports a rejected field on create.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: field + " " + msg}
}

// Validate trims string fields and checks the draft can become an upcoming appointment.
func (d *Draft) Validate() error {
	d.BarberID = strings.TrimSpace(d.BarberID)
	d.BarberName = strings.TrimSpace(d.BarberName)
	d.ServiceID = strings.TrimSpace(d.ServiceID)
	d.ServiceName = strings.TrimSpace(d.ServiceName)
	d.Date = strings.TrimSpace(d.Date)
	d.Time = strings.TrimSpace(d.Time)

	required := []struct {
		field string
		value string
	}{
		{"barberId", d.BarberID},
		{"barberName", d.BarberName},
		{"serviceId", d.ServiceID},
		{"serviceName", d.ServiceName},
		{"date", d.Date},
		{"time", d.Time},
	}
	for _, r := range required {
		if r.value == "" {
			return invalid(r.field, "is required")
		}
	}

	if _, err := time.Parse(DateLayout, d.Date); err != nil {
		return invalid("date", "must be formatted as YYYY-MM-DD")
	}
	if _, err := time.Parse(TimeLayout, d.Time); err != nil {
		return invalid("time", "must be formatted like 9:30 AM")
	}
	if d.Price < 0 {
		return invalid("price", "must not be negative")
	}
	if d.DurationMinutes < 0 {
		return invalid("duration", "must not be negative")
	}

	switch d.Status {
	case "":
		d.Status = StatusUpcoming
	case StatusUpcoming:
	default:
		return invalid("status", "must be upcoming for a new appointment")
	}

	return nil
}
