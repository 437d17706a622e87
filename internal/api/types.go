package api

import (
	"time"

	"github.com/hackgods/barbershop-booking/internal/appointment"
)

type CreateAppointmentRequest struct {
	BarberID  string   `json:"barberId"`
	ServiceID string   `json:"serviceId"`
	Date      string   `json:"date"`
	Time      string   `json:"time"`
	Price     *float64 `json:"price,omitempty"`
}

type AppointmentResponse struct {
	ID              string    `json:"id"`
	BarberID        string    `json:"barberId"`
	BarberName      string    `json:"barberName"`
	ServiceID       string    `json:"serviceId"`
	ServiceName     string    `json:"serviceName"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	Price           float64   `json:"price"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		BarberID:        a.BarberID,
		BarberName:      a.BarberName,
		ServiceID:       a.ServiceID,
		ServiceName:     a.ServiceName,
		Date:            a.Date,
		Time:            a.Time,
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		Price:           a.Price,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toAppointmentList(appts []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}
