package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/barbershop-booking/internal/appointment"
	"github.com/hackgods/barbershop-booking/internal/booking"
	"github.com/hackgods/barbershop-booking/internal/catalog"
)

func listBarbersHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cat.ListBarbers())
	}
}

func getBarberHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := cat.Barber(chi.URLParam(r, "id"))
		if err != nil {
			handleCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func listServicesHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cat.ListServices())
	}
}

func getServiceHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := cat.Service(chi.URLParam(r, "id"))
		if err != nil {
			handleCatalogError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

func listSlotsHandler(flow *booking.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			writeError(w, http.StatusBadRequest, "missing_date", "date query parameter is required")
			return
		}

		slots, err := flow.AvailableSlots(r.Context(), chi.URLParam(r, "id"), date)
		if err != nil {
			handleBookingError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, slots)
	}
}

func createAppointmentHandler(flow *booking.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.BarberID == "" {
			writeError(w, http.StatusBadRequest, "invalid_barber_id", "barberId is required")
			return
		}
		if req.ServiceID == "" {
			writeError(w, http.StatusBadRequest, "invalid_service_id", "serviceId is required")
			return
		}

		draft, err := flow.SelectBarber(flow.Start(), req.BarberID)
		if err != nil {
			handleBookingError(w, err)
			return
		}
		draft, err = flow.SelectService(draft, req.ServiceID)
		if err != nil {
			handleBookingError(w, err)
			return
		}
		if req.Price != nil && *req.Price != draft.ServicePrice {
			writeError(w, http.StatusBadRequest, "price_mismatch", "price does not match the selected service")
			return
		}
		draft, err = flow.SelectDateTime(r.Context(), draft, req.Date, req.Time)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		appt, err := flow.Confirm(r.Context(), draft)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(*appt))
	}
}

func listAppointmentsHandler(store *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			appts []appointment.Appointment
			err   error
		)

		switch status := r.URL.Query().Get("status"); status {
		case "":
			appts, err = store.All(r.Context())
		case "upcoming":
			appts, err = store.Upcoming(r.Context())
		case "past":
			appts, err = store.Past(r.Context())
		default:
			writeError(w, http.StatusBadRequest, "invalid_status", "status must be upcoming or past")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentList(appts))
	}
}

func getAppointmentHandler(store *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func cancelAppointmentHandler(store *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, err := store.Cancel(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func handleCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrBarberNotFound):
		writeError(w, http.StatusNotFound, "barber_not_found", err.Error())
	case errors.Is(err, catalog.ErrServiceNotFound):
		writeError(w, http.StatusNotFound, "service_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	var vErr *appointment.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "invalid_"+vErr.Field, vErr.Error())
	case errors.Is(err, catalog.ErrBarberNotFound), errors.Is(err, catalog.ErrServiceNotFound):
		handleCatalogError(w, err)
	case errors.Is(err, booking.ErrUnknownTimeSlot):
		writeError(w, http.StatusBadRequest, "invalid_time", err.Error())
	case errors.Is(err, booking.ErrIncompleteDraft):
		writeError(w, http.StatusBadRequest, "incomplete_booking", err.Error())
	case errors.Is(err, booking.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", err.Error())
	case errors.Is(err, booking.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
