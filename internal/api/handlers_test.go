package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hackgods/barbershop-booking/internal/appointment"
	"github.com/hackgods/barbershop-booking/internal/booking"
	"github.com/hackgods/barbershop-booking/internal/catalog"
	redisclient "github.com/hackgods/barbershop-booking/internal/redis"
)

func newTestRouter(t *testing.T, conflict bool) http.Handler {
	t.Helper()
	cat := catalog.Default()
	store := appointment.NewService(appointment.NewMemoryRepository(), nil)
	var avail booking.Availability = booking.NewStaticAvailability(booking.DefaultTimeSlots())
	if conflict {
		avail = booking.NewConflictAvailability(avail, store)
	}
	now := time.Date(2024, time.February, 1, 8, 0, 0, 0, time.UTC)
	flow := booking.NewFlow(cat, store, avail, redisclient.NewLocalSlotLocker()).
		WithLocation(time.UTC).
		WithClock(func() time.Time { return now })

	return NewRouter(RouterConfig{
		Store:   store,
		Flow:    flow,
		Catalog: cat,
		Backend: "memory",
		Env:     "test",
		Version: "test",
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func classicHaircut() map[string]any {
	return map[string]any{
		"barberId":  "1",
		"serviceId": "1",
		"date":      "2024-03-01",
		"time":      "10:30 AM",
		"price":     25,
	}
}

func TestCatalogEndpoints(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, http.MethodGet, "/barbers", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /barbers status=%d", rec.Code)
	}
	barbers := decode[[]catalog.Barber](t, rec)
	if len(barbers) != 4 || barbers[1].Name != "David Chen" {
		t.Fatalf("barbers = %+v", barbers)
	}

	rec = do(t, h, http.MethodGet, "/services", nil)
	services := decode[[]catalog.Service](t, rec)
	if len(services) != 8 || services[2].Name != "Beard Trim" {
		t.Fatalf("services = %+v", services)
	}

	rec = do(t, h, http.MethodGet, "/services/8", nil)
	if rec.Code != http.StatusOK || decode[catalog.Service](t, rec).Price != 60 {
		t.Fatalf("GET /services/8 status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/barbers/77", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /barbers/77 status=%d, want 404", rec.Code)
	}
}

func TestSlotsEndpoint(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, http.MethodGet, "/barbers/1/slots?date=2024-03-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	slots := decode[[]booking.TimeSlot](t, rec)
	if len(slots) != 22 || slots[0].Time != "9:00 AM" {
		t.Fatalf("slots = %+v", slots)
	}

	if rec := do(t, h, http.MethodGet, "/barbers/1/slots", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing date status=%d, want 400", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/barbers/1/slots?date=tomorrow", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date status=%d, want 400", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/barbers/1/slots?date=2024-01-31", nil)
	if rec.Code != http.StatusBadRequest || decode[ErrorResponse](t, rec).Error != "invalid_date" {
		t.Fatalf("past date status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCreateAndCancelAppointment(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, http.MethodPost, "/appointments", classicHaircut())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body.String())
	}
	created := decode[AppointmentResponse](t, rec)
	if created.ID == "" || created.Status != "upcoming" || created.BarberName != "Marcus Johnson" || created.Price != 25 {
		t.Fatalf("created = %+v", created)
	}

	up := decode[[]AppointmentResponse](t, do(t, h, http.MethodGet, "/appointments?status=upcoming", nil))
	if len(up) != 1 || up[0].ID != created.ID {
		t.Fatalf("upcoming = %+v", up)
	}

	rec = do(t, h, http.MethodPost, "/appointments/"+created.ID+"/cancel", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status=%d body=%s", rec.Code, rec.Body.String())
	}
	if got := decode[AppointmentResponse](t, rec); got.Status != "cancelled" {
		t.Fatalf("status after cancel = %q", got.Status)
	}

	up = decode[[]AppointmentResponse](t, do(t, h, http.MethodGet, "/appointments?status=upcoming", nil))
	past := decode[[]AppointmentResponse](t, do(t, h, http.MethodGet, "/appointments?status=past", nil))
	if len(up) != 0 || len(past) != 1 || past[0].ID != created.ID {
		t.Fatalf("views after cancel: upcoming=%d past=%d", len(up), len(past))
	}

	// Cancelling twice is not an error.
	if rec := do(t, h, http.MethodPost, "/appointments/"+created.ID+"/cancel", nil); rec.Code != http.StatusOK {
		t.Fatalf("second cancel status=%d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/appointments/"+created.ID, nil)
	if rec.Code != http.StatusOK || decode[AppointmentResponse](t, rec).Status != "cancelled" {
		t.Fatalf("get status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCancelUnknownAppointment(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, http.MethodPost, "/appointments/nope/cancel", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Error != "appointment_not_found" {
		t.Fatalf("error = %+v", got)
	}
}

func TestCreateAppointment_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(body map[string]any)
		status int
		code   string
	}{
		{"missing barber", func(b map[string]any) { delete(b, "barberId") }, http.StatusBadRequest, "invalid_barber_id"},
		{"unknown barber", func(b map[string]any) { b["barberId"] = "99" }, http.StatusNotFound, "barber_not_found"},
		{"unknown service", func(b map[string]any) { b["serviceId"] = "99" }, http.StatusNotFound, "service_not_found"},
		{"price mismatch", func(b map[string]any) { b["price"] = 5 }, http.StatusBadRequest, "price_mismatch"},
		{"bad date", func(b map[string]any) { b["date"] = "Fri Mar 01 2024" }, http.StatusBadRequest, "invalid_date"},
		{"past date", func(b map[string]any) { b["date"] = "2001-01-01" }, http.StatusBadRequest, "invalid_date"},
		{"off grid time", func(b map[string]any) { b["time"] = "10:15 AM" }, http.StatusBadRequest, "invalid_time"},
		{"blocked slot", func(b map[string]any) { b["time"] = "12:00 PM" }, http.StatusConflict, "slot_unavailable"},
	}

	for _, tt := range cases {
		h := newTestRouter(t, false)
		body := classicHaircut()
		tt.mutate(body)

		rec := do(t, h, http.MethodPost, "/appointments", body)
		if rec.Code != tt.status {
			t.Fatalf("%s: status=%d, want %d body=%s", tt.name, rec.Code, tt.status, rec.Body.String())
		}
		if got := decode[ErrorResponse](t, rec); got.Error != tt.code {
			t.Fatalf("%s: error=%q, want %q", tt.name, got.Error, tt.code)
		}
	}
}

func TestCreateAppointment_PriceOptional(t *testing.T) {
	h := newTestRouter(t, false)
	body := classicHaircut()
	delete(body, "price")
	body["serviceId"] = "8"

	rec := do(t, h, http.MethodPost, "/appointments", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if got := decode[AppointmentResponse](t, rec); got.Price != 60 || got.ServiceName != "Hair Color" {
		t.Fatalf("created = %+v", got)
	}
}

func TestCreateAppointment_ConflictPolicy(t *testing.T) {
	h := newTestRouter(t, true)

	if rec := do(t, h, http.MethodPost, "/appointments", classicHaircut()); rec.Code != http.StatusCreated {
		t.Fatalf("first create status=%d", rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/appointments", classicHaircut())
	if rec.Code != http.StatusConflict {
		t.Fatalf("second create status=%d, want 409", rec.Code)
	}

	slots := decode[[]booking.TimeSlot](t, do(t, h, http.MethodGet, "/barbers/1/slots?date=2024-03-01", nil))
	for _, s := range slots {
		if s.Time == "10:30 AM" && s.Available {
			t.Fatalf("booked slot still reported available")
		}
	}
}

func TestCreateAppointment_ConflictPolicyLongService(t *testing.T) {
	h := newTestRouter(t, true)

	later := classicHaircut()
	later["time"] = "3:30 PM"
	if rec := do(t, h, http.MethodPost, "/appointments", later); rec.Code != http.StatusCreated {
		t.Fatalf("first create status=%d", rec.Code)
	}

	color := classicHaircut()
	color["serviceId"] = "8"
	color["time"] = "3:00 PM"
	delete(color, "price")
	rec := do(t, h, http.MethodPost, "/appointments", color)
	if rec.Code != http.StatusConflict || decode[ErrorResponse](t, rec).Error != "slot_unavailable" {
		t.Fatalf("overlapping create status=%d body=%s", rec.Code, rec.Body.String())
	}

	up := decode[[]AppointmentResponse](t, do(t, h, http.MethodGet, "/appointments?status=upcoming", nil))
	if len(up) != 1 {
		t.Fatalf("upcoming = %d, want 1", len(up))
	}
}

func TestListAppointments_InvalidStatus(t *testing.T) {
	h := newTestRouter(t, false)

	if rec := do(t, h, http.MethodGet, "/appointments?status=completed", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/appointments", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "[]\n" {
		t.Fatalf("empty list status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestHealthAndRequestID(t *testing.T) {
	h := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ready status=%d", rec.Code)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("X-Request-ID = %q", got)
	}
	ready := decode[ReadinessResponse](t, rec)
	if ready.Status != "ok" || ready.Backend != "memory" || len(ready.Dependencies) != 0 {
		t.Fatalf("ready = %+v", ready)
	}

	rec = do(t, h, http.MethodGet, "/health/live", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("live status=%d request id=%q", rec.Code, rec.Header().Get("X-Request-ID"))
	}
}
