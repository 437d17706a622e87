package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hackgods/barbershop-booking/internal/appointment"
	"github.com/hackgods/barbershop-booking/internal/catalog"
	redisclient "github.com/hackgods/barbershop-booking/internal/redis"
)

type fakeLocker struct {
	err  error
	keys []string
}

func (l *fakeLocker) WithSlotLock(ctx context.Context, slotKey string, fn func(ctx context.Context) error) error {
	l.keys = append(l.keys, slotKey)
	if l.err != nil {
		return l.err
	}
	return fn(ctx)
}

func fixedClock(ts string) func() time.Time {
	now, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return now }
}

// Test bookings are made in March 2024; the clock sits a month before.
var beforeBookings = fixedClock("2024-02-01T08:00:00Z")

func newTestFlow(t *testing.T, conflict bool) (*Flow, *appointment.Service) {
	t.Helper()
	store := appointment.NewService(appointment.NewMemoryRepository(), nil)
	var avail Availability = NewStaticAvailability(DefaultTimeSlots())
	if conflict {
		avail = NewConflictAvailability(avail, store)
	}
	f := NewFlow(catalog.Default(), store, avail, redisclient.NewLocalSlotLocker()).
		WithLocation(time.UTC).
		WithClock(beforeBookings)
	return f, store
}

func completeDraft(t *testing.T, f *Flow, barberID, serviceID, date, clock string) Draft {
	t.Helper()
	ctx := context.Background()

	d, err := f.SelectBarber(f.Start(), barberID)
	if err != nil {
		t.Fatalf("SelectBarber error: %v", err)
	}
	d, err = f.SelectService(d, serviceID)
	if err != nil {
		t.Fatalf("SelectService error: %v", err)
	}
	d, err = f.SelectDateTime(ctx, d, date, clock)
	if err != nil {
		t.Fatalf("SelectDateTime error: %v", err)
	}
	return d
}

func TestFlow_ConfirmCopiesCatalogFields(t *testing.T) {
	f, store := newTestFlow(t, false)

	d := completeDraft(t, f, "1", "1", "2024-03-01", "10:30 AM")
	if d.Next() != StepConfirm {
		t.Fatalf("Next = %s, want confirm", d.Next())
	}

	appt, err := f.Confirm(context.Background(), d)
	if err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	if appt.BarberName != "Marcus Johnson" || appt.ServiceName != "Classic Haircut" {
		t.Fatalf("names not copied: %+v", appt)
	}
	if appt.Price != 25 || appt.DurationMinutes != 30 {
		t.Fatalf("price/duration not copied: %+v", appt)
	}
	if appt.Status != appointment.StatusUpcoming {
		t.Fatalf("status = %q", appt.Status)
	}

	up, _ := store.Upcoming(context.Background())
	if len(up) != 1 || up[0].ID != appt.ID {
		t.Fatalf("upcoming view = %+v", up)
	}
}

func TestFlow_StepsMustRunInOrder(t *testing.T) {
	f, _ := newTestFlow(t, false)
	ctx := context.Background()

	if _, err := f.SelectService(f.Start(), "1"); !errors.Is(err, ErrIncompleteDraft) {
		t.Fatalf("SelectService without barber err = %v", err)
	}

	d, _ := f.SelectBarber(f.Start(), "2")
	if _, err := f.SelectDateTime(ctx, d, "2024-03-01", "9:00 AM"); !errors.Is(err, ErrIncompleteDraft) {
		t.Fatalf("SelectDateTime without service err = %v", err)
	}
	if _, err := f.Confirm(ctx, d); !errors.Is(err, ErrIncompleteDraft) {
		t.Fatalf("Confirm incomplete err = %v", err)
	}
}

func TestFlow_ChangingBarberClearsDateTime(t *testing.T) {
	f, _ := newTestFlow(t, false)

	d := completeDraft(t, f, "1", "3", "2024-03-01", "9:00 AM")
	d, err := f.SelectBarber(d, "2")
	if err != nil {
		t.Fatalf("SelectBarber error: %v", err)
	}
	if d.Date != "" || d.Time != "" || d.Next() != StepDateTime {
		t.Fatalf("date/time should be cleared: %+v", d)
	}
	if d.ServiceID != "3" {
		t.Fatalf("service selection should survive barber change")
	}
}

func TestFlow_RejectsUnknownCatalogEntries(t *testing.T) {
	f, _ := newTestFlow(t, false)

	if _, err := f.SelectBarber(f.Start(), "42"); !errors.Is(err, catalog.ErrBarberNotFound) {
		t.Fatalf("err = %v, want ErrBarberNotFound", err)
	}
	d, _ := f.SelectBarber(f.Start(), "1")
	if _, err := f.SelectService(d, "42"); !errors.Is(err, catalog.ErrServiceNotFound) {
		t.Fatalf("err = %v, want ErrServiceNotFound", err)
	}
}

func TestFlow_SelectDateTimeChecksSlotGrid(t *testing.T) {
	f, _ := newTestFlow(t, false)
	ctx := context.Background()
	d, _ := f.SelectBarber(f.Start(), "1")
	d, _ = f.SelectService(d, "1")

	if _, err := f.SelectDateTime(ctx, d, "2024-03-01", "10:00 AM"); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("blocked slot err = %v, want ErrSlotUnavailable", err)
	}
	if _, err := f.SelectDateTime(ctx, d, "2024-03-01", "8:15 AM"); !errors.Is(err, ErrUnknownTimeSlot) {
		t.Fatalf("off-grid err = %v, want ErrUnknownTimeSlot", err)
	}
	_, err := f.SelectDateTime(ctx, d, "03/01/2024", "9:00 AM")
	var vErr *appointment.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "date" {
		t.Fatalf("bad date err = %v, want date ValidationError", err)
	}
}

func TestFlow_StaticPolicyAllowsDoubleBooking(t *testing.T) {
	f, store := newTestFlow(t, false)
	ctx := context.Background()

	d := completeDraft(t, f, "1", "1", "2024-03-01", "11:00 AM")
	if _, err := f.Confirm(ctx, d); err != nil {
		t.Fatalf("first Confirm error: %v", err)
	}
	if _, err := f.Confirm(ctx, d); err != nil {
		t.Fatalf("second Confirm error: %v", err)
	}

	all, _ := store.All(ctx)
	if len(all) != 2 {
		t.Fatalf("appointments = %d, want 2", len(all))
	}
}

func TestFlow_ConflictPolicyRejectsTakenSlot(t *testing.T) {
	f, store := newTestFlow(t, true)
	ctx := context.Background()

	d := completeDraft(t, f, "1", "5", "2024-03-01", "11:00 AM")
	first, err := f.Confirm(ctx, d)
	if err != nil {
		t.Fatalf("first Confirm error: %v", err)
	}

	if _, err := f.Confirm(ctx, d); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("second Confirm err = %v, want ErrSlotUnavailable", err)
	}

	// The 60 minute combo also covers 11:30.
	d2, _ := f.SelectBarber(f.Start(), "1")
	d2, _ = f.SelectService(d2, "1")
	if _, err := f.SelectDateTime(ctx, d2, "2024-03-01", "11:30 AM"); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("overlapping slot err = %v, want ErrSlotUnavailable", err)
	}
	if _, err := f.SelectDateTime(ctx, d2, "2024-03-01", "12:30 PM"); err != nil {
		t.Fatalf("slot after booking should be free: %v", err)
	}

	// Another barber is unaffected.
	_ = completeDraft(t, f, "2", "1", "2024-03-01", "11:00 AM")

	// Cancelling frees the slot again.
	if _, err := store.Cancel(ctx, first.ID); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if _, err := f.Confirm(ctx, d); err != nil {
		t.Fatalf("Confirm after cancel error: %v", err)
	}
}

func TestFlow_ConflictPolicyChecksWholeServiceLength(t *testing.T) {
	f, store := newTestFlow(t, true)
	ctx := context.Background()

	later := completeDraft(t, f, "1", "1", "2024-03-01", "3:30 PM")
	if _, err := f.Confirm(ctx, later); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}

	// 3:00 PM is free as a start time, but 90 minutes of hair color runs into 3:30.
	d, _ := f.SelectBarber(f.Start(), "1")
	d, _ = f.SelectService(d, "8")
	if _, err := f.SelectDateTime(ctx, d, "2024-03-01", "3:00 PM"); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("SelectDateTime err = %v, want ErrSlotUnavailable", err)
	}
	d.Date, d.Time = "2024-03-01", "3:00 PM"
	if _, err := f.Confirm(ctx, d); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("Confirm err = %v, want ErrSlotUnavailable", err)
	}

	// A 20 minute beard trim ends before 3:30.
	short := completeDraft(t, f, "1", "3", "2024-03-01", "3:00 PM")
	if _, err := f.Confirm(ctx, short); err != nil {
		t.Fatalf("short service Confirm error: %v", err)
	}

	up, _ := store.Upcoming(ctx)
	if len(up) != 2 {
		t.Fatalf("upcoming = %d, want 2", len(up))
	}
}

func TestFlow_RejectsPastDatesAndStartedSlots(t *testing.T) {
	store := appointment.NewService(appointment.NewMemoryRepository(), nil)
	f := NewFlow(catalog.Default(), store, NewStaticAvailability(DefaultTimeSlots()), redisclient.NewLocalSlotLocker()).
		WithLocation(time.UTC).
		WithClock(fixedClock("2024-03-01T11:15:00Z"))
	ctx := context.Background()

	d, _ := f.SelectBarber(f.Start(), "1")
	d, _ = f.SelectService(d, "1")

	var vErr *appointment.ValidationError
	_, err := f.SelectDateTime(ctx, d, "2001-01-01", "9:00 AM")
	if !errors.As(err, &vErr) || vErr.Field != "date" {
		t.Fatalf("past date err = %v, want date ValidationError", err)
	}
	_, err = f.SelectDateTime(ctx, d, "2024-03-01", "11:00 AM")
	if !errors.As(err, &vErr) || vErr.Field != "time" {
		t.Fatalf("started slot err = %v, want time ValidationError", err)
	}
	if _, err := f.SelectDateTime(ctx, d, "2024-03-01", "11:30 AM"); err != nil {
		t.Fatalf("later slot today error: %v", err)
	}

	// A draft carried over from an earlier day cannot be confirmed.
	stale := d
	stale.Date, stale.Time = "2024-02-29", "3:00 PM"
	if _, err := f.Confirm(ctx, stale); !errors.As(err, &vErr) || vErr.Field != "date" {
		t.Fatalf("Confirm past date err = %v, want date ValidationError", err)
	}
	all, _ := store.All(ctx)
	if len(all) != 0 {
		t.Fatalf("past booking was stored: %+v", all)
	}

	slots, err := f.AvailableSlots(ctx, "1", "2024-03-01")
	if err != nil {
		t.Fatalf("AvailableSlots error: %v", err)
	}
	got := availableSet(slots)
	if got["9:00 AM"] || got["11:00 AM"] || !got["11:30 AM"] {
		t.Fatalf("today's slots = %+v", slots)
	}
	if _, err := f.AvailableSlots(ctx, "1", "2024-02-29"); !errors.As(err, &vErr) || vErr.Field != "date" {
		t.Fatalf("AvailableSlots past date err = %v", err)
	}
}

func TestFlow_ConfirmMapsLockContention(t *testing.T) {
	store := appointment.NewService(appointment.NewMemoryRepository(), nil)
	locker := &fakeLocker{err: redisclient.ErrLockNotAcquired}
	f := NewFlow(catalog.Default(), store, NewStaticAvailability(DefaultTimeSlots()), locker).
		WithLocation(time.UTC).
		WithClock(beforeBookings)

	d := completeDraft(t, f, "4", "2", "2024-03-02", "3:00 PM")
	if _, err := f.Confirm(context.Background(), d); !errors.Is(err, ErrSlotBeingBooked) {
		t.Fatalf("err = %v, want ErrSlotBeingBooked", err)
	}
	if len(locker.keys) != 1 || locker.keys[0] != redisclient.ScheduleKey("4", "2024-03-02") {
		t.Fatalf("lock keys = %v", locker.keys)
	}
}

func TestFlow_AvailableSlots(t *testing.T) {
	f, _ := newTestFlow(t, false)

	slots, err := f.AvailableSlots(context.Background(), "3", "2024-03-01")
	if err != nil {
		t.Fatalf("AvailableSlots error: %v", err)
	}
	if len(slots) != 22 {
		t.Fatalf("slots = %d, want 22", len(slots))
	}
	blocked := 0
	for _, s := range slots {
		if !s.Available {
			blocked++
		}
	}
	if blocked != 4 {
		t.Fatalf("blocked = %d, want 4", blocked)
	}

	if _, err := f.AvailableSlots(context.Background(), "9", "2024-03-01"); !errors.Is(err, catalog.ErrBarberNotFound) {
		t.Fatalf("err = %v, want ErrBarberNotFound", err)
	}
}
