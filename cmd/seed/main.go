package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/hackgods/barbershop-booking/internal/appointment"
	"github.com/hackgods/barbershop-booking/internal/booking"
	"github.com/hackgods/barbershop-booking/internal/catalog"
	"github.com/hackgods/barbershop-booking/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	count := 500
	if v := os.Getenv("SEED_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatalf("invalid SEED_COUNT=%q", v)
		}
		count = n
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	repo := appointment.NewPgRepository(pool)
	if err := seedAppointments(context.Background(), repo, catalog.Default(), count); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

// seedAppointments spreads bookings over the last and next 30 days. Past dates are
// completed or cancelled, future ones mostly upcoming.
func seedAppointments(ctx context.Context, repo *appointment.PgRepository, cat *catalog.Catalog, count int) error {
	log.Printf("seeding %d appointments", count)

	barbers := cat.ListBarbers()
	services := cat.ListServices()

	var slots []string
	for _, s := range booking.DefaultTimeSlots() {
		if s.Available {
			slots = append(slots, s.Time)
		}
	}

	today := time.Now().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -30)
	to := today.AddDate(0, 0, 30)

	for i := 0; i < count; i++ {
		b := barbers[gofakeit.Number(0, len(barbers)-1)]
		s := services[gofakeit.Number(0, len(services)-1)]
		day := gofakeit.DateRange(from, to)

		status := appointment.StatusUpcoming
		switch {
		case day.Before(today) && gofakeit.Number(1, 10) <= 8:
			status = appointment.StatusCompleted
		case day.Before(today):
			status = appointment.StatusCancelled
		case gofakeit.Number(1, 10) == 1:
			status = appointment.StatusCancelled
		}

		_, err := repo.CreateAppointment(ctx, appointment.Appointment{
			ID:              uuid.NewString(),
			BarberID:        b.ID,
			BarberName:      b.Name,
			ServiceID:       s.ID,
			ServiceName:     s.Name,
			Date:            day.Format(appointment.DateLayout),
			Time:            slots[gofakeit.Number(0, len(slots)-1)],
			DurationMinutes: s.DurationMinutes,
			Status:          status,
			Price:           s.Price,
		})
		if err != nil {
			return err
		}

		if (i+1)%100 == 0 {
			log.Printf("appointments seeded: %d/%d", i+1, count)
		}
	}

	log.Println("appointments seeded")
	return nil
}
