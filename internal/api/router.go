package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/barbershop-booking/internal/appointment"
	"github.com/hackgods/barbershop-booking/internal/booking"
	"github.com/hackgods/barbershop-booking/internal/catalog"
	redisclient "github.com/hackgods/barbershop-booking/internal/redis"
)

type RouterConfig struct {
	Store       *appointment.Service
	Flow        *booking.Flow
	Catalog     *catalog.Catalog
	PgPool      *pgxpool.Pool            // nil for the memory backend
	Redis       *redis.Client            // nil when redis is not configured
	RateLimiter *redisclient.RateLimiter // nil disables rate limiting
	Backend     string
	Env         string
	Version     string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Backend, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(RateLimitMiddleware(cfg.RateLimiter))
		}

		// Catalog endpoints
		r.Get("/barbers", listBarbersHandler(cfg.Catalog))
		r.Get("/barbers/{id}", getBarberHandler(cfg.Catalog))
		r.Get("/barbers/{id}/slots", listSlotsHandler(cfg.Flow))
		r.Get("/services", listServicesHandler(cfg.Catalog))
		r.Get("/services/{id}", getServiceHandler(cfg.Catalog))

		// Appointment endpoints
		r.Post("/appointments", createAppointmentHandler(cfg.Flow))
		r.Get("/appointments", listAppointmentsHandler(cfg.Store))
		r.Get("/appointments/{id}", getAppointmentHandler(cfg.Store))
		r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Store))
	})

	return r
}
