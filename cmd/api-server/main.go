package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/barbershop-booking/internal/api"
	"github.com/hackgods/barbershop-booking/internal/appointment"
	"github.com/hackgods/barbershop-booking/internal/booking"
	"github.com/hackgods/barbershop-booking/internal/catalog"
	"github.com/hackgods/barbershop-booking/internal/config"
	"github.com/hackgods/barbershop-booking/internal/db"
	"github.com/hackgods/barbershop-booking/internal/events"
	redisclient "github.com/hackgods/barbershop-booking/internal/redis"
)

var version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s backend=%s availability=%s",
		cfg.Env, cfg.HTTPPort, cfg.StoreBackend, cfg.AvailabilityPolicy)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		repo   appointment.Repository
		pgPool *pgxpool.Pool
	)
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		if err == nil {
			err = db.EnsureSchema(pgCtx, pgPool)
		}
		cancelPg()
		if err != nil {
			log.Fatalf("postgres connection error: %v", err)
		}
		defer pgPool.Close()
		log.Println("connected to Postgres")
		repo = appointment.NewPgRepository(pgPool)
	default:
		mem := appointment.NewMemoryRepository()
		if cfg.SeedDemo {
			if err := mem.Seed(appointment.DemoAppointments(time.Now())...); err != nil {
				log.Fatalf("seed demo appointments: %v", err)
			}
			log.Println("seeded demo appointments")
		}
		repo = mem
	}

	var (
		rdb     *redis.Client
		locker  redisclient.Locker
		limiter *redisclient.RateLimiter
	)
	if cfg.RedisEnabled() {
		rdb, err = redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connection error: %v", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Printf("error closing redis: %v", err)
			}
		}()
		log.Println("connected to Redis")
		locker = redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
		if cfg.RateLimitPerMinute > 0 {
			limiter = redisclient.NewRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute)
		}
	} else {
		locker = redisclient.NewLocalSlotLocker()
	}

	publisher := newPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Printf("error closing event publisher: %v", err)
		}
	}()

	cat := catalog.Default()
	store := appointment.NewService(repo, publisher)

	var availability booking.Availability = booking.NewStaticAvailability(booking.DefaultTimeSlots())
	if cfg.AvailabilityPolicy == config.PolicyConflict {
		availability = booking.NewConflictAvailability(availability, store)
	}
	flow := booking.NewFlow(cat, store, availability, locker)

	// Memory state only lives here, so this process also runs the completion job.
	if cfg.StoreBackend == config.BackendMemory {
		go runCompletionLoop(rootCtx, store, cfg.WorkerInterval)
	}

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewRouter(api.RouterConfig{
			Store:       store,
			Flow:        flow,
			Catalog:     cat,
			PgPool:      pgPool,
			Redis:       rdb,
			RateLimiter: limiter,
			Backend:     cfg.StoreBackend,
			Env:         cfg.Env,
			Version:     version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func newPublisher(cfg config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		log.Println("event publishing to log (no kafka brokers configured)")
		return events.NewLogPublisher()
	}
	log.Printf("publishing events to kafka topic=%s brokers=%v", cfg.KafkaTopic, cfg.KafkaBrokers)
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}

func runCompletionLoop(ctx context.Context, store *appointment.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.CompleteElapsed(ctx, time.Now())
			if err != nil {
				log.Printf("completion run error: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("completed %d elapsed appointments", n)
			}
		}
	}
}
