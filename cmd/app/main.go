package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airreservations/api"
	"github.com/Domenick1991/airreservations/config"
	"github.com/Domenick1991/airreservations/internal/auth"
	"github.com/Domenick1991/airreservations/internal/bootstrap"
	"github.com/Domenick1991/airreservations/internal/cache"
	"github.com/Domenick1991/airreservations/internal/kafka"
	"github.com/Domenick1991/airreservations/internal/logging"
	"github.com/Domenick1991/airreservations/internal/metrics"
	"github.com/Domenick1991/airreservations/internal/reference"
	"github.com/Domenick1991/airreservations/internal/repository"
	"github.com/Domenick1991/airreservations/internal/repository/gormstore"
	"github.com/Domenick1991/airreservations/internal/repository/reports"
	"github.com/Domenick1991/airreservations/internal/service/booking"
	"github.com/Domenick1991/airreservations/internal/service/flights"
	"github.com/Domenick1991/airreservations/internal/service/passengers"
	"github.com/Domenick1991/airreservations/internal/service/ratings"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatalw("server error", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) error {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg := metrics.NewRegistry(promRegistry)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	reportsDB, err := reports.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return err
	}
	reportRepo := reports.NewRepository(reportsDB)
	defer func() { _ = reportRepo.Close() }()

	checks := map[string]bootstrap.Pinger{"database": store, "reports": reportRepo}

	var (
		flightCache flights.FlightCache
		bookingOpts = []booking.BookingServiceOption{
			booking.WithMaxAttempts(cfg.Booking.MaxAttempts),
			booking.WithRequestTimeout(cfg.Booking.RequestTimeout()),
			booking.WithStrictCalendar(cfg.Validation.StrictCalendar),
			booking.WithMetrics(reg),
			booking.WithLogger(logger),
		}
	)
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.FlightsCacheDuration())
		defer func() { _ = redisCache.Close() }()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warnw("redis unreachable, bookings fall back to database locking", "addr", cfg.Redis.Addr, "error", err)
		}
		flightCache = redisCache
		bookingOpts = append(bookingOpts, booking.WithLocker(redisCache, cfg.Booking.LockTTL()))
		checks["redis"] = redisCache
	} else {
		flightCache = cache.NewMemoryCache(cfg.Booking.FlightsCacheDuration())
	}

	var events *kafka.Emitter
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		defer func() { _ = producer.Close() }()
		events = kafka.NewEmitter(producer, cfg.Kafka.EventsTopic, logger, reg)
		checks["kafka"] = producer
	}
	bookingOpts = append(bookingOpts, booking.WithEvents(events))

	services := api.Services{
		Passengers: passengers.NewPassengerService(store,
			passengers.WithEvents(events),
			passengers.WithMaxAttempts(cfg.Booking.MaxAttempts),
			passengers.WithStrictCalendar(cfg.Validation.StrictCalendar),
			passengers.WithMetrics(reg),
			passengers.WithLogger(logger),
		),
		Bookings: booking.NewBookingService(store, reference.NewRandomGenerator(), bookingOpts...),
		Ratings: ratings.NewRatingService(store,
			ratings.WithEvents(events),
			ratings.WithMaxAttempts(cfg.Booking.MaxAttempts),
			ratings.WithMetrics(reg),
			ratings.WithLogger(logger),
		),
		Flights: flights.NewFlightService(store, reportRepo,
			flights.WithCache(flightCache),
			flights.WithEvents(events),
			flights.WithMaxAttempts(cfg.Booking.MaxAttempts),
			flights.WithStrictCalendar(cfg.Validation.StrictCalendar),
			flights.WithMetrics(reg),
			flights.WithLogger(logger),
		),
	}

	if cfg.App.Env == logging.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if !tokens.Enabled() {
		logger.Warnw("JWT_SECRET is not set, admin endpoints are disabled")
	}
	router := api.NewRouter(services, api.RouterOptions{
		Logger:      logger,
		Metrics:     reg,
		Tokens:      tokens,
		RateLimiter: api.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
	})

	return bootstrap.Run(ctx, cfg, bootstrap.Deps{
		Router:   router,
		Gatherer: promRegistry,
		Checks:   checks,
		Logger:   logger,
	})
}

// openStore connects the transactional backend selected by database.driver
// and applies the schema.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		store, err := gormstore.Open(gormstore.DialectSQLite, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	default:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		store := repository.NewPGStore(pool)
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	}
}
