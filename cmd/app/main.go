package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/astrobookings/api"
	"github.com/Domenick1991/astrobookings/config"
	"github.com/Domenick1991/astrobookings/internal/bootstrap"
	"github.com/Domenick1991/astrobookings/internal/cache"
	"github.com/Domenick1991/astrobookings/internal/clock"
	"github.com/Domenick1991/astrobookings/internal/events"
	"github.com/Domenick1991/astrobookings/internal/gate"
	"github.com/Domenick1991/astrobookings/internal/kafka"
	"github.com/Domenick1991/astrobookings/internal/logging"
	"github.com/Domenick1991/astrobookings/internal/repository"
	"github.com/Domenick1991/astrobookings/internal/service/booking"
	"github.com/Domenick1991/astrobookings/internal/service/flights"
	"github.com/Domenick1991/astrobookings/internal/service/rockets"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"
)

type stores struct {
	rockets  repository.RocketRepository
	flights  repository.FlightRepository
	bookings repository.BookingRepository
}

func main() {
	cfgPath := pflag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	g := gate.New()
	clk := clock.Real()

	flightOpts := []flights.FlightServiceOption{flights.WithClock(clk), flights.WithLogger(logger)}
	bookingOpts := []booking.BookingServiceOption{booking.WithClock(clk), booking.WithLogger(logger)}

	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, kafka.WithLogger(logger), kafka.WithRetries(3, 500*time.Millisecond))
		defer producer.Close()

		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := producer.CheckConnection(checkCtx); err != nil {
			logger.Warn("kafka not reachable, events will be retried per publish", "error", err)
		}
		cancel()

		publisher := events.NewPublisher(producer, cfg.Kafka.FlightEventsTopic,
			events.WithNotificationsTopic(cfg.Kafka.NotificationsTopic))
		flightOpts = append(flightOpts, flights.WithEventPublisher(publisher))
		bookingOpts = append(bookingOpts, booking.WithEventPublisher(publisher))
	} else {
		logger.Info("kafka brokers not configured, flight events disabled")
	}

	rocketService := rockets.NewRocketService(st.rockets, logger)
	flightService := flights.NewFlightService(st.flights, st.rockets, st.bookings, g, flightOpts...)
	bookingService := booking.NewBookingService(st.bookings, st.flights, st.rockets, g, bookingOpts...)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Handlers{
		Rockets:  api.NewRocketHandler(rocketService),
		Flights:  api.NewFlightHandler(flightService),
		Bookings: api.NewBookingHandler(bookingService),
	}, cfg.HTTP.AllowedOrigins, logger)

	return bootstrap.NewServers(cfg, router, logger).Run(ctx)
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (stores, func(), error) {
	var st stores
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return stores{}, nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		if cfg.Database.Migrate {
			if err := repository.Migrate(ctx, pool); err != nil {
				cleanup()
				return stores{}, nil, err
			}
		}
		st = stores{
			rockets:  repository.NewPGRocketRepository(pool),
			flights:  repository.NewPGFlightRepository(pool),
			bookings: repository.NewPGBookingRepository(pool),
		}
		logger.Info("using postgres storage", "host", cfg.Database.Host, "database", cfg.Database.Name)
	default:
		st = stores{
			rockets:  repository.NewMemoryRocketRepository(),
			flights:  repository.NewMemoryFlightRepository(),
			bookings: repository.NewMemoryBookingRepository(),
		}
		logger.Info("using in-memory storage")
	}

	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(cfg.Redis)
		closers = append(closers, func() { _ = redisCache.Close() })
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("redis not reachable, rocket lookups fall back to storage", "error", err)
		}
		st.rockets = repository.NewCachedRocketRepository(st.rockets, redisCache, logger)
	}

	return st, cleanup, nil
}
