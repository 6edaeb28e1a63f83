package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-tracking/internal/api"
	"fleet-tracking/internal/config"
	"fleet-tracking/internal/modules/events"
	"fleet-tracking/internal/modules/routes"
	"fleet-tracking/internal/modules/tracking"
	"fleet-tracking/pkg/logger"
	"fleet-tracking/pkg/notify"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// 1. --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slogger := logger.New("fleet-tracking")

	e := echo.New()
	e.HideBanner = true

	// 2. --- Middleware ---
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// 3. --- Repositories ---
	// With a DATABASE_URL the engine persists routes, events and
	// deviation history in PostgreSQL; without one it runs entirely
	// in memory (useful for development and single-node setups).
	var (
		routeRepo routes.RepositoryInterface
		eventRepo events.RepositoryInterface
		devRepo   tracking.DeviationRepositoryInterface
	)
	if cfg.DatabaseURL != "" {
		dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Unable to parse database configuration: %v", err)
		}
		dbPool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
		if err != nil {
			log.Fatalf("Unable to create connection pool: %v", err)
		}
		defer dbPool.Close()

		if err := dbPool.Ping(context.Background()); err != nil {
			log.Fatalf("Unable to ping database: %v", err)
		}
		slogger.Info("connected to postgres")

		routeRepo = routes.NewRepository(dbPool)
		eventRepo = events.NewRepository(dbPool)
		devRepo = tracking.NewDeviationRepository(dbPool)
	} else {
		slogger.Warn("no DATABASE_URL configured, using in-memory repositories")
		routeRepo = routes.NewMemoryRepository()
		eventRepo = events.NewMemoryRepository()
		devRepo = tracking.NewMemoryDeviationRepository()
	}

	// 4. --- Notification transports ---
	var targets []notify.Target
	if cfg.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, slogger)
		if err != nil {
			log.Fatalf("Unable to connect to rabbitmq: %v", err)
		}
		defer amqpNotifier.Close()
		targets = append(targets, amqpNotifier)
	}
	if cfg.SESRegion != "" && cfg.SESAlertEmail != "" {
		sesNotifier, err := notify.NewSESNotifier(context.Background(), cfg.SESRegion, cfg.SESFromEmail, cfg.SESAlertEmail, slogger)
		if err != nil {
			log.Fatalf("Unable to initialize SES: %v", err)
		}
		targets = append(targets, sesNotifier)
	}
	var notifier events.Notifier
	if len(targets) > 0 {
		notifier = notify.NewMulti(targets...)
	} else {
		slogger.Warn("no notification transport configured, events will only be logged")
	}

	// 5. --- Dependency Injection (Wiring everything up) ---
	dispatcher := events.NewDispatcher(eventRepo, notifier, slogger, events.DispatchConfig{
		Retries:        cfg.NotifyRetries,
		Backoff:        cfg.NotifyBackoff,
		AttemptTimeout: cfg.NotifyAttemptTimeout,
		QueueSize:      cfg.NotifyQueueSize,
	})
	dispatcher.Start()
	defer dispatcher.Stop()
	eventHandler := events.NewHandler(dispatcher)

	routeService := routes.NewService(routeRepo, slogger)
	routeHandler := routes.NewHandler(routeService)

	trackingService := tracking.NewService(
		tracking.NewStore(cfg.HistorySize),
		routeService,
		dispatcher,
		devRepo,
		tracking.Estimator{MinSpeedKMH: cfg.MinSpeedKMH},
		tracking.Detector{
			DistanceKM:   cfg.DeviationDistanceKM,
			Duration:     cfg.DeviationDuration,
			MaxAccuracyM: cfg.MaxAccuracyM,
		},
		slogger,
		tracking.ServiceConfig{
			MaxSpeedKMH:     cfg.MaxSpeedKMH,
			StalenessWindow: cfg.StalenessWindow,
			SweepInterval:   cfg.SweepInterval,
		},
	)
	trackingHandler := tracking.NewHandler(trackingService)

	// 6. --- Initialize Router ---
	api.SetupRoutes(e,
		routeHandler,
		trackingHandler,
		eventHandler,
		cfg.JWTSecret,
	)

	// 7. --- Background staleness sweep ---
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go trackingService.RunStalenessSweep(sweepCtx)

	// 8. --- Start Server with graceful shutdown logic ---
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server an error occurred:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Server forced to shutdown:", err)
	}
	log.Println("Server exiting")
}
