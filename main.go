package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/mauv0809/shuttle-league/internal/config"
	"github.com/mauv0809/shuttle-league/internal/database"
	server "github.com/mauv0809/shuttle-league/internal/http"
	"github.com/mauv0809/shuttle-league/internal/league"
	"github.com/mauv0809/shuttle-league/internal/lifecycle"
	"github.com/mauv0809/shuttle-league/internal/metrics"
	"github.com/mauv0809/shuttle-league/internal/notifier/slack"
	"github.com/mauv0809/shuttle-league/internal/pubsub"
	"github.com/mauv0809/shuttle-league/internal/social"
	"github.com/mauv0809/shuttle-league/internal/user"
	"github.com/mauv0809/shuttle-league/internal/watch"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)

	var events pubsub.PubSubClient
	if cfg.ProjectID != "" {
		events = pubsub.New(cfg.ProjectID)
	} else {
		log.Warn("GCP_PROJECT not set, domain events will only be logged")
		events = pubsub.NewLogOnly()
	}
	defer events.Close()

	hub := watch.NewHub()
	svc := lifecycle.New(lifecycle.Deps{
		Leagues:  league.New(db),
		Social:   social.New(db),
		Users:    user.New(db),
		Hub:      hub,
		PubSub:   events,
		Notifier: notifier,
		Metrics:  metricsSvc,
	})

	s := server.NewServer(svc, metricsSvc, metricsHandler, cfg, notifier, events)

	// --- Standings digest ---
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %s", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.DigestInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := svc.PostAllStandings(ctx, false); err != nil {
				log.Error("Scheduled standings digest failed", "error", err)
			}
		}),
	)
	if err != nil {
		log.Fatalf("Failed to schedule standings digest: %s", err)
	}
	scheduler.Start()
	log.Info("Standings digest scheduled", "interval", cfg.DigestInterval)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}
	// Open standings streams block Shutdown until they end.
	srv.RegisterOnShutdown(hub.CloseAll)

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	if err := scheduler.Shutdown(); err != nil {
		log.Error("Scheduler shutdown failed", "error", err)
	}
	log.Info("Server process shutting down")
}
