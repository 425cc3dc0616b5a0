package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/planifive/planifive/internal/calls"
	"github.com/planifive/planifive/internal/config"
	"github.com/planifive/planifive/internal/database"
	server "github.com/planifive/planifive/internal/http"
	"github.com/planifive/planifive/internal/metrics"
	"github.com/planifive/planifive/internal/notifier"
	"github.com/planifive/planifive/internal/notifier/discord"
	"github.com/planifive/planifive/internal/notifier/slack"
	"github.com/planifive/planifive/internal/planner"
	"github.com/planifive/planifive/internal/pubsub"
	"github.com/planifive/planifive/internal/roster"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	rosterStore := roster.New(db)
	plannerStore := planner.NewStore(db)
	callStore := calls.NewStore(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	var notifierClient notifier.Notifier
	switch cfg.Notifier.Provider {
	case "slack":
		notifierClient = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	default:
		notifierClient = discord.NewNotifier(cfg.Discord.WebhookURL, cfg.Discord.SiteURL, metricsSvc)
	}

	pubsubClient := pubsub.New(cfg.ProjectID)

	windowParams := planner.WindowParams{
		Threshold:    cfg.Planner.MatchSize,
		DayStartHour: cfg.Planner.DayStartHour,
		DayEndHour:   cfg.Planner.DayEndHour,
		WindowLength: cfg.Planner.WindowLength,
	}
	engine := planner.NewEngine(plannerStore, rosterStore, notifierClient, metricsSvc, windowParams)
	callsSvc := calls.NewService(callStore, plannerStore, rosterStore, notifierClient, metricsSvc, pubsubClient, windowParams)

	s := server.NewServer(
		rosterStore,
		plannerStore,
		engine,
		callsSvc,
		metricsSvc,
		metricsHandler,
		cfg,
		notifierClient,
		pubsubClient,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

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

	log.Info("Server process shutting down")
}
