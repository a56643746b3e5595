package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/talk-scheduler/internal/application"
	"github.com/example/talk-scheduler/internal/config"
	httptransport "github.com/example/talk-scheduler/internal/http"
	"github.com/example/talk-scheduler/internal/logging"
	"github.com/example/talk-scheduler/internal/persistence"
	"github.com/example/talk-scheduler/internal/persistence/memory"
	"github.com/example/talk-scheduler/internal/persistence/postgres"
	"github.com/example/talk-scheduler/internal/session"
)

func main() {
	logger := logging.NewLogger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	var store persistence.Store
	if cfg.DatabaseURL != "" {
		pgStore, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open storage", "error", err)
			os.Exit(1)
		}
		if err := pgStore.Migrate(ctx); err != nil {
			logger.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		store = pgStore
		logger.Info("using postgres storage")
	} else {
		store = memory.NewStore()
		logger.Warn("DATABASE_URL not set; using in-memory storage, data will not survive a restart")
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := store.SeedRooms(ctx, defaultRooms()); err != nil {
		logger.Error("failed to seed rooms", "error", err)
		os.Exit(1)
	}

	tokenGenerator := func() string { return uuid.NewString() }
	now := time.Now

	authService := application.NewAuthServiceWithLogger(cfg.AdminPassword, session.NewStore(), tokenGenerator, now, cfg.SessionTTL, logger)
	submissionService := application.NewSubmissionServiceWithLogger(store, logger)
	scheduleService := application.NewScheduleServiceWithLogger(store, store, store, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Submissions:  httptransport.NewSubmissionHandler(submissionService, logger),
		Schedules:    httptransport.NewScheduleHandler(scheduleService, logger),
		Exports:      httptransport.NewExportHandler(submissionService, scheduleService, now, logger),
		Klein:        httptransport.NewKleinHandler(logger),
		RequireAdmin: httptransport.RequireAdmin(authService),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
		Now: now,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("talk scheduler listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// defaultRooms is the venue catalog inserted on first start; SeedRooms is a
// no-op once any room exists.
func defaultRooms() []persistence.Room {
	features := func(s string) *string { return &s }
	return []persistence.Room{
		{Name: "Aula", Building: "Main Building", Capacity: 250, Features: features("projector, stage, microphones"), Active: true},
		{Name: "Lecture Hall A", Building: "Main Building", Capacity: 120, Features: features("projector, whiteboard"), Active: true},
		{Name: "Lecture Hall B", Building: "Main Building", Capacity: 120, Features: features("projector, whiteboard"), Active: true},
		{Name: "Seminar Room 1", Building: "Annex", Capacity: 40, Features: features("screen, whiteboard"), Active: true},
		{Name: "Seminar Room 2", Building: "Annex", Capacity: 40, Features: features("screen"), Active: true},
		{Name: "Library Hall", Building: "Library", Capacity: 80, Features: features("projector"), Active: true},
	}
}
