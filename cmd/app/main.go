package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"clinic-service/internal/config"
	loginHandler "clinic-service/internal/http-server/handlers/auth/login"
	logoutHandler "clinic-service/internal/http-server/handlers/auth/logout"
	bookingCreate "clinic-service/internal/http-server/handlers/bookings/create"
	bookingDelete "clinic-service/internal/http-server/handlers/bookings/delete"
	bookingStatus "clinic-service/internal/http-server/handlers/bookings/status"
	scheduleBatch "clinic-service/internal/http-server/handlers/schedules/batch"
	scheduleCreate "clinic-service/internal/http-server/handlers/schedules/create"
	scheduleDays "clinic-service/internal/http-server/handlers/schedules/days"
	scheduleDelete "clinic-service/internal/http-server/handlers/schedules/delete"
	scheduleGet "clinic-service/internal/http-server/handlers/schedules/get"
	schedulePatients "clinic-service/internal/http-server/handlers/schedules/patients"
	scheduleUpdate "clinic-service/internal/http-server/handlers/schedules/update"
	"clinic-service/internal/http-server/middleware/auth"
	"clinic-service/internal/lock"
	svc "clinic-service/internal/service"
	"clinic-service/internal/session"
	"clinic-service/internal/storage/postgres"
	slogpretty "clinic-service/pkg/handlers/slogPretty"
	mwLogger "clinic-service/pkg/middleware/mwLogger"
	"clinic-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	sessions := session.NewMemory()

	service := svc.NewService(storage, locker, cfg.WindowDays)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// Public: browse and book
	router.Post("/login", loginHandler.New(log, sessions))
	router.Post("/logout", logoutHandler.New(log, sessions))
	router.Get("/schedules", scheduleGet.New(log, service))
	router.Get("/schedules/days", scheduleDays.New(log, service))
	router.Get("/schedules/{id}", scheduleGet.New(log, service))
	router.Post("/bookings", bookingCreate.New(log, service))

	// Doctor: manage own schedule
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(log, sessions, session.RoleDoctor))
		r.Post("/schedules", scheduleCreate.New(log, service))
		r.Post("/schedules/import", scheduleBatch.New(log, service))
		r.Put("/schedules/{id}", scheduleUpdate.New(log, service))
		r.Delete("/schedules/{id}", scheduleDelete.New(log, service))
		r.Get("/schedules/{id}/patients", schedulePatients.New(log, service))
	})

	// Supporter: appointment status
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(log, sessions, session.RoleSupporter))
		r.Put("/bookings/{patientId}/{scheduleId}/status", bookingStatus.New(log, service))
		r.Delete("/bookings/{patientId}/{scheduleId}", bookingDelete.New(log, service))
	})

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if storage != nil {
		if err := storage.Close(); err != nil {
			log.Error("Failed to close storage", sl.Err(err))
		} else {
			log.Info("Storage closed")
		}
	} else {
		log.Debug("Storage is nil, nothing to close")
	}

	if locker != nil {
		if err := locker.Close(); err != nil {
			log.Error("Failed to close locker", sl.Err(err))
		} else {
			log.Info("Locker closed")
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
