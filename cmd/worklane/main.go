package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	wlhttp "github.com/worklane/worklane/internal/adapter/http"
	wlnats "github.com/worklane/worklane/internal/adapter/nats"
	"github.com/worklane/worklane/internal/adapter/otel"
	"github.com/worklane/worklane/internal/adapter/postgres"
	"github.com/worklane/worklane/internal/adapter/ristretto"
	"github.com/worklane/worklane/internal/adapter/ws"
	"github.com/worklane/worklane/internal/config"
	"github.com/worklane/worklane/internal/domain/permission"
	"github.com/worklane/worklane/internal/logger"
	"github.com/worklane/worklane/internal/middleware"
	"github.com/worklane/worklane/internal/port/notifier"
	"github.com/worklane/worklane/internal/service"
)

const serviceName = "worklane"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
		"telemetry_enabled", cfg.Telemetry.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	shutdownTelemetry, err := otel.Init(ctx, cfg.Telemetry, serviceName)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown", "error", err)
		}
	}()

	rec, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	queue, err := wlnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Close() }()

	capCache, err := ristretto.New(cfg.Cache.MaxSizeMB * 1024 * 1024)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer capCache.Close()

	// --- Services ---
	hub := ws.NewHub()
	store := postgres.NewStore(pool)
	eval := permission.NewEvaluator(store, cfg.Authz.ManagerRequiresMembership)

	taskSvc := service.NewTaskService(store, queue, eval, capCache, cfg.Cache.CapabilityTTL, rec)
	subtaskSvc := service.NewSubtaskService(store, eval, rec)
	notificationSvc := service.NewNotificationService(store, []notifier.Notifier{ws.NewNotifier(hub)})
	authSvc := service.NewAuthService(store, &cfg.Auth)

	// Fan task events out to notification rows and connected sockets.
	cancelEvents, err := notificationSvc.StartSubscriber(ctx, queue)
	if err != nil {
		return fmt.Errorf("event subscriber: %w", err)
	}
	defer cancelEvents()

	// --- HTTP ---
	handlers := wlhttp.NewHandlers(taskSvc, subtaskSvc, notificationSvc, authSvc, hub, queue)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(wlhttp.Logger)
	r.Use(wlhttp.SecurityHeaders)
	r.Use(wlhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(otel.HTTPMiddleware(serviceName))
	r.Use(middleware.Auth(authSvc))
	wlhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
