package main

import (
	"collection-route-service/internal/adapters/repositories"
	"collection-route-service/internal/api"
	"collection-route-service/internal/app"
	"collection-route-service/internal/config"
	"collection-route-service/internal/platform/db"
	"collection-route-service/internal/platform/logger"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, OSRM, leg cache) behind ports and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	dotenv := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if !dotenv {
		log.Info("no .env file found (using environment variables)")
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Apply pending migrations on startup so local runs need no extra step.
	if err := repositories.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		return err
	}

	engine, err := app.New(ctx, cfg, conn)
	if err != nil {
		return err
	}
	defer engine.Close()

	router := api.NewRouter(api.Dependencies{
		Planner:          engine.Planner,
		Recorder:         engine.Recorder,
		Routes:           engine.Routes,
		Containers:       engine.Containers,
		DefaultThreshold: cfg.FillThreshold,
	})

	// Timeouts are tuned for cold-cache route planning (one external call per leg).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("routing", cfg.RoutingBaseURL),
			zap.String("leg_cache", cfg.LegCache),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
