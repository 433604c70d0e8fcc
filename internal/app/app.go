package app

import (
	"collection-route-service/internal/adapters/cache"
	"collection-route-service/internal/adapters/repositories"
	"collection-route-service/internal/adapters/routing"
	"collection-route-service/internal/config"
	"collection-route-service/internal/domain"
	"collection-route-service/internal/ports"
	"collection-route-service/internal/services"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the wired engine shared by the server and the operator CLI.
type App struct {
	Planner    *services.CollectionPlanner
	Recorder   *services.SavingsRecorder
	Routes     *repositories.PostgresRouteRepository
	Containers *repositories.PostgresContainerRepository

	closers []func() error
}

// New wires concrete adapters (Postgres, OSRM, leg cache) behind ports.
func New(ctx context.Context, cfg config.Config, db *sql.DB) (*App, error) {
	a := &App{}

	legCache, err := a.newLegCache(ctx, cfg, db)
	if err != nil {
		return nil, err
	}

	source, err := routing.NewOSRMRouteSource(routing.Options{
		BaseURL:     cfg.RoutingBaseURL,
		Profile:     cfg.RoutingProfile,
		Timeout:     cfg.RoutingTimeout,
		MaxAttempts: cfg.RoutingMaxAttempts,
		UserAgent:   "collection-route-service",
		Cache:       legCache,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("app: routing source: %w", err)
	}

	a.Routes = repositories.NewPostgresRouteRepository(db)
	a.Containers = repositories.NewPostgresContainerRepository(db)
	a.Recorder = services.NewSavingsRecorder(a.Routes)
	a.Planner = &services.CollectionPlanner{
		Depot: domain.Location{
			Latitude:  cfg.DepotLat,
			Longitude: cfg.DepotLng,
			Label:     cfg.DepotName,
		},
		Aggregator:         services.NewRouteAggregator(services.NewRoutingDataProvider(source), cfg.LegConcurrency),
		Containers:         a.Containers,
		FuelLitersPer100Km: cfg.FuelLitersPer100Km,
		FuelPricePerLiter:  cfg.FuelPricePerLiter,
	}

	return a, nil
}

func (a *App) newLegCache(ctx context.Context, cfg config.Config, db *sql.DB) (ports.LegCache, error) {
	switch cfg.LegCache {
	case "memory":
		return cache.NewMemoryLegCache(cfg.LegCacheTTL), nil
	case "postgres":
		return cache.NewSQLLegCache(db, cfg.LegCacheTTL), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("app: connect redis at %s: %w", cfg.RedisAddr, err)
		}

		a.closers = append(a.closers, client.Close)
		return cache.NewRedisLegCache(client, cfg.LegCacheTTL), nil
	default:
		zap.L().Info("leg cache disabled")
		return nil, nil
	}
}

// Close releases connections opened by New. The database is owned by the caller.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
