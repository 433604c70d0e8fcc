package ports

import (
	"collection-route-service/internal/domain"
	"context"
)

// Port: the storage collaborator for route and savings records.
type RouteStore interface {
	// Insert a route record and return its generated id.
	InsertRoute(ctx context.Context, r domain.RouteRecord) (int64, error)
	// Insert the savings record linked to an existing route.
	InsertSavings(ctx context.Context, s domain.SavingsRecord) error
}

// Read side of the storage collaborator used for reporting.
type RouteReader interface {
	ListRoutes(ctx context.Context, limit int) ([]domain.RouteRecord, error)
	GetRoute(ctx context.Context, id int64) (domain.RouteRecord, error)
	SumSavings(ctx context.Context) (domain.SavingsTotals, error)
	SumSavingsByPeriod(ctx context.Context, g domain.Granularity) ([]domain.PeriodSavings, error)
}

// Route status changes after creation.
type RouteStatusUpdater interface {
	UpdateRouteStatus(ctx context.Context, id int64, next domain.RouteStatus) error
}

// Removal of a route together with its savings record.
type RouteDeleter interface {
	DeleteRoute(ctx context.Context, id int64) error
}

type RouteRepository interface {
	RouteStore
	RouteReader
	RouteStatusUpdater
	RouteDeleter
}
