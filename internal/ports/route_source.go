package ports

import (
	"collection-route-service/internal/domain"
	"context"
)

// Road geometry, distance and duration for one leg as reported by a routing service.
type RoutedLeg struct {
	Coordinates     []domain.LngLat
	DistanceMeters  float64
	DurationSeconds float64
}

// Contract for an external road-routing service.
type RouteSource interface {
	// Return the driving route between two points. Any failure is an error;
	// callers decide how to degrade.
	Route(ctx context.Context, from, to domain.Location) (RoutedLeg, error)
}

// Leg routing with built-in degradation. Implementations never fail.
type LegFetcher interface {
	FetchLeg(ctx context.Context, from, to domain.Location) domain.LegResult
}
