package services

import (
	"collection-route-service/internal/domain"
	"collection-route-service/internal/geo"
	"collection-route-service/internal/platform/obs"
	"collection-route-service/internal/ports"
	"context"
	"errors"

	"go.uber.org/zap"
)

// FallbackSpeedKmh is the assumed average urban speed for estimated legs.
const FallbackSpeedKmh = 40.0

// RoutingDataProvider fetches one leg from the routing service and degrades
// to a haversine estimate on any failure. It implements ports.LegFetcher.
type RoutingDataProvider struct {
	Source ports.RouteSource
}

func NewRoutingDataProvider(source ports.RouteSource) *RoutingDataProvider {
	return &RoutingDataProvider{Source: source}
}

// FetchLeg never fails: a provider error for this leg yields a fallback
// result for this leg only.
func (p *RoutingDataProvider) FetchLeg(ctx context.Context, from, to domain.Location) domain.LegResult {
	if p.Source == nil {
		return FallbackLeg(from, to, &domain.ProviderError{Op: "route", Err: errors.New("no routing source configured")})
	}

	leg, err := p.Source.Route(ctx, from, to)
	if err == nil && len(leg.Coordinates) == 0 {
		err = errors.New("empty geometry")
	}
	if err != nil {
		perr := &domain.ProviderError{Op: "route", Err: err}
		zap.L().Warn("routing leg fell back to estimate",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.String("from", from.Label),
			zap.String("to", to.Label),
			zap.Error(perr),
		)
		return FallbackLeg(from, to, perr)
	}

	return domain.LegResult{
		Polyline:    leg.Coordinates,
		DistanceKm:  leg.DistanceMeters / 1000,
		DurationMin: leg.DurationSeconds / 60,
		Source:      domain.SourceProvider,
	}
}

// FallbackLeg estimates a leg as the straight segment between its endpoints.
// Distance is great-circle; duration is distanceKm / FallbackSpeedKmh.
// It is pure arithmetic over the coordinates.
func FallbackLeg(from, to domain.Location, reason error) domain.LegResult {
	km := geo.Haversine(from.Latitude, from.Longitude, to.Latitude, to.Longitude)

	res := domain.LegResult{
		Polyline:    []domain.LngLat{from.LngLat(), to.LngLat()},
		DistanceKm:  km,
		DurationMin: km / FallbackSpeedKmh,
		Source:      domain.SourceFallback,
	}
	if reason != nil {
		res.FallbackReason = reason.Error()
	}
	return res
}
