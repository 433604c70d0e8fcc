package services

import (
	"collection-route-service/internal/domain"
	"collection-route-service/internal/platform/obs"
	"collection-route-service/internal/ports"
	"context"

	"golang.org/x/sync/errgroup"
)

const (
	// Reported totals never go below these values.
	MinRouteDistanceKm  = 0.1
	MinRouteDurationMin = 1.0
)

// RouteAggregator drives a LegFetcher over every leg of a tour.
//
// Legs are fetched concurrently (at most Concurrency at once) and reassembled
// in tour order, so the polyline and totals do not depend on completion order.
type RouteAggregator struct {
	Fetcher     ports.LegFetcher
	Concurrency int
}

func NewRouteAggregator(fetcher ports.LegFetcher, concurrency int) *RouteAggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &RouteAggregator{Fetcher: fetcher, Concurrency: concurrency}
}

// BuildRoute fetches and aggregates all legs of tour.
func (a *RouteAggregator) BuildRoute(ctx context.Context, tour domain.Tour) domain.RouteResult {
	var err error
	defer obs.Time(ctx, "route.BuildRoute")(&err)

	legs := tour.Legs()
	results := make([]domain.LegResult, len(legs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.Concurrency, 1))
	for i, leg := range legs {
		g.Go(func() error {
			results[i] = a.Fetcher.FetchLeg(gctx, leg.From.Location, leg.To.Location)
			return nil
		})
	}
	// Fetchers never fail, so Wait only synchronizes.
	err = g.Wait()

	return Aggregate(tour, results)
}

// Aggregate concatenates leg results in order and applies the total floors.
func Aggregate(tour domain.Tour, legs []domain.LegResult) domain.RouteResult {
	polyline := make([]domain.LngLat, 0, 2*len(legs))
	totalKm := 0.0
	totalMin := 0.0

	for _, l := range legs {
		polyline = append(polyline, l.Polyline...)
		totalKm += l.DistanceKm
		totalMin += l.DurationMin
	}

	if len(polyline) == 0 {
		for _, w := range tour {
			polyline = append(polyline, w.LngLat())
		}
	}

	if totalKm < MinRouteDistanceKm {
		totalKm = MinRouteDistanceKm
	}
	if totalMin < MinRouteDurationMin {
		totalMin = MinRouteDurationMin
	}

	return domain.RouteResult{
		Polyline:         polyline,
		Legs:             legs,
		TotalDistanceKm:  totalKm,
		TotalDurationMin: totalMin,
		DistanceText:     domain.FormatDistance(totalKm),
		DurationText:     domain.FormatDuration(totalMin),
	}
}
