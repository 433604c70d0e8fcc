package services

import (
	"collection-route-service/internal/domain"
	"collection-route-service/internal/ports"
	"context"
	"errors"
	"fmt"
)

// CollectionPlan is the request-scoped output of planning one collection run.
type CollectionPlan struct {
	Tour       domain.Tour
	Containers []domain.Container
	Route      domain.RouteResult
	FuelCost   float64
}

// CollectionPlanner sequences containers and builds the routed tour.
type CollectionPlanner struct {
	Depot      domain.Location
	Aggregator *RouteAggregator
	Containers ports.ContainerRepository

	FuelLitersPer100Km float64
	FuelPricePerLiter  float64
}

// Plan sequences the given containers from the depot and routes every leg.
func (p *CollectionPlanner) Plan(ctx context.Context, containers []domain.Container) (*CollectionPlan, error) {
	if p.Aggregator == nil {
		return nil, errors.New("plan collection: aggregator is nil")
	}

	tour, err := SequenceWaypoints(p.Depot, containers)
	if err != nil {
		return nil, fmt.Errorf("plan collection: sequence: %w", err)
	}

	route := p.Aggregator.BuildRoute(ctx, tour)

	return &CollectionPlan{
		Tour:       tour,
		Containers: containers,
		Route:      route,
		FuelCost:   EstimateFuelCost(route.TotalDistanceKm, p.FuelLitersPer100Km, p.FuelPricePerLiter),
	}, nil
}

// PlanNeedingCollection plans a route over every active container whose
// fill level is at or above threshold.
func (p *CollectionPlanner) PlanNeedingCollection(ctx context.Context, threshold float64) (*CollectionPlan, error) {
	if p.Containers == nil {
		return nil, errors.New("plan needing collection: container repository is nil")
	}

	containers, err := p.Containers.ListNeedingCollection(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("plan needing collection: list containers: %w", err)
	}
	if len(containers) == 0 {
		return nil, domain.NewInvalidInput("no container at or above %.0f%% fill", threshold)
	}

	return p.Plan(ctx, containers)
}
