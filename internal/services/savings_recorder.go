package services

import (
	"collection-route-service/internal/domain"
	"collection-route-service/internal/platform/obs"
	"collection-route-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"time"
)

type RecordRouteRequest struct {
	RouteDate    time.Time
	Route        domain.RouteResult
	ContainerIDs []int
	Savings      domain.Savings
}

// SavingsRecorder persists a completed route and its savings as linked records.
type SavingsRecorder struct {
	Store ports.RouteStore
	Now   func() time.Time
}

func NewSavingsRecorder(store ports.RouteStore) *SavingsRecorder {
	return &SavingsRecorder{Store: store, Now: time.Now}
}

// RecordRoute writes the route record (status completed), then the savings
// record referencing its id, and returns the new route id.
//
// When the route write fails no savings write is attempted. When the savings
// write fails the route record stays; the returned PersistenceError carries
// its id.
func (r *SavingsRecorder) RecordRoute(ctx context.Context, req RecordRouteRequest) (_ int64, err error) {
	defer obs.Time(ctx, "savings.RecordRoute")(&err)

	if r.Store == nil {
		return 0, &domain.PersistenceError{Op: "insert route", Err: errors.New("store is nil")}
	}

	routeDate := req.RouteDate
	if routeDate.IsZero() {
		routeDate = r.now()
	}

	ids := append([]int(nil), req.ContainerIDs...)
	record := domain.RouteRecord{
		RouteDate:        routeDate,
		TotalDistanceKm:  req.Route.TotalDistanceKm,
		TotalDurationMin: req.Route.DurationMinutes(),
		ContainerCount:   len(ids),
		ContainerIDs:     ids,
		Polyline:         req.Route.Polyline,
		Status:           domain.StatusCompleted,
	}

	routeID, err := r.Store.InsertRoute(ctx, record)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "insert route", Err: err}
	}
	if routeID <= 0 {
		return 0, &domain.PersistenceError{Op: "insert route", Err: fmt.Errorf("store returned invalid id %d", routeID)}
	}

	savings := domain.SavingsRecord{RouteID: routeID, Savings: req.Savings}
	if err := r.Store.InsertSavings(ctx, savings); err != nil {
		return routeID, &domain.PersistenceError{Op: "insert savings", RouteID: routeID, Err: err}
	}

	return routeID, nil
}

func (r *SavingsRecorder) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
