package domain

import (
	"fmt"
	"math"
	"time"
)

// Aggregate of all leg results for a tour. Totals are authoritative; the
// display strings are derived from them.
type RouteResult struct {
	Polyline         []LngLat
	Legs             []LegResult
	TotalDistanceKm  float64
	TotalDurationMin float64
	DistanceText     string
	DurationText     string
}

// FallbackLegs counts legs that were estimated rather than routed.
func (r RouteResult) FallbackLegs() int {
	n := 0
	for _, l := range r.Legs {
		if l.IsFallback() {
			n++
		}
	}
	return n
}

// DurationMinutes returns the total duration rounded to whole minutes.
func (r RouteResult) DurationMinutes() int {
	return int(math.Round(r.TotalDurationMin))
}

func FormatDistance(km float64) string { return fmt.Sprintf("%.2f km", km) }

func FormatDuration(min float64) string { return fmt.Sprintf("%d min", int(math.Round(min))) }

type RouteStatus string

const (
	StatusPlanned    RouteStatus = "planned"
	StatusInProgress RouteStatus = "in_progress"
	StatusCompleted  RouteStatus = "completed"
	StatusCancelled  RouteStatus = "cancelled"
)

func (s RouteStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a route may move from s to next.
// completed and cancelled are terminal.
func (s RouteStatus) CanTransitionTo(next RouteStatus) bool {
	switch s {
	case StatusPlanned:
		return next == StatusInProgress || next == StatusCancelled
	case StatusInProgress:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

// Persisted route. Immutable after creation except for Status.
type RouteRecord struct {
	ID               int64
	RouteDate        time.Time
	TotalDistanceKm  float64
	TotalDurationMin int
	ContainerCount   int
	ContainerIDs     []int
	Polyline         []LngLat
	Status           RouteStatus
	CreatedAt        time.Time
}
