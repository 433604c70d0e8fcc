package domain

import (
	"errors"
	"fmt"
)

var ErrRouteNotFound = errors.New("route not found")

// Rejected caller input, e.g. an empty or malformed container set.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return "invalid input: " + e.Reason }

func NewInvalidInput(format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// Failure contacting or decoding the routing service for one leg.
// It never leaves the routing data provider.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string { return fmt.Sprintf("routing provider: %s: %v", e.Op, e.Err) }

func (e *ProviderError) Unwrap() error { return e.Err }

// Failure writing a route or savings record. RouteID is set when the route
// record was written but a later write failed.
type PersistenceError struct {
	Op      string
	RouteID int64
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.RouteID > 0 {
		return fmt.Sprintf("persistence: %s (route_id=%d): %v", e.Op, e.RouteID, e.Err)
	}
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type StatusTransitionError struct {
	From RouteStatus
	To   RouteStatus
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("route status cannot change from %q to %q", e.From, e.To)
}
