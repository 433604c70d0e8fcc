package routing

import (
	"collection-route-service/internal/domain"
	"collection-route-service/internal/ports"
	"context"
	"fmt"
	"sync"
)

// MockRouteSource serves canned legs keyed by LegKey. Unknown legs fail,
// which exercises the fallback path.
type MockRouteSource struct {
	mu    sync.Mutex
	legs  map[string]ports.RoutedLeg
	calls int
}

func NewMockRouteSource() *MockRouteSource {
	return &MockRouteSource{legs: make(map[string]ports.RoutedLeg)}
}

// Set registers the result returned for from -> to.
func (m *MockRouteSource) Set(from, to domain.Location, leg ports.RoutedLeg) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.legs[LegKey(from, to)] = leg
}

func (m *MockRouteSource) Route(ctx context.Context, from, to domain.Location) (ports.RoutedLeg, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if err := ctx.Err(); err != nil {
		return ports.RoutedLeg{}, err
	}

	leg, ok := m.legs[LegKey(from, to)]
	if !ok {
		return ports.RoutedLeg{}, fmt.Errorf("missing leg %s", LegKey(from, to))
	}
	return leg, nil
}

// Calls returns how many times Route was invoked.
func (m *MockRouteSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
