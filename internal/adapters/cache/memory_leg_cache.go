package cache

import (
	"collection-route-service/internal/ports"
	"context"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLegCache keeps routed legs in process memory with expiry.
type MemoryLegCache struct {
	c *gocache.Cache
}

func NewMemoryLegCache(ttl time.Duration) *MemoryLegCache {
	return &MemoryLegCache{c: gocache.New(ttl, 2*ttl)}
}

func (m *MemoryLegCache) Get(_ context.Context, key string) (ports.RoutedLeg, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return ports.RoutedLeg{}, false, nil
	}

	leg, ok := v.(ports.RoutedLeg)
	if !ok {
		return ports.RoutedLeg{}, false, nil
	}
	leg.Coordinates = slices.Clone(leg.Coordinates)
	return leg, true, nil
}

func (m *MemoryLegCache) Put(_ context.Context, key string, leg ports.RoutedLeg) error {
	leg.Coordinates = slices.Clone(leg.Coordinates)
	m.c.SetDefault(key, leg)
	return nil
}

// Flush drops every cached leg.
func (m *MemoryLegCache) Flush() { m.c.Flush() }
