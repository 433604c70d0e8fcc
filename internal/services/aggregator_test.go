package services

import (
	"collection-route-service/internal/adapters/routing"
	"collection-route-service/internal/domain"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowFetcher returns provider-shaped results, delaying earlier legs longer so
// they complete out of order.
type slowFetcher struct {
	mu    sync.Mutex
	calls int
}

func (f *slowFetcher) FetchLeg(ctx context.Context, from, to domain.Location) domain.LegResult {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	delay := time.Duration(from.Latitude*-1) * time.Millisecond
	time.Sleep(delay)

	return domain.LegResult{
		Polyline:    []domain.LngLat{{from.Longitude, from.Latitude}, {to.Longitude, to.Latitude}},
		DistanceKm:  1,
		DurationMin: 2,
		Source:      domain.SourceProvider,
	}
}

func waypoint(id int, lat, lng float64) domain.Waypoint {
	return domain.Waypoint{Location: domain.Location{Latitude: lat, Longitude: lng}, ContainerID: &id}
}

func TestBuildRouteKeepsLegOrder(t *testing.T) {
	home := domain.Waypoint{Location: domain.Location{Latitude: -30, Longitude: 0}}
	tour := domain.Tour{home, waypoint(1, -20, 1), waypoint(2, -10, 2), waypoint(3, -1, 3), home}

	f := &slowFetcher{}
	res := NewRouteAggregator(f, 4).BuildRoute(context.Background(), tour)

	assert.Equal(t, 4, f.calls)
	require.Len(t, res.Legs, 4)
	require.Len(t, res.Polyline, 8)

	want := []domain.LngLat{{0, -30}, {1, -20}, {1, -20}, {2, -10}, {2, -10}, {3, -1}, {3, -1}, {0, -30}}
	assert.Equal(t, want, res.Polyline)
	assert.InDelta(t, 4.0, res.TotalDistanceKm, 1e-12)
	assert.InDelta(t, 8.0, res.TotalDurationMin, 1e-12)
	assert.Equal(t, "4.00 km", res.DistanceText)
	assert.Equal(t, "8 min", res.DurationText)
}

func TestBuildRouteFloorsTotalsWhenEveryLegFails(t *testing.T) {
	tour := domain.Tour{{Location: depot}, waypoint(1, depot.Latitude, depot.Longitude), {Location: depot}}

	p := NewRoutingDataProvider(routing.NewMockRouteSource())
	res := NewRouteAggregator(p, 2).BuildRoute(context.Background(), tour)

	assert.Equal(t, 2, res.FallbackLegs())
	assert.Equal(t, MinRouteDistanceKm, res.TotalDistanceKm)
	assert.Equal(t, MinRouteDurationMin, res.TotalDurationMin)
	assert.Equal(t, "0.10 km", res.DistanceText)
	assert.Equal(t, "1 min", res.DurationText)
}

func TestBuildRouteDegenerateTourUsesWaypoints(t *testing.T) {
	tour := domain.Tour{{Location: depot}}

	res := NewRouteAggregator(NewRoutingDataProvider(nil), 1).BuildRoute(context.Background(), tour)

	assert.Empty(t, res.Legs)
	assert.Equal(t, []domain.LngLat{{depot.Longitude, depot.Latitude}}, res.Polyline)
	assert.GreaterOrEqual(t, res.TotalDistanceKm, 0.1)
	assert.GreaterOrEqual(t, res.TotalDurationMin, 1.0)
}

func TestBuildRouteMixesFallbackAndProviderLegs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// First leg starts at the depot and fails; the return leg succeeds.
		if strings.HasPrefix(r.URL.Path, "/route/v1/driving/-51.185000,-29.175000") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"code":"Ok","routes":[{"distance":900,"duration":120,
			"geometry":{"type":"LineString","coordinates":[[-51.19,-29.18],[-51.188,-29.178],[-51.185,-29.175]]}}]}`)
	}))
	defer srv.Close()

	src, err := routing.NewOSRMRouteSource(routing.Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)

	tour, err := SequenceWaypoints(depot, []domain.Container{{ID: 1, Latitude: -29.18, Longitude: -51.19}})
	require.NoError(t, err)

	res := NewRouteAggregator(NewRoutingDataProvider(src), 2).BuildRoute(context.Background(), tour)

	require.Len(t, res.Legs, 2)
	assert.Equal(t, domain.SourceFallback, res.Legs[0].Source)
	assert.Equal(t, domain.SourceProvider, res.Legs[1].Source)

	want := []domain.LngLat{
		{-51.185, -29.175}, {-51.19, -29.18},
		{-51.19, -29.18}, {-51.188, -29.178}, {-51.185, -29.175},
	}
	assert.Equal(t, want, res.Polyline)
	assert.InDelta(t, res.Legs[0].DistanceKm+0.9, res.TotalDistanceKm, 1e-9)
}
