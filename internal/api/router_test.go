package api

import (
	"collection-route-service/internal/adapters/routing"
	"collection-route-service/internal/domain"
	"collection-route-service/internal/services"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRoutes struct {
	mu         sync.Mutex
	routes     map[int64]domain.RouteRecord
	savings    map[int64]domain.SavingsRecord
	nextID     int64
	savingsErr error
}

func newMemoryRoutes() *memoryRoutes {
	return &memoryRoutes{routes: map[int64]domain.RouteRecord{}, savings: map[int64]domain.SavingsRecord{}}
}

func (m *memoryRoutes) InsertRoute(ctx context.Context, r domain.RouteRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = time.Now()
	m.routes[r.ID] = r
	return r.ID, nil
}

func (m *memoryRoutes) InsertSavings(ctx context.Context, s domain.SavingsRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.savingsErr != nil {
		return m.savingsErr
	}
	m.savings[s.RouteID] = s
	return nil
}

func (m *memoryRoutes) ListRoutes(ctx context.Context, limit int) ([]domain.RouteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.RouteRecord, 0, len(m.routes))
	for id := m.nextID; id > 0 && (limit <= 0 || len(out) < limit); id-- {
		if r, ok := m.routes[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRoutes) GetRoute(ctx context.Context, id int64) (domain.RouteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routes[id]
	if !ok {
		return domain.RouteRecord{}, domain.ErrRouteNotFound
	}
	return r, nil
}

func (m *memoryRoutes) UpdateRouteStatus(ctx context.Context, id int64, next domain.RouteStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routes[id]
	if !ok {
		return domain.ErrRouteNotFound
	}
	if !r.Status.CanTransitionTo(next) {
		return &domain.StatusTransitionError{From: r.Status, To: next}
	}
	r.Status = next
	m.routes[id] = r
	return nil
}

func (m *memoryRoutes) DeleteRoute(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[id]; !ok {
		return domain.ErrRouteNotFound
	}
	delete(m.routes, id)
	delete(m.savings, id)
	return nil
}

func (m *memoryRoutes) SumSavings(ctx context.Context) (domain.SavingsTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var t domain.SavingsTotals
	for id, s := range m.savings {
		t.Routes++
		t.DistanceKm += m.routes[id].TotalDistanceKm
		t.FuelSavedL += s.FuelSavedL
		t.CostSaved += s.CostSaved
		t.EfficiencyGainPct += s.EfficiencyGainPct
	}
	if t.Routes > 0 {
		t.EfficiencyGainPct /= float64(t.Routes)
	}
	return t, nil
}

func (m *memoryRoutes) SumSavingsByPeriod(ctx context.Context, g domain.Granularity) ([]domain.PeriodSavings, error) {
	t, _ := m.SumSavings(ctx)
	return []domain.PeriodSavings{{Period: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), SavingsTotals: t}}, nil
}

type memoryContainers []domain.Container

func (m memoryContainers) ListNeedingCollection(ctx context.Context, threshold float64) ([]domain.Container, error) {
	var out []domain.Container
	for _, c := range m {
		if c.Active && c.FillLevel >= threshold {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m memoryContainers) ListByIDs(ctx context.Context, ids []int) ([]domain.Container, error) {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Container
	for _, c := range m {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func newTestRouter(t *testing.T) (http.Handler, *memoryRoutes) {
	t.Helper()

	routes := newMemoryRoutes()
	containers := memoryContainers{
		{ID: 1, UID: "C-1", Name: "Praça", Latitude: -29.18, Longitude: -51.19, FillLevel: 92, Active: true},
		{ID: 2, UID: "C-2", Name: "Centro", Latitude: -29.16, Longitude: -51.17, FillLevel: 78, Active: true},
		{ID: 3, UID: "C-3", Name: "Parque", Latitude: -29.17, Longitude: -51.20, FillLevel: 30, Active: true},
	}

	planner := &services.CollectionPlanner{
		Depot:              domain.DefaultDepot,
		Aggregator:         services.NewRouteAggregator(services.NewRoutingDataProvider(routing.NewMockRouteSource()), 2),
		Containers:         containers,
		FuelLitersPer100Km: 25,
		FuelPricePerLiter:  5.5,
	}

	return NewRouter(Dependencies{
		Planner:          planner,
		Recorder:         services.NewSavingsRecorder(routes),
		Routes:           routes,
		Containers:       containers,
		DefaultThreshold: 75,
	}), routes
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthSetsRequestID(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodDelete, "/routes/plan", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestContainersNeedingCollection(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/containers/collection", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["containers"], 2)

	rec = do(t, h, http.MethodGet, "/containers/collection?threshold=20", "")
	assert.Len(t, decode(t, rec)["containers"], 3)

	rec = do(t, h, http.MethodGet, "/containers/collection?threshold=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanRoute(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/routes/plan", `{
		"containers": [
			{"id": 2, "latitude": -29.16, "longitude": -51.17, "fill_level": 80},
			{"id": 1, "latitude": -29.18, "longitude": -51.19, "fill_level": 95}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, []any{1.0, 2.0}, body["container_ids"])
	assert.Len(t, body["stops"], 4)

	route := body["route"].(map[string]any)
	assert.Len(t, route["legs"], 3)
	assert.Equal(t, 3.0, route["fallback_legs"])
	assert.Len(t, route["polyline"], 6)
	assert.Contains(t, route["distance_text"], " km")
}

func TestPlanRouteRejectsBadInput(t *testing.T) {
	h, _ := newTestRouter(t)

	cases := map[string]string{
		"empty set":     `{"containers": []}`,
		"unknown field": `{"containers": [], "trucks": 3}`,
		"bad json":      `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/routes/plan", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPlanRouteDepotIsNotCallerSupplied(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/routes/plan", `{
		"depot": {"name": "elsewhere", "latitude": 10, "longitude": 10},
		"containers": [{"id": 1, "latitude": -29.18, "longitude": -51.19}]
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/routes/plan", `{"containers": [{"id": 1, "latitude": -29.18, "longitude": -51.19}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stops := decode(t, rec)["stops"].([]any)
	first := stops[0].(map[string]any)
	last := stops[len(stops)-1].(map[string]any)
	for _, stop := range []map[string]any{first, last} {
		assert.Equal(t, domain.DefaultDepot.Label, stop["name"])
		assert.Equal(t, domain.DefaultDepot.Latitude, stop["latitude"])
		assert.Equal(t, domain.DefaultDepot.Longitude, stop["longitude"])
		assert.Nil(t, stop["container_id"])
	}
}

func TestPlanAuto(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/routes/plan/auto", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2.0, decode(t, rec)["container_count"])

	rec = do(t, h, http.MethodPost, "/routes/plan/auto", `{"threshold": 99}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordRouteLifecycle(t *testing.T) {
	h, routes := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/routes", `{
		"route_date": "2026-03-02T08:00:00Z",
		"total_distance_km": 12.5,
		"total_duration_min": 31.4,
		"polyline": [[-51.185, -29.175], [-51.19, -29.18]],
		"container_ids": [1, 2],
		"savings": {"fuel_saved_l": 2.5, "co2_saved_kg": 6.6, "cost_saved": 13.75, "time_saved_min": 8, "efficiency_gain_pct": 20}
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1.0, decode(t, rec)["route_id"])

	stored := routes.routes[1]
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Equal(t, 31, stored.TotalDurationMin)
	assert.Equal(t, int64(1), routes.savings[1].RouteID)

	rec = do(t, h, http.MethodGet, "/routes/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", decode(t, rec)["status"])

	rec = do(t, h, http.MethodGet, "/routes?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["routes"], 1)

	rec = do(t, h, http.MethodGet, "/routes/1/gpx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/gpx+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<trkpt")

	rec = do(t, h, http.MethodPatch, "/routes/1/status", `{"status": "in_progress"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/savings/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode(t, rec)
	assert.Equal(t, 1.0, summary["routes"])
	assert.Equal(t, 12.5, summary["distance_km"])

	rec = do(t, h, http.MethodGet, "/savings/periods?granularity=day", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "day", decode(t, rec)["granularity"])
}

func TestRecordRouteSavingsFailureKeepsRoute(t *testing.T) {
	h, routes := newTestRouter(t)
	routes.savingsErr = errors.New("disk full")

	rec := do(t, h, http.MethodPost, "/routes", `{"total_distance_km": 3, "total_duration_min": 9, "container_ids": [1],
		"savings": {"fuel_saved_l": 1, "co2_saved_kg": 2.6, "cost_saved": 5.5, "time_saved_min": 4, "efficiency_gain_pct": 10}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1.0, decode(t, rec)["route_id"])
	assert.Len(t, routes.routes, 1)
	assert.Empty(t, routes.savings)
}

func TestRouteStatusTransitions(t *testing.T) {
	h, routes := newTestRouter(t)
	routes.routes[7] = domain.RouteRecord{ID: 7, Status: domain.StatusPlanned}
	routes.nextID = 7

	rec := do(t, h, http.MethodPatch, "/routes/7/status", `{"status": "in_progress"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.StatusInProgress, routes.routes[7].Status)

	rec = do(t, h, http.MethodPatch, "/routes/7/status", `{"status": "paused"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPatch, "/routes/99/status", `{"status": "cancelled"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/routes/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSavingsPeriodsRejectsUnknownGranularity(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/savings/periods?granularity=week", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordRouteRequiresEverySavingsField(t *testing.T) {
	h, routes := newTestRouter(t)

	cases := map[string]string{
		"no savings":    `{"total_distance_km": 5, "total_duration_min": 10, "container_ids": [1]}`,
		"null savings":  `{"total_distance_km": 5, "total_duration_min": 10, "container_ids": [1], "savings": null}`,
		"missing co2":   `{"total_distance_km": 5, "total_duration_min": 10, "container_ids": [1], "savings": {"fuel_saved_l": 1, "cost_saved": 2, "time_saved_min": 3, "efficiency_gain_pct": 4}}`,
		"missing gain":  `{"total_distance_km": 5, "total_duration_min": 10, "container_ids": [1], "savings": {"fuel_saved_l": 1, "co2_saved_kg": 2, "cost_saved": 2, "time_saved_min": 3}}`,
		"empty savings": `{"total_distance_km": 5, "total_duration_min": 10, "container_ids": [1], "savings": {}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/routes", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode(t, rec)["error"], "savings")
		})
	}

	assert.Empty(t, routes.routes)
	assert.Empty(t, routes.savings)

	rec := do(t, h, http.MethodPost, "/routes", `{"total_distance_km": 5, "total_duration_min": 10, "container_ids": [1],
		"savings": {"fuel_saved_l": 0, "co2_saved_kg": 0, "cost_saved": 0, "time_saved_min": 0, "efficiency_gain_pct": 0}}`)
	assert.Equal(t, http.StatusCreated, rec.Code, "explicit zeros are valid savings")
}

func TestDeleteRoute(t *testing.T) {
	h, routes := newTestRouter(t)
	routes.routes[3] = domain.RouteRecord{ID: 3, Status: domain.StatusCompleted}
	routes.savings[3] = domain.SavingsRecord{RouteID: 3}
	routes.nextID = 3

	rec := do(t, h, http.MethodDelete, "/routes/3", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, routes.routes)
	assert.Empty(t, routes.savings)

	rec = do(t, h, http.MethodGet, "/routes/3", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/routes/3", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouteNavigationLinks(t *testing.T) {
	h, routes := newTestRouter(t)
	routes.routes[4] = domain.RouteRecord{ID: 4, ContainerIDs: []int{2, 1}, Status: domain.StatusCompleted}
	routes.routes[5] = domain.RouteRecord{ID: 5, ContainerIDs: []int{99}, Status: domain.StatusCompleted}
	routes.nextID = 5

	rec := do(t, h, http.MethodGet, "/routes/4/navigation", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Contains(t, body["google_maps"], "https://www.google.com/maps/dir/?")
	assert.Contains(t, body["google_maps"], "waypoints=-29.160000%2C-51.170000%7C-29.180000%2C-51.190000")
	assert.Contains(t, body["waze"], "ll=-29.160000%2C-51.170000")

	destinations := body["destinations"].([]any)
	require.Len(t, destinations, 4)
	assert.Equal(t, "Centro", destinations[1].(map[string]any)["name"])
	assert.Equal(t, "Praça", destinations[2].(map[string]any)["name"])

	rec = do(t, h, http.MethodGet, "/routes/5/navigation", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodGet, "/routes/42/navigation", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
