package handlers

import (
	"collection-route-service/internal/api/dto"
	"collection-route-service/internal/domain"
	"collection-route-service/internal/platform/obs"
	"collection-route-service/internal/ports"
	"collection-route-service/internal/services"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

type RouteHandler struct {
	Planner          *services.CollectionPlanner
	Recorder         *services.SavingsRecorder
	Routes           ports.RouteRepository
	Containers       ports.ContainerRepository
	DefaultThreshold float64
}

// Plan sequences the containers in the request body from the configured
// depot and routes the tour.
func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	containers := make([]domain.Container, 0, len(req.Containers))
	for _, c := range req.Containers {
		name := c.Name
		if name == "" {
			name = "container " + strconv.Itoa(c.ID)
		}
		containers = append(containers, domain.Container{
			ID:        c.ID,
			Name:      name,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
			FillLevel: c.FillLevel,
			Active:    true,
		})
	}

	plan, err := h.Planner.Plan(r.Context(), containers)
	if err != nil {
		writeServiceError(w, r, "plan route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(plan))
}

// PlanAuto plans a route over every registry container at or above the
// requested fill threshold.
func (h *RouteHandler) PlanAuto(w http.ResponseWriter, r *http.Request) {
	var req dto.AutoPlanRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	threshold := h.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 100 {
		writeError(w, r, http.StatusBadRequest, "threshold must be between 0 and 100")
		return
	}

	plan, err := h.Planner.PlanNeedingCollection(r.Context(), threshold)
	if err != nil {
		writeServiceError(w, r, "plan needing collection", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(plan))
}

// Record persists a completed route together with its savings.
func (h *RouteHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordRouteRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if !finiteNonNegative(req.TotalDistanceKm) || !finiteNonNegative(req.TotalDurationMin) {
		writeError(w, r, http.StatusBadRequest, "totals must be finite and non-negative")
		return
	}
	if len(req.ContainerIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "container_ids is required")
		return
	}
	savings, msg := toSavings(req.Savings)
	if msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	svcReq := services.RecordRouteRequest{
		Route: domain.RouteResult{
			Polyline:         toLngLats(req.Polyline),
			TotalDistanceKm:  req.TotalDistanceKm,
			TotalDurationMin: req.TotalDurationMin,
		},
		ContainerIDs: req.ContainerIDs,
		Savings:      savings,
	}
	if req.RouteDate != nil {
		svcReq.RouteDate = *req.RouteDate
	}

	id, err := h.Recorder.RecordRoute(r.Context(), svcReq)
	if err != nil {
		var perr *domain.PersistenceError
		if errors.As(err, &perr) && perr.RouteID > 0 {
			zap.L().Error("record savings failed; route kept",
				zap.String("req_id", obs.RequestID(r.Context())),
				zap.Int64("route_id", perr.RouteID),
				zap.Error(err),
			)
			writeJSON(w, r, http.StatusInternalServerError, map[string]any{
				"error":    "savings could not be recorded",
				"route_id": perr.RouteID,
			})
			return
		}
		writeServiceError(w, r, "record route", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.RecordRouteResponse{RouteID: id})
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.Routes.ListRoutes(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, "list routes", err)
		return
	}

	res := dto.ListRoutesResponse{Routes: make([]dto.RouteRecordResponse, 0, len(records))}
	for _, rec := range records {
		out := toRouteRecordResponse(rec)
		out.Polyline = nil
		res.Routes = append(res.Routes, out)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := h.Routes.GetRoute(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toRouteRecordResponse(rec))
}

func (h *RouteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	next := domain.RouteStatus(req.Status)
	if !next.Valid() {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	if err := h.Routes.UpdateRouteStatus(r.Context(), id, next); err != nil {
		writeServiceError(w, r, "update route status", err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"id": id, "status": next})
}

// GPX serves the stored route geometry as a GPX track download.
func (h *RouteHandler) GPX(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := h.Routes.GetRoute(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get route", err)
		return
	}

	doc, err := services.RenderGPX(rec)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "route has no geometry")
		return
	}

	w.Header().Set("Content-Type", "application/gpx+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"route-%d.gpx\"", id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// Delete removes a route and its savings record.
func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Routes.DeleteRoute(r.Context(), id); err != nil {
		writeServiceError(w, r, "delete route", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Navigation returns Google Maps and Waze links for a stored route, built
// from the depot and the registry coordinates of its containers in visiting
// order.
func (h *RouteHandler) Navigation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := h.Routes.GetRoute(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get route", err)
		return
	}

	containers, err := h.Containers.ListByIDs(r.Context(), rec.ContainerIDs)
	if err != nil {
		writeServiceError(w, r, "list route containers", err)
		return
	}
	byID := make(map[int]domain.Container, len(containers))
	for _, c := range containers {
		byID[c.ID] = c
	}

	stops := make([]domain.Location, 0, len(rec.ContainerIDs))
	for _, cid := range rec.ContainerIDs {
		if c, ok := byID[cid]; ok {
			stops = append(stops, c.Location())
		}
	}

	nav, err := services.NavigationLinks(h.Planner.Depot, stops)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "route has no known stops")
		return
	}

	res := dto.NavigationResponse{
		RouteID:      id,
		GoogleMaps:   nav.GoogleMaps,
		Waze:         nav.Waze,
		Destinations: make([]dto.DestinationResponse, 0, len(nav.Destinations)),
	}
	for _, d := range nav.Destinations {
		res.Destinations = append(res.Destinations, dto.DestinationResponse{
			Name:      d.Label,
			Latitude:  d.Latitude,
			Longitude: d.Longitude,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toPlanResponse(plan *services.CollectionPlan) dto.PlanResponse {
	byID := make(map[int]domain.Container, len(plan.Containers))
	for _, c := range plan.Containers {
		byID[c.ID] = c
	}

	stops := make([]dto.StopResponse, 0, len(plan.Tour))
	for i, wp := range plan.Tour {
		stop := dto.StopResponse{
			Order:       i,
			ContainerID: wp.ContainerID,
			Name:        wp.Label,
			Latitude:    wp.Latitude,
			Longitude:   wp.Longitude,
		}
		if c, ok := byID[derefID(wp.ContainerID)]; ok && !wp.IsDepot() {
			level := c.FillLevel
			stop.FillLevel = &level
			stop.FillStatus = string(domain.ClassifyFill(level))
			stop.Priority = string(domain.CollectionPriority(level))
		}
		stops = append(stops, stop)
	}

	legs := make([]dto.LegResponse, 0, len(plan.Route.Legs))
	for i, l := range plan.Route.Legs {
		legs = append(legs, dto.LegResponse{
			From:           i,
			To:             i + 1,
			DistanceKm:     l.DistanceKm,
			DurationMin:    l.DurationMin,
			Source:         string(l.Source),
			FallbackReason: l.FallbackReason,
		})
	}

	ids := plan.Tour.ContainerIDs()
	return dto.PlanResponse{
		Stops: stops,
		Route: dto.RouteResponse{
			Polyline:         fromLngLats(plan.Route.Polyline),
			Legs:             legs,
			TotalDistanceKm:  plan.Route.TotalDistanceKm,
			TotalDurationMin: plan.Route.TotalDurationMin,
			DistanceText:     plan.Route.DistanceText,
			DurationText:     plan.Route.DurationText,
			FallbackLegs:     plan.Route.FallbackLegs(),
		},
		ContainerIDs:   ids,
		ContainerCount: len(ids),
		FuelCost:       plan.FuelCost,
		FuelCostText:   fmt.Sprintf("%.2f", plan.FuelCost),
	}
}

func toRouteRecordResponse(rec domain.RouteRecord) dto.RouteRecordResponse {
	ids := rec.ContainerIDs
	if ids == nil {
		ids = []int{}
	}
	return dto.RouteRecordResponse{
		ID:               rec.ID,
		RouteDate:        rec.RouteDate,
		TotalDistanceKm:  rec.TotalDistanceKm,
		TotalDurationMin: rec.TotalDurationMin,
		ContainerCount:   rec.ContainerCount,
		ContainerIDs:     ids,
		Polyline:         fromLngLats(rec.Polyline),
		Status:           string(rec.Status),
		CreatedAt:        rec.CreatedAt,
	}
}

// toSavings checks that every savings figure is present and finite. It
// returns a client-facing message when one is not.
func toSavings(req *dto.SavingsRequest) (domain.Savings, string) {
	if req == nil {
		return domain.Savings{}, "savings is required"
	}

	fields := []struct {
		name string
		v    *float64
	}{
		{"fuel_saved_l", req.FuelSavedL},
		{"co2_saved_kg", req.CO2SavedKg},
		{"cost_saved", req.CostSaved},
		{"time_saved_min", req.TimeSavedMin},
		{"efficiency_gain_pct", req.EfficiencyGainPct},
	}
	for _, f := range fields {
		if f.v == nil {
			return domain.Savings{}, "savings." + f.name + " is required"
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) {
			return domain.Savings{}, "savings." + f.name + " must be finite"
		}
	}

	return domain.Savings{
		FuelSavedL:        *req.FuelSavedL,
		CO2SavedKg:        *req.CO2SavedKg,
		CostSaved:         *req.CostSaved,
		TimeSavedMin:      *req.TimeSavedMin,
		EfficiencyGainPct: *req.EfficiencyGainPct,
	}, ""
}

func derefID(id *int) int {
	if id == nil {
		return 0
	}
	return *id
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
