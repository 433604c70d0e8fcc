package api

import (
	"collection-route-service/internal/api/handlers"
	"collection-route-service/internal/ports"
	"collection-route-service/internal/services"
	"net/http"
)

type Dependencies struct {
	Planner          *services.CollectionPlanner
	Recorder         *services.SavingsRecorder
	Routes           ports.RouteRepository
	Containers       ports.ContainerRepository
	DefaultThreshold float64
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	containerHandler := &handlers.ContainerHandler{
		Repo:             deps.Containers,
		DefaultThreshold: deps.DefaultThreshold,
	}
	routeHandler := &handlers.RouteHandler{
		Planner:          deps.Planner,
		Recorder:         deps.Recorder,
		Routes:           deps.Routes,
		Containers:       deps.Containers,
		DefaultThreshold: deps.DefaultThreshold,
	}
	savingsHandler := &handlers.SavingsHandler{Routes: deps.Routes}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("GET /containers/collection", containerHandler.NeedingCollection)

	mux.HandleFunc("POST /routes/plan", routeHandler.Plan)
	mux.HandleFunc("POST /routes/plan/auto", routeHandler.PlanAuto)
	mux.HandleFunc("POST /routes", routeHandler.Record)
	mux.HandleFunc("GET /routes", routeHandler.List)
	mux.HandleFunc("GET /routes/{id}", routeHandler.Get)
	mux.HandleFunc("DELETE /routes/{id}", routeHandler.Delete)
	mux.HandleFunc("PATCH /routes/{id}/status", routeHandler.UpdateStatus)
	mux.HandleFunc("GET /routes/{id}/gpx", routeHandler.GPX)
	mux.HandleFunc("GET /routes/{id}/navigation", routeHandler.Navigation)

	mux.HandleFunc("GET /savings/summary", savingsHandler.Summary)
	mux.HandleFunc("GET /savings/periods", savingsHandler.Periods)

	return requestIDMiddleware(loggingMiddleware(mux))
}
