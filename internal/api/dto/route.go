package dto

import "time"

// All savings fields are required; pointers tell a missing field from zero.
type SavingsRequest struct {
	FuelSavedL        *float64 `json:"fuel_saved_l"`
	CO2SavedKg        *float64 `json:"co2_saved_kg"`
	CostSaved         *float64 `json:"cost_saved"`
	TimeSavedMin      *float64 `json:"time_saved_min"`
	EfficiencyGainPct *float64 `json:"efficiency_gain_pct"`
}

type RecordRouteRequest struct {
	RouteDate        *time.Time      `json:"route_date"`
	TotalDistanceKm  float64         `json:"total_distance_km"`
	TotalDurationMin float64         `json:"total_duration_min"`
	Polyline         [][2]float64    `json:"polyline"`
	ContainerIDs     []int           `json:"container_ids"`
	Savings          *SavingsRequest `json:"savings"`
}

type RecordRouteResponse struct {
	RouteID int64 `json:"route_id"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type RouteRecordResponse struct {
	ID               int64        `json:"id"`
	RouteDate        time.Time    `json:"route_date"`
	TotalDistanceKm  float64      `json:"total_distance_km"`
	TotalDurationMin int          `json:"total_duration_min"`
	ContainerCount   int          `json:"container_count"`
	ContainerIDs     []int        `json:"container_ids"`
	Polyline         [][2]float64 `json:"polyline,omitempty"`
	Status           string       `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
}

type ListRoutesResponse struct {
	Routes []RouteRecordResponse `json:"routes"`
}

type DestinationResponse struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type NavigationResponse struct {
	RouteID      int64                 `json:"route_id"`
	GoogleMaps   string                `json:"google_maps"`
	Waze         string                `json:"waze"`
	Destinations []DestinationResponse `json:"destinations"`
}
