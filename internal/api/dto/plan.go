package dto

type ContainerRequest struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	FillLevel float64 `json:"fill_level"`
}

// The depot is fixed by configuration and cannot be set per request.
type PlanRequest struct {
	Containers []ContainerRequest `json:"containers"`
}

type AutoPlanRequest struct {
	Threshold *float64 `json:"threshold"`
}

type StopResponse struct {
	Order       int      `json:"order"`
	ContainerID *int     `json:"container_id"`
	Name        string   `json:"name"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	FillLevel   *float64 `json:"fill_level,omitempty"`
	FillStatus  string   `json:"fill_status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
}

type LegResponse struct {
	From           int     `json:"from"`
	To             int     `json:"to"`
	DistanceKm     float64 `json:"distance_km"`
	DurationMin    float64 `json:"duration_min"`
	Source         string  `json:"source"`
	FallbackReason string  `json:"fallback_reason,omitempty"`
}

type RouteResponse struct {
	Polyline         [][2]float64  `json:"polyline"`
	Legs             []LegResponse `json:"legs"`
	TotalDistanceKm  float64       `json:"total_distance_km"`
	TotalDurationMin float64       `json:"total_duration_min"`
	DistanceText     string        `json:"distance_text"`
	DurationText     string        `json:"duration_text"`
	FallbackLegs     int           `json:"fallback_legs"`
}

type PlanResponse struct {
	Stops          []StopResponse `json:"stops"`
	Route          RouteResponse  `json:"route"`
	ContainerIDs   []int          `json:"container_ids"`
	ContainerCount int            `json:"container_count"`
	FuelCost       float64        `json:"fuel_cost"`
	FuelCostText   string         `json:"fuel_cost_text"`
}
