package dto

import "time"

type SavingsTotalsResponse struct {
	Routes               int     `json:"routes"`
	DistanceKm           float64 `json:"distance_km"`
	FuelSavedL           float64 `json:"fuel_saved_l"`
	CO2SavedKg           float64 `json:"co2_saved_kg"`
	CostSaved            float64 `json:"cost_saved"`
	TimeSavedMin         float64 `json:"time_saved_min"`
	AvgEfficiencyGainPct float64 `json:"avg_efficiency_gain_pct"`
}

type PeriodSavingsResponse struct {
	Period time.Time `json:"period"`
	SavingsTotalsResponse
}

type ListPeriodSavingsResponse struct {
	Granularity string                  `json:"granularity"`
	Periods     []PeriodSavingsResponse `json:"periods"`
}
