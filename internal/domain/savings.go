package domain

import "time"

// Caller-computed savings of an optimized route versus the naive baseline.
type Savings struct {
	FuelSavedL        float64
	CO2SavedKg        float64
	CostSaved         float64
	TimeSavedMin      float64
	EfficiencyGainPct float64
}

// Persisted savings, 1:1 with a RouteRecord.
type SavingsRecord struct {
	RouteID int64
	Savings
}

// Sums over all savings records.
type SavingsTotals struct {
	Routes            int
	DistanceKm        float64
	FuelSavedL        float64
	CO2SavedKg        float64
	CostSaved         float64
	TimeSavedMin      float64
	EfficiencyGainPct float64 // average, not sum
}

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

func (g Granularity) Valid() bool {
	return g == GranularityDay || g == GranularityMonth || g == GranularityYear
}

// Savings totals for one period bucket.
type PeriodSavings struct {
	Period time.Time
	SavingsTotals
}
