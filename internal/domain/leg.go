package domain

// Where a LegResult's numbers came from.
type LegSource string

const (
	SourceProvider LegSource = "provider"
	SourceFallback LegSource = "fallback"
)

// Ordered (lng, lat) pair.
type LngLat [2]float64

// Routing data for a single leg.
//
// A LegResult is always usable: when Source is SourceFallback the polyline is
// the straight segment between the endpoints and FallbackReason explains why
// the provider result was rejected.
type LegResult struct {
	Polyline       []LngLat
	DistanceKm     float64
	DurationMin    float64
	Source         LegSource
	FallbackReason string
}

func (r LegResult) IsFallback() bool { return r.Source == SourceFallback }
