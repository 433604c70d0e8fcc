package domain

// A sensor-equipped waste container known to the registry.
// FillLevel is a percentage in [0, 100] reported by the container's sensor.
type Container struct {
	ID        int
	UID       string
	Name      string
	Latitude  float64
	Longitude float64
	FillLevel float64
	Active    bool
}

func (c Container) Location() Location {
	return Location{Latitude: c.Latitude, Longitude: c.Longitude, Label: c.Name}
}

type FillStatus string

const (
	FillFull   FillStatus = "full"
	FillHigh   FillStatus = "high"
	FillMedium FillStatus = "medium"
	FillLow    FillStatus = "low"
	FillEmpty  FillStatus = "empty"
)

func ClassifyFill(level float64) FillStatus {
	switch {
	case level >= 90:
		return FillFull
	case level >= 70:
		return FillHigh
	case level >= 40:
		return FillMedium
	case level >= 20:
		return FillLow
	default:
		return FillEmpty
	}
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Collection priority used when a container is already above the threshold.
func CollectionPriority(level float64) Priority {
	if level >= 90 {
		return PriorityHigh
	}
	return PriorityMedium
}
