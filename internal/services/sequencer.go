package services

import (
	"collection-route-service/internal/domain"
	"collection-route-service/internal/geo"
	"math"
)

// SequenceWaypoints orders containers into a tour with a greedy
// nearest-neighbor heuristic.
//
// The tour starts at depot, repeatedly moves to the closest unvisited
// container by planar distance over raw degrees, and closes at depot.
// Ties go to the container that appears first in the input, which makes the
// result fully deterministic for a given input order. It does not attempt
// tour improvement (e.g. 2-opt).
func SequenceWaypoints(depot domain.Location, containers []domain.Container) (domain.Tour, error) {
	if err := depot.Validate(); err != nil {
		return nil, domain.NewInvalidInput("depot: %v", err)
	}

	if len(containers) == 0 {
		return nil, domain.NewInvalidInput("container set must not be empty")
	}

	seen := make(map[int]struct{}, len(containers))
	for i, c := range containers {
		if err := c.Location().Validate(); err != nil {
			return nil, domain.NewInvalidInput("container %d at index %d: %v", c.ID, i, err)
		}
		if _, ok := seen[c.ID]; ok {
			return nil, domain.NewInvalidInput("container %d appears more than once", c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	tour := make(domain.Tour, 0, len(containers)+2)
	tour = append(tour, domain.Waypoint{Location: depot})

	visited := make([]bool, len(containers))
	current := depot

	for range containers {
		best := -1
		bestDist := math.Inf(1)

		// Strict < keeps the earliest candidate on ties.
		for j, c := range containers {
			if visited[j] {
				continue
			}
			d := geo.Planar(current.Latitude, current.Longitude, c.Latitude, c.Longitude)
			if d < bestDist {
				bestDist = d
				best = j
			}
		}

		visited[best] = true
		chosen := containers[best]
		id := chosen.ID
		tour = append(tour, domain.Waypoint{Location: chosen.Location(), ContainerID: &id})
		current = chosen.Location()
	}

	return append(tour, domain.Waypoint{Location: depot}), nil
}
