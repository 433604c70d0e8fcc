package services

import (
	"collection-route-service/internal/domain"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Navigation holds deep links that open a stored route in navigation apps.
type Navigation struct {
	GoogleMaps   string
	Waze         string
	Destinations []domain.Location
}

// NavigationLinks builds app links for a route that leaves depot, visits
// stops in order and returns to depot.
//
// The Google Maps link carries the full round trip. Waze accepts a single
// destination, so its link points at the first stop.
func NavigationLinks(depot domain.Location, stops []domain.Location) (Navigation, error) {
	if len(stops) == 0 {
		return Navigation{}, errors.New("navigation links: route has no stops")
	}
	if err := depot.Validate(); err != nil {
		return Navigation{}, fmt.Errorf("navigation links: depot: %w", err)
	}
	for _, s := range stops {
		if err := s.Validate(); err != nil {
			return Navigation{}, fmt.Errorf("navigation links: %w", err)
		}
	}

	waypoints := make([]string, 0, len(stops))
	for _, s := range stops {
		waypoints = append(waypoints, latLng(s))
	}

	q := url.Values{}
	q.Set("api", "1")
	q.Set("origin", latLng(depot))
	q.Set("destination", latLng(depot))
	q.Set("waypoints", strings.Join(waypoints, "|"))
	q.Set("travelmode", "driving")

	waze := url.Values{}
	waze.Set("ll", latLng(stops[0]))
	waze.Set("navigate", "yes")

	destinations := make([]domain.Location, 0, len(stops)+2)
	destinations = append(destinations, depot)
	destinations = append(destinations, stops...)
	destinations = append(destinations, depot)

	return Navigation{
		GoogleMaps:   "https://www.google.com/maps/dir/?" + q.Encode(),
		Waze:         "https://waze.com/ul?" + waze.Encode(),
		Destinations: destinations,
	}, nil
}

func latLng(l domain.Location) string {
	return fmt.Sprintf("%.6f,%.6f", l.Latitude, l.Longitude)
}
