package routing

import (
	"collection-route-service/internal/domain"
	"collection-route-service/internal/platform/obs"
	"collection-route-service/internal/ports"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// OSRMRouteSource implements RouteSource against an OSRM-compatible
// /route/v1 endpoint.
//
// Successful responses are stored in the optional leg cache; cache failures
// are logged and never fail the request.
//
// The source is safe for concurrent use.
type OSRMRouteSource struct {
	session     *http.Client
	baseURL     string
	profile     string
	userAgent   string
	maxAttempts int
	cache       ports.LegCache
}

type Options struct {
	BaseURL     string
	Profile     string
	Timeout     time.Duration
	// Total attempts per leg; values below 1 mean a single attempt.
	MaxAttempts int
	UserAgent   string
	Cache       ports.LegCache
}

func NewOSRMRouteSource(opts Options) (*OSRMRouteSource, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("osrm route source: base url is empty")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("osrm route source: parse base url: %w", err)
	}

	if opts.Profile == "" {
		opts.Profile = "driving"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	return &OSRMRouteSource{
		session:     &http.Client{Timeout: opts.Timeout},
		baseURL:     opts.BaseURL,
		profile:     opts.Profile,
		userAgent:   opts.UserAgent,
		maxAttempts: opts.MaxAttempts,
		cache:       opts.Cache,
	}, nil
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Type        string      `json:"type"`
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// LegKey builds the cache key for a leg from coordinates rounded to 6 decimals.
func LegKey(from, to domain.Location) string {
	return fmt.Sprintf("%.6f,%.6f;%.6f,%.6f", from.Longitude, from.Latitude, to.Longitude, to.Latitude)
}

func (o *OSRMRouteSource) Route(
	ctx context.Context,
	from domain.Location,
	to domain.Location,
) (_ ports.RoutedLeg, err error) {
	defer obs.Time(ctx, "osrm.Route")(&err)

	key := LegKey(from, to)

	// Check the leg cache before issuing the external call.
	if o.cache != nil {
		leg, ok, err := o.cache.Get(ctx, key)
		if err != nil {
			zap.L().Warn("leg cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return leg, nil
		}
	}

	leg, err := o.fetchRoute(ctx, from, to)
	if err != nil {
		return ports.RoutedLeg{}, err
	}

	if o.cache != nil {
		if err := o.cache.Put(ctx, key, leg); err != nil {
			zap.L().Warn("leg cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return leg, nil
}

func (o *OSRMRouteSource) endpoint(from, to domain.Location) string {
	return fmt.Sprintf(
		"%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson",
		o.baseURL, o.profile,
		from.Longitude, from.Latitude,
		to.Longitude, to.Latitude,
	)
}

func (o *OSRMRouteSource) fetchRoute(ctx context.Context, from, to domain.Location) (ports.RoutedLeg, error) {
	endpoint := o.endpoint(from, to)

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, endpoint)
	})
	if err != nil {
		return ports.RoutedLeg{}, fmt.Errorf("route request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RoutedLeg{}, fmt.Errorf("decode route response: %w", err)
	}

	return decoded.toLeg()
}

// toLeg validates a decoded response and extracts the first route.
func (r routeResponse) toLeg() (ports.RoutedLeg, error) {
	if r.Code != "Ok" {
		if r.Message != "" {
			return ports.RoutedLeg{}, fmt.Errorf("routing service code %q: %s", r.Code, r.Message)
		}
		return ports.RoutedLeg{}, fmt.Errorf("routing service code %q", r.Code)
	}

	if len(r.Routes) == 0 {
		return ports.RoutedLeg{}, errors.New("routing service returned no routes")
	}

	route := r.Routes[0]
	if route.Geometry.Type != "LineString" {
		return ports.RoutedLeg{}, fmt.Errorf("unexpected geometry type %q", route.Geometry.Type)
	}
	if len(route.Geometry.Coordinates) == 0 {
		return ports.RoutedLeg{}, errors.New("route geometry has no coordinates")
	}
	if !validMetric(route.Distance) || !validMetric(route.Duration) {
		return ports.RoutedLeg{}, fmt.Errorf("invalid route metrics: distance=%v duration=%v", route.Distance, route.Duration)
	}

	coords := make([]domain.LngLat, 0, len(route.Geometry.Coordinates))
	for i, c := range route.Geometry.Coordinates {
		if len(c) < 2 || !finite(c[0]) || !finite(c[1]) {
			return ports.RoutedLeg{}, fmt.Errorf("invalid coordinate at index %d: %v", i, c)
		}
		coords = append(coords, domain.LngLat{c[0], c[1]})
	}

	return ports.RoutedLeg{
		Coordinates:     coords,
		DistanceMeters:  route.Distance,
		DurationSeconds: route.Duration,
	}, nil
}

func validMetric(f float64) bool { return finite(f) && f >= 0 }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
