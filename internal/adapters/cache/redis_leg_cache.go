package cache

import (
	"collection-route-service/internal/platform/obs"
	"collection-route-service/internal/ports"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "leg:"

// RedisLegCache shares routed legs between service instances.
type RedisLegCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisLegCache(client redis.UniversalClient, ttl time.Duration) *RedisLegCache {
	return &RedisLegCache{client: client, ttl: ttl}
}

type redisLeg struct {
	Coordinates     [][2]float64 `json:"coordinates"`
	DistanceMeters  float64      `json:"distance_meters"`
	DurationSeconds float64      `json:"duration_seconds"`
}

func (r *RedisLegCache) Get(ctx context.Context, key string) (_ ports.RoutedLeg, _ bool, err error) {
	defer obs.Time(ctx, "leg.cache.redis.Get")(&err)

	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.RoutedLeg{}, false, nil
	}
	if err != nil {
		return ports.RoutedLeg{}, false, fmt.Errorf("get redis leg cache: %w", err)
	}

	var decoded redisLeg
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ports.RoutedLeg{}, false, fmt.Errorf("get redis leg cache: decode: %w", err)
	}

	leg := ports.RoutedLeg{
		DistanceMeters:  decoded.DistanceMeters,
		DurationSeconds: decoded.DurationSeconds,
	}
	for _, c := range decoded.Coordinates {
		leg.Coordinates = append(leg.Coordinates, c)
	}
	return leg, true, nil
}

func (r *RedisLegCache) Put(ctx context.Context, key string, leg ports.RoutedLeg) error {
	enc := redisLeg{
		Coordinates:     make([][2]float64, 0, len(leg.Coordinates)),
		DistanceMeters:  leg.DistanceMeters,
		DurationSeconds: leg.DurationSeconds,
	}
	for _, c := range leg.Coordinates {
		enc.Coordinates = append(enc.Coordinates, c)
	}

	raw, err := json.Marshal(enc)
	if err != nil {
		return fmt.Errorf("put redis leg cache: encode: %w", err)
	}

	if err := r.client.Set(ctx, redisKeyPrefix+key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("put redis leg cache: %w", err)
	}
	return nil
}
