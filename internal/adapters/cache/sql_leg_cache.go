package cache

import (
	"collection-route-service/internal/platform/obs"
	"collection-route-service/internal/ports"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

// SQLLegCache is a SQL-backed cache of routed legs keyed by coordinate pair.
// Rows older than TTL are treated as misses.
type SQLLegCache struct {
	DB  *sql.DB
	TTL time.Duration

	now func() time.Time
}

func NewSQLLegCache(db *sql.DB, ttl time.Duration) *SQLLegCache {
	return &SQLLegCache{DB: db, TTL: ttl, now: time.Now}
}

type legRow struct {
	DistanceMeters  float64   `db:"distance_meters"`
	DurationSeconds float64   `db:"duration_seconds"`
	Polyline        []byte    `db:"polyline"`
	CachedAt        time.Time `db:"cached_at"`
}

// Fetch a cached leg.
func (s *SQLLegCache) Get(ctx context.Context, key string) (_ ports.RoutedLeg, _ bool, err error) {
	defer obs.Time(ctx, "leg.cache.sql.Get")(&err)

	if s.DB == nil {
		return ports.RoutedLeg{}, false, errors.New("leg cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return ports.RoutedLeg{}, false, errors.New("get leg cache: key must not be empty")
	}

	var row legRow
	found, err := s.selectQuery(key).ScanStructContext(ctx, &row)
	if err != nil {
		return ports.RoutedLeg{}, false, fmt.Errorf("get leg cache: query leg_cache table: %w", err)
	}
	if !found || s.expired(row.CachedAt) {
		return ports.RoutedLeg{}, false, nil
	}

	leg := ports.RoutedLeg{DistanceMeters: row.DistanceMeters, DurationSeconds: row.DurationSeconds}
	if err := json.Unmarshal(row.Polyline, &leg.Coordinates); err != nil {
		return ports.RoutedLeg{}, false, fmt.Errorf("get leg cache: decode polyline: %w", err)
	}

	return leg, true, nil
}

// Store a routed leg, replacing any previous entry for the key.
func (s *SQLLegCache) Put(ctx context.Context, key string, leg ports.RoutedLeg) error {
	if s.DB == nil {
		return errors.New("leg cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert leg cache: key must not be empty")
	}

	q, err := s.upsertQuery(key, leg)
	if err != nil {
		return err
	}
	if _, err := q.Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("insert leg cache key=%q: %w", key, err)
	}

	return nil
}

func (s *SQLLegCache) builder() *goqu.Database {
	return goqu.New("postgres", s.DB)
}

func (s *SQLLegCache) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// A row cached longer than TTL ago is stale. A zero TTL never expires.
func (s *SQLLegCache) expired(cachedAt time.Time) bool {
	return s.TTL > 0 && s.clock().Sub(cachedAt) > s.TTL
}

func (s *SQLLegCache) selectQuery(key string) *goqu.SelectDataset {
	return s.builder().
		From("leg_cache").
		Select("distance_meters", "duration_seconds", "polyline", "cached_at").
		Where(goqu.C("leg_key").Eq(key))
}

func (s *SQLLegCache) upsertQuery(key string, leg ports.RoutedLeg) (*goqu.InsertDataset, error) {
	raw, err := json.Marshal(leg.Coordinates)
	if err != nil {
		return nil, fmt.Errorf("insert leg cache: encode polyline: %w", err)
	}

	return s.builder().
		Insert("leg_cache").
		Rows(goqu.Record{
			"leg_key":          key,
			"distance_meters":  leg.DistanceMeters,
			"duration_seconds": leg.DurationSeconds,
			"polyline":         string(raw),
			"cached_at":        s.clock().UTC(),
		}).
		OnConflict(goqu.DoUpdate("leg_key", goqu.Record{
			"distance_meters":  goqu.I("excluded.distance_meters"),
			"duration_seconds": goqu.I("excluded.duration_seconds"),
			"polyline":         goqu.I("excluded.polyline"),
			"cached_at":        goqu.I("excluded.cached_at"),
		})), nil
}
