package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process-wide settings read from the environment.
type Config struct {
	Env            string
	Port           string
	DatabaseURL    string
	MigrationsPath string
	SeedPath       string

	RoutingBaseURL     string
	RoutingProfile     string
	RoutingTimeout     time.Duration
	RoutingMaxAttempts int
	LegConcurrency     int

	LegCache    string
	LegCacheTTL time.Duration
	RedisAddr   string

	DepotName string
	DepotLat  float64
	DepotLng  float64

	FillThreshold      float64
	FuelLitersPer100Km float64
	FuelPricePerLiter  float64
}

// LoadDotEnv loads a .env file when present. A missing file is not an error;
// it returns false so callers can log that environment variables are used as-is.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Load reads the configuration from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Env:            Get("APP_ENV", "development"),
		Port:           Get("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: Get("MIGRATIONS_PATH", ""),
		SeedPath:       Get("SEED_PATH", "data/seeds/containers.json"),
		RoutingBaseURL: strings.TrimRight(Get("ROUTING_BASE_URL", "https://router.project-osrm.org"), "/"),
		RoutingProfile: Get("ROUTING_PROFILE", "driving"),
		LegCache:       strings.ToLower(Get("LEG_CACHE", "memory")),
		RedisAddr:      Get("REDIS_ADDR", "localhost:6379"),
		DepotName:      Get("DEPOT_NAME", "Depot"),
	}

	var err error
	if cfg.RoutingTimeout, err = getDuration("ROUTING_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.LegCacheTTL, err = getDuration("LEG_CACHE_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RoutingMaxAttempts, err = getInt("ROUTING_MAX_ATTEMPTS", 1); err != nil {
		return Config{}, err
	}
	if cfg.LegConcurrency, err = getInt("LEG_CONCURRENCY", 4); err != nil {
		return Config{}, err
	}
	if cfg.DepotLat, err = getFloat("DEPOT_LAT", -29.1750); err != nil {
		return Config{}, err
	}
	if cfg.DepotLng, err = getFloat("DEPOT_LNG", -51.1850); err != nil {
		return Config{}, err
	}
	if cfg.FillThreshold, err = getFloat("FILL_THRESHOLD", 75); err != nil {
		return Config{}, err
	}
	if cfg.FuelLitersPer100Km, err = getFloat("FUEL_L_PER_100KM", 25); err != nil {
		return Config{}, err
	}
	if cfg.FuelPricePerLiter, err = getFloat("FUEL_PRICE_PER_L", 5.50); err != nil {
		return Config{}, err
	}

	if cfg.RoutingMaxAttempts < 1 {
		return Config{}, fmt.Errorf("config: ROUTING_MAX_ATTEMPTS must be >= 1, got %d", cfg.RoutingMaxAttempts)
	}
	if cfg.LegConcurrency < 1 {
		return Config{}, fmt.Errorf("config: LEG_CONCURRENCY must be >= 1, got %d", cfg.LegConcurrency)
	}

	switch cfg.LegCache {
	case "none", "memory", "redis", "postgres":
	default:
		return Config{}, fmt.Errorf("config: unknown LEG_CACHE %q", cfg.LegCache)
	}

	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s=%q: %w", key, v, err)
	}
	return d, nil
}
