package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Weather   WeatherConfig   `yaml:"weather"`
	Favorites FavoritesConfig `yaml:"favorites"`
	Cache     CacheConfig     `yaml:"cache"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address         string          `yaml:"address"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	AllowedOrigins  []string        `yaml:"allowedOrigins"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
	Retry           RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// WeatherConfig contains the upstream provider settings and forecast shaping.
type WeatherConfig struct {
	APIKey            string        `yaml:"apiKey"`
	BaseURL           string        `yaml:"baseUrl"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
	CacheTTL          time.Duration `yaml:"cacheTtl"`
	Timezone          string        `yaml:"timezone"`
	HourlyPoints      int           `yaml:"hourlyPoints"`
	DailyDays         int           `yaml:"dailyDays"`
	GeocodeLimit      int           `yaml:"geocodeLimit"`
}

// FavoritesConfig controls favorites persistence.
type FavoritesConfig struct {
	MaxPerClient int            `yaml:"maxPerClient"`
	Postgres     PostgresConfig `yaml:"postgres"`
}

// CacheConfig selects the weather response cache backend.
type CacheConfig struct {
	Memory MemoryCacheConfig `yaml:"memory"`
	Valkey ValkeyConfig      `yaml:"valkey"`
}

// MemoryCacheConfig bounds the in-process cache used when valkey is disabled.
type MemoryCacheConfig struct {
	MaxEntries int `yaml:"maxEntries"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// DashboardConfig tunes the favorites refresh loop.
type DashboardConfig struct {
	PollInterval time.Duration `yaml:"pollInterval"`
	MaxParallel  int           `yaml:"maxParallel"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("WEATHER_API_KEY"); v != "" {
		cfg.Weather.APIKey = v
	}
	if v := os.Getenv("WEATHER_BASE_URL"); v != "" {
		cfg.Weather.BaseURL = v
	}
	if v := os.Getenv("WEATHER_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Weather.Timeout = parsed
		}
	}
	if v := os.Getenv("WEATHER_RPS"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Weather.RequestsPerSecond = parsed
		}
	}
	if v := os.Getenv("WEATHER_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Weather.CacheTTL = parsed
		}
	}
	if v := os.Getenv("WEATHER_TIMEZONE"); v != "" {
		cfg.Weather.Timezone = v
	}
	if v := os.Getenv("FAVORITES_MAX_PER_CLIENT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Favorites.MaxPerClient = parsed
		}
	}
	if v := os.Getenv("FAVORITES_POSTGRES_DSN"); v != "" {
		cfg.Favorites.Postgres.DSN = v
	}
	if v := os.Getenv("FAVORITES_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Favorites.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("FAVORITES_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Favorites.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("CACHE_MEMORY_MAX_ENTRIES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Memory.MaxEntries = parsed
		}
	}
	if v := os.Getenv("CACHE_VALKEY_ENABLED"); v != "" {
		cfg.Cache.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("CACHE_VALKEY_ADDR"); v != "" {
		cfg.Cache.Valkey.Addr = v
	}
	if v := os.Getenv("DASHBOARD_POLL_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Dashboard.PollInterval = parsed
		}
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/dashboard/stream",
				},
			},
		},
		Weather: WeatherConfig{
			BaseURL:           "https://api.openweathermap.org",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 10,
			Burst:             5,
			CacheTTL:          5 * time.Minute,
			Timezone:          "UTC",
			HourlyPoints:      8,
			DailyDays:         5,
			GeocodeLimit:      5,
		},
		Favorites: FavoritesConfig{
			MaxPerClient: 25,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Cache: CacheConfig{
			Memory: MemoryCacheConfig{MaxEntries: 1024},
			Valkey: ValkeyConfig{Prefix: "weather"},
		},
		Dashboard: DashboardConfig{
			PollInterval: 60 * time.Second,
			MaxParallel:  4,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.Weather.APIKey) == "" {
		return errors.New("weather.apiKey cannot be empty")
	}
	if strings.TrimSpace(c.Weather.BaseURL) == "" {
		return errors.New("weather.baseUrl cannot be empty")
	}
	if c.Weather.Timeout <= 0 {
		return errors.New("weather.timeout must be positive")
	}
	if c.Weather.RequestsPerSecond < 0 {
		return errors.New("weather.requestsPerSecond cannot be negative")
	}
	if c.Weather.CacheTTL < 0 {
		return errors.New("weather.cacheTtl cannot be negative")
	}
	if _, err := time.LoadLocation(c.Weather.Timezone); err != nil {
		return fmt.Errorf("weather.timezone: %w", err)
	}
	if c.Weather.HourlyPoints <= 0 {
		return errors.New("weather.hourlyPoints must be positive")
	}
	if c.Weather.DailyDays <= 0 {
		return errors.New("weather.dailyDays must be positive")
	}
	if c.Weather.GeocodeLimit <= 0 {
		return errors.New("weather.geocodeLimit must be positive")
	}
	if c.Favorites.MaxPerClient < 0 {
		return errors.New("favorites.maxPerClient cannot be negative")
	}
	if c.Cache.Memory.MaxEntries <= 0 {
		return errors.New("cache.memory.maxEntries must be positive")
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when valkey cache is enabled")
	}
	if c.Dashboard.PollInterval <= 0 {
		return errors.New("dashboard.pollInterval must be positive")
	}
	if c.Dashboard.MaxParallel <= 0 {
		return errors.New("dashboard.maxParallel must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
