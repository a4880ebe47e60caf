package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/weather-dashboard/internal/domain/dashboard"
	"github.com/yanqian/weather-dashboard/internal/domain/favorites"
	"github.com/yanqian/weather-dashboard/internal/domain/weather"
	"github.com/yanqian/weather-dashboard/internal/infra/config"
	"github.com/yanqian/weather-dashboard/internal/infra/favoriterepo"
	"github.com/yanqian/weather-dashboard/internal/infra/weather/openweather"
	"github.com/yanqian/weather-dashboard/internal/infra/weathercache"
)

func provideWeatherConfig(cfg *config.Config) (weather.Config, error) {
	loc, err := time.LoadLocation(cfg.Weather.Timezone)
	if err != nil {
		return weather.Config{}, err
	}
	return weather.Config{
		CacheTTL:     cfg.Weather.CacheTTL,
		HourlyPoints: cfg.Weather.HourlyPoints,
		DailyDays:    cfg.Weather.DailyDays,
		GeocodeLimit: cfg.Weather.GeocodeLimit,
		Location:     loc,
	}, nil
}

func provideFavoritesConfig(cfg *config.Config) favorites.Config {
	return favorites.Config{MaxPerClient: cfg.Favorites.MaxPerClient}
}

func provideDashboardConfig(cfg *config.Config) dashboard.Config {
	return dashboard.Config{
		PollInterval: cfg.Dashboard.PollInterval,
		MaxParallel:  cfg.Dashboard.MaxParallel,
	}
}

func provideOpenWeatherClient(cfg *config.Config) *openweather.Client {
	return openweather.NewClient(openweather.Config{
		APIKey:            cfg.Weather.APIKey,
		BaseURL:           cfg.Weather.BaseURL,
		Timeout:           cfg.Weather.Timeout,
		RequestsPerSecond: cfg.Weather.RequestsPerSecond,
		Burst:             cfg.Weather.Burst,
	})
}

func provideFavoriteRepository(cfg *config.Config, logger *slog.Logger) (favorites.Repository, func()) {
	fallback := favoriterepo.NewMemoryRepository()
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Favorites.Postgres.DSN)
	if dsn == "" {
		logger.Info("favorites postgres dsn not set, using memory repository")
		return fallback, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback, noop
	}
	if cfg.Favorites.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Favorites.Postgres.MaxConns
	}
	if cfg.Favorites.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Favorites.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	logger.Info("favorites postgres repository enabled")
	return favoriterepo.NewPostgresRepository(pool), pool.Close
}

func provideWeatherCache(cfg *config.Config, logger *slog.Logger) (weather.Cache, func()) {
	noop := func() {}
	if !cfg.Cache.Valkey.Enabled {
		return newMemoryCache(cfg), noop
	}
	opt, err := buildValkeyOptions(cfg.Cache.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return newMemoryCache(cfg), noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return newMemoryCache(cfg), noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return newMemoryCache(cfg), noop
	}
	logger.Info("weather valkey cache enabled", "addr", cfg.Cache.Valkey.Addr)
	return weathercache.NewValkeyCache(client, cfg.Cache.Valkey.Prefix), client.Close
}

func newMemoryCache(cfg *config.Config) *weathercache.MemoryCache {
	return weathercache.NewMemoryCache(cfg.Cache.Memory.MaxEntries, cfg.Weather.CacheTTL)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
