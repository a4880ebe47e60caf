package weather

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/weather-dashboard/internal/domain/forecast"
	apperrors "github.com/yanqian/weather-dashboard/pkg/errors"
)

// Service exposes current conditions, forecasts and geocoding.
type Service interface {
	Current(ctx context.Context, req Request) (CurrentConditions, error)
	Forecast(ctx context.Context, req Request) (ForecastResponse, error)
	Details(ctx context.Context, req Request) (Details, error)
	Geocode(ctx context.Context, query string) ([]LocationCandidate, error)
}

// Client is the upstream weather API.
type Client interface {
	FetchCurrent(ctx context.Context, loc Location, units Units) (CurrentConditions, error)
	FetchForecast(ctx context.Context, loc Location, units Units) (Forecast, error)
	Geocode(ctx context.Context, query string, limit int) ([]LocationCandidate, error)
}

// Cache stores serialized upstream responses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

type service struct {
	cfg    Config
	client Client
	cache  Cache
	logger *slog.Logger
}

// NewService wires the weather domain.
func NewService(cfg Config, client Client, cache Cache, logger *slog.Logger) Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.GeocodeLimit <= 0 {
		cfg.GeocodeLimit = 5
	}
	return &service{
		cfg:    cfg,
		client: client,
		cache:  cache,
		logger: logger.With("component", "weather.service"),
	}
}

func (s *service) Current(ctx context.Context, req Request) (CurrentConditions, error) {
	units, err := validate(req)
	if err != nil {
		return CurrentConditions{}, err
	}
	return s.current(ctx, req.Location, units)
}

func (s *service) Forecast(ctx context.Context, req Request) (ForecastResponse, error) {
	units, err := validate(req)
	if err != nil {
		return ForecastResponse{}, err
	}
	fc, err := s.forecast(ctx, req.Location, units)
	if err != nil {
		return ForecastResponse{}, err
	}
	projection, err := s.project(fc.Points)
	if err != nil {
		return ForecastResponse{}, err
	}
	return ForecastResponse{
		Forecast: fc,
		Units:    units,
		Hourly:   projection.Hourly,
		Daily:    projection.Daily,
	}, nil
}

func (s *service) Details(ctx context.Context, req Request) (Details, error) {
	units, err := validate(req)
	if err != nil {
		return Details{}, err
	}

	var (
		current CurrentConditions
		fc      Forecast
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.current(gctx, req.Location, units)
		return err
	})
	g.Go(func() error {
		var err error
		fc, err = s.forecast(gctx, req.Location, units)
		return err
	})
	if err := g.Wait(); err != nil {
		return Details{}, err
	}

	projection, err := s.project(fc.Points)
	if err != nil {
		return Details{}, err
	}
	s.logger.Info("weather details assembled", "location", req.Location.Key(), "units", units, "points", len(fc.Points))
	return Details{
		Current: current,
		Units:   units,
		Hourly:  projection.Hourly,
		Daily:   projection.Daily,
	}, nil
}

func (s *service) Geocode(ctx context.Context, query string) ([]LocationCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []LocationCandidate{}, nil
	}
	key := "geo:" + strings.ToLower(query)
	candidates, err := cached(ctx, s, key, func(ctx context.Context) ([]LocationCandidate, error) {
		return s.client.Geocode(ctx, query, s.cfg.GeocodeLimit)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstream, "geocoding request failed", err)
	}
	if candidates == nil {
		candidates = []LocationCandidate{}
	}
	return candidates, nil
}

func (s *service) current(ctx context.Context, loc Location, units Units) (CurrentConditions, error) {
	key := "current:" + string(units) + ":" + loc.Key()
	current, err := cached(ctx, s, key, func(ctx context.Context) (CurrentConditions, error) {
		return s.client.FetchCurrent(ctx, loc, units)
	})
	if err != nil {
		return CurrentConditions{}, upstreamError("current weather request failed", err)
	}
	return current, nil
}

func (s *service) forecast(ctx context.Context, loc Location, units Units) (Forecast, error) {
	key := "forecast:" + string(units) + ":" + loc.Key()
	fc, err := cached(ctx, s, key, func(ctx context.Context) (Forecast, error) {
		return s.client.FetchForecast(ctx, loc, units)
	})
	if err != nil {
		return Forecast{}, upstreamError("forecast request failed", err)
	}
	return fc, nil
}

func (s *service) project(points []forecast.Point) (forecast.Projection, error) {
	projection, err := forecast.Aggregate(points, forecast.Options{
		HourlyLimit: s.cfg.HourlyPoints,
		DailyLimit:  s.cfg.DailyDays,
		Location:    s.cfg.Location,
	})
	if err != nil {
		if errors.Is(err, forecast.ErrMissingField) {
			return forecast.Projection{}, apperrors.Wrap(apperrors.CodeForecastMalformed, "upstream forecast is malformed", err)
		}
		return forecast.Projection{}, err
	}
	return projection, nil
}

// cached reads through the cache; cache failures only cost a round trip upstream.
func cached[T any](ctx context.Context, s *service, key string, fetch func(context.Context) (T, error)) (T, error) {
	if s.cache != nil && s.cfg.CacheTTL > 0 {
		payload, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("weather cache read failed", "key", key, "error", err)
		} else if ok {
			var value T
			if err := json.Unmarshal(payload, &value); err == nil {
				return value, nil
			}
			s.logger.Warn("weather cache entry undecodable", "key", key)
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if payload, err := json.Marshal(value); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cfg.CacheTTL); err != nil {
				s.logger.Warn("weather cache write failed", "key", key, "error", err)
			}
		}
	}
	return value, nil
}

func upstreamError(message string, err error) error {
	if errors.Is(err, ErrLocationNotFound) {
		return apperrors.Wrap(apperrors.CodeNotFound, "location not found", err)
	}
	return apperrors.Wrap(apperrors.CodeUpstream, message, err)
}

func validate(req Request) (Units, error) {
	if err := req.Location.Validate(); err != nil {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), err)
	}
	units, err := ParseUnits(req.Units)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "units must be metric, imperial or standard", err)
	}
	return units, nil
}
