package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/weather-dashboard/internal/domain/forecast"
	apperrors "github.com/yanqian/weather-dashboard/pkg/errors"
)

func TestServiceDetailsAggregatesForecast(t *testing.T) {
	client := &stubClient{
		current:  CurrentConditions{Name: "London", Temperature: 7.5},
		forecast: Forecast{City: "London", Points: dayOfPoints("2024-01-01T00:00:00Z", 8)},
	}
	svc := newTestService(client, nil)

	details, err := svc.Details(context.Background(), Request{Location: Location{City: "London"}, Units: "imperial"})
	require.NoError(t, err)
	require.Equal(t, "London", details.Current.Name)
	require.Equal(t, UnitsImperial, details.Units)
	require.Len(t, details.Hourly, 8)
	require.Len(t, details.Daily, 1)
	require.Equal(t, "01d", details.Daily[0].Icon)
	require.Equal(t, 1, client.currentCalls)
	require.Equal(t, 1, client.forecastCalls)
	require.Equal(t, UnitsImperial, client.lastUnits)
}

func TestServiceDetailsPropagatesUpstreamFailure(t *testing.T) {
	client := &stubClient{forecastErr: errors.New("upstream down")}
	svc := newTestService(client, nil)

	_, err := svc.Details(context.Background(), Request{Location: Location{City: "London"}})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstream))
}

func TestServiceLocationNotFound(t *testing.T) {
	client := &stubClient{currentErr: ErrLocationNotFound}
	svc := newTestService(client, nil)

	_, err := svc.Current(context.Background(), Request{Location: Location{City: "Atlantis"}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestServiceForecastMalformed(t *testing.T) {
	points := dayOfPoints("2024-01-01T00:00:00Z", 4)
	points[1].TemperatureMax = nil
	client := &stubClient{forecast: Forecast{Points: points}}
	svc := newTestService(client, nil)

	_, err := svc.Forecast(context.Background(), Request{Location: Location{City: "London"}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeForecastMalformed))
	require.ErrorIs(t, err, forecast.ErrMissingField)
}

func TestServiceValidatesInput(t *testing.T) {
	svc := newTestService(&stubClient{}, nil)
	ctx := context.Background()

	_, err := svc.Current(ctx, Request{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Current(ctx, Request{Location: Location{City: "Oslo"}, Units: "kelvin"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	lat, lon := 95.0, 10.0
	_, err = svc.Forecast(ctx, Request{Location: Location{Lat: &lat, Lon: &lon}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestServiceCachesUpstreamResponses(t *testing.T) {
	client := &stubClient{current: CurrentConditions{Name: "Paris", Temperature: 12}}
	cache := newMapCache()
	svc := newTestService(client, cache)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := svc.Current(ctx, Request{Location: Location{City: "  Paris "}})
		require.NoError(t, err)
		require.Equal(t, 12.0, got.Temperature)
	}
	require.Equal(t, 1, client.currentCalls)
	_, ok := cache.items["current:metric:paris"]
	require.True(t, ok)

	// different units bypass the cached entry
	_, err := svc.Current(ctx, Request{Location: Location{City: "Paris"}, Units: "imperial"})
	require.NoError(t, err)
	require.Equal(t, 2, client.currentCalls)
}

func TestServiceCacheFailureFallsThrough(t *testing.T) {
	client := &stubClient{current: CurrentConditions{Name: "Rome"}}
	cache := newMapCache()
	cache.err = errors.New("cache offline")
	svc := newTestService(client, cache)

	got, err := svc.Current(context.Background(), Request{Location: Location{City: "Rome"}})
	require.NoError(t, err)
	require.Equal(t, "Rome", got.Name)
}

func TestServiceGeocode(t *testing.T) {
	client := &stubClient{candidates: []LocationCandidate{{Name: "Paris", Country: "FR"}}}
	svc := newTestService(client, nil)
	ctx := context.Background()

	got, err := svc.Geocode(ctx, "   ")
	require.NoError(t, err)
	require.Empty(t, got)
	require.Equal(t, 0, client.geocodeCalls)

	got, err = svc.Geocode(ctx, "Paris")
	require.NoError(t, err)
	require.Equal(t, "Paris, FR", got[0].DisplayName())
	require.Equal(t, 5, client.lastLimit)
}

func TestLocationKey(t *testing.T) {
	lat, lon := 51.50736, -0.127758
	require.Equal(t, "51.5074,-0.1278", Location{Lat: &lat, Lon: &lon}.Key())
	require.Equal(t, "new york", Location{City: "  New   York "}.Key())
}

func newTestService(client Client, cache Cache) *service {
	cfg := Config{HourlyPoints: 8, DailyDays: 5}
	if cache != nil {
		cfg.CacheTTL = time.Minute
	}
	return NewService(cfg, client, cache, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
}

func dayOfPoints(start string, n int) []forecast.Point {
	base, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	points := make([]forecast.Point, 0, n)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i*3) * time.Hour)
		icon := "03d"
		if ts.Hour() == 12 {
			icon = "01d"
		}
		points = append(points, forecast.Point{
			Timestamp:      ts.Unix(),
			Temperature:    forecast.Float(float64(i)),
			TemperatureMin: forecast.Float(float64(i) - 1),
			TemperatureMax: forecast.Float(float64(i) + 1),
			ConditionIcon:  icon,
			DateKey:        ts.Format(forecast.DateKeyLayout),
		})
	}
	return points
}

type stubClient struct {
	mu            sync.Mutex
	current       CurrentConditions
	currentErr    error
	forecast      Forecast
	forecastErr   error
	candidates    []LocationCandidate
	currentCalls  int
	forecastCalls int
	geocodeCalls  int
	lastUnits     Units
	lastLimit     int
}

func (s *stubClient) FetchCurrent(ctx context.Context, loc Location, units Units) (CurrentConditions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentCalls++
	s.lastUnits = units
	return s.current, s.currentErr
}

func (s *stubClient) FetchForecast(ctx context.Context, loc Location, units Units) (Forecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecastCalls++
	return s.forecast, s.forecastErr
}

func (s *stubClient) Geocode(ctx context.Context, query string, limit int) ([]LocationCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geocodeCalls++
	s.lastLimit = limit
	return s.candidates, nil
}

type mapCache struct {
	mu    sync.Mutex
	items map[string][]byte
	err   error
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	v, ok := c.items[key]
	return v, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.items[key] = payload
	return nil
}
