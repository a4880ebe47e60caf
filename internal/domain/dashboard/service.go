package dashboard

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/weather-dashboard/internal/domain/favorites"
	"github.com/yanqian/weather-dashboard/internal/domain/weather"
	apperrors "github.com/yanqian/weather-dashboard/pkg/errors"
)

const (
	defaultPollInterval = 60 * time.Second
	defaultMaxParallel  = 4
)

// Service assembles the favorites sidebar and keeps it fresh.
type Service interface {
	Snapshot(ctx context.Context, clientID, units string) (Snapshot, error)
	Watch(ctx context.Context, clientID, units string, interval time.Duration) (<-chan Snapshot, error)
	Select(ctx context.Context, clientID string, req SelectRequest) (SelectResult, error)
}

type service struct {
	cfg       Config
	weather   weather.Service
	favorites favorites.Service
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the dashboard domain.
func NewService(cfg Config, weatherSvc weather.Service, favoritesSvc favorites.Service, logger *slog.Logger) Service {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = defaultMaxParallel
	}
	return &service{
		cfg:       cfg,
		weather:   weatherSvc,
		favorites: favoritesSvc,
		logger:    logger.With("component", "dashboard.service"),
		now:       time.Now,
	}
}

func (s *service) Snapshot(ctx context.Context, clientID, rawUnits string) (Snapshot, error) {
	units, err := weather.ParseUnits(rawUnits)
	if err != nil {
		return Snapshot{}, apperrors.Wrap(apperrors.CodeInvalidInput, "units must be metric, imperial or standard", err)
	}
	cities, err := s.favorites.List(ctx, clientID)
	if err != nil {
		return Snapshot{}, err
	}

	results := make([]CityWeather, len(cities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxParallel)
	for i, city := range cities {
		g.Go(func() error {
			results[i] = s.refreshCity(gctx, city, units)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Units:       units,
		Favorites:   cities,
		Cities:      results,
		RefreshedAt: s.now().UTC(),
	}, nil
}

// refreshCity never fails the snapshot; a failing city is reported without conditions.
func (s *service) refreshCity(ctx context.Context, city string, units weather.Units) CityWeather {
	current, err := s.weather.Current(ctx, weather.Request{
		Location: weather.Location{City: city},
		Units:    string(units),
	})
	if err != nil {
		s.logger.Warn("city refresh failed", "city", city, "error", err)
		return CityWeather{City: city, Error: apperrors.CodeOf(err)}
	}
	return CityWeather{City: city, Current: &current}
}

func (s *service) Watch(ctx context.Context, clientID, units string, interval time.Duration) (<-chan Snapshot, error) {
	if interval <= 0 {
		interval = s.cfg.PollInterval
	}
	first, err := s.Snapshot(ctx, clientID, units)
	if err != nil {
		return nil, err
	}

	out := make(chan Snapshot, 1)
	out <- first
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			snap, err := s.Snapshot(ctx, clientID, units)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Warn("dashboard poll failed", "error", err)
				continue
			}
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *service) Select(ctx context.Context, clientID string, req SelectRequest) (SelectResult, error) {
	candidate := req.Candidate
	name := candidate.DisplayName()
	if candidate.Name == "" {
		return SelectResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, "candidate name is required", nil)
	}
	lat, lon := candidate.Lat, candidate.Lon
	current, err := s.weather.Current(ctx, weather.Request{
		Location: weather.Location{Lat: &lat, Lon: &lon},
		Units:    req.Units,
	})
	if err != nil {
		return SelectResult{}, err
	}

	// the favorites write is best-effort; the fetched conditions are returned regardless
	result := SelectResult{Name: name, Current: current, Favorites: []string{}}
	existing, err := s.favorites.List(ctx, clientID)
	if err != nil {
		s.logger.Warn("could not load favorites for selected city", "city", name, "error", err)
		return result, nil
	}
	result.Favorites = existing
	if slices.Contains(existing, name) {
		return result, nil
	}

	updated, err := s.favorites.Add(ctx, clientID, name)
	if err != nil {
		s.logger.Warn("could not add selected city to favorites", "city", name, "error", err)
		return result, nil
	}
	result.Favorites = updated
	result.Added = true
	return result, nil
}
