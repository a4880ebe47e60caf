package favorites

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	apperrors "github.com/yanqian/weather-dashboard/pkg/errors"
)

const maxCityLength = 200

// ErrLimitReached is returned by repositories when a client already holds max favorites.
var ErrLimitReached = errors.New("favorite limit reached")

// Config holds runtime knobs for the favorites service.
type Config struct {
	MaxPerClient int
}

// Repository persists an ordered favorites list per client.
type Repository interface {
	List(ctx context.Context, clientID string) ([]string, error)
	// Add appends city unless present. It must not exceed max when max > 0.
	Add(ctx context.Context, clientID, city string, max int) error
	Remove(ctx context.Context, clientID, city string) error
}

// Service manages the favorite cities of anonymous clients.
type Service interface {
	List(ctx context.Context, clientID string) ([]string, error)
	Add(ctx context.Context, clientID, city string) ([]string, error)
	Remove(ctx context.Context, clientID, city string) ([]string, error)
}

type service struct {
	cfg    Config
	repo   Repository
	logger *slog.Logger
}

// NewService wires the favorites domain.
func NewService(cfg Config, repo Repository, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		repo:   repo,
		logger: logger.With("component", "favorites.service"),
	}
}

func (s *service) List(ctx context.Context, clientID string) ([]string, error) {
	if err := validateClient(clientID); err != nil {
		return nil, err
	}
	return s.list(ctx, clientID)
}

func (s *service) Add(ctx context.Context, clientID, city string) ([]string, error) {
	if err := validateClient(clientID); err != nil {
		return nil, err
	}
	name, err := normalizeCity(city)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Add(ctx, clientID, name, s.cfg.MaxPerClient); err != nil {
		if errors.Is(err, ErrLimitReached) {
			return nil, apperrors.Wrap(apperrors.CodeLimitExceeded, "favorites limit reached", err)
		}
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to add favorite", err)
	}
	s.logger.Info("favorite added", "client", shortID(clientID), "city", name)
	return s.list(ctx, clientID)
}

func (s *service) Remove(ctx context.Context, clientID, city string) ([]string, error) {
	if err := validateClient(clientID); err != nil {
		return nil, err
	}
	name, err := normalizeCity(city)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Remove(ctx, clientID, name); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to remove favorite", err)
	}
	s.logger.Info("favorite removed", "client", shortID(clientID), "city", name)
	return s.list(ctx, clientID)
}

func (s *service) list(ctx context.Context, clientID string) ([]string, error) {
	items, err := s.repo.List(ctx, clientID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to load favorites", err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

func validateClient(clientID string) error {
	if strings.TrimSpace(clientID) == "" {
		return apperrors.Wrap(apperrors.CodeInvalidClient, "client id is required", nil)
	}
	return nil
}

// normalizeCity trims and collapses whitespace; names are otherwise stored verbatim.
func normalizeCity(city string) (string, error) {
	name := strings.Join(strings.Fields(city), " ")
	if name == "" {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "city cannot be empty", nil)
	}
	if utf8.RuneCountInString(name) > maxCityLength {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "city name is too long", nil)
	}
	return name, nil
}

func shortID(clientID string) string {
	if len(clientID) <= 8 {
		return clientID
	}
	return clientID[:8]
}
