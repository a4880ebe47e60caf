//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/weather-dashboard/internal/bootstrap"
	"github.com/yanqian/weather-dashboard/internal/domain/dashboard"
	"github.com/yanqian/weather-dashboard/internal/domain/favorites"
	"github.com/yanqian/weather-dashboard/internal/domain/weather"
	"github.com/yanqian/weather-dashboard/internal/infra/config"
	"github.com/yanqian/weather-dashboard/internal/infra/weather/openweather"
	httpiface "github.com/yanqian/weather-dashboard/internal/interface/http"
	"github.com/yanqian/weather-dashboard/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideWeatherConfig,
		provideFavoritesConfig,
		provideDashboardConfig,
		provideOpenWeatherClient,
		provideFavoriteRepository,
		provideWeatherCache,
		weather.NewService,
		favorites.NewService,
		dashboard.NewService,
		wire.Bind(new(weather.Client), new(*openweather.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
