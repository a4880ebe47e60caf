package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/weather-dashboard/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	// Favorite names may contain '/', which clients send as %2F.
	router.UseRawPath = true
	router.UnescapePathValues = true
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		requestLogger(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, logger),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group("/api/v1")
	{
		weatherGroup := api.Group("/weather")
		weatherGroup.GET("/geocode", handler.Geocode)
		weatherGroup.GET("/current", handler.Current)
		weatherGroup.GET("/forecast", handler.Forecast)
		weatherGroup.GET("/details", handler.Details)

		favoritesGroup := api.Group("/favorites", clientMiddleware())
		favoritesGroup.GET("", handler.ListFavorites)
		favoritesGroup.POST("", handler.AddFavorite)
		favoritesGroup.DELETE("/:city", handler.RemoveFavorite)

		dashboardGroup := api.Group("/dashboard", clientMiddleware())
		dashboardGroup.GET("", handler.Dashboard)
		dashboardGroup.GET("/stream", handler.DashboardStream)
		dashboardGroup.POST("/select", handler.SelectCity)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
