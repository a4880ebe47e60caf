package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/weather-dashboard/internal/domain/dashboard"
	"github.com/yanqian/weather-dashboard/internal/domain/favorites"
	"github.com/yanqian/weather-dashboard/internal/domain/weather"
	"github.com/yanqian/weather-dashboard/internal/infra/config"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	weatherSvc   weather.Service
	favoritesSvc favorites.Service
	dashboardSvc dashboard.Service
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, weatherSvc weather.Service, favoritesSvc favorites.Service, dashboardSvc dashboard.Service, logger *slog.Logger) *Handler {
	return &Handler{
		weatherSvc:   weatherSvc,
		favoritesSvc: favoritesSvc,
		dashboardSvc: dashboardSvc,
		pollInterval: cfg.Dashboard.PollInterval,
		logger:       logger.With("component", "http.handler"),
	}
}

type favoriteRequest struct {
	City string `json:"city"`
}

// cityList keeps an empty favorites list encoded as [] rather than null.
func cityList(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Geocode resolves a free-text city query into candidates.
func (h *Handler) Geocode(c *gin.Context) {
	candidates, err := h.weatherSvc.Geocode(c.Request.Context(), c.Query("city"))
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	if candidates == nil {
		candidates = []weather.LocationCandidate{}
	}
	c.JSON(http.StatusOK, candidates)
}

// Current returns current conditions for a city or coordinates.
func (h *Handler) Current(c *gin.Context) {
	req, ok := bindWeatherRequest(c)
	if !ok {
		return
	}
	resp, err := h.weatherSvc.Current(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Forecast returns the raw forecast points along with hourly and daily projections.
func (h *Handler) Forecast(c *gin.Context) {
	req, ok := bindWeatherRequest(c)
	if !ok {
		return
	}
	resp, err := h.weatherSvc.Forecast(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Details combines current conditions and projections for the city view.
func (h *Handler) Details(c *gin.Context) {
	req, ok := bindWeatherRequest(c)
	if !ok {
		return
	}
	resp, err := h.weatherSvc.Details(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListFavorites returns the caller's favorites in insertion order.
func (h *Handler) ListFavorites(c *gin.Context) {
	list, err := h.favoritesSvc.List(c.Request.Context(), getClientID(c))
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, cityList(list))
}

// AddFavorite appends a city and returns the updated list.
func (h *Handler) AddFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	list, err := h.favoritesSvc.Add(c.Request.Context(), getClientID(c), req.City)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, cityList(list))
}

// RemoveFavorite deletes a city and returns the updated list.
func (h *Handler) RemoveFavorite(c *gin.Context) {
	list, err := h.favoritesSvc.Remove(c.Request.Context(), getClientID(c), c.Param("city"))
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, cityList(list))
}

// Dashboard returns one refresh of every favorite.
func (h *Handler) Dashboard(c *gin.Context) {
	snap, err := h.dashboardSvc.Snapshot(c.Request.Context(), getClientID(c), c.Query("units"))
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, snap)
}

// DashboardStream pushes a snapshot immediately and then on every poll using Server-Sent Events.
func (h *Handler) DashboardStream(c *gin.Context) {
	interval := h.pollInterval
	if raw := c.Query("interval"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < time.Second {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "interval must be a duration of at least 1s", err))
			return
		}
		interval = parsed
	}

	stream, err := h.dashboardSvc.Watch(c.Request.Context(), getClientID(c), c.Query("units"), interval)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}

	// the server write timeout would otherwise cut long-lived streams
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("stream write deadline not cleared", "error", err)
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}

	for snap := range stream {
		payload, err := json.Marshal(snap)
		if err != nil {
			h.logger.Error("marshal snapshot failed", "error", err)
			continue
		}
		c.Writer.Write([]byte("data: "))
		c.Writer.Write(payload)
		c.Writer.Write([]byte("\n\n"))
		flusher.Flush()
	}
}

// SelectCity fetches a picked search result and stores it as a favorite.
func (h *Handler) SelectCity(c *gin.Context) {
	var req dashboard.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	result, err := h.dashboardSvc.Select(c.Request.Context(), getClientID(c), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// bindWeatherRequest reads city or lat/lon plus units from the query string.
func bindWeatherRequest(c *gin.Context) (weather.Request, bool) {
	req := weather.Request{
		Location: weather.Location{City: strings.TrimSpace(c.Query("city"))},
		Units:    c.Query("units"),
	}
	rawLat, rawLon := c.Query("lat"), c.Query("lon")
	if rawLat == "" && rawLon == "" {
		return req, true
	}
	lat, latErr := strconv.ParseFloat(rawLat, 64)
	lon, lonErr := strconv.ParseFloat(rawLon, 64)
	if err := errors.Join(latErr, lonErr); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "lat and lon must both be numbers", err))
		return weather.Request{}, false
	}
	req.Location.Lat = &lat
	req.Location.Lon = &lon
	return req, true
}
