package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/yanqian/weather-dashboard/internal/domain/forecast"
	"github.com/yanqian/weather-dashboard/internal/domain/weather"
)

const defaultBaseURL = "https://api.openweathermap.org"

// Config controls the OpenWeatherMap client.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client talks to the OpenWeatherMap current, forecast and geocoding APIs.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds an API client. A non-positive rate disables client side limiting.
func NewClient(cfg Config) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
	}
}

// FetchCurrent retrieves the current observation for a location.
func (c *Client) FetchCurrent(ctx context.Context, loc weather.Location, units weather.Units) (weather.CurrentConditions, error) {
	var raw currentResponse
	if err := c.get(ctx, "/data/2.5/weather", locationQuery(loc, units), &raw); err != nil {
		return weather.CurrentConditions{}, err
	}
	return raw.normalize(units), nil
}

// FetchForecast retrieves the 5 day / 3 hour forecast for a location.
func (c *Client) FetchForecast(ctx context.Context, loc weather.Location, units weather.Units) (weather.Forecast, error) {
	var raw forecastResponse
	if err := c.get(ctx, "/data/2.5/forecast", locationQuery(loc, units), &raw); err != nil {
		return weather.Forecast{}, err
	}
	return raw.normalize(), nil
}

// Geocode resolves a free-text query into candidate locations.
func (c *Client) Geocode(ctx context.Context, query string, limit int) ([]weather.LocationCandidate, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var raw []geocodeEntry
	if err := c.get(ctx, "/geo/1.0/direct", params, &raw); err != nil {
		return nil, err
	}
	out := make([]weather.LocationCandidate, 0, len(raw))
	for _, entry := range raw {
		out = append(out, weather.LocationCandidate{
			Name:    entry.Name,
			State:   entry.State,
			Country: entry.Country,
			Lat:     entry.Lat,
			Lon:     entry.Lon,
		})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait canceled: %w", err)
	}

	params.Set("appid", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{Status: resp.StatusCode, Message: upstreamMessage(payload)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read weather response: %w", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode weather response: %w", err)
	}
	return nil
}

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("weather api error: status=%d", e.Status)
	}
	return fmt.Sprintf("weather api error: status=%d message=%s", e.Status, e.Message)
}

// Is maps an upstream 404 (unknown city) onto weather.ErrLocationNotFound.
func (e *StatusError) Is(target error) bool {
	return target == weather.ErrLocationNotFound && e.Status == http.StatusNotFound
}

func upstreamMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(payload))
}

func locationQuery(loc weather.Location, units weather.Units) url.Values {
	params := url.Values{}
	if loc.HasCoordinates() {
		params.Set("lat", strconv.FormatFloat(*loc.Lat, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(*loc.Lon, 'f', -1, 64))
	} else {
		params.Set("q", strings.TrimSpace(loc.City))
	}
	params.Set("units", string(units))
	return params
}

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type currentResponse struct {
	Name string `json:"name"`
	Dt   int64  `json:"dt"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility int         `json:"visibility"`
	Weather    []condition `json:"weather"`
}

func (r currentResponse) normalize(units weather.Units) weather.CurrentConditions {
	cond := firstCondition(r.Weather)
	out := weather.CurrentConditions{
		Name:        r.Name,
		Country:     r.Sys.Country,
		Units:       units,
		Temperature: r.Main.Temp,
		FeelsLike:   r.Main.FeelsLike,
		TempMin:     r.Main.TempMin,
		TempMax:     r.Main.TempMax,
		Humidity:    r.Main.Humidity,
		Pressure:    r.Main.Pressure,
		WindSpeed:   r.Wind.Speed,
		Visibility:  r.Visibility,
		Condition:   cond.Main,
		Description: cond.Description,
		Icon:        cond.Icon,
	}
	if r.Dt > 0 {
		out.ObservedAt = time.Unix(r.Dt, 0).UTC()
	}
	return out
}

type forecastResponse struct {
	List []forecastEntry `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

type forecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp    *float64 `json:"temp"`
		TempMin *float64 `json:"temp_min"`
		TempMax *float64 `json:"temp_max"`
	} `json:"main"`
	Weather []condition `json:"weather"`
	DtTxt   string      `json:"dt_txt"`
}

func (r forecastResponse) normalize() weather.Forecast {
	points := make([]forecast.Point, 0, len(r.List))
	for _, entry := range r.List {
		cond := firstCondition(entry.Weather)
		points = append(points, forecast.Point{
			Timestamp:            entry.Dt,
			Temperature:          entry.Main.Temp,
			TemperatureMin:       entry.Main.TempMin,
			TemperatureMax:       entry.Main.TempMax,
			ConditionIcon:        cond.Icon,
			ConditionDescription: cond.Description,
			DateKey:              dateKey(entry),
		})
	}
	return weather.Forecast{
		City:           r.City.Name,
		Country:        r.City.Country,
		TimezoneOffset: r.City.Timezone,
		Points:         points,
	}
}

// dateKey uses the calendar date of dt_txt ("2024-01-01 12:00:00", UTC).
func dateKey(entry forecastEntry) string {
	if date, _, ok := strings.Cut(entry.DtTxt, " "); ok && date != "" {
		return date
	}
	if entry.Dt == 0 {
		return ""
	}
	return time.Unix(entry.Dt, 0).UTC().Format(forecast.DateKeyLayout)
}

func firstCondition(items []condition) condition {
	if len(items) == 0 {
		return condition{}
	}
	return items[0]
}

type geocodeEntry struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

var _ weather.Client = (*Client)(nil)
