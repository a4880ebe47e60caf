package weather

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/weather-dashboard/internal/domain/forecast"
)

// ErrLocationNotFound is reported by clients when the upstream API does not know a location.
var ErrLocationNotFound = errors.New("location not found")

// Units selects the measurement system used by the upstream API.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
	UnitsStandard Units = "standard"
)

// ParseUnits normalizes a units flag, defaulting to metric when empty.
func ParseUnits(raw string) (Units, error) {
	switch Units(strings.ToLower(strings.TrimSpace(raw))) {
	case "", UnitsMetric:
		return UnitsMetric, nil
	case UnitsImperial:
		return UnitsImperial, nil
	case UnitsStandard:
		return UnitsStandard, nil
	default:
		return "", fmt.Errorf("unsupported units %q", raw)
	}
}

// TemperatureSymbol returns the display suffix for temperatures.
func (u Units) TemperatureSymbol() string {
	switch u {
	case UnitsImperial:
		return "°F"
	case UnitsStandard:
		return "K"
	default:
		return "°C"
	}
}

// SpeedSymbol returns the display suffix for wind speed.
func (u Units) SpeedSymbol() string {
	if u == UnitsImperial {
		return "mph"
	}
	return "m/s"
}

// Location identifies a place either by name or by coordinates.
type Location struct {
	City string   `json:"city,omitempty"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
}

// HasCoordinates reports whether both coordinates are present.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Validate rejects empty or out-of-range locations.
func (l Location) Validate() error {
	if l.HasCoordinates() {
		if *l.Lat < -90 || *l.Lat > 90 {
			return fmt.Errorf("lat must be within [-90, 90]")
		}
		if *l.Lon < -180 || *l.Lon > 180 {
			return fmt.Errorf("lon must be within [-180, 180]")
		}
		return nil
	}
	if strings.TrimSpace(l.City) == "" {
		return fmt.Errorf("city or lat/lon is required")
	}
	return nil
}

// Key returns a normalized identifier used for caching.
func (l Location) Key() string {
	if l.HasCoordinates() {
		return strconv.FormatFloat(*l.Lat, 'f', 4, 64) + "," + strconv.FormatFloat(*l.Lon, 'f', 4, 64)
	}
	return strings.ToLower(strings.Join(strings.Fields(l.City), " "))
}

// Request is the common input of the current/forecast/details operations.
type Request struct {
	Location Location
	Units    string
}

// CurrentConditions is the normalized current weather observation.
type CurrentConditions struct {
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	Units       Units     `json:"units"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feelsLike"`
	TempMin     float64   `json:"tempMin"`
	TempMax     float64   `json:"tempMax"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	WindSpeed   float64   `json:"windSpeed"`
	Visibility  int       `json:"visibility"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	ObservedAt  time.Time `json:"observedAt"`
}

// Forecast is the raw time series returned by the upstream client.
type Forecast struct {
	City           string           `json:"city"`
	Country        string           `json:"country"`
	TimezoneOffset int              `json:"timezoneOffset"`
	Points         []forecast.Point `json:"points"`
}

// LocationCandidate is a geocoding match.
type LocationCandidate struct {
	Name    string  `json:"name"`
	State   string  `json:"state,omitempty"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// DisplayName renders "Name, State, Country", omitting an empty state.
func (c LocationCandidate) DisplayName() string {
	parts := []string{c.Name}
	if c.State != "" {
		parts = append(parts, c.State)
	}
	if c.Country != "" {
		parts = append(parts, c.Country)
	}
	return strings.Join(parts, ", ")
}

// ForecastResponse carries the raw points together with their projections.
type ForecastResponse struct {
	Forecast
	Units  Units                   `json:"units"`
	Hourly []forecast.HourlyPoint  `json:"hourly"`
	Daily  []forecast.DailySummary `json:"daily"`
}

// Details is everything the city details view needs in one payload.
type Details struct {
	Current CurrentConditions       `json:"current"`
	Units   Units                   `json:"units"`
	Hourly  []forecast.HourlyPoint  `json:"hourly"`
	Daily   []forecast.DailySummary `json:"daily"`
}

// Config wires runtime knobs for the weather domain.
type Config struct {
	CacheTTL     time.Duration
	HourlyPoints int
	DailyDays    int
	GeocodeLimit int
	Location     *time.Location
}
