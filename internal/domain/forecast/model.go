package forecast

import (
	"errors"
	"fmt"
)

const (
	// DefaultHourlyLimit covers the next 24 hours at 3-hour resolution.
	DefaultHourlyLimit = 8
	// DefaultDailyLimit is the number of calendar days shown in the daily outlook.
	DefaultDailyLimit = 5

	// DateKeyLayout is the layout of Point.DateKey.
	DateKeyLayout = "2006-01-02"

	hourLabelLayout = "15:04"
	dayLabelLayout  = "Mon, Jan 2"
)

// Point is a single entry of an upstream forecast time series.
type Point struct {
	Timestamp            int64    `json:"timestamp"`
	Temperature          *float64 `json:"temperature"`
	TemperatureMin       *float64 `json:"temperatureMin"`
	TemperatureMax       *float64 `json:"temperatureMax"`
	ConditionIcon        string   `json:"conditionIcon"`
	ConditionDescription string   `json:"conditionDescription"`
	DateKey              string   `json:"dateKey"`
}

// HourlyPoint is one entry of the short-range temperature chart.
type HourlyPoint struct {
	Label       string  `json:"label"`
	Temperature float64 `json:"temperature"`
}

// DailySummary aggregates every point that shares a calendar date.
type DailySummary struct {
	Label          string  `json:"label"`
	DateKey        string  `json:"dateKey"`
	TemperatureMin float64 `json:"temperatureMin"`
	TemperatureMax float64 `json:"temperatureMax"`
	Icon           string  `json:"icon"`
	Description    string  `json:"description"`
}

// Projection bundles both display projections of a forecast.
type Projection struct {
	Hourly []HourlyPoint  `json:"hourly"`
	Daily  []DailySummary `json:"daily"`
}

// ErrMissingField matches every MissingFieldError via errors.Is.
var ErrMissingField = errors.New("forecast point missing required field")

// MissingFieldError reports a malformed input point.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("forecast point %d: missing %s", e.Index, e.Field)
}

// Is lets callers test with errors.Is(err, ErrMissingField).
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Float is a convenience for building points with literal temperatures.
func Float(v float64) *float64 {
	return &v
}
