package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/weather-dashboard/internal/cli/output"
	"github.com/yanqian/weather-dashboard/internal/domain/forecast"
	"github.com/yanqian/weather-dashboard/internal/domain/weather"
)

type locationFlags struct {
	lat float64
	lon float64
}

func (f *locationFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "latitude, used together with --lon instead of a city")
	cmd.Flags().Float64Var(&f.lon, "lon", 0, "longitude, used together with --lat instead of a city")
}

func (f *locationFlags) resolve(cmd *cobra.Command, args []string) (weather.Location, error) {
	latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
	if latSet != lonSet {
		return weather.Location{}, errors.New("--lat and --lon must be given together")
	}
	if latSet {
		lat, lon := f.lat, f.lon
		return weather.Location{Lat: &lat, Lon: &lon}, nil
	}
	city := strings.TrimSpace(strings.Join(args, " "))
	if city == "" {
		return weather.Location{}, errors.New("a city or --lat/--lon is required")
	}
	return weather.Location{City: city}, nil
}

func newCurrentCmd(c *cli) *cobra.Command {
	var loc locationFlags
	cmd := &cobra.Command{
		Use:   "current [city]",
		Short: "Show current conditions",
		RunE: func(cmd *cobra.Command, args []string) error {
			location, err := loc.resolve(cmd, args)
			if err != nil {
				return err
			}
			current, err := c.api.Current(cmd.Context(), location)
			if err != nil {
				return err
			}
			name := current.Name
			if current.Country != "" {
				name += ", " + current.Country
			}
			return printCurrent(c, name, current)
		},
	}
	loc.register(cmd)
	return cmd
}

func newForecastCmd(c *cli) *cobra.Command {
	var (
		loc   locationFlags
		hours int
		days  int
	)
	cmd := &cobra.Command{
		Use:   "forecast [city]",
		Short: "Show the hourly and daily outlook",
		Long: `Fetches the raw 3-hourly forecast and aggregates it locally: the next
entries as an hourly strip and up to five calendar days with their low, high
and midday conditions. Days follow the forecast's UTC calendar dates and use the
12:00 UTC entry as midday, matching the server. Hourly times are shown in the
configured timezone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			location, err := loc.resolve(cmd, args)
			if err != nil {
				return err
			}
			resp, err := c.api.Forecast(cmd.Context(), location)
			if err != nil {
				return err
			}
			projection, err := forecast.Aggregate(resp.Points, forecast.Options{
				HourlyLimit: hours,
				DailyLimit:  days,
				Location:    c.location,
			})
			if err != nil {
				return fmt.Errorf("forecast data is incomplete: %w", err)
			}
			c.logger.Debug("forecast aggregated", "points", len(resp.Points), "days", len(projection.Daily))

			units := resp.Units
			if units == "" {
				units = c.activeUnits()
			}
			title := resp.City
			if resp.Country != "" {
				title += ", " + resp.Country
			}
			c.printer.Header(title)

			hourly := output.NewTable(c.printer.Out(), []string{"Time", "Temp"})
			for _, h := range projection.Hourly {
				hourly.AddRow(h.Label, c.printer.Temperature(h.Temperature, units))
			}
			if err := hourly.Render(); err != nil {
				return err
			}

			c.printer.Header("Next days")
			daily := output.NewTable(c.printer.Out(), []string{"Day", "Low", "High", "Conditions"})
			for _, d := range projection.Daily {
				daily.AddRow(d.Label, c.printer.Temperature(d.TemperatureMin, units), c.printer.Temperature(d.TemperatureMax, units), d.Description)
			}
			return daily.Render()
		},
	}
	loc.register(cmd)
	cmd.Flags().IntVar(&hours, "hours", forecast.DefaultHourlyLimit, "number of hourly entries")
	cmd.Flags().IntVar(&days, "days", forecast.DefaultDailyLimit, "number of days")
	return cmd
}

func printCurrent(c *cli, name string, current weather.CurrentConditions) error {
	units := current.Units
	if units == "" {
		units = c.activeUnits()
	}
	c.printer.Header(name)
	table := output.NewTable(c.printer.Out(), []string{"Field", "Value"})
	table.AddRow("Temperature", c.printer.Temperature(current.Temperature, units))
	table.AddRow("Feels like", output.FormatTemperature(current.FeelsLike, units))
	table.AddRow("Low / High", output.FormatTemperature(current.TempMin, units)+" / "+output.FormatTemperature(current.TempMax, units))
	table.AddRow("Conditions", current.Description)
	table.AddRow("Humidity", fmt.Sprintf("%d%%", current.Humidity))
	table.AddRow("Wind", fmt.Sprintf("%.1f %s", current.WindSpeed, units.SpeedSymbol()))
	table.AddRow("Pressure", fmt.Sprintf("%d hPa", current.Pressure))
	return table.Render()
}
