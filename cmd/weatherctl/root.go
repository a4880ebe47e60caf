package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/weather-dashboard/internal/cli/output"
	"github.com/yanqian/weather-dashboard/internal/cli/settings"
	"github.com/yanqian/weather-dashboard/internal/domain/weather"
	"github.com/yanqian/weather-dashboard/pkg/client"
	"github.com/yanqian/weather-dashboard/pkg/logger"
)

// cli carries state shared by every subcommand once PersistentPreRunE ran.
type cli struct {
	cfgFile string
	baseURL string
	units   string
	noColor bool
	verbose bool

	store    *settings.Store
	settings settings.Settings
	api      *client.Client
	printer  *output.Printer
	logger   *slog.Logger
	location *time.Location
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "weatherctl",
		Short: "Weather dashboard in your terminal",
		Long: `weatherctl talks to the weather dashboard API: search cities, view current
conditions and five-day forecasts, and keep a list of favorite cities.

Example usage:
  weatherctl search springfield --select 1   # search and save a city
  weatherctl forecast "London, GB"           # hourly and daily outlook
  weatherctl dashboard --watch               # refresh favorites every minute
  weatherctl units imperial                  # switch units`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "settings file (default ~/.config/weatherctl/config.yaml)")
	root.PersistentFlags().StringVar(&c.baseURL, "api", "", "API base URL for this invocation")
	root.PersistentFlags().StringVarP(&c.units, "units", "u", "", "units for this invocation: metric, imperial or standard")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "verbose logging on stderr")

	root.AddCommand(
		newSearchCmd(c),
		newCurrentCmd(c),
		newForecastCmd(c),
		newFavoritesCmd(c),
		newDashboardCmd(c),
		newUnitsCmd(c),
	)
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	c.logger = logger.NewWriter(cmd.ErrOrStderr(), "weatherctl", level)

	path := c.cfgFile
	if path == "" {
		var err error
		if path, err = settings.DefaultPath(); err != nil {
			return err
		}
	}
	c.store = settings.NewStore(path)
	loaded, err := c.store.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	c.settings = loaded

	minted, err := c.store.EnsureClientID(&c.settings)
	if err != nil {
		return err
	}
	if minted {
		c.logger.Info("client id generated", "path", c.store.Path())
	}

	units := c.settings.Units
	if c.units != "" {
		if _, err := weather.ParseUnits(c.units); err != nil {
			return err
		}
		units = c.units
	}
	baseURL := c.settings.BaseURL
	if c.baseURL != "" {
		baseURL = c.baseURL
	}

	c.location, err = time.LoadLocation(c.settings.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", c.settings.Timezone, err)
	}

	c.api, err = client.New(client.Config{
		BaseURL:  baseURL,
		ClientID: c.settings.ClientID,
		Units:    units,
	})
	if err != nil {
		return err
	}

	c.printer = output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), !c.noColor && output.ResolveColors(c.settings.Colors))
	c.logger.Debug("settings loaded", "path", c.store.Path(), "base_url", baseURL, "units", units)
	return nil
}

// activeUnits is the units value used for this invocation.
func (c *cli) activeUnits() weather.Units {
	raw := c.settings.Units
	if c.units != "" {
		raw = c.units
	}
	units, err := weather.ParseUnits(raw)
	if err != nil {
		return weather.UnitsMetric
	}
	return units
}
