package main

import (
	"github.com/spf13/cobra"

	"github.com/yanqian/weather-dashboard/internal/domain/weather"
)

func newUnitsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "units [metric|imperial|standard]",
		Short:     "Show or change the default units",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(weather.UnitsMetric), string(weather.UnitsImperial), string(weather.UnitsStandard)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				units, _ := weather.ParseUnits(c.settings.Units)
				c.printer.Info("%s (%s)", units, units.TemperatureSymbol())
				return nil
			}
			units, err := weather.ParseUnits(args[0])
			if err != nil {
				return err
			}
			c.settings.Units = string(units)
			if err := c.store.Save(c.settings); err != nil {
				return err
			}
			c.printer.Success("units set to %s", units)
			return nil
		},
	}
}
