package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanqian/weather-dashboard/internal/cli/output"
	"github.com/yanqian/weather-dashboard/internal/domain/dashboard"
)

const defaultWatchInterval = 60 * time.Second

func newDashboardCmd(c *cli) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show current conditions for every favorite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !watch {
				snap, err := c.api.Dashboard(ctx)
				if err != nil {
					return err
				}
				return printSnapshot(c, snap)
			}
			if interval < time.Second {
				return fmt.Errorf("--interval must be at least 1s")
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				snap, err := c.api.Dashboard(ctx)
				switch {
				case ctx.Err() != nil:
					return nil
				case err != nil:
					c.printer.Warning("refresh failed: %v", err)
				default:
					if err := printSnapshot(c, snap); err != nil {
						return err
					}
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep refreshing until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", defaultWatchInterval, "refresh interval with --watch")
	return cmd
}

func printSnapshot(c *cli, snap dashboard.Snapshot) error {
	c.printer.Header("Favorites  " + c.printer.Dim(snap.RefreshedAt.In(c.location).Format("15:04:05")))
	if len(snap.Cities) == 0 {
		c.printer.Info("no favorites yet, try: weatherctl search <city> --select 1")
		return nil
	}
	table := output.NewTable(c.printer.Out(), []string{"City", "Temp", "Conditions", "Humidity"})
	for _, city := range snap.Cities {
		if city.Current == nil {
			table.AddRow(city.City, c.printer.Dim("n/a"), c.printer.Dim(city.Error), "")
			continue
		}
		table.AddRow(
			city.City,
			c.printer.Temperature(city.Current.Temperature, snap.Units),
			city.Current.Description,
			fmt.Sprintf("%d%%", city.Current.Humidity),
		)
	}
	return table.Render()
}
