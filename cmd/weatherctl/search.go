package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/weather-dashboard/internal/cli/output"
)

func newSearchCmd(c *cli) *cobra.Command {
	var pick int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find cities by name, optionally saving one",
		Example: `  weatherctl search springfield
  weatherctl search springfield --select 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			results, err := c.api.Geocode(cmd.Context(), query)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				c.printer.Warning("no cities match %q", query)
				return nil
			}

			if pick == 0 {
				table := output.NewTable(c.printer.Out(), []string{"#", "City", "Lat", "Lon"})
				for i, r := range results {
					table.AddRow(strconv.Itoa(i+1), r.DisplayName(), fmt.Sprintf("%.4f", r.Lat), fmt.Sprintf("%.4f", r.Lon))
				}
				return table.Render()
			}
			if pick < 1 || pick > len(results) {
				return fmt.Errorf("--select must be between 1 and %d", len(results))
			}

			res, err := c.api.Select(cmd.Context(), results[pick-1])
			if err != nil {
				return err
			}
			if err := printCurrent(c, res.Name, res.Current); err != nil {
				return err
			}
			switch {
			case res.Added:
				c.printer.Success("added %s to favorites", res.Name)
			case slices.Contains(res.Favorites, res.Name):
				c.printer.Info("%s is already a favorite", res.Name)
			default:
				c.printer.Warning("could not save %s to favorites", res.Name)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&pick, "select", 0, "fetch result N and add it to favorites")
	return cmd
}
