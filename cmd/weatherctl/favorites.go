package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/weather-dashboard/internal/cli/output"
)

func newFavoritesCmd(c *cli) *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		favorites, err := c.api.Favorites(cmd.Context())
		if err != nil {
			return err
		}
		return printFavorites(c, favorites)
	}

	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favorite cities",
		Args:    cobra.NoArgs,
		RunE:    list,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List favorite cities in the order they were added",
			Args:  cobra.NoArgs,
			RunE:  list,
		},
		&cobra.Command{
			Use:   "add <city>",
			Short: "Add a city to favorites",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				city := strings.Join(args, " ")
				favorites, err := c.api.AddFavorite(cmd.Context(), city)
				if err != nil {
					return err
				}
				c.printer.Success("saved %s", city)
				return printFavorites(c, favorites)
			},
		},
		&cobra.Command{
			Use:     "remove <city>",
			Aliases: []string{"rm"},
			Short:   "Remove a city from favorites",
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				city := strings.Join(args, " ")
				favorites, err := c.api.RemoveFavorite(cmd.Context(), city)
				if err != nil {
					return err
				}
				c.printer.Success("removed %s", city)
				return printFavorites(c, favorites)
			},
		},
	)
	return cmd
}

func printFavorites(c *cli, favorites []string) error {
	if len(favorites) == 0 {
		c.printer.Info("no favorites yet, try: weatherctl search <city> --select 1")
		return nil
	}
	table := output.NewTable(c.printer.Out(), []string{"#", "City"})
	for i, city := range favorites {
		table.AddRow(strconv.Itoa(i+1), city)
	}
	return table.Render()
}
