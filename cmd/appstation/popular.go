package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/MattGuil/AppStation/internal/config"
	"github.com/MattGuil/AppStation/internal/history"
)

func popularCommand() *cli.Command {
	return &cli.Command{
		Name:  "popular",
		Usage: "Show the most searched locations from the search history",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Usage:    "Search history database file",
				Required: false,
				Value:    "search_history.db",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of locations to show",
				Value: 10,
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			logger := newLogger(cfg)

			storage, err := history.NewStorage(c.Context, c.String("db"), logger)
			if err != nil {
				return fmt.Errorf("error initializing search history: %w", err)
			}
			defer storage.Close()

			popular, err := storage.PopularLocations(c.Context, c.Int("limit"))
			if err != nil {
				return fmt.Errorf("error loading popular locations: %w", err)
			}

			if len(popular) == 0 {
				fmt.Println("No searches recorded yet.")
				return nil
			}

			fmt.Println("Most searched locations:")
			for i, loc := range popular {
				fmt.Printf("%d. %.4f, %.4f (%d searches)\n", i+1, loc.Latitude, loc.Longitude, loc.SearchCount)
			}

			return nil
		},
	}
}
