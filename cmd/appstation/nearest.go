package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/MattGuil/AppStation/internal/config"
	"github.com/MattGuil/AppStation/internal/geocode"
	"github.com/MattGuil/AppStation/internal/history"
	"github.com/MattGuil/AppStation/internal/nearest"
	"github.com/MattGuil/AppStation/internal/routing"
	"github.com/MattGuil/AppStation/internal/search"
	"github.com/MattGuil/AppStation/pkg/api"
)

func nearestCommand() *cli.Command {
	flags := append(locationFlags(),
		&cli.StringFlag{
			Name:  "db",
			Usage: "Search history database file",
		},
	)

	return &cli.Command{
		Name:  "nearest",
		Usage: "Find the nearest fuel station by driving distance",
		Flags: flags,
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			logger := newLogger(cfg)

			location, err := resolveLocation(c, cfg)
			if err != nil {
				return err
			}

			var logSearch search.SearchLogger
			if dbPath := c.String("db"); dbPath != "" {
				storage, err := history.NewStorage(c.Context, dbPath, logger)
				if err != nil {
					return fmt.Errorf("error initializing search history: %w", err)
				}
				defer storage.Close()
				logSearch = storage
			}

			geocoder := geocode.New(cfg.NominatimServer, logger)
			fuelAPI := api.New(cfg.OpendataBaseURL, cfg.Dataset, cfg.Rows)
			searcher := search.New(geocoder, fuelAPI, logSearch, logger)

			session, err := searcher.Search(c.Context, location)
			if err != nil {
				return fmt.Errorf("error searching stations: %w", err)
			}
			fmt.Printf("Found %d stations in %s\n", session.Catalog.Len(), session.City)

			router := routing.New(cfg.OSRMBaseURL, cfg.OSRMRequestsPS)
			finder := nearest.NewFinder(router, logger)
			finder.SetLimits(cfg.RouteWorkers, cfg.RouteTimeout, cfg.MaxCandidates)

			user := routing.Point{Latitude: location.Latitude, Longitude: location.Longitude}
			best, found := finder.Nearest(c.Context, user, session.Catalog.All())
			if !found {
				return errors.New("no reachable station found")
			}

			fmt.Printf("\nNearest station: %s\n", best.Station.Address)
			fmt.Printf("   Driving distance: %.2f km\n", best.Route.DistanceMeters/1000)
			fmt.Printf("   Driving time: %.0f min\n", best.Route.DurationSeconds/60)
			if best.Station.AutomatedPump247 {
				fmt.Println("   Automated pump: 24/7")
			}
			for _, fuel := range best.Station.Fuels {
				fmt.Printf("   %s: %s €\n", fuel.Kind, formatDecimal(fuel.Price))
			}
			fmt.Printf("   Services: %s\n", formatServices(best.Station.Services))

			return nil
		},
	}
}
