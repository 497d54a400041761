package main

import (
	"fmt"

	"github.com/tkrajina/gpxgo/gpx"
	"github.com/urfave/cli/v2"

	"github.com/MattGuil/AppStation/internal/config"
	"github.com/MattGuil/AppStation/internal/geocode"
	"github.com/MattGuil/AppStation/internal/search"
	"github.com/MattGuil/AppStation/pkg/api"
)

func stationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stations",
		Usage: "List the fuel stations of the city around a location",
		Flags: locationFlags(),
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			logger := newLogger(cfg)

			location, err := resolveLocation(c, cfg)
			if err != nil {
				return err
			}

			geocoder := geocode.New(cfg.NominatimServer, logger)
			fuelAPI := api.New(cfg.OpendataBaseURL, cfg.Dataset, cfg.Rows)
			searcher := search.New(geocoder, fuelAPI, nil, logger)

			session, err := searcher.Search(c.Context, location)
			if err != nil {
				return fmt.Errorf("error searching stations: %w", err)
			}

			fmt.Printf("Stations in %s:\n\n", session.City)
			for i, station := range session.Catalog.All() {
				distance := gpx.Distance2D(
					location.Latitude, location.Longitude,
					station.Coordinate.Latitude, station.Coordinate.Longitude,
					true,
				)

				fmt.Printf("%d. %s\n", i+1, station.Address)
				fmt.Printf("   Distance: %.2f km (straight line)\n", distance/1000)
				if station.AutomatedPump247 {
					fmt.Println("   Automated pump: 24/7")
				}
				for _, fuel := range station.Fuels {
					fmt.Printf("   %s: %s €\n", fuel.Kind, formatDecimal(fuel.Price))
				}
				fmt.Printf("   Services: %s\n\n", formatServices(station.Services))
			}

			fmt.Printf("Found %d stations in %s", session.Catalog.Len(), session.City)
			if dropped := session.Catalog.Dropped(); dropped > 0 {
				fmt.Printf(" (%d records dropped)", dropped)
			}
			fmt.Println()

			return nil
		},
	}
}
