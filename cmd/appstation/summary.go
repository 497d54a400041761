package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/MattGuil/AppStation/internal/catalog"
	"github.com/MattGuil/AppStation/internal/config"
	"github.com/MattGuil/AppStation/internal/geocode"
	"github.com/MattGuil/AppStation/internal/search"
	"github.com/MattGuil/AppStation/pkg/api"
)

func summaryCommand() *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Show the fuels and services available across a city",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "city",
				Usage:    "City to summarize",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			logger := newLogger(cfg)

			city := c.String("city")
			if city == "" {
				return errors.New("city is required")
			}

			geocoder := geocode.New(cfg.NominatimServer, logger)
			fuelAPI := api.New(cfg.OpendataBaseURL, cfg.Dataset, cfg.Rows)
			searcher := search.New(geocoder, fuelAPI, nil, logger)

			session, err := searcher.SearchCity(c.Context, city, catalog.Coordinate{})
			if err != nil {
				return fmt.Errorf("error searching stations: %w", err)
			}

			fmt.Printf("%s: %d stations\n\n", session.City, session.Catalog.Len())

			fuels := session.Catalog.FuelKinds()
			if len(fuels) == 0 {
				fmt.Println("Fuels: none listed")
			} else {
				fmt.Printf("Fuels: %s\n", strings.Join(fuels, ", "))
			}

			services := session.Catalog.ServiceNames()
			if len(services) == 0 {
				fmt.Println("Services: none declared")
			} else {
				fmt.Printf("Services: %s\n", strings.Join(services, ", "))
			}

			automated := 0
			for _, station := range session.Catalog.All() {
				if station.AutomatedPump247 {
					automated++
				}
			}
			fmt.Printf("Stations with a 24/7 automated pump: %d\n", automated)

			return nil
		},
	}
}
