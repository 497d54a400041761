package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/gominatim"
	"github.com/urfave/cli/v2"

	"github.com/MattGuil/AppStation/internal/catalog"
	"github.com/MattGuil/AppStation/internal/config"
)

func main() {
	app := &cli.App{
		Name:  "appstation",
		Usage: "Find French fuel stations and the nearest one by road",
		Commands: []*cli.Command{
			stationsCommand(),
			nearestCommand(),
			summaryCommand(),
			popularCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
}

// locationFlags are shared by the commands that start from a user position.
func locationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "location",
			Usage:    "Place name to search from",
			Required: false,
		},
		&cli.Float64Flag{
			Name:  "lat",
			Usage: "Latitude of the location",
		},
		&cli.Float64Flag{
			Name:  "long",
			Usage: "Longitude of the location",
		},
	}
}

// resolveLocation turns the shared location flags into a coordinate,
// geocoding the --location name when given.
func resolveLocation(c *cli.Context, cfg *config.Config) (catalog.Coordinate, error) {
	if loc := c.String("location"); loc != "" {
		gominatim.SetServer(cfg.NominatimServer)
		qry := gominatim.SearchQuery{
			Q: loc,
		}

		resp, err := qry.Get()
		if err != nil {
			return catalog.Coordinate{}, err
		}
		if len(resp) == 0 {
			return catalog.Coordinate{}, fmt.Errorf("no results found for location: %s", loc)
		}
		fmt.Println("Location found:", resp[0].DisplayName)

		lat, err := strconv.ParseFloat(resp[0].Lat, 64)
		if err != nil {
			return catalog.Coordinate{}, err
		}
		lon, err := strconv.ParseFloat(resp[0].Lon, 64)
		if err != nil {
			return catalog.Coordinate{}, err
		}
		return catalog.Coordinate{Latitude: lat, Longitude: lon}, nil
	}

	if !c.IsSet("lat") || !c.IsSet("long") {
		return catalog.Coordinate{}, errors.New("location or latitude and longitude are required")
	}
	return catalog.Coordinate{Latitude: c.Float64("lat"), Longitude: c.Float64("long")}, nil
}

func formatServices(services catalog.ServiceSet) string {
	if services.NoneDeclared() {
		return "none declared"
	}
	return strings.Join(services.Names(), ", ")
}

// formatDecimal normalizes the dataset's comma decimal separator for
// display.
func formatDecimal(value string) string {
	return strings.Replace(value, ",", ".", 1)
}
