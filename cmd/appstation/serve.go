package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/urfave/cli/v2"

	"github.com/MattGuil/AppStation/internal/config"
	"github.com/MattGuil/AppStation/internal/geocode"
	"github.com/MattGuil/AppStation/internal/history"
	"github.com/MattGuil/AppStation/internal/nearest"
	"github.com/MattGuil/AppStation/internal/routing"
	"github.com/MattGuil/AppStation/internal/search"
	"github.com/MattGuil/AppStation/internal/server"
	"github.com/MattGuil/AppStation/pkg/api"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the station search HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Address to listen on",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Search history database file",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()

			addr := cfg.HTTPAddr
			if c.String("addr") != "" {
				addr = c.String("addr")
			}
			dbPath := cfg.HistoryDB
			if c.String("db") != "" {
				dbPath = c.String("db")
			}

			logger := httplog.NewLogger("appstation", httplog.Options{
				JSON:            false,
				LogLevel:        cfg.SlogLevel(),
				Concise:         true,
				QuietDownPeriod: 10 * time.Second,
			})

			storage, err := history.NewStorage(c.Context, dbPath, logger.Logger)
			if err != nil {
				return fmt.Errorf("error initializing search history: %w", err)
			}
			defer storage.Close()

			geocoder := geocode.New(cfg.NominatimServer, logger.Logger)
			fuelAPI := api.New(cfg.OpendataBaseURL, cfg.Dataset, cfg.Rows)
			searcher := search.New(geocoder, fuelAPI, storage, logger.Logger)

			router := routing.New(cfg.OSRMBaseURL, cfg.OSRMRequestsPS)
			finder := nearest.NewFinder(router, logger.Logger)
			finder.SetLimits(cfg.RouteWorkers, cfg.RouteTimeout, cfg.MaxCandidates)

			srv := server.New(addr, searcher, finder, storage, logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-stop:
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
