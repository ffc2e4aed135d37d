package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/stationly/stationly/pkg/api"
	"github.com/stationly/stationly/pkg/indexer"
	"github.com/stationly/stationly/pkg/linestatus"
	"github.com/stationly/stationly/pkg/poller"
	"github.com/stationly/stationly/pkg/topology"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("STATIONLY_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("STATIONLY_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "stationly",
		Description: "Single binary of truth for Stationly - runs all the services",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			poller.RegisterCLI(),
			linestatus.RegisterCLI(),
			topology.RegisterCLI(),
			indexer.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
