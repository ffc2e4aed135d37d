package indexer

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/stationly/stationly/pkg/database"
	"github.com/stationly/stationly/pkg/repository"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "indexer",
		Usage: "Indexes data into Elasticsearch",
		Subcommands: []*cli.Command{
			{
				Name:  "stations",
				Usage: "do a full index of the stations",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := Connect(true); err != nil {
						return err
					}

					stations, err := repository.Stations().GetAll(c.Context)
					if err != nil {
						return err
					}

					if err := GlobalIndexer.IndexStations(c.Context, stations); err != nil {
						return err
					}

					WaitUntilQueueEmpty()

					log.Info().Int("length", len(stations)).Msg("Index queue emptied")

					return nil
				},
			},
		},
	}
}
