package api

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/stationly/stationly/pkg/api/routes"
	"github.com/stationly/stationly/pkg/database"
	"github.com/stationly/stationly/pkg/indexer"
	"github.com/stationly/stationly/pkg/linestatus"
	"github.com/stationly/stationly/pkg/meta"
	"github.com/stationly/stationly/pkg/notify"
	"github.com/stationly/stationly/pkg/poller"
	"github.com/stationly/stationly/pkg/redis_client"
	"github.com/stationly/stationly/pkg/tfl"
	"github.com/stationly/stationly/pkg/topology"
	"github.com/stationly/stationly/pkg/util"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}
					if err := indexer.Connect(false); err != nil {
						return err
					}

					env := util.GetEnvironmentVariables()

					sender := &notify.FCMSender{}
					if err := sender.Setup(); err != nil {
						return err
					}

					publisher := notify.NewPublisher(sender, notify.DefaultPacingInterval, notify.DefaultMessagesPerTick)
					publisher.Start()
					defer publisher.Stop(notify.DefaultPacingInterval * 4)

					// One client, one rate limiter. Every service in this
					// process shares the upstream pacing window.
					client := tfl.NewClient(env["STATIONLY_TFL_APP_KEY"])

					var modes []string
					for _, mode := range strings.Split(env["STATIONLY_TFL_MODES"], ",") {
						mode = strings.TrimSpace(mode)
						if mode != "" {
							modes = append(modes, mode)
						}
					}

					deps := &routes.Dependencies{
						Meta:       meta.NewService(client),
						LineStatus: linestatus.NewService(client, publisher),
						Topology:   topology.NewEngine(client),
						Poller: &poller.Orchestrator{
							Source:    client,
							Publisher: publisher,
							Modes:     modes,
						},
						Publisher: publisher,
						Arrivals:  client,
						Modes:     modes,
					}

					return SetupServer(c.String("listen"), deps)
				},
			},
		},
	}
}
