package linestatus

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/stationly/stationly/pkg/database"
	"github.com/stationly/stationly/pkg/notify"
	"github.com/stationly/stationly/pkg/repository"
	"github.com/stationly/stationly/pkg/tfl"
	"github.com/stationly/stationly/pkg/util"
)

const defaultStatusInterval = 5 * time.Minute

// NewService wires the status sync against Mongo. The caller supplies the
// upstream client so every service in a process shares one rate limiter.
func NewService(api API, publisher Publisher) *Service {
	env := util.GetEnvironmentVariables()

	var modes []string
	for _, mode := range strings.Split(env["STATIONLY_TFL_MODES"], ",") {
		mode = strings.TrimSpace(mode)
		if mode != "" {
			modes = append(modes, mode)
		}
	}

	return &Service{
		API:       api,
		Store:     repository.LineStatuses(),
		Publisher: publisher,
		Modes:     modes,
	}
}

func statusInterval() time.Duration {
	env := util.GetEnvironmentVariables()

	if env["STATIONLY_STATUS_INTERVAL"] != "" {
		interval, err := time.ParseDuration(env["STATIONLY_STATUS_INTERVAL"])
		if err == nil {
			return interval
		}
		log.Error().Err(err).Msg("Invalid STATIONLY_STATUS_INTERVAL, using default")
	}

	return defaultStatusInterval
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "linestatus",
		Usage: "Polls line statuses and notifies subscribers of changes",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the continuous status polling loop",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					sender := &notify.FCMSender{}
					if err := sender.Setup(); err != nil {
						return err
					}

					publisher := notify.NewPublisher(sender, notify.DefaultPacingInterval, notify.DefaultMessagesPerTick)
					publisher.Start()
					defer publisher.Stop(10 * time.Second)

					env := util.GetEnvironmentVariables()
					service := NewService(tfl.NewClient(env["STATIONLY_TFL_APP_KEY"]), publisher)

					ctx, cancel := context.WithCancel(c.Context)

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					defer signal.Stop(signals)

					go func() {
						<-signals
						cancel()
					}()

					ticker := time.NewTicker(statusInterval())
					defer ticker.Stop()

					if _, err := service.Sync(ctx); err != nil {
						log.Error().Err(err).Msg("Line status sync failed")
					}

					for {
						select {
						case <-ctx.Done():
							return nil
						case <-ticker.C:
							if _, err := service.Sync(ctx); err != nil {
								log.Error().Err(err).Msg("Line status sync failed")
							}
						}
					}
				},
			},
		},
	}
}
