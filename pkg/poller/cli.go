package poller

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/stationly/stationly/pkg/notify"
	"github.com/stationly/stationly/pkg/tfl"
	"github.com/stationly/stationly/pkg/util"
)

const defaultPollInterval = 30 * time.Second

func newOrchestrator(publisher Publisher) *Orchestrator {
	env := util.GetEnvironmentVariables()

	var modes []string
	for _, mode := range strings.Split(env["STATIONLY_TFL_MODES"], ",") {
		mode = strings.TrimSpace(mode)
		if mode != "" {
			modes = append(modes, mode)
		}
	}

	return &Orchestrator{
		Source:    tfl.NewClient(env["STATIONLY_TFL_APP_KEY"]),
		Publisher: publisher,
		Modes:     modes,
	}
}

func pollInterval() time.Duration {
	env := util.GetEnvironmentVariables()

	if env["STATIONLY_POLL_INTERVAL"] != "" {
		interval, err := time.ParseDuration(env["STATIONLY_POLL_INTERVAL"])
		if err == nil {
			return interval
		}
		log.Error().Err(err).Msg("Invalid STATIONLY_POLL_INTERVAL, using default")
	}

	return defaultPollInterval
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "poller",
		Usage: "Polls TfL arrivals and publishes station snapshots",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the continuous polling loop",
				Action: func(c *cli.Context) error {
					sender := &notify.FCMSender{}
					if err := sender.Setup(); err != nil {
						return err
					}

					publisher := notify.NewPublisher(sender, notify.DefaultPacingInterval, notify.DefaultMessagesPerTick)
					publisher.Start()

					orchestrator := newOrchestrator(publisher)

					ctx, cancel := context.WithCancel(c.Context)

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					defer signal.Stop(signals)

					go func() {
						<-signals
						cancel()
					}()

					orchestrator.Run(ctx, pollInterval())

					publisher.Stop(10 * time.Second)

					return nil
				},
			},
			{
				Name:  "refresh",
				Usage: "run a single refresh cycle for every configured mode",
				Action: func(c *cli.Context) error {
					sender := &notify.FCMSender{}
					if err := sender.Setup(); err != nil {
						return err
					}

					publisher := notify.NewPublisher(sender, notify.DefaultPacingInterval, notify.DefaultMessagesPerTick)
					publisher.Start()

					orchestrator := newOrchestrator(publisher)
					summaries := orchestrator.RefreshAll(c.Context)

					for _, summary := range summaries {
						log.Info().
							Str("mode", summary.Mode).
							Str("status", summary.Status).
							Int("arrivals", summary.ArrivalsReceived).
							Int("topics", summary.TopicsPublished).
							Msg("Refresh summary")
					}

					// Let the pacer drain what this cycle queued before stopping
					for publisher.PendingCount() > 0 {
						time.Sleep(notify.DefaultPacingInterval)
					}
					publisher.Stop(10 * time.Second)

					return nil
				},
			},
		},
	}
}
