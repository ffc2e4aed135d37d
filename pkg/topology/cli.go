package topology

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/stationly/stationly/pkg/consumer"
	"github.com/stationly/stationly/pkg/database"
	"github.com/stationly/stationly/pkg/indexer"
	"github.com/stationly/stationly/pkg/redis_client"
	"github.com/stationly/stationly/pkg/repository"
	"github.com/stationly/stationly/pkg/tfl"
	"github.com/stationly/stationly/pkg/util"
)

// NewEngine wires the sync engine against Mongo and, when available,
// Elasticsearch. The caller supplies the upstream client so every service in
// a process shares one rate limiter.
func NewEngine(api API) *Engine {
	env := util.GetEnvironmentVariables()

	engine := &Engine{
		API:   api,
		Store: repository.Stations(),
	}

	if env["STATIONLY_ELASTICSEARCH_ADDRESS"] != "" {
		engine.Index = indexer.GlobalIndexer
	}

	return engine
}

func newClient() *tfl.Client {
	env := util.GetEnvironmentVariables()

	return tfl.NewClient(env["STATIONLY_TFL_APP_KEY"])
}

func configuredModes() []string {
	env := util.GetEnvironmentVariables()

	var modes []string
	for _, mode := range strings.Split(env["STATIONLY_TFL_MODES"], ",") {
		mode = strings.TrimSpace(mode)
		if mode != "" {
			modes = append(modes, mode)
		}
	}

	return modes
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "topology",
		Usage: "Station topology sync against the TfL API",
		Subcommands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "sync stations for every configured mode",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := indexer.Connect(false); err != nil {
						return err
					}

					engine := NewEngine(newClient())
					for _, mode := range configuredModes() {
						if _, err := engine.SyncMode(c.Context, mode); err != nil {
							return err
						}
					}

					return nil
				},
			},
			{
				Name:  "sync-line",
				Usage: "sync stations for a single line",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "line", Usage: "line id to sync", Required: true},
					&cli.StringFlag{Name: "mode", Usage: "transport mode of the line", Required: true},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := indexer.Connect(false); err != nil {
						return err
					}

					engine := NewEngine(newClient())
					_, err := engine.SyncLine(c.Context, c.String("line"), c.String("mode"))

					return err
				},
			},
			{
				Name:  "enqueue",
				Usage: "publish line sync jobs for every configured mode",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					engine := NewEngine(newClient())
					for _, mode := range configuredModes() {
						if _, err := engine.EnqueueModeSync(c.Context, mode); err != nil {
							return err
						}
					}

					return nil
				},
			},
			{
				Name:  "consumer",
				Usage: "run the line sync job consumer",
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

					redisConsumer := consumer.RedisConsumer{
						QueueName:       SyncQueueName,
						NumberConsumers: 2,
						BatchSize:       5,
						Timeout:         2 * time.Second,
						Consumer:        NewSyncBatchConsumer(NewEngine(newClient())),
					}
					redisConsumer.Setup()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming()

					return nil
				},
			},
		},
	}
}
