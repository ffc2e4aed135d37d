package topology

import (
	"context"
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"

	"github.com/stationly/stationly/pkg/redis_client"
)

const SyncQueueName = "station-sync"

// SyncJob asks a consumer to refresh one line's stations.
type SyncJob struct {
	LineID   string `json:"lineId"`
	ModeName string `json:"modeName"`
}

// EnqueueModeSync publishes a sync job per line of a mode, so a consumer
// fleet can work through them instead of one process syncing everything.
func (e *Engine) EnqueueModeSync(ctx context.Context, modeName string) (int, error) {
	lines, err := e.API.Lines(ctx, modeName)
	if err != nil {
		return 0, err
	}

	queue, err := redis_client.QueueConnection.OpenQueue(SyncQueueName)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, line := range lines {
		jobBytes, err := json.Marshal(SyncJob{LineID: line.ID, ModeName: modeName})
		if err != nil {
			return published, err
		}

		if err := queue.PublishBytes(jobBytes); err != nil {
			return published, err
		}
		published++
	}

	log.Info().Str("mode", modeName).Int("jobs", published).Msg("Enqueued line sync jobs")

	return published, nil
}

// SyncBatchConsumer drains line sync jobs from the queue.
type SyncBatchConsumer struct {
	Engine *Engine
}

func NewSyncBatchConsumer(engine *Engine) *SyncBatchConsumer {
	return &SyncBatchConsumer{Engine: engine}
}

func (c *SyncBatchConsumer) Consume(batch rmq.Deliveries) {
	for _, payload := range batch.Payloads() {
		var job SyncJob
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			log.Error().Err(err).Msg("Failed to decode sync job")
			continue
		}

		if _, err := c.Engine.SyncLine(context.Background(), job.LineID, job.ModeName); err != nil {
			log.Error().Err(err).Str("line", job.LineID).Msg("Failed to sync line from queue")
		}
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Fatal().Err(err).Msg("Failed to consume from queue")
		}
	}
}
