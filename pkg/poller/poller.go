package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/stationly/stationly/pkg/model"
	"github.com/stationly/stationly/pkg/transform"
)

// ArrivalSource is the slice of the TfL client the poller needs.
type ArrivalSource interface {
	Arrivals(ctx context.Context, mode string) ([]model.ArrivalPrediction, error)
}

// Publisher accepts a batch of topic payloads for debounced delivery.
type Publisher interface {
	PublishAll(topicPayloads map[string]any) int
}

// Orchestrator drives the poll-transform-publish cycle. Each configured mode
// is refreshed independently; one mode failing never stops the others, the
// outcome is reported per mode as a RefreshSummary instead.
type Orchestrator struct {
	Source    ArrivalSource
	Publisher Publisher
	Modes     []string
}

// RefreshAll refreshes every configured mode concurrently.
func (o *Orchestrator) RefreshAll(ctx context.Context) []model.RefreshSummary {
	startTime := time.Now()

	p := pool.NewWithResults[model.RefreshSummary]()
	for _, mode := range o.Modes {
		mode := mode
		p.Go(func() model.RefreshSummary {
			return o.RefreshMode(ctx, mode)
		})
	}
	summaries := p.Wait()

	log.Info().
		Int("modes", len(o.Modes)).
		Dur("duration", time.Since(startTime)).
		Msg("Refresh cycle completed")

	return summaries
}

// RefreshMode runs one poll cycle for a mode. Errors never propagate; they
// come back as a FAILED summary so a scheduler can keep cycling.
func (o *Orchestrator) RefreshMode(ctx context.Context, mode string) model.RefreshSummary {
	startTime := time.Now()
	summary := model.RefreshSummary{
		Mode:      mode,
		Timestamp: startTime,
	}

	arrivals, err := o.Source.Arrivals(ctx, mode)
	if err != nil {
		log.Error().Err(err).Str("mode", mode).Msg("Failed to fetch arrivals")

		summary.Status = model.RefreshStatusFailed
		summary.ProcessingTime = time.Since(startTime)
		summary.Message = err.Error()
		return summary
	}

	if len(arrivals) == 0 {
		log.Warn().Str("mode", mode).Msg("No arrivals received")

		summary.Status = model.RefreshStatusNoData
		summary.ProcessingTime = time.Since(startTime)
		summary.Message = "no arrivals received for mode " + mode
		return summary
	}

	stationGroups := transform.Transform(arrivals)

	topicPayloads := make(map[string]any, len(stationGroups))
	for topic, station := range stationGroups {
		result := transform.Prune(station, transform.MaxPayloadBytes)
		if result.Exhausted {
			// Still published: a partial snapshot beats clients keeping a
			// stale one
			log.Warn().
				Str("topic", topic).
				Int("bytes", result.Bytes).
				Msg("Snapshot still over size limit after pruning")
		}

		topicPayloads[topic] = station
	}

	published := o.Publisher.PublishAll(topicPayloads)

	summary.Status = model.RefreshStatusSuccess
	summary.ArrivalsReceived = len(arrivals)
	summary.StationKeys = len(stationGroups)
	summary.TopicsPublished = published
	summary.ProcessingTime = time.Since(startTime)

	log.Info().
		Str("mode", mode).
		Int("arrivals", summary.ArrivalsReceived).
		Int("stations", summary.StationKeys).
		Int("topics", summary.TopicsPublished).
		Dur("duration", summary.ProcessingTime).
		Msg("Mode refresh completed")

	return summary
}

// Run refreshes continuously until the context is cancelled. The first cycle
// starts immediately.
func (o *Orchestrator) Run(ctx context.Context, interval time.Duration) {
	log.Info().Dur("interval", interval).Strs("modes", o.Modes).Msg("Starting poller")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	o.RefreshAll(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping poller")
			return
		case <-ticker.C:
			o.RefreshAll(ctx)
		}
	}
}
