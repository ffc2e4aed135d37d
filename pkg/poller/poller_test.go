package poller_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationly/stationly/pkg/model"
	"github.com/stationly/stationly/pkg/poller"
	"github.com/stationly/stationly/pkg/transform"
)

type fakeSource struct {
	arrivals map[string][]model.ArrivalPrediction
	err      error
}

func (s *fakeSource) Arrivals(_ context.Context, mode string) ([]model.ArrivalPrediction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.arrivals[mode], nil
}

type fakePublisher struct {
	mutex    sync.Mutex
	payloads map[string]any
}

func (p *fakePublisher) PublishAll(topicPayloads map[string]any) int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.payloads == nil {
		p.payloads = map[string]any{}
	}
	for topic, payload := range topicPayloads {
		p.payloads[topic] = payload
	}

	return len(topicPayloads)
}

func arrival(naptanID string, lineID string, direction string, minutes int) model.ArrivalPrediction {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	return model.ArrivalPrediction{
		NaptanID:        naptanID,
		StationName:     "Station " + naptanID,
		LineID:          lineID,
		LineName:        lineID,
		Direction:       direction,
		DestinationName: "Somewhere",
		Towards:         "Somewhere",
		ExpectedArrival: base.Add(time.Duration(minutes) * time.Minute).Format(time.RFC3339),
	}
}

func TestRefreshModeSuccess(t *testing.T) {
	source := &fakeSource{arrivals: map[string][]model.ArrivalPrediction{
		"tube": {
			arrival("940GZZLUKSX", "victoria", "inbound", 2),
			arrival("940GZZLUKSX", "victoria", "inbound", 5),
			arrival("940GZZLUOXC", "central", "outbound", 1),
		},
	}}
	publisher := &fakePublisher{}
	orchestrator := &poller.Orchestrator{Source: source, Publisher: publisher, Modes: []string{"tube"}}

	summary := orchestrator.RefreshMode(context.Background(), "tube")

	assert.Equal(t, model.RefreshStatusSuccess, summary.Status)
	assert.Equal(t, 3, summary.ArrivalsReceived)
	assert.Equal(t, 2, summary.StationKeys)
	assert.Equal(t, 2, summary.TopicsPublished)

	assert.Contains(t, publisher.payloads, "Station_940GZZLUKSX")
	assert.Contains(t, publisher.payloads, "Station_940GZZLUOXC")
}

func TestRefreshModeNoData(t *testing.T) {
	source := &fakeSource{arrivals: map[string][]model.ArrivalPrediction{}}
	publisher := &fakePublisher{}
	orchestrator := &poller.Orchestrator{Source: source, Publisher: publisher, Modes: []string{"tube"}}

	summary := orchestrator.RefreshMode(context.Background(), "tube")

	assert.Equal(t, model.RefreshStatusNoData, summary.Status)
	assert.Zero(t, summary.ArrivalsReceived)
	assert.Empty(t, publisher.payloads)
}

func TestRefreshModeFailureDoesNotPropagate(t *testing.T) {
	source := &fakeSource{err: errors.New("tfl api returned status 503")}
	publisher := &fakePublisher{}
	orchestrator := &poller.Orchestrator{Source: source, Publisher: publisher, Modes: []string{"tube"}}

	summary := orchestrator.RefreshMode(context.Background(), "tube")

	assert.Equal(t, model.RefreshStatusFailed, summary.Status)
	assert.Contains(t, summary.Message, "503")
	assert.Empty(t, publisher.payloads)
}

func TestRefreshAllCoversEveryMode(t *testing.T) {
	source := &fakeSource{arrivals: map[string][]model.ArrivalPrediction{
		"tube": {arrival("940GZZLUKSX", "victoria", "inbound", 2)},
		"dlr":  {arrival("940GZZDLBNK", "dlr", "outbound", 4)},
	}}
	publisher := &fakePublisher{}
	orchestrator := &poller.Orchestrator{
		Source:    source,
		Publisher: publisher,
		Modes:     []string{"tube", "dlr", "tram"},
	}

	summaries := orchestrator.RefreshAll(context.Background())
	require.Len(t, summaries, 3)

	statuses := map[string]string{}
	for _, summary := range summaries {
		statuses[summary.Mode] = summary.Status
	}

	assert.Equal(t, model.RefreshStatusSuccess, statuses["tube"])
	assert.Equal(t, model.RefreshStatusSuccess, statuses["dlr"])
	assert.Equal(t, model.RefreshStatusNoData, statuses["tram"])
}

func TestRefreshModePrunesOversizedSnapshots(t *testing.T) {
	var arrivals []model.ArrivalPrediction
	for line := 0; line < 8; line++ {
		for minutes := 0; minutes < 10; minutes++ {
			arrivals = append(arrivals, arrival("940GZZLUKSX", fmt.Sprintf("line-%d", line), "inbound", minutes))
		}
	}

	source := &fakeSource{arrivals: map[string][]model.ArrivalPrediction{"tube": arrivals}}
	publisher := &fakePublisher{}
	orchestrator := &poller.Orchestrator{Source: source, Publisher: publisher, Modes: []string{"tube"}}

	summary := orchestrator.RefreshMode(context.Background(), "tube")
	require.Equal(t, model.RefreshStatusSuccess, summary.Status)

	payload, ok := publisher.payloads["Station_940GZZLUKSX"]
	require.True(t, ok)

	jsonBytes, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(jsonBytes), transform.MaxPayloadBytes)
}
