package linestatus_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationly/stationly/pkg/linestatus"
	"github.com/stationly/stationly/pkg/model"
	"github.com/stationly/stationly/pkg/tfl"
)

type fakeAPI struct {
	statuses map[string][]tfl.Line
}

func (a *fakeAPI) LineStatuses(_ context.Context, mode string) ([]tfl.Line, error) {
	return a.statuses[mode], nil
}

type fakeStore struct {
	statuses []model.LineStatus
	upserts  [][]model.LineStatus
}

func (s *fakeStore) GetAll(_ context.Context) ([]model.LineStatus, error) {
	return s.statuses, nil
}

func (s *fakeStore) BatchUpsert(_ context.Context, statuses []model.LineStatus) error {
	s.upserts = append(s.upserts, statuses)
	return nil
}

type fakePublisher struct {
	payloads map[string]any
}

func (p *fakePublisher) PublishAll(topicPayloads map[string]any) int {
	if p.payloads == nil {
		p.payloads = map[string]any{}
	}
	for topic, payload := range topicPayloads {
		p.payloads[topic] = payload
	}
	return len(topicPayloads)
}

func goodService(lineID string, name string) tfl.Line {
	return tfl.Line{
		ID:   lineID,
		Name: name,
		LineStatuses: []tfl.LineStatus{
			{StatusSeverityDescription: "Good Service", Reason: ""},
		},
	}
}

func TestSyncNewLineGetsFillerReasonAndNotifies(t *testing.T) {
	api := &fakeAPI{statuses: map[string][]tfl.Line{
		"tube": {goodService("victoria", "Victoria")},
	}}
	store := &fakeStore{}
	publisher := &fakePublisher{}
	service := &linestatus.Service{API: api, Store: store, Publisher: publisher, Modes: []string{"tube"}}

	result, err := service.Sync(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Statuses, 1)
	status := result.Statuses[0]
	assert.Equal(t, "Good Service", status.StatusSeverityDescription)
	assert.Contains(t, linestatus.GoodServiceMessages, status.Reason)

	assert.Equal(t, 1, result.Changed)
	assert.Contains(t, publisher.payloads, "LineStatus_tube_victoria")
	require.Len(t, store.upserts, 1)
}

func TestSyncRepeatGoodServiceKeepsPinnedReasonAndStaysQuiet(t *testing.T) {
	pinned := linestatus.GoodServiceMessages[0]

	api := &fakeAPI{statuses: map[string][]tfl.Line{
		"tube": {goodService("victoria", "Victoria")},
	}}
	store := &fakeStore{statuses: []model.LineStatus{
		{
			ID:                        "victoria",
			Name:                      "Victoria",
			ModeName:                  "tube",
			StatusSeverityDescription: "Good Service",
			Reason:                    pinned,
		},
	}}
	publisher := &fakePublisher{}
	service := &linestatus.Service{API: api, Store: store, Publisher: publisher, Modes: []string{"tube"}}

	result, err := service.Sync(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Statuses, 1)
	assert.Equal(t, pinned, result.Statuses[0].Reason)

	assert.Zero(t, result.Changed)
	assert.Empty(t, publisher.payloads)
	// Statuses are still persisted to refresh their timestamps
	require.Len(t, store.upserts, 1)
}

func TestSyncSeverityChangeNotifies(t *testing.T) {
	api := &fakeAPI{statuses: map[string][]tfl.Line{
		"tube": {
			{
				ID:   "victoria",
				Name: "Victoria",
				LineStatuses: []tfl.LineStatus{
					{StatusSeverityDescription: "Minor Delays", Reason: "Signal failure at Brixton"},
				},
			},
		},
	}}
	store := &fakeStore{statuses: []model.LineStatus{
		{
			ID:                        "victoria",
			Name:                      "Victoria",
			ModeName:                  "tube",
			StatusSeverityDescription: "Good Service",
			Reason:                    linestatus.GoodServiceMessages[0],
		},
	}}
	publisher := &fakePublisher{}
	service := &linestatus.Service{API: api, Store: store, Publisher: publisher, Modes: []string{"tube"}}

	result, err := service.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Changed)
	require.Contains(t, publisher.payloads, "LineStatus_tube_victoria")

	published := publisher.payloads["LineStatus_tube_victoria"].(model.LineStatus)
	assert.Equal(t, "Minor Delays", published.StatusSeverityDescription)
	assert.Equal(t, "Signal failure at Brixton", published.Reason)
}

func TestSyncLineWithoutStatusesMapsToUnknown(t *testing.T) {
	api := &fakeAPI{statuses: map[string][]tfl.Line{
		"tube": {{ID: "victoria", Name: "Victoria"}},
	}}
	store := &fakeStore{}
	publisher := &fakePublisher{}
	service := &linestatus.Service{API: api, Store: store, Publisher: publisher, Modes: []string{"tube"}}

	result, err := service.Sync(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Statuses, 1)
	assert.Equal(t, "Unknown", result.Statuses[0].StatusSeverityDescription)
	assert.Empty(t, result.Statuses[0].Reason)
}

func TestGetStatusesFilters(t *testing.T) {
	store := &fakeStore{statuses: []model.LineStatus{
		{ID: "victoria", ModeName: "tube", StatusSeverityDescription: "Good Service"},
		{ID: "northern", ModeName: "tube", StatusSeverityDescription: "Minor Delays"},
		{ID: "tram", ModeName: "tram", StatusSeverityDescription: "Good Service"},
	}}
	service := &linestatus.Service{Store: store}

	tube, err := service.GetStatuses(context.Background(), "", "tube")
	require.NoError(t, err)
	assert.Len(t, tube, 2)

	victoria, err := service.GetStatuses(context.Background(), "victoria", "tube")
	require.NoError(t, err)
	require.Len(t, victoria, 1)
	assert.Equal(t, "victoria", victoria[0].ID)
}
