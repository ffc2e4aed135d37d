package notify_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationly/stationly/pkg/notify"
)

type fakeSender struct {
	mutex   sync.Mutex
	batches [][]*notify.Message
	direct  []*notify.Message
}

func (s *fakeSender) SendBatch(_ context.Context, messages []*notify.Message) (notify.BatchResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	batch := make([]*notify.Message, len(messages))
	copy(batch, messages)
	s.batches = append(s.batches, batch)

	return notify.BatchResult{SuccessCount: len(messages)}, nil
}

func (s *fakeSender) Send(_ context.Context, message *notify.Message) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.direct = append(s.direct, message)
	return nil
}

func (s *fakeSender) sent() []*notify.Message {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var all []*notify.Message
	for _, batch := range s.batches {
		all = append(all, batch...)
	}
	return all
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPublisherDebounce(t *testing.T) {
	sender := &fakeSender{}
	publisher := notify.NewPublisher(sender, 20*time.Millisecond, 500)

	require.NoError(t, publisher.Publish("Station_S1", map[string]string{"v": "first"}))
	require.NoError(t, publisher.Publish("Station_S1", map[string]string{"v": "second"}))
	assert.Equal(t, 1, publisher.PendingCount())

	publisher.Start()
	defer publisher.Stop(time.Second)

	waitFor(t, func() bool { return len(sender.sent()) == 1 })

	messages := sender.sent()
	assert.Equal(t, "Station_S1", messages[0].Topic)
	assert.JSONEq(t, `{"v":"second"}`, messages[0].Data["payload"])
	assert.Zero(t, publisher.PendingCount())
}

func TestPublisherBatchCeiling(t *testing.T) {
	sender := &fakeSender{}
	publisher := notify.NewPublisher(sender, 20*time.Millisecond, 3)

	payloads := map[string]any{}
	for _, topic := range []string{"A", "B", "C", "D", "E"} {
		payloads["Station_"+topic] = map[string]string{"topic": topic}
	}
	assert.Equal(t, 5, publisher.PublishAll(payloads))

	publisher.Start()
	defer publisher.Stop(time.Second)

	waitFor(t, func() bool { return len(sender.sent()) == 5 })

	sender.mutex.Lock()
	defer sender.mutex.Unlock()
	require.GreaterOrEqual(t, len(sender.batches), 2)
	for _, batch := range sender.batches {
		assert.LessOrEqual(t, len(batch), 3)
	}
}

func TestPublisherClearSignalBypassesDebounce(t *testing.T) {
	sender := &fakeSender{}
	publisher := notify.NewPublisher(sender, time.Hour, 500)

	require.NoError(t, publisher.SendClearSignal(context.Background(), "Station_S1"))

	sender.mutex.Lock()
	defer sender.mutex.Unlock()
	require.Len(t, sender.direct, 1)
	assert.Equal(t, map[string]string{"action": "CLEAR"}, sender.direct[0].Data)
	assert.Empty(t, sender.batches)
}

func TestPublisherUnserializablePayloadSkipsTopic(t *testing.T) {
	sender := &fakeSender{}
	publisher := notify.NewPublisher(sender, time.Hour, 500)

	added := publisher.PublishAll(map[string]any{
		"Station_OK":  map[string]string{"v": "ok"},
		"Station_BAD": make(chan int),
	})

	assert.Equal(t, 1, added)
	assert.Equal(t, 1, publisher.PendingCount())
}

func TestPublisherStopHaltsTicks(t *testing.T) {
	sender := &fakeSender{}
	publisher := notify.NewPublisher(sender, 10*time.Millisecond, 500)

	publisher.Start()
	publisher.Stop(time.Second)

	require.NoError(t, publisher.Publish("Station_S1", map[string]string{"v": "late"}))
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, sender.sent())
	assert.Equal(t, 1, publisher.PendingCount())
}
