package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// Drain cadence and batch ceiling. 500 messages is the most FCM accepts
	// in one sendEach call; bigger batches amortize the round trip better
	// than many small ones.
	DefaultPacingInterval  = 500 * time.Millisecond
	DefaultMessagesPerTick = 500
)

// Message is one pending push notification addressed to a topic.
type Message struct {
	Topic string
	Data  map[string]string
}

type BatchResult struct {
	SuccessCount int
	FailureCount int
}

// Sender delivers messages to the push backend.
type Sender interface {
	SendBatch(ctx context.Context, messages []*Message) (BatchResult, error)
	Send(ctx context.Context, message *Message) error
}

// Publisher is a debounced, rate-paced batch delivery engine. Publish upserts
// the latest payload per topic into a pending map; a background pacer loop
// drains up to a batch worth of entries every tick and hands them to the
// Sender in one call. Failed topics are not retried - the next poll cycle's
// fresh state supersedes them.
type Publisher struct {
	sender   Sender
	interval time.Duration
	perTick  int

	mutex   sync.Mutex
	pending map[string]*Message

	stop chan struct{}
	done chan struct{}
}

func NewPublisher(sender Sender, interval time.Duration, perTick int) *Publisher {
	if interval <= 0 {
		interval = DefaultPacingInterval
	}
	if perTick <= 0 {
		perTick = DefaultMessagesPerTick
	}

	return &Publisher{
		sender:   sender,
		interval: interval,
		perTick:  perTick,
		pending:  map[string]*Message{},
	}
}

// Start launches the pacer loop. Stop must be called to shut it down.
func (p *Publisher) Start() {
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	go p.pacerLoop()

	log.Info().
		Dur("interval", p.interval).
		Int("pertick", p.perTick).
		Msg("Started notification pacer")
}

// Stop signals the pacer loop and waits for it to finish. An in-flight batch
// send is allowed to complete; no new tick starts after Stop is signalled.
func (p *Publisher) Stop(timeout time.Duration) {
	if p.stop == nil {
		return
	}
	close(p.stop)

	select {
	case <-p.done:
	case <-time.After(timeout):
		log.Warn().Msg("Notification pacer did not stop in time")
	}
}

func (p *Publisher) pacerLoop() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.drain()
		}
	}
}

func (p *Publisher) drain() {
	p.mutex.Lock()
	batch := make([]*Message, 0, p.perTick)
	for topic, message := range p.pending {
		if len(batch) == p.perTick {
			break
		}

		batch = append(batch, message)
		delete(p.pending, topic)
	}
	remaining := len(p.pending)
	p.mutex.Unlock()

	if len(batch) == 0 {
		return
	}

	result, err := p.sender.SendBatch(context.Background(), batch)
	if err != nil {
		log.Error().Err(err).Int("length", len(batch)).Msg("Failed to send notification batch")
		return
	}

	if result.FailureCount > 0 {
		log.Warn().
			Int("failures", result.FailureCount).
			Int("length", len(batch)).
			Msg("Notification batch completed with failures")
	} else {
		log.Debug().Int("length", len(batch)).Int("remaining", remaining).Msg("Sent notification batch")
	}
}

// Publish upserts the latest payload for a topic. A payload already pending
// for the same topic is replaced, never queued twice.
func (p *Publisher) Publish(topic string, payload any) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	p.mutex.Lock()
	p.pending[topic] = &Message{
		Topic: topic,
		Data:  map[string]string{"payload": string(jsonPayload)},
	}
	p.mutex.Unlock()

	return nil
}

// PublishAll upserts a payload per topic and returns how many were accepted.
// A payload that fails to serialize only skips its own topic.
func (p *Publisher) PublishAll(topicPayloads map[string]any) int {
	added := 0
	for topic, payload := range topicPayloads {
		if err := p.Publish(topic, payload); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Failed to build notification payload")
			continue
		}
		added++
	}

	return added
}

// SendClearSignal tells a topic's subscribers to reset local state. It
// bypasses the debounce map and goes out immediately.
func (p *Publisher) SendClearSignal(ctx context.Context, topic string) error {
	return p.sender.Send(ctx, &Message{
		Topic: topic,
		Data:  map[string]string{"action": "CLEAR"},
	})
}

// PendingCount reports how many topics currently await delivery.
func (p *Publisher) PendingCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return len(p.pending)
}
