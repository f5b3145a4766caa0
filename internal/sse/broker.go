package sse

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	redisclient "github.com/swaplane/exchange-server-go/internal/redis"
)

const (
	HeartbeatInterval = 30 * time.Second
)

// Event is a single server-sent event. Data carries the session snapshot
// delta as raw JSON.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Stream is one connected client for one account. Events is buffered; a
// slow consumer drops events rather than blocking the broker.
type Stream struct {
	AccountID string
	Events    chan Event
	Done      chan struct{}
}

// Broker fans session updates out to connected clients. Publishes go through
// Redis pub/sub so every server instance sees them, regardless of which
// instance holds the client connection.
type Broker struct {
	redis   *redisclient.Client
	streams map[string]map[*Stream]bool // accountID -> set of streams
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewBroker(redisClient *redisclient.Client) *Broker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		redis:   redisClient,
		streams: make(map[string]map[*Stream]bool),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Subscribe registers a new stream for the account. The first stream for an
// account starts the Redis subscription; later streams share it.
func (b *Broker) Subscribe(accountID string) *Stream {
	stream := &Stream{
		AccountID: accountID,
		Events:    make(chan Event, 100),
		Done:      make(chan struct{}),
	}

	b.mu.Lock()
	if b.streams[accountID] == nil {
		b.streams[accountID] = make(map[*Stream]bool)
		go b.consumeRedis(accountID)
	}
	b.streams[accountID][stream] = true
	streamCount := len(b.streams[accountID])
	b.mu.Unlock()

	log.Info().
		Str("accountId", accountID).
		Int("streamCount", streamCount).
		Msg("sse stream subscribed")

	return stream
}

func (b *Broker) Unsubscribe(stream *Stream) {
	b.mu.Lock()
	defer b.mu.Unlock()

	streams, ok := b.streams[stream.AccountID]
	if !ok {
		return
	}
	delete(streams, stream)
	close(stream.Done)

	if len(streams) == 0 {
		delete(b.streams, stream.AccountID)
	}

	log.Info().
		Str("accountId", stream.AccountID).
		Int("streamCount", len(streams)).
		Msg("sse stream unsubscribed")
}

// Publish sends the event to every stream of the account, across all server
// instances.
func (b *Broker) Publish(ctx context.Context, accountID string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.redis.Publish(ctx, redisclient.SessionChannel(accountID), data).Err()
}

func (b *Broker) consumeRedis(accountID string) {
	channel := redisclient.SessionChannel(accountID)
	pubsub := b.redis.Subscribe(b.ctx, channel)
	defer pubsub.Close()

	log.Debug().
		Str("accountId", accountID).
		Str("channel", channel).
		Msg("redis pubsub subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Error().Err(err).Msg("failed to unmarshal session event")
				continue
			}
			b.deliver(accountID, event)
		}
	}
}

func (b *Broker) deliver(accountID string, event Event) {
	b.mu.RLock()
	streams := b.streams[accountID]
	b.mu.RUnlock()

	for stream := range streams {
		select {
		case stream.Events <- event:
		default:
			log.Warn().
				Str("accountId", accountID).
				Msg("stream buffer full, dropping event")
		}
	}
}

func (b *Broker) Close() {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, streams := range b.streams {
		for stream := range streams {
			close(stream.Done)
		}
	}
	b.streams = make(map[string]map[*Stream]bool)
}

func (b *Broker) StreamCount(accountID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.streams[accountID])
}
