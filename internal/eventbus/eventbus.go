package eventbus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/videopipeline/internal/logger"
	"github.com/abdul-hamid-achik/videopipeline/internal/metrics"
	"github.com/redis/go-redis/v9"
)

type EventType string

const (
	UploadCompleted      EventType = "UploadCompleted"
	TranscodingStarted   EventType = "TranscodingStarted"
	TranscodingProgress  EventType = "TranscodingProgress"
	TranscodingCompleted EventType = "TranscodingCompleted"
	TranscodingFailed    EventType = "TranscodingFailed"
)

// BrokerChannel is the fixed external broker channel name all published
// events are serialized onto.
const BrokerChannel = "video-events"

type Event struct {
	Type      EventType   `json:"type"`
	VideoID   string      `json:"videoId"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Subscriber receives events in emission order for events it was handed;
// the bus guarantees in-order delivery per (video, resolution) pair but
// never blocks waiting on a slow subscriber. Publish sends into a
// per-subscriber buffered channel and drops on overflow.
type Subscriber struct {
	ID string
	C  chan Event
}

// Bus fans events out to two sinks, both best-effort: process-local
// synchronous delivery to subscribers (the live client gateway), and an
// optional external broker Publish on BrokerChannel. Broker absence never
// blocks or fails emission: enqueue and swallow, never propagate a broker
// failure back into the caller's request path.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber

	redis *redis.Client
}

func New(redisClient *redis.Client) *Bus {
	return &Bus{
		subscribers: make(map[string]*Subscriber),
		redis:       redisClient,
	}
}

func (b *Bus) Subscribe(id string) *Subscriber {
	sub := &Subscriber{ID: id, C: make(chan Event, 64)}
	b.mu.Lock()
	b.subscribers[id] = sub
	b.mu.Unlock()
	return sub
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	sub, ok := b.subscribers[id]
	delete(b.subscribers, id)
	b.mu.Unlock()
	if ok {
		close(sub.C)
	}
}

// Publish dispatches ev to every local subscriber synchronously (in the
// caller's goroutine, preserving the emission order the caller issued
// events in) and fires a best-effort broker publish in the background.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.RLock()
	subs := make([]*Subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.C <- ev:
			metrics.RecordEventPublish("local", "success")
		default:
			metrics.RecordEventPublish("local", "dropped")
			logger.FromContext(ctx).Warn("event bus subscriber buffer full, dropping event", "subscriber", sub.ID, "event_type", ev.Type)
		}
	}

	if b.redis == nil {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to marshal event for broker publish", "error", err)
		metrics.RecordEventPublish("broker", "error")
		return
	}

	go func() {
		if err := b.redis.Publish(context.Background(), BrokerChannel, payload).Err(); err != nil {
			logger.FromContext(ctx).Warn("broker publish failed, continuing in local-only mode", "channel", BrokerChannel, "error", err)
			metrics.RecordEventPublish("broker", "error")
			return
		}
		metrics.RecordEventPublish("broker", "success")
	}()
}
