// Package notify broadcasts per-collection change events over Redis pub/sub.
// Consumers treat an event as an invalidation signal and re-run their query;
// no delta is carried.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"pingslot/internal/logger"
	"pingslot/internal/metrics"
)

const (
	CollectionReservations = "reservations"
	CollectionInvitations  = "invitations"
	CollectionWeekSlots    = "week_slots"
	CollectionWeekHours    = "week_hours"
	CollectionOpenedSlots  = "opened_slots"
	CollectionTemplates    = "templates"
	CollectionSettings     = "settings"
)

const channelPrefix = "pingslot:changes:"

// Event signals that something changed in a collection.
type Event struct {
	Collection string    `json:"collection"`
	At         time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, collection string)
}

type RedisPublisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish is fire-and-forget: a failed publish is logged, never surfaced to
// the caller, since the write it signals has already committed.
func (p *RedisPublisher) Publish(ctx context.Context, collection string) {
	if err := p.rdb.Publish(ctx, ChannelFor(collection), time.Now().UTC().Format(time.RFC3339Nano)).Err(); err != nil {
		logger.Error("failed to publish change event", "collection", collection, "error", err.Error())
		return
	}
	metrics.ChangeEventsPublished.WithLabelValues(collection).Inc()
}

// NopPublisher discards events; used in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string) {}

func ChannelFor(collection string) string {
	return channelPrefix + collection
}

// Subscription is a live change-event feed for one collection. Cancel stops
// the feed and releases the underlying pub/sub connection.
type Subscription struct {
	pubsub *redis.PubSub
	done   chan struct{}
	once   sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		_ = s.pubsub.Close()
	})
}

type Subscriber struct {
	rdb *redis.Client
}

func NewSubscriber(rdb *redis.Client) *Subscriber {
	return &Subscriber{rdb: rdb}
}

// Subscribe invokes fn for every change event on the collection until the
// returned subscription is cancelled or ctx ends.
func (s *Subscriber) Subscribe(ctx context.Context, collection string, fn func(Event)) *Subscription {
	pubsub := s.rdb.Subscribe(ctx, ChannelFor(collection))
	sub := &Subscription{pubsub: pubsub, done: make(chan struct{})}

	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				sub.Cancel()
				return
			case <-sub.done:
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				at, err := time.Parse(time.RFC3339Nano, msg.Payload)
				if err != nil {
					at = time.Now().UTC()
				}
				fn(Event{Collection: collection, At: at})
			}
		}
	}()

	return sub
}
