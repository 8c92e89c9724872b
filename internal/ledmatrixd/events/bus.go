// Package events implements the control plane's publish/subscribe fan-out:
// one bounded-queue topic per kind of state change, with a drop-oldest
// backpressure policy for slow subscribers.
package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// Topic names one of the three event kinds the control plane publishes.
type Topic string

const (
	TopicPlaylist   Topic = "playlist"
	TopicBrightness Topic = "brightness"
	TopicEditor     Topic = "editor"
)

// subscriberQueueSize bounds each subscriber's backlog before the bus starts
// dropping the oldest queued event in favor of the newest one.
const subscriberQueueSize = 32

// Envelope wraps a published payload with the topic it belongs to and
// whether the subscriber missed events before it (Resync), in which case
// the transport layer should treat it as "re-send the full state" rather
// than an incremental update.
type Envelope struct {
	Topic   Topic
	Payload any
	Resync  bool
}

// Subscription is a handle onto one subscriber's queue for one topic.
type Subscription struct {
	topic Topic
	ch    chan Envelope
	bus   *Bus
}

// C returns the channel of events for this subscription. It is closed when
// the subscription is closed.
func (s *Subscription) C() <-chan Envelope {
	return s.ch
}

// Close unregisters the subscription and releases its queue. Safe to call
// more than once.
func (s *Subscription) Close() {
	s.bus.unsubscribe(s)
}

// Bus is an MPMC broadcaster with one independent queue per (topic,
// subscriber) pair. Publish never blocks: a subscriber whose queue is full
// has its oldest queued event evicted, and the event that takes its place
// is marked Resync so the subscriber can recover by re-fetching full state.
type Bus struct {
	mu     sync.Mutex
	subs   map[Topic]map[*Subscription]struct{}
	logger zerolog.Logger
}

// NewBus creates an empty event bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		subs:   make(map[Topic]map[*Subscription]struct{}),
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// Subscribe registers a new subscriber on topic and returns its handle.
func (b *Bus) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan Envelope, subscriberQueueSize),
		bus:   b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[*Subscription]struct{})
	}
	b.subs[topic][sub] = struct{}{}

	return sub
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if set, ok := b.subs[sub.topic]; ok {
		if _, present := set[sub]; present {
			delete(set, sub)
			close(sub.ch)
		}
	}
}

// Publish fans payload out to every subscriber of topic. Never blocks.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subs[topic]))
	for sub := range b.subs[topic] {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	env := Envelope{Topic: topic, Payload: payload}
	for _, sub := range subs {
		b.deliver(sub, env)
	}
}

// deliver performs the non-blocking send with drop-oldest overflow.
func (b *Bus) deliver(sub *Subscription, env Envelope) {
	select {
	case sub.ch <- env:
		return
	default:
	}

	// Queue is full: evict the oldest entry and mark this one as a resync
	// point so the receiver knows it missed something in between.
	select {
	case <-sub.ch:
		b.logger.Warn().Str("topic", string(env.Topic)).Msg("subscriber queue full, dropping oldest event")
	default:
	}

	env.Resync = true
	select {
	case sub.ch <- env:
	default:
		// A concurrent publish refilled the queue before we could insert;
		// the next publish will still carry Resync-worthy state via a
		// fresh drop-oldest cycle, so it's safe to give up on this one.
	}
}
