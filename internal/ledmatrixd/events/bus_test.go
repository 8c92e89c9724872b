package events

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishDeliversToSubscriber(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	sub := bus.Subscribe(TopicPlaylist)
	defer sub.Close()

	bus.Publish(TopicPlaylist, "hello")

	select {
	case env := <-sub.C():
		assert.Equal(t, TopicPlaylist, env.Topic)
		assert.Equal(t, "hello", env.Payload)
		assert.False(t, env.Resync)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_PublishDoesNotCrossTopics(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	sub := bus.Subscribe(TopicBrightness)
	defer sub.Close()

	bus.Publish(TopicPlaylist, "irrelevant")

	select {
	case env := <-sub.C():
		t.Fatalf("unexpected event on unrelated topic: %+v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_DropOldestMarksResync(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	sub := bus.Subscribe(TopicPlaylist)
	defer sub.Close()

	for i := 0; i < subscriberQueueSize+1; i++ {
		bus.Publish(TopicPlaylist, i)
	}

	var lastResync bool
	var count int
drain:
	for {
		select {
		case env := <-sub.C():
			count++
			lastResync = env.Resync
		default:
			break drain
		}
	}

	require.Equal(t, subscriberQueueSize, count)
	assert.True(t, lastResync)
}

func TestBus_CloseStopsDelivery(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	sub := bus.Subscribe(TopicEditor)
	sub.Close()

	assert.NotPanics(t, func() {
		bus.Publish(TopicEditor, "after close")
	})

	_, ok := <-sub.C()
	assert.False(t, ok)
}
