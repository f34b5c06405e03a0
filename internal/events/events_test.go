package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CS2620DagOleg/distributed-hf-monitor/internal/events"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := events.NewBus()
	defer bus.GracefulShutdown()

	ch := make(chan *events.Event[struct{}], 1)
	events.Subscribe(bus, events.LeaderLost, ch, events.SubscriptionOptions{})

	events.Publish(bus, events.New(events.LeaderLost, struct{}{}))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := events.NewBus()
	defer bus.GracefulShutdown()

	ch := make(chan *events.Event[struct{}], 1)
	id := events.Subscribe(bus, events.LeaderLost, ch, events.SubscriptionOptions{})
	bus.Unsubscribe(events.LeaderLost, id)

	events.Publish(bus, events.New(events.LeaderLost, struct{}{}))

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed after unsubscribe")
	case <-time.After(200 * time.Millisecond):
		t.Fatal("unsubscribed channel never closed")
	}
}

func TestGracefulShutdownDrainsBufferedEvents(t *testing.T) {
	bus := events.NewBus()
	ch := make(chan *events.Event[struct{}], 4)
	events.Subscribe(bus, events.ReplicaShutDown, ch, events.SubscriptionOptions{})

	for i := 0; i < 3; i++ {
		events.Publish(bus, events.New(events.ReplicaShutDown, struct{}{}))
	}
	bus.GracefulShutdown()

	received := 0
drain:
	for {
		select {
		case <-ch:
			received++
		case <-time.After(100 * time.Millisecond):
			break drain
		}
	}
	require.Equal(t, 3, received)
}
