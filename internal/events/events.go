// Package events is a small generic pub-sub bus used to decouple the
// FailureDetector, Elector, and replica lifecycle from each other: nobody
// calls the Elector directly, they publish a LeaderLost event and let the
// Elector's subscriber react.
package events

import (
	"log"
	"sync"
	"sync/atomic"
)

// Type identifies a class of event on the bus.
type Type int

const (
	// LeaderLost is published by the FailureDetector when a follower's lease
	// has expired without a heartbeat. Payload: struct{}.
	LeaderLost Type = iota
	// ReplicaShutDown is published by a replica's GracefulShutdown and
	// ForceShutdown just before the bus itself shuts down. Payload: struct{}.
	ReplicaShutDown
)

// SubscriptionOptions configures delivery behavior for one subscriber.
type SubscriptionOptions struct {
	// IsBlocking, if true, blocks the bus's dispatch goroutine until this
	// subscriber's channel has room. Should generally be false so one slow
	// subscriber can't stall the bus.
	IsBlocking bool
}

// SubscriberID identifies a single subscription, returned by Subscribe.
type SubscriberID uint64

var nextSubscriberID uint64

// Event carries a typed payload for one instance of Type.
type Event[T any] struct {
	Type    Type
	Payload T
}

// New builds an Event.
func New[T any](t Type, payload T) *Event[T] {
	return &Event[T]{Type: t, Payload: payload}
}

// subscriber type-erases a chan *Event[T] behind two closures so subscribers
// of different payload types can share one registry map.
type subscriber struct {
	sendFunc   func(t Type, payload any) bool
	closeFunc  func()
	options    SubscriptionOptions
	numDropped uint64
}

// Bus implements the publish-subscribe pattern. Safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	wg       sync.WaitGroup
	registry map[Type]map[SubscriberID]*subscriber

	publishChan chan struct {
		t       Type
		payload any
	}

	shuttingDown atomic.Bool
}

// NewBus creates and starts a Bus's dispatch goroutine.
func NewBus() *Bus {
	b := &Bus{
		registry: make(map[Type]map[SubscriberID]*subscriber),
		publishChan: make(chan struct {
			t       Type
			payload any
		}, 100),
	}
	b.wg.Add(1)
	go b.run()
	return b
}

// Subscribe registers ch to receive events of type t. The caller owns ch and
// its buffer size. Returns an id usable with Unsubscribe.
func Subscribe[T any](b *Bus, t Type, ch chan *Event[T], opts SubscriptionOptions) SubscriberID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := SubscriberID(atomic.AddUint64(&nextSubscriberID, 1))
	sub := &subscriber{
		options: opts,
		sendFunc: func(evType Type, payload any) bool {
			typed, ok := payload.(T)
			if !ok {
				log.Printf("[events] type mismatch for event %v: expected %T, got %T", evType, *new(T), payload)
				return false
			}
			event := &Event[T]{Type: evType, Payload: typed}
			if opts.IsBlocking {
				ch <- event
				return true
			}
			select {
			case ch <- event:
				return true
			default:
				return false
			}
		},
		closeFunc: func() { close(ch) },
	}

	if _, ok := b.registry[t]; !ok {
		b.registry[t] = make(map[SubscriberID]*subscriber)
	}
	b.registry[t][id] = sub
	return id
}

// Unsubscribe removes and closes the subscription identified by id.
func (b *Bus) Unsubscribe(t Type, id SubscriberID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.registry[t]
	if !ok {
		return
	}
	sub, ok := subs[id]
	if !ok {
		return
	}
	delete(subs, id)
	sub.closeFunc()
	if len(subs) == 0 {
		delete(b.registry, t)
	}
}

// Publish broadcasts event to every current subscriber of its type.
func Publish[T any](b *Bus, event *Event[T]) {
	// Holding RLock here prevents a send-on-closed-channel race against
	// GracefulShutdown/ForceShutdown, both of which need the write lock to close
	// publishChan.
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.shuttingDown.Load() {
		return
	}

	b.publishChan <- struct {
		t       Type
		payload any
	}{t: event.Type, payload: event.Payload}
}

// ForceShutdown stops accepting new publishes and closes the bus immediately,
// without waiting for buffered events to drain.
func (b *Bus) ForceShutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shuttingDown.Swap(true) {
		return
	}
	close(b.publishChan)
}

// GracefulShutdown stops accepting new publishes, drains buffered events, and
// waits for the dispatch goroutine to exit.
func (b *Bus) GracefulShutdown() {
	b.mu.Lock()
	if b.shuttingDown.Load() {
		b.mu.Unlock()
		b.wg.Wait()
		return
	}
	b.shuttingDown.Store(true)
	close(b.publishChan)
	b.mu.Unlock()

	b.wg.Wait()
}

func (b *Bus) run() {
	defer b.wg.Done()

	for msg := range b.publishChan {
		b.mu.RLock()
		if subs, ok := b.registry[msg.t]; ok {
			for id, sub := range subs {
				if !sub.sendFunc(msg.t, msg.payload) && !sub.options.IsBlocking {
					atomic.AddUint64(&sub.numDropped, 1)
					log.Printf("[events] dropped event %v for subscriber %d (channel full)", msg.t, id)
				}
			}
		}
		b.mu.RUnlock()
	}
}
