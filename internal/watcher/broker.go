package watcher

import (
	"context"
	"sync"

	"github.com/newhook/playlog/internal/logging"
)

// subscriberBuffer is the number of undelivered events a subscriber may hold.
const subscriberBuffer = 64

// Event wraps a published payload.
type Event[T any] struct {
	Payload T
}

// Broker fans published payloads out to every live subscriber.
type Broker[T any] struct {
	mu     sync.Mutex
	subs   map[chan Event[T]]struct{}
	closed bool
	// done is closed by Shutdown to release the per-subscriber goroutines.
	done chan struct{}
}

// NewBroker creates an empty broker.
func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{
		subs: make(map[chan Event[T]]struct{}),
		done: make(chan struct{}),
	}
}

// Subscribe returns a channel of events that is closed when ctx is done or the broker shuts down.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	ch := make(chan Event[T], subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(ch)
		case <-b.done:
		}
	}()
	return ch
}

func (b *Broker[T]) unsubscribe(ch chan Event[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish delivers payload to every subscriber. A subscriber whose buffer is full misses it.
func (b *Broker[T]) Publish(payload T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- Event[T]{Payload: payload}:
		default:
			logging.Component("watcher").Warn("dropping event for slow subscriber")
		}
	}
}

// Shutdown closes every subscriber channel. Later calls do nothing.
func (b *Broker[T]) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	close(b.done)
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
	b.closed = true
}
