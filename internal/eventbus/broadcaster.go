// Package eventbus fans values out to any number of subscribers.
package eventbus

import "sync"

const subscriberBuffer = 16

// Broadcaster is a type-safe publish/subscribe bus for values of type T. It
// remembers the last published value and hands it to new subscribers first.
type Broadcaster[T any] struct {
	mu      sync.RWMutex
	subs    []chan T
	latest  T
	hasLast bool
	dropped uint64
	closed  bool
}

// New creates a Broadcaster.
func New[T any]() *Broadcaster[T] { return &Broadcaster[T]{} }

// Publish sends v to all subscribers. Delivery is non-blocking: a subscriber
// whose buffer is full misses v.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.latest, b.hasLast = v, true
	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
			b.dropped++
		}
	}
}

// Latest returns the last published value.
func (b *Broadcaster[T]) Latest() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest, b.hasLast
}

// Dropped returns how many deliveries were skipped because a subscriber was slow.
func (b *Broadcaster[T]) Dropped() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Subscribe registers a subscriber and returns its channel. The latest value,
// if any, is already queued on it.
func (b *Broadcaster[T]) Subscribe() <-chan T {
	ch := make(chan T, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	if b.hasLast {
		ch <- b.latest
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Broadcaster[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes the bus and all subscriber channels.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
