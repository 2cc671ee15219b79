// Package notify fans values out to subscribers and carries user-facing notices.
package notify

import "sync"

type Subscriber[T any] struct {
	C chan T
}

// Broadcaster delivers each value to every subscriber without blocking; a full subscriber misses it.
type Broadcaster[T any] struct {
	subscribers map[*Subscriber[T]]bool
	mu          sync.RWMutex
}

func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		subscribers: make(map[*Subscriber[T]]bool),
	}
}

func (b *Broadcaster[T]) Subscribe(buffer int) *Subscriber[T] {
	s := &Subscriber[T]{C: make(chan T, buffer)}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[s] = true
	return s
}

// Unsubscribe closes the subscriber's channel. Calling it twice is harmless.
func (b *Broadcaster[T]) Unsubscribe(s *Subscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.subscribers[s] {
		return
	}
	delete(b.subscribers, s)
	close(s.C)
}

func (b *Broadcaster[T]) Broadcast(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subscribers {
		select {
		case s.C <- v:
		default:
		}
	}
}

func (b *Broadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
