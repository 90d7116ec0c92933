// Package fanout delivers values to a dynamic set of buffered subscribers.
package fanout

import "sync"

const defaultBuffer = 16

// Hub broadcasts to subscribers without blocking: a subscriber whose buffer is
// full misses that value.
type Hub[T any] struct {
	mu          sync.RWMutex
	nextID      int
	closed      bool
	subscribers map[int]chan T
}

func New[T any]() *Hub[T] {
	return &Hub[T]{subscribers: make(map[int]chan T)}
}

// Subscribe registers a subscriber. On a closed hub the returned channel is already closed.
func (h *Hub[T]) Subscribe(buffer int) (int, <-chan T) {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	ch := make(chan T, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return -1, ch
	}
	id := h.nextID
	h.nextID++
	h.subscribers[id] = ch
	return id, ch
}

func (h *Hub[T]) Unsubscribe(id int) {
	h.mu.Lock()
	ch, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()

	if ok {
		close(ch)
	}
}

func (h *Hub[T]) Publish(value T) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for _, ch := range h.subscribers {
		select {
		case ch <- value:
		default:
		}
	}
}

// Len returns the number of live subscribers.
func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close closes every subscriber channel and drops later publishes.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subscribers {
		delete(h.subscribers, id)
		close(ch)
	}
}
