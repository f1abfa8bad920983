// Package queue provides a generic in-memory queue.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/viant/mgmtflow/internal/idgen"
)

// ErrClosed is returned when publishing to, or consuming from a drained, closed queue.
var ErrClosed = errors.New("queue was closed")

// Config for the queue.
type Config struct {
	Buffer int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Buffer: 100}
}

// Message is a queued payload.
type Message[T any] struct {
	id        string
	payload   T
	mu        sync.Mutex
	processed bool
	createdAt time.Time
}

// ID returns the message id.
func (m *Message[T]) ID() string {
	return m.id
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.payload
}

// CreatedAt returns the publish time.
func (m *Message[T]) CreatedAt() time.Time {
	return m.createdAt
}

// Ack marks the message as processed.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message %v already processed", m.id)
	}
	m.processed = true
	return nil
}

// Queue is a buffered in-memory queue.
type Queue[T any] struct {
	messages chan *Message[T]
	mu       sync.RWMutex
	closed   bool
}

// New creates a queue.
func New[T any](config Config) *Queue[T] {
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	return &Queue[T]{messages: make(chan *Message[T], config.Buffer)}
}

// Publish adds a copy of t to the queue, blocking while the buffer is full.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	msg := &Message[T]{id: idgen.New(), payload: *t, createdAt: time.Now()}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume returns the next message. After Close it drains remaining
// messages and then returns ErrClosed.
func (q *Queue[T]) Consume(ctx context.Context) (*Message[T], error) {
	select {
	case msg, ok := <-q.messages:
		if !ok {
			return nil, ErrClosed
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the number of pending messages.
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// Close stops accepting messages.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.messages)
}
