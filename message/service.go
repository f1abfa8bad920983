package message

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/viant/mgmtflow/internal/queue"
)

// Handler receives published messages.
type Handler func(msg *Message)

// Service delivers published messages to subscribers asynchronously, in
// publish order.
type Service struct {
	queue    *queue.Queue[Message]
	logger   logrus.FieldLogger
	mux      sync.RWMutex
	handlers []Handler
	done     chan struct{}
}

// Option customises the service.
type Option func(s *Service)

// WithLogger sets the logger, by default messages are not logged.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithBuffer sets the queue buffer size.
func WithBuffer(size int) Option {
	return func(s *Service) { s.queue = queue.New[Message](queue.Config{Buffer: size}) }
}

// NewService creates a service and starts delivering messages.
func NewService(options ...Option) *Service {
	ret := &Service{done: make(chan struct{})}
	for _, option := range options {
		option(ret)
	}
	if ret.queue == nil {
		ret.queue = queue.New[Message](queue.DefaultConfig())
	}
	go ret.deliver()
	return ret
}

// Publish queues msg for delivery.
func (s *Service) Publish(ctx context.Context, msg *Message) error {
	return s.queue.Publish(ctx, msg)
}

// Subscribe registers a handler.
func (s *Service) Subscribe(handler Handler) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Close stops accepting messages and waits until pending ones are delivered.
func (s *Service) Close() {
	s.queue.Close()
	<-s.done
}

func (s *Service) deliver() {
	defer close(s.done)
	ctx := context.Background()
	for {
		msg, err := s.queue.Consume(ctx)
		if errors.Is(err, queue.ErrClosed) {
			return
		}
		if err != nil {
			continue
		}
		payload := msg.T()
		if s.logger != nil {
			s.logger.WithField("level", payload.Level).Info(payload.Text)
		}
		s.mux.RLock()
		handlers := s.handlers
		s.mux.RUnlock()
		for _, handler := range handlers {
			handler(payload)
		}
		_ = msg.Ack()
	}
}
