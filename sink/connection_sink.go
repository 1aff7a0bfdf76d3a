package sink

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	"sync"
)

// ConnectionSink is the handle of one live socket.
// The dispatcher pushes into Events; the socket writer drains it.
type ConnectionSink struct {
	id        domain.ConnectionID
	Events    chan event.DomainEvent
	done      chan struct{}
	closeOnce sync.Once
}

func NewConnectionSink(id domain.ConnectionID, bufferSize int) *ConnectionSink {
	return &ConnectionSink{
		id:     id,
		Events: make(chan event.DomainEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

func (s *ConnectionSink) ConnectionID() domain.ConnectionID { return s.id }

// Consume is called by the dispatcher and never blocks.
// A full buffer drops the event; a closed socket fails fast.
func (s *ConnectionSink) Consume(_ context.Context, e event.DomainEvent) error {
	select {
	case <-s.done:
		return errors.ErrConnectionClosed
	default:
	}
	select {
	case s.Events <- e:
		return nil
	default:
		return errors.ErrSinkFull
	}
}

// Done is closed once the socket is gone.
func (s *ConnectionSink) Done() <-chan struct{} { return s.done }

// Close marks the sink as gone. Safe to call more than once.
func (s *ConnectionSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
