package event

import (
	"chat-relay/domain"
)

// Name is the event label written on the wire.
type Name string

const NewMessageName Name = "new_message"

// DomainEvent is pushed by the dispatcher to connected handles.
type DomainEvent interface {
	EventName() Name
}

// NewMessage is emitted once a message has been stored.
type NewMessage struct {
	Message domain.Message
}

func (NewMessage) EventName() Name { return NewMessageName }
