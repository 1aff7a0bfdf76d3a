// Package domain contains core concepts of the chat system.
// This file defines direct Messages exchanged between two identities.
// Messages are immutable once stored and are never deleted.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the username of a registered account.
// It keys both the message history and the presence registry.
type Identity string

// Message represents an immutable direct message.
// At least one of Text or Image is set.
type Message struct {
	ID        uuid.UUID
	From      Identity
	To        Identity
	Text      string
	Image     string // URL or path of an uploaded chat image
	CreatedAt time.Time
}

// HasContent reports whether the message carries text or an image.
func (m Message) HasContent() bool {
	return m.Text != "" || m.Image != ""
}

// Participants returns the unordered pair this message belongs to.
func (m Message) Participants() Pair {
	return NewPair(m.From, m.To)
}
