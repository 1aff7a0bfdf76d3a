//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// IMessageRepository is the persistence unit behind the message store.
// Implementations return a conversation in append order.
type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	GetConversation(pair domain.Pair) ([]DiskMessage, error)
	Close() error
}

// DiskMessage is the stored shape of a message.
// CreatedAt is kept in Unix milliseconds, as written by the first chat service.
type DiskMessage struct {
	ID        uuid.UUID `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Text      string    `json:"text,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt int64     `json:"createdAt"`
}

const (
	sequenceKey   = "seq:messages"
	MessagePrefix = "msg:"
)

// ConversationPrefix is the key prefix shared by every message of the pair.
func ConversationPrefix(pair domain.Pair) string {
	return MessagePrefix + pair.Key() + ":"
}

// MessageRepository stores messages in BadgerDB.
type MessageRepository struct {
	db            *badger.DB
	seq           *badger.Sequence
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(sequenceKey), 100)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	return &MessageRepository{db: db, seq: seq, log: log, limitMessages: limitMessages}, nil
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{pair_key}:{sequence_padded}" so that:
//  1. All messages of a conversation share a prefix whatever the direction.
//  2. A prefix scan returns them in append order (19-digit zero padding keeps
//     lexicographical order equal to numeric order).
//
// A sequence is used instead of the timestamp because createdAt may repeat.
func (m *MessageRepository) StoreMessage(message DiskMessage) error {
	next, err := m.seq.Next()
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	pair := domain.NewPair(domain.Identity(message.From), domain.Identity(message.To))
	key := fmt.Sprintf("%s%019d", ConversationPrefix(pair), next)

	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	return nil
}

// GetConversation retrieves the messages of a pair using a prefix scan.
// When limitMessages is set, only the most recent ones are kept,
// still returned oldest first.
func (m *MessageRepository) GetConversation(pair domain.Pair) ([]DiskMessage, error) {
	diskMessages := make([]DiskMessage, 0)
	prefix := []byte(ConversationPrefix(pair))
	limited := m.limitMessages != nil

	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		options.Reverse = limited
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := prefix
		if limited {
			// Seek past the greatest possible sequence then walk backwards
			seekKey = append(append([]byte{}, prefix...), 0xFF)
		}

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limited && len(diskMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				break
			}
			var message DiskMessage
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &message)
			})
			if err != nil {
				return err
			}
			diskMessages = append(diskMessages, message)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	if limited {
		slices.Reverse(diskMessages)
	}
	return diskMessages, nil
}

// Close releases the leased sequence range. The DB itself is owned by the caller.
func (m *MessageRepository) Close() error {
	return m.seq.Release()
}
