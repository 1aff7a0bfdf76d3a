//go:generate go run go.uber.org/mock/mockgen -source=message_store.go -destination=../mocks/mock_message_store.go -package=mocks
package services

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/observability"
	"chat-relay/repositories"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageStore interface {
	Append(ctx context.Context, message domain.Message) (domain.Message, error)
	History(ctx context.Context, userA, userB domain.Identity) ([]domain.Message, error)
}

// MessageStore is the append-only log of direct messages.
// Appends are serialized: the repository may rewrite its whole
// collection on each write and two interleaved cycles would lose one.
type MessageStore struct {
	mu            sync.Mutex
	repository    repositories.IMessageRepository
	log           *slog.Logger
	metrics       *observability.Metrics
	now           func() time.Time
	lastCreatedAt time.Time
}

func NewMessageStore(repository repositories.IMessageRepository, log *slog.Logger, metrics *observability.Metrics) *MessageStore {
	return &MessageStore{repository: repository, log: log, metrics: metrics, now: time.Now}
}

// Append validates, assigns the ID and createdAt when absent, then persists.
// The returned message is exactly what a later History call yields.
func (s *MessageStore) Append(_ context.Context, message domain.Message) (domain.Message, error) {
	if err := validateStruct(SendMessageCommand{
		From:  string(message.From),
		To:    string(message.To),
		Text:  message.Text,
		Image: message.Image,
	}); err != nil {
		return domain.Message{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = s.nextCreatedAt()
	} else if message.CreatedAt.After(s.lastCreatedAt) {
		s.lastCreatedAt = message.CreatedAt.UTC().Truncate(time.Millisecond)
	}

	diskMessage := toDiskMessage(message)
	if err := s.repository.StoreMessage(diskMessage); err != nil {
		s.metrics.IncStoreError()
		s.log.Error("Message not persisted", "from", message.From, "to", message.To, "error", err)
		return domain.Message{}, asStorageError("append message", err)
	}
	s.metrics.IncStored()
	return toMessage(diskMessage), nil
}

// History returns the conversation of the unordered pair in append order.
func (s *MessageStore) History(_ context.Context, userA, userB domain.Identity) ([]domain.Message, error) {
	if err := validateStruct(conversationQuery{UserA: string(userA), UserB: string(userB)}); err != nil {
		return nil, err
	}
	diskMessages, err := s.repository.GetConversation(domain.NewPair(userA, userB))
	if err != nil {
		return nil, asStorageError("read conversation", err)
	}
	return lo.Map(diskMessages, func(item repositories.DiskMessage, _ int) domain.Message {
		return toMessage(item)
	}), nil
}

// nextCreatedAt never goes backwards, even when the wall clock does.
// Must be called with the lock held.
func (s *MessageStore) nextCreatedAt() time.Time {
	now := s.now().UTC().Truncate(time.Millisecond)
	if now.Before(s.lastCreatedAt) {
		now = s.lastCreatedAt
	}
	s.lastCreatedAt = now
	return now
}

func toDiskMessage(message domain.Message) repositories.DiskMessage {
	return repositories.DiskMessage{
		ID:        message.ID,
		From:      string(message.From),
		To:        string(message.To),
		Text:      message.Text,
		Image:     message.Image,
		CreatedAt: message.CreatedAt.UnixMilli(),
	}
}

func toMessage(item repositories.DiskMessage) domain.Message {
	return domain.Message{
		ID:        item.ID,
		From:      domain.Identity(item.From),
		To:        domain.Identity(item.To),
		Text:      item.Text,
		Image:     item.Image,
		CreatedAt: time.UnixMilli(item.CreatedAt).UTC(),
	}
}

// asStorageError keeps repository failures under ErrStorage whatever the backend returned.
func asStorageError(op string, err error) error {
	if errors.Is(err, errors.ErrStorage) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", errors.ErrStorage, op, err)
}
