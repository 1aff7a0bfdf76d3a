package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/observability"
	"context"
	"fmt"
	"log/slog"
	"sync"
)

type IChatService interface {
	Send(ctx context.Context, cmd SendMessageCommand) (domain.Message, error)
	GetConversation(ctx context.Context, userA, userB domain.Identity) ([]domain.Message, error)
	Identify(identity domain.Identity, handle contract.Handle) error
	Disconnect(handle contract.Handle)
}

// Censor rewrites forbidden words in a message text.
type Censor interface {
	Censor(text string) (string, []string)
}

type ChatService struct {
	sendMu     sync.Mutex
	store      IMessageStore
	dispatcher contract.IDispatcher
	registry   contract.IPresenceRegistry
	censor     Censor
	log        *slog.Logger
	metrics    *observability.Metrics
}

func NewChatService(log *slog.Logger, store IMessageStore, dispatcher contract.IDispatcher,
	registry contract.IPresenceRegistry, metrics *observability.Metrics) *ChatService {
	return &ChatService{
		store:      store,
		dispatcher: dispatcher,
		registry:   registry,
		log:        log,
		metrics:    metrics,
	}
}

// WithCensor enables moderation of message texts before they are stored.
func (s *ChatService) WithCensor(censor Censor) *ChatService {
	s.censor = censor
	return s
}

// Send stores the message then hands it to the dispatcher.
// The send lock spans both steps so pushes leave in append order.
// The result only tells whether the message was stored, never whether it was delivered.
func (s *ChatService) Send(ctx context.Context, cmd SendMessageCommand) (domain.Message, error) {
	if err := validateStruct(cmd); err != nil {
		return domain.Message{}, err
	}

	message := domain.Message{
		From:  domain.Identity(cmd.From),
		To:    domain.Identity(cmd.To),
		Text:  cmd.Text,
		Image: cmd.Image,
	}
	if s.censor != nil && message.Text != "" {
		text, words := s.censor.Censor(message.Text)
		if len(words) > 0 {
			s.log.Debug("Message censored", "from", message.From, "words", len(words))
			message.Text = text
		}
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	stored, err := s.store.Append(ctx, message)
	if err != nil {
		return domain.Message{}, err
	}
	s.dispatcher.Dispatch(ctx, stored)
	return stored, nil
}

// GetConversation is the read path of the chat: the pair history as stored.
func (s *ChatService) GetConversation(ctx context.Context, userA, userB domain.Identity) ([]domain.Message, error) {
	return s.store.History(ctx, userA, userB)
}

// Identify binds an identity to a live connection, replacing any previous one.
func (s *ChatService) Identify(identity domain.Identity, handle contract.Handle) error {
	if identity == "" {
		return fmt.Errorf("%w: identity", errors.ErrMissingField)
	}
	if handle == nil {
		return fmt.Errorf("%w: connection", errors.ErrMissingField)
	}
	s.registry.Register(identity, handle)
	s.metrics.SetOnline(s.registry.Len())
	s.log.Debug("Identity registered", "identity", identity, "connection_id", handle.ConnectionID())
	return nil
}

// Disconnect forgets the connection. Identities already bound to a newer connection are kept.
func (s *ChatService) Disconnect(handle contract.Handle) {
	s.registry.Unregister(handle)
	s.metrics.SetOnline(s.registry.Len())
}
