package services

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/repositories"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newFileStore(t *testing.T) *MessageStore {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repository := repositories.NewJSONFileRepository(filepath.Join(t.TempDir(), "messages.json"), log)
	return NewMessageStore(repository, log, nil)
}

func TestMessageStore_Append_Then_History(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newFileStore(t)

	// Given alice writes to bob
	stored, err := store.Append(ctx, domain.Message{From: "alice", To: "bob", Text: "hi"})
	req.NoError(err)
	req.NotZero(stored.ID)
	req.False(stored.CreatedAt.IsZero())

	// When bob reads the conversation
	history, err := store.History(ctx, "bob", "alice")
	req.NoError(err)

	// Then the message is there exactly once
	req.Equal([]domain.Message{stored}, history)
	req.Equal(domain.Identity("alice"), history[0].From)
	req.Equal(domain.Identity("bob"), history[0].To)
	req.Equal("hi", history[0].Text)
}

func TestMessageStore_History_Is_Symmetric_And_Idempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newFileStore(t)

	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, domain.Message{From: "alice", To: "bob", Text: fmt.Sprintf("a%d", i)})
		req.NoError(err)
		_, err = store.Append(ctx, domain.Message{From: "bob", To: "alice", Image: fmt.Sprintf("/chat_images/bob_%d.png", i)})
		req.NoError(err)
		_, err = store.Append(ctx, domain.Message{From: "bob", To: "clara", Text: "other"})
		req.NoError(err)
	}

	ab, err := store.History(ctx, "alice", "bob")
	req.NoError(err)
	ba, err := store.History(ctx, "bob", "alice")
	req.NoError(err)
	again, err := store.History(ctx, "alice", "bob")
	req.NoError(err)

	req.Len(ab, 6)
	req.Equal(ab, ba)
	req.Equal(ab, again)
	for i := 1; i < len(ab); i++ {
		req.False(ab[i].CreatedAt.Before(ab[i-1].CreatedAt), "history must be chronological")
	}
}

func TestMessageStore_Append_Validation(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIMessageRepository(ctrl)
	store := NewMessageStore(repository, slog.Default(), nil)

	// Repository should NEVER be called
	repository.EXPECT().StoreMessage(gomock.Any()).Times(0)

	tests := []struct {
		name    string
		message domain.Message
		want    error
	}{
		{"Neither text nor image", domain.Message{From: "alice", To: "bob"}, errors.ErrEmptyMessage},
		{"Missing from", domain.Message{To: "bob", Text: "hi"}, errors.ErrMissingField},
		{"Missing to", domain.Message{From: "alice", Image: "/chat_images/a.png"}, errors.ErrMissingField},
		{"Nothing at all", domain.Message{}, errors.ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			_, err := store.Append(ctx, tt.message)
			req.ErrorIs(err, tt.want)
			req.ErrorIs(err, errors.ErrValidation)
		})
	}
}

func TestMessageStore_History_Validation(t *testing.T) {
	req := require.New(t)
	store := newFileStore(t)

	_, err := store.History(context.Background(), "alice", "")
	req.ErrorIs(err, errors.ErrMissingField)

	_, err = store.History(context.Background(), "", "bob")
	req.ErrorIs(err, errors.ErrMissingField)
}

func TestMessageStore_Empty_History(t *testing.T) {
	req := require.New(t)
	store := newFileStore(t)

	history, err := store.History(context.Background(), "alice", "bob")

	req.NoError(err)
	req.NotNil(history)
	req.Empty(history)
}

func TestMessageStore_Storage_Failure_Is_Surfaced(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIMessageRepository(ctrl)
	store := NewMessageStore(repository, slog.Default(), nil)

	repository.EXPECT().
		StoreMessage(gomock.Any()).
		Return(fmt.Errorf("%w: disk full", errors.ErrStorage)).
		Times(1)

	_, err := store.Append(context.Background(), domain.Message{From: "alice", To: "bob", Text: "hi"})

	req.ErrorIs(err, errors.ErrStorage)
	req.NotErrorIs(err, errors.ErrValidation)
}

func TestMessageStore_CreatedAt_Never_Goes_Backwards(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newFileStore(t)
	clock := []time.Time{
		time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), // clock moved backwards
		time.Date(2024, 5, 1, 10, 0, 1, 0, time.UTC),
	}
	tick := 0
	store.now = func() time.Time {
		now := clock[tick]
		tick++
		return now
	}

	var created []time.Time
	for i := 0; i < len(clock); i++ {
		stored, err := store.Append(ctx, domain.Message{From: "alice", To: "bob", Text: "tick"})
		req.NoError(err)
		created = append(created, stored.CreatedAt)
	}

	req.Equal(clock[0], created[0])
	req.Equal(clock[0], created[1])
	req.Equal(clock[2], created[2])
}

func TestMessageStore_Keeps_Provided_CreatedAt(t *testing.T) {
	req := require.New(t)
	store := newFileStore(t)
	at := time.Date(2023, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

	stored, err := store.Append(context.Background(), domain.Message{From: "alice", To: "bob", Text: "hi", CreatedAt: at})

	req.NoError(err)
	req.True(at.Equal(stored.CreatedAt))
}

func TestMessageStore_Assigned_CreatedAt_Follows_Provided_One(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newFileStore(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	// Given a message stored with a createdAt ahead of the clock
	future := now.Add(time.Hour)
	_, err := store.Append(ctx, domain.Message{From: "alice", To: "bob", Text: "from the future", CreatedAt: future})
	req.NoError(err)

	// When the store assigns the next createdAt
	next, err := store.Append(ctx, domain.Message{From: "bob", To: "alice", Text: "now"})
	req.NoError(err)

	// Then it does not go back before the stored one
	req.False(next.CreatedAt.Before(future))
}
