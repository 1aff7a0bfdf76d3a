package repositories

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newDiskMessage(from, to, text string, at time.Time) DiskMessage {
	return DiskMessage{ID: uuid.New(), From: from, To: to, Text: text, CreatedAt: at.UnixMilli()}
}

func TestJSONFileRepository_Store_And_Get_Conversation(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "data", "messages.json")
	repository := NewJSONFileRepository(path, logs.GetLoggerFromLevel(slog.LevelDebug))
	at := time.Now().UTC()

	// Given messages between several participants
	diskMessages := []DiskMessage{
		newDiskMessage("alice", "bob", "hi", at),
		newDiskMessage("clara", "bob", "hey bob", at.Add(time.Second)),
		newDiskMessage("bob", "alice", "hello alice", at.Add(2*time.Second)),
	}
	for _, dm := range diskMessages {
		req.NoError(repository.StoreMessage(dm))
	}

	// When fetching the conversation from both sides
	fromAlice, err := repository.GetConversation(domain.NewPair("alice", "bob"))
	req.NoError(err)
	fromBob, err := repository.GetConversation(domain.NewPair("bob", "alice"))
	req.NoError(err)

	// Then only the pair's messages are returned, in append order
	req.Equal([]DiskMessage{diskMessages[0], diskMessages[2]}, fromAlice)
	req.Equal(fromAlice, fromBob)
}

func TestJSONFileRepository_Missing_File_Is_Empty(t *testing.T) {
	req := require.New(t)
	repository := NewJSONFileRepository(filepath.Join(t.TempDir(), "messages.json"), slog.Default())

	messages, err := repository.GetConversation(domain.NewPair("alice", "bob"))
	req.NoError(err)
	req.NotNil(messages)
	req.Empty(messages)
}

func TestJSONFileRepository_Corrupted_File_Is_Treated_As_Empty(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "messages.json")
	req.NoError(os.WriteFile(path, []byte("{not json"), 0o644))
	repository := NewJSONFileRepository(path, slog.Default())

	// When a message is stored over a corrupted file
	dm := newDiskMessage("alice", "bob", "hi", time.Now())
	req.NoError(repository.StoreMessage(dm))

	// Then the file now holds only the new message
	messages, err := repository.GetConversation(domain.NewPair("alice", "bob"))
	req.NoError(err)
	req.Equal([]DiskMessage{dm}, messages)
}

func TestJSONFileRepository_Reads_Millisecond_Array_File(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "messages.json")
	content := `[
  {"from": "alice", "to": "bob", "text": "hi", "createdAt": 1700000000000},
  {"from": "bob", "to": "alice", "image": "/chat_images/bob_1.png", "createdAt": 1700000001000}
]`
	req.NoError(os.WriteFile(path, []byte(content), 0o644))
	repository := NewJSONFileRepository(path, slog.Default())

	messages, err := repository.GetConversation(domain.NewPair("alice", "bob"))
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal("hi", messages[0].Text)
	req.Equal(int64(1700000000000), messages[0].CreatedAt)
	req.Equal("/chat_images/bob_1.png", messages[1].Image)
}

func TestJSONFileRepository_Write_Failure_Is_Reported(t *testing.T) {
	req := require.New(t)
	// Given a path whose parent is a regular file
	parent := filepath.Join(t.TempDir(), "not-a-dir")
	req.NoError(os.WriteFile(parent, []byte("x"), 0o644))
	repository := NewJSONFileRepository(filepath.Join(parent, "messages.json"), slog.Default())

	err := repository.StoreMessage(newDiskMessage("alice", "bob", "hi", time.Now()))

	req.ErrorIs(err, errors.ErrStorage)
}

func TestJSONFileRepository_Concurrent_Stores_Are_Not_Lost(t *testing.T) {
	req := require.New(t)
	repository := NewJSONFileRepository(filepath.Join(t.TempDir(), "messages.json"), slog.Default())
	writers := 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repository.StoreMessage(newDiskMessage("alice", "bob", "hi", time.Now()))
		}()
	}
	wg.Wait()

	messages, err := repository.GetConversation(domain.NewPair("alice", "bob"))
	req.NoError(err)
	req.Len(messages, writers)
}
