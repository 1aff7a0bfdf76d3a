package repositories

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/lo"
)

// JSONFileRepository keeps every message in a single JSON array.
// Each store rewrites the whole file: read, append, write to a temporary
// file, then rename over the previous one.
type JSONFileRepository struct {
	mu   sync.Mutex
	path string
	log  *slog.Logger
}

func NewJSONFileRepository(path string, log *slog.Logger) *JSONFileRepository {
	return &JSONFileRepository{path: path, log: log}
}

// StoreMessage appends the message and persists the full collection.
// The lock covers the whole read-modify-write cycle so concurrent writers
// never lose each other's message.
func (r *JSONFileRepository) StoreMessage(message DiskMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	messages := append(r.load(), message)
	return r.save(messages)
}

// GetConversation filters the whole collection, keeping file order.
func (r *JSONFileRepository) GetConversation(pair domain.Pair) ([]DiskMessage, error) {
	r.mu.Lock()
	messages := r.load()
	r.mu.Unlock()

	return lo.Filter(messages, func(m DiskMessage, _ int) bool {
		return pair.Contains(domain.Message{From: domain.Identity(m.From), To: domain.Identity(m.To)})
	}), nil
}

func (r *JSONFileRepository) Close() error { return nil }

// load never fails: a missing or unreadable file means no data yet,
// the file is created lazily by the first save.
func (r *JSONFileRepository) load() []DiskMessage {
	messages := make([]DiskMessage, 0)
	data, err := os.ReadFile(r.path)
	if err != nil {
		r.log.Debug("Messages file not readable, starting empty", "path", r.path, "error", err)
		return messages
	}
	if err = json.Unmarshal(data, &messages); err != nil {
		r.log.Warn("Messages file is not a valid JSON array, starting empty", "path", r.path, "error", err)
		return make([]DiskMessage, 0)
	}
	return messages
}

func (r *JSONFileRepository) save(messages []DiskMessage) error {
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	dir := filepath.Dir(r.path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	if err = os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	return nil
}
