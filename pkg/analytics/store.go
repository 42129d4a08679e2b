package analytics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"bress-gateway/pkg/errors"
)

// DefaultCapacity bounds the rolling conversation log.
const DefaultCapacity = 100

// Store is the rolling conversation log. Append evicts the oldest entries
// beyond the capacity; List returns summaries oldest first.
type Store interface {
	Append(summary ConversationSummary) error
	List() ([]ConversationSummary, error)
	Count() (int, error)
	Close() error
}

// MemoryStore keeps the rolling log in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	entries  []ConversationSummary
}

// NewMemoryStore creates an in-memory rolling log. A non-positive
// capacity falls back to the default.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{capacity: capacity}
}

// Append adds a summary, evicting the oldest entries beyond capacity.
func (s *MemoryStore) Append(summary ConversationSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, summary)
	if overflow := len(s.entries) - s.capacity; overflow > 0 {
		s.entries = s.entries[overflow:]
	}
	return nil
}

// List returns a copy of the stored summaries, oldest first.
func (s *MemoryStore) List() ([]ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ConversationSummary, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Count returns the number of stored summaries.
func (s *MemoryStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// FileStore persists the rolling log as a single JSON array under one
// well-known path. Every mutation is a single synchronous
// read-modify-write; concurrent processes are last-writer-wins, there is
// no cross-process coordination.
type FileStore struct {
	mu       sync.Mutex
	path     string
	capacity int
	logger   *logrus.Logger
}

// NewFileStore creates a file-backed rolling log at the given path.
func NewFileStore(path string, capacity int, logger *logrus.Logger) (*FileStore, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create conversation store directory", map[string]interface{}{
			"path": path,
		})
	}
	return &FileStore{path: path, capacity: capacity, logger: logger}, nil
}

// Append adds a summary, evicting the oldest entries beyond capacity.
func (s *FileStore) Append(summary ConversationSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		// A corrupt log must not lose new data; start over and keep going.
		s.logger.WithError(err).Warn("Conversation log unreadable, resetting")
		entries = nil
	}

	entries = append(entries, summary)
	if overflow := len(entries) - s.capacity; overflow > 0 {
		entries = entries[overflow:]
	}

	return s.write(entries)
}

// List returns the stored summaries, oldest first.
func (s *FileStore) List() ([]ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Count returns the number of stored summaries.
func (s *FileStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Close is a no-op; the file is not held open between operations.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) read() ([]ConversationSummary, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read conversation log")
	}

	var entries []ConversationSummary
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, "failed to decode conversation log")
	}
	return entries, nil
}

func (s *FileStore) write(entries []ConversationSummary) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "failed to encode conversation log")
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write conversation log", map[string]interface{}{
			"path": s.path,
		})
	}
	return nil
}
