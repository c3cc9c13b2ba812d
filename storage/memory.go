package storage

import (
	"context"
	"sync"
	"time"

	"contestacao-backend/models"

	"github.com/google/uuid"
)

// MemoryStorage keeps results in process memory. Used by tests and the CLI.
type MemoryStorage struct {
	mu      sync.RWMutex
	results map[uuid.UUID]models.StoredResult
}

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{results: make(map[uuid.UUID]models.StoredResult)}
}

func (s *MemoryStorage) Put(ctx context.Context, content string) (string, error) {
	id := uuid.New()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[id] = models.StoredResult{
		ID:        id,
		Content:   content,
		Size:      int64(len(content)),
		CreatedAt: time.Now(),
	}
	return id.String(), nil
}

func (s *MemoryStorage) Get(ctx context.Context, id string) (*models.StoredResult, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[parsed]
	if !ok {
		return nil, ErrNotFound
	}
	return &result, nil
}

func (s *MemoryStorage) Delete(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, parsed)
	return nil
}
