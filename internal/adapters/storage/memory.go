package storage

import (
	"context"
	"sync"

	"github.com/magnani/nymu-app/client/internal/ports"
)

// MemoryStore guarda o token apenas durante a execução do processo
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore cria um armazenamento vazio
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

var _ ports.TokenStore = (*MemoryStore)(nil)
