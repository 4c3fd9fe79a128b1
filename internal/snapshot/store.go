// Package snapshot keeps the in-progress session of each user so it survives a
// server restart. Snapshots are best-effort; the session controller stays the
// source of truth while the process runs.
package snapshot

import (
	"context"
	"errors"
	"sync"

	"physiotrack/backend/internal/model"
)

var ErrNotFound = errors.New("snapshot not found")

type Store interface {
	Save(ctx context.Context, s model.Session) error
	Load(ctx context.Context, userID string) (*model.Session, error)
	Delete(ctx context.Context, userID string) error
}

type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]model.Session)}
}

func (m *MemoryStore) Save(_ context.Context, s model.Session) error {
	if s.UserID == "" {
		return errors.New("snapshot: missing user id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = s.Clone()
	return nil
}

func (m *MemoryStore) Load(_ context.Context, userID string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := s.Clone()
	return &clone, nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
