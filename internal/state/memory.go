package state

import (
	"context"
	"sync"
	"time"

	"github.com/chiaheng/health-linebot-go/internal/errors"
)

// MemoryStore keeps conversation records in a process-local map.
// Used when persistence is disabled; records vanish on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Conversation
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Conversation)}
}

// Get returns a copy of the record for userID, or (nil, nil) when absent.
func (s *MemoryStore) Get(_ context.Context, userID string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	return conv.Clone(), nil
}

// Insert creates a new record. Fails if the user already has one.
func (s *MemoryStore) Insert(_ context.Context, conv *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[conv.UserID]; ok {
		return errors.ErrConflict
	}
	stored := conv.Clone()
	stored.UpdatedAt = time.Now()
	s.records[conv.UserID] = stored
	return nil
}

// Update replaces the record for conv.UserID, creating it when missing.
func (s *MemoryStore) Update(_ context.Context, conv *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := conv.Clone()
	stored.UpdatedAt = time.Now()
	s.records[conv.UserID] = stored
	return nil
}

// Delete removes the record for userID. Deleting a missing record is not an error.
func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, userID)
	return nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records), nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
