package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/mixelka/emailtriage/pkg/models"
)

// MemoryStore keeps messages in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	msgs  []models.Message
	index map[string]int
	seq   int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

// List returns a copy of all messages in insertion order
func (s *MemoryStore) List(_ context.Context) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.msgs))
	copy(out, s.msgs)
	return out, nil
}

// Get returns a message by id
func (s *MemoryStore) Get(_ context.Context, id string) (models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return models.Message{}, ErrNotFound
	}
	return s.msgs[i], nil
}

// Insert adds a new message and assigns its Seq
func (s *MemoryStore) Insert(_ context.Context, msg *models.Message) error {
	if msg.ID == "" {
		return fmt.Errorf("failed to insert message: empty id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[msg.ID]; ok {
		return ErrAlreadyExists
	}

	s.seq++
	msg.Seq = s.seq
	s.index[msg.ID] = len(s.msgs)
	s.msgs = append(s.msgs, *msg)
	return nil
}

// Update replaces a stored message, keeping its Seq and terminal flags
func (s *MemoryStore) Update(_ context.Context, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[msg.ID]
	if !ok {
		return ErrNotFound
	}
	msg.Seq = s.msgs[i].Seq
	KeepTerminal(&msg, s.msgs[i])
	s.msgs[i] = msg
	return nil
}

// Delete removes a message permanently
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}

	s.msgs = append(s.msgs[:i], s.msgs[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.msgs); j++ {
		s.index[s.msgs[j].ID] = j
	}
	return nil
}

// ApplyBatch applies op to all ids under a single write lock
func (s *MemoryStore) ApplyBatch(_ context.Context, op BatchOp, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions := make([]int, 0, len(ids))
	for _, id := range ids {
		i, ok := s.index[id]
		if !ok || !op.Admits(s.msgs[i]) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		positions = append(positions, i)
	}

	for _, i := range positions {
		op.Apply(&s.msgs[i])
	}
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
