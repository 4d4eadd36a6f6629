// ABOUTME: Shared broadcast offset
// ABOUTME: Owns the user's skip offset and delegates persistence to a store
package sync

import (
	"fmt"
	"sync"

	"github.com/Resonate-Protocol/gtaradio-go/internal/metrics"
)

// SkipSeconds is the step used by the skip forward and back controls
const SkipSeconds = 30

// OffsetStore persists the shared offset between runs
type OffsetStore interface {
	LoadOffset() (int, error)
	SaveOffset(offset int) error
}

// MemoryStore keeps the offset in memory only
type MemoryStore struct {
	mu     sync.Mutex
	offset int
}

func (m *MemoryStore) LoadOffset() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offset, nil
}

func (m *MemoryStore) SaveOffset(offset int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offset = offset
	return nil
}

// Session holds the one offset shared by every station
type Session struct {
	mu     sync.RWMutex
	offset int
	store  OffsetStore
}

// NewSession loads the persisted offset from store. A nil store keeps the
// offset in memory.
func NewSession(store OffsetStore) (*Session, error) {
	if store == nil {
		store = &MemoryStore{}
	}
	offset, err := store.LoadOffset()
	if err != nil {
		return nil, fmt.Errorf("load offset: %w", err)
	}
	metrics.OffsetSeconds.Set(float64(offset))
	return &Session{offset: offset, store: store}, nil
}

// Offset returns the current shared offset in seconds
func (s *Session) Offset() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offset
}

// Skip shifts the offset by delta seconds and persists it. The in-memory
// value changes even when saving fails.
func (s *Session) Skip(delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset += delta
	metrics.OffsetSeconds.Set(float64(s.offset))
	if err := s.store.SaveOffset(s.offset); err != nil {
		return s.offset, fmt.Errorf("save offset: %w", err)
	}
	return s.offset, nil
}

// SetOffset replaces the offset and persists it
func (s *Session) SetOffset(offset int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = offset
	metrics.OffsetSeconds.Set(float64(offset))
	if err := s.store.SaveOffset(offset); err != nil {
		return fmt.Errorf("save offset: %w", err)
	}
	return nil
}
