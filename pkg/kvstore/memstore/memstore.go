package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/mateovidal/spinmart-backend/pkg/kvstore"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is an in-memory kvstore.Store used by tests and local development.
// WriteErr/ReadErr/ClearErr allow failure injection per key.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time

	WriteErr map[string]error
	ReadErr  map[string]error
	ClearErr map[string]error
}

func New() *Store {
	return &Store{
		entries: map[string]entry{},
		now:     time.Now,
	}
}

// NewWithClock builds a store with a controllable time source.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

func (s *Store) Write(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.WriteErr[key]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	if err := s.ReadErr[key]; err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, kvstore.ErrNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, kvstore.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (s *Store) Clear(ctx context.Context, key string) error {
	if err := s.ClearErr[key]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Corrupt overwrites the stored blob in place, bypassing Write hooks. Tests
// use it to simulate tampered persisted state.
func (s *Store) Corrupt(key string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: append([]byte(nil), raw...)}
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
