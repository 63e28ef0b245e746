package otp

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Record{}}
}

func (s *MemoryStore) Get(ctx context.Context, identity string) (Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	rec, ok := s.records[identity]
	s.mu.RUnlock()
	return rec, ok, nil
}

func (s *MemoryStore) Put(ctx context.Context, rec Record) error {
	_ = ctx
	s.mu.Lock()
	s.records[rec.Identity] = rec
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, identity string) error {
	_ = ctx
	s.mu.Lock()
	delete(s.records, identity)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) IncrAttempts(ctx context.Context, identity string) (int, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[identity]
	if !ok {
		return 0, false, nil
	}
	rec.Attempts++
	s.records[identity] = rec
	return rec.Attempts, true, nil
}

func (s *MemoryStore) CompareAndDelete(ctx context.Context, identity, code string) (bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[identity]
	if !ok || rec.Code != code {
		return false, nil
	}
	delete(s.records, identity)
	return true, nil
}

// PurgeExpired drops records whose expiry passed more than retention ago and
// returns how many were removed.
func (s *MemoryStore) PurgeExpired(now time.Time) int {
	cutoff := now.Add(-retention)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, rec := range s.records {
		if rec.ExpiresAt.Before(cutoff) {
			delete(s.records, id)
			n++
		}
	}
	return n
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
