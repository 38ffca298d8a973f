package profile

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It is used when no document database
// is configured and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]Profile)}
}

// Put creates or replaces a profile.
func (s *MemoryStore) Put(p Profile) {
	s.mu.Lock()
	s.profiles[p.UID] = p
	s.mu.Unlock()
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, uid string) (*Profile, error) {
	s.mu.RLock()
	p, ok := s.profiles[uid]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// SetProfilePic implements Store.
func (s *MemoryStore) SetProfilePic(_ context.Context, uid, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[uid]
	if !ok {
		return ErrNotFound
	}
	p.ProfilePic = url
	s.profiles[uid] = p
	return nil
}
