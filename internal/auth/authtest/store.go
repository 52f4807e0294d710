// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

package authtest

import (
	"context"
	"sync"

	"github.com/painlog/painlog/internal/auth"
)

// MemoryProfileStore is an in-memory ProfileStore.
type MemoryProfileStore struct {
	mu       sync.Mutex
	profiles map[string]auth.User
	gets     int
	sets     int

	GetErr error
	SetErr error
}

// NewMemoryProfileStore returns an empty store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]auth.User)}
}

// Get implements auth.ProfileStore.
func (s *MemoryProfileStore) Get(_ context.Context, id string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	u, ok := s.profiles[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &u, nil
}

// Set implements auth.ProfileStore.
func (s *MemoryProfileStore) Set(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.SetErr != nil {
		return s.SetErr
	}
	s.profiles[user.ID] = *user
	return nil
}

// Put stores user without counting it as a Set call.
func (s *MemoryProfileStore) Put(user auth.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[user.ID] = user
}

// Lookup returns the stored profile for id.
func (s *MemoryProfileStore) Lookup(id string) (auth.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.profiles[id]
	return u, ok
}

// Len returns the number of stored profiles.
func (s *MemoryProfileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles)
}

// Gets returns how many times Get was called.
func (s *MemoryProfileStore) Gets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

// Sets returns how many times Set was called.
func (s *MemoryProfileStore) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

// SetGetErr changes the injected Get failure while the store is in use.
func (s *MemoryProfileStore) SetGetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GetErr = err
}

var _ auth.ProfileStore = (*MemoryProfileStore)(nil)
