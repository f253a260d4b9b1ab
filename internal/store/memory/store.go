// Package memory provides a score store held in process memory. Its content
// is lost when the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/rescuerunner/runnerboard"
)

type Store struct {
	mu      sync.RWMutex
	entries map[string]runnerboard.Entry
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]runnerboard.Entry),
	}
}

func (s *Store) Get(_ context.Context, identity string) (runnerboard.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[identity]
	if !ok {
		return runnerboard.Entry{}, runnerboard.ErrNotFound
	}
	return e, nil
}

func (s *Store) Upsert(_ context.Context, entry runnerboard.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Identity] = entry
	return nil
}

func (s *Store) All(_ context.Context) ([]runnerboard.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]runnerboard.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) EnforceCapacity(_ context.Context, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evict(max)
	return nil
}

func (s *Store) Save(_ context.Context, entry runnerboard.Entry, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.Identity] = entry
	s.evict(max)
	return nil
}

func (s *Store) evict(max int) {
	if max < 0 {
		max = 0
	}
	if len(s.entries) <= max {
		return
	}

	entries := make([]runnerboard.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	runnerboard.Sort(entries)

	for _, e := range entries[max:] {
		delete(s.entries, e.Identity)
	}
}
