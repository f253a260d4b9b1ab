// Package kv provides a score store layered on a durable key-value database.
// The whole board is kept as one JSON document under a single key.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rescuerunner/runnerboard"
)

// ErrKeyNotFound is returned by a Database when a key has never been set.
var ErrKeyNotFound = errors.New("key not found")

// DefaultKey is where the board document is kept.
const DefaultKey = "leaderboard"

// Database is the minimal key-value contract the store needs.
type Database interface {
	Get(key []byte) ([]byte, error)
	Put(key []byte, value []byte) error
}

type Store struct {
	mu  sync.Mutex
	db  Database
	key []byte
}

func NewStore(db Database, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{db: db, key: []byte(key)}
}

func (s *Store) Get(_ context.Context, identity string) (runnerboard.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return runnerboard.Entry{}, err
	}

	for _, e := range entries {
		if e.Identity == identity {
			return e, nil
		}
	}
	return runnerboard.Entry{}, runnerboard.ErrNotFound
}

func (s *Store) Upsert(_ context.Context, entry runnerboard.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	return s.save(upsert(entries, entry))
}

// Save writes the upserted and trimmed board with a single Put.
func (s *Store) Save(_ context.Context, entry runnerboard.Entry, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	return s.save(trim(upsert(entries, entry), max))
}

func (s *Store) All(_ context.Context) ([]runnerboard.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *Store) EnforceCapacity(_ context.Context, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	if len(entries) <= max {
		return nil
	}

	return s.save(trim(entries, max))
}

func upsert(entries []runnerboard.Entry, entry runnerboard.Entry) []runnerboard.Entry {
	for i := range entries {
		if entries[i].Identity == entry.Identity {
			entries[i] = entry
			return entries
		}
	}
	return append(entries, entry)
}

func trim(entries []runnerboard.Entry, max int) []runnerboard.Entry {
	if max < 0 {
		max = 0
	}
	if len(entries) <= max {
		return entries
	}

	runnerboard.Sort(entries)
	return entries[:max]
}

func (s *Store) load() ([]runnerboard.Entry, error) {
	raw, err := s.db.Get(s.key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}

	var entries []runnerboard.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return entries, nil
}

func (s *Store) save(entries []runnerboard.Entry) error {
	if entries == nil {
		entries = []runnerboard.Entry{}
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}

	if err := s.db.Put(s.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}
