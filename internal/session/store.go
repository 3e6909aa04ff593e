// Package session persists the identity and curriculum history across
// restarts behind a small key-value interface.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Keys used by the workspace.
const (
	UserKey    = "curricuforge_user"
	HistoryKey = "curricuforge_history"
)

// ErrPersistenceUnavailable wraps every read or write failure of a store.
// Callers keep working in memory when they see it.
var ErrPersistenceUnavailable = errors.New("persistence unavailable")

// Store is a durable key-value store. A missing key is reported as
// (nil, false, nil), never as an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrPersistenceUnavailable, op, key, err)
}

// LoadJSON decodes the value under key into v. It reports false when the
// key is absent.
func LoadJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, unavailable("decode", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return unavailable("encode", key, err)
	}
	return s.Set(ctx, key, raw)
}

// MemoryStore is an in-process Store. Values are copied on the way in and
// out.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
