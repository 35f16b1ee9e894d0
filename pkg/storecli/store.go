package storecli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Store is a small durable key-value file, the moral equivalent of browser
// local storage. Every Set rewrites the whole file; writes are synchronous
// and last-writer-wins.
type Store struct {
	path string

	mu   sync.Mutex
	data map[string]json.RawMessage
}

func Open(path string) (*Store, error) {
	s := &Store{path: path, data: map[string]json.RawMessage{}}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storecli: open %s: %w", path, err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("storecli: parse %s: %w", path, err)
		}
	}
	return s, nil
}

// Get unmarshals the stored value into v. The bool reports presence.
func (s *Store) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("storecli: decode %q: %w", key, err)
	}
	return true, nil
}

func (s *Store) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storecli: encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return s.flushLocked()
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("storecli: encode store: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("storecli: write %s: %w", s.path, err)
	}
	return nil
}
