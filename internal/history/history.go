// Package history keeps a small most-recently-used list of search queries,
// persisted across restarts.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// maxEntries bounds the history length.
const maxEntries = 10

// Store is a bounded MRU list of search queries backed by a JSON file.
type Store struct {
	path    string
	mu      sync.Mutex
	entries []string
}

// New loads the history from path. A missing file yields an empty history.
func New(path string) (*Store, error) {
	s := &Store{path: path}

	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read search history: %w", err)
	}
	if err := json.Unmarshal(buf, &s.entries); err != nil {
		return nil, fmt.Errorf("decode search history: %w", err)
	}
	return s, nil
}

// Record inserts the query at the front. Whitespace is trimmed and empty
// input ignored; an existing case-insensitive duplicate moves to the front
// instead of occupying a second slot. The list is truncated to 10 entries.
func (s *Store) Record(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if !strings.EqualFold(e, trimmed) {
			kept = append(kept, e)
		}
	}
	s.entries = append([]string{trimmed}, kept...)
	if len(s.entries) > maxEntries {
		s.entries = s.entries[:maxEntries]
	}
	return s.save()
}

// Remove deletes the exact query from the history.
func (s *Store) Remove(query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if e != query {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return s.save()
}

// Clear empties the history.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return s.save()
}

// Entries returns a copy of the history, most recent first.
func (s *Store) Entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) save() error {
	buf, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("encode search history: %w", err)
	}
	if err := os.WriteFile(s.path, buf, 0o600); err != nil {
		return fmt.Errorf("write search history: %w", err)
	}
	return nil
}
