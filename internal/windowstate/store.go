package windowstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is durable key-value persistence for window geometry, one record per
// logical window slot. Records are never deleted. A mutex serializes access;
// concurrent writers to the same slot resolve last-write-wins.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by the JSON file at path. The file and its
// directory are created lazily on first write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the standard window-state file location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "appshell", "windowstate.json"), nil
}

// Lookup returns the persisted state for a slot and whether one exists.
// Read failures are treated as "no persisted state".
func (s *Store) Lookup(slot string) (WindowState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return WindowState{}, false
	}
	st, ok := records[slot]
	return st, ok
}

// Get returns the persisted state for a slot, or def when absent or unreadable.
func (s *Store) Get(slot string, def WindowState) WindowState {
	if st, ok := s.Lookup(slot); ok {
		return st
	}
	return def
}

// Set persists the state for a slot.
func (s *Store) Set(slot string, st WindowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		// A corrupt or unreadable file must not block new writes.
		records = make(map[string]WindowState)
	}
	records[slot] = st
	return s.save(records)
}

func (s *Store) load() (map[string]WindowState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]WindowState), nil
		}
		return nil, fmt.Errorf("failed to read window state: %w", err)
	}

	records := make(map[string]WindowState)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse window state: %w", err)
	}
	return records, nil
}

func (s *Store) save(records map[string]WindowState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode window state: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write window state: %w", err)
	}
	return nil
}
