// ABOUTME: Persisted user preferences
// ABOUTME: Stores the broadcast offset and last station in a small YAML file
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Prefs is the on-disk preference document
type Prefs struct {
	Offset      int    `yaml:"offset"`
	LastStation string `yaml:"last_station,omitempty"`
}

// Store reads and writes preferences at a fixed path. An empty path keeps
// everything in memory.
type Store struct {
	mu    sync.Mutex
	path  string
	prefs Prefs
}

// Open loads path if it exists. A missing file starts from zero values.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read prefs: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.prefs); err != nil {
		return nil, fmt.Errorf("failed to parse prefs: %w", err)
	}
	return s, nil
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// LoadOffset returns the persisted broadcast offset
func (s *Store) LoadOffset() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Offset, nil
}

// SaveOffset persists the broadcast offset
func (s *Store) SaveOffset(offset int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.Offset = offset
	return s.save()
}

// LastStation returns the last selected station id
func (s *Store) LastStation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.LastStation
}

// SetLastStation persists the last selected station id
func (s *Store) SetLastStation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.LastStation = id
	return s.save()
}

// save writes through a temp file so a crash never leaves a torn file.
// Caller holds mu.
func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(&s.prefs)
	if err != nil {
		return fmt.Errorf("failed to encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create prefs directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace prefs: %w", err)
	}
	return nil
}
