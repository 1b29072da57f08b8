package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store reads and writes the settings document at one path. A missing or
// corrupt file never fails a load; it falls back to defaults so the core
// always starts.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *logrus.Logger
}

// NewStore creates a store for path. An empty path uses DefaultPath.
func NewStore(path string, logger *logrus.Logger) *Store {
	if path == "" {
		path = DefaultPath()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings document. Missing file yields defaults silently;
// unparseable content yields defaults with a warning. Load never fails.
func (s *Store) Load() *Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() *Settings {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Warn("Failed to read settings, using defaults")
		}
		return DefaultSettings()
	}

	settings := &Settings{}
	if err := json.Unmarshal(raw, settings); err != nil {
		s.logger.WithError(err).WithField("path", s.path).Warn("Corrupt settings file, using defaults")
		return DefaultSettings()
	}

	settings.normalize()
	return settings
}

// Save writes the full settings snapshot, creating the directory if needed.
func (s *Store) Save(settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(settings)
}

func (s *Store) saveLocked(settings *Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	raw, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// SetLastAddress records the most recently connected ring address.
func (s *Store) SetLastAddress(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.loadLocked()
	settings.LastBLEAddress = address
	return s.saveLocked(settings)
}

// MappingStore exposes the document's mappings section through the narrow
// load/save contract the mapping table flushes through.
type MappingStore struct {
	store *Store
}

// Mappings returns the adapter the mapping table persists through.
func (s *Store) Mappings() *MappingStore {
	return &MappingStore{store: s}
}

// Load returns the persisted action -> trigger topics relation.
func (m *MappingStore) Load() (map[string][]string, error) {
	return m.store.Load().Mappings, nil
}

// Save rewrites the mappings section, leaving the rest of the document
// untouched.
func (m *MappingStore) Save(data map[string][]string) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	settings := m.store.loadLocked()
	settings.Mappings = data
	return m.store.saveLocked(settings)
}
