package config

import (
	"fmt"
	"sync"

	"github.com/1broseidon/sizepeek/internal/preview"
)

// Store persists preview settings in a config file. Saving reloads the file
// first so edits made since startup are kept.
type Store struct {
	mu   sync.Mutex
	path string
}

var _ preview.SettingsStore = (*Store)(nil)

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// NewDefaultStore returns a store backed by the standard config location.
func NewDefaultStore() (*Store, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return NewStore(path), nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load returns the effective configuration of the backing file.
func (s *Store) Load() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := LoadFromPath(s.path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func (s *Store) LoadPreviewSettings() (preview.Settings, error) {
	cfg, err := s.Load()
	if err != nil {
		return preview.Settings{}, err
	}
	return cfg.PreviewSettings()
}

func (s *Store) SavePreviewSettings(settings preview.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := LoadFromPath(s.path)
	if err != nil {
		return fmt.Errorf("reload before save: %w", err)
	}
	cfg := res.Config
	cfg.ApplyPreviewSettings(settings)
	return cfg.SaveTo(s.path)
}
