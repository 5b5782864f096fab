// Package settings provides a YAML file-based implementation of domain.SettingsStore.
package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// Ensure Store implements the settings ports.
var (
	_ domain.SettingsStore    = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)

// file is the on-disk document.
type file struct {
	Settings map[string]string `yaml:"settings"`
}

// Store implements domain.SettingsStore using a YAML file.
// A missing file reads as empty; the first Set creates it.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a new Store for the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Get returns the value of key, or "" if unset.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return "", err
	}
	return f.Settings[key], nil
}

// Set stores value under key. An empty value removes the key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return err
	}
	if value == "" {
		delete(f.Settings, key)
	} else {
		f.Settings[key] = value
	}
	return s.write(f)
}

// All returns every stored setting.
func (s *Store) All(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return nil, err
	}
	return f.Settings, nil
}

// Initialize creates the settings file with every known key unset.
// Returns ErrAlreadyInitialized if the file exists.
func (s *Store) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return domain.ErrAlreadyInitialized
	}
	return s.write(&file{Settings: map[string]string{}})
}

func (s *Store) read() (*file, error) {
	f := &file{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.Settings = map[string]string{}
			return f, nil
		}
		return nil, fmt.Errorf("%w: read settings: %w", domain.ErrStoreUnavailable, err)
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: parse settings: %w", domain.ErrStoreUnavailable, err)
	}
	if f.Settings == nil {
		f.Settings = map[string]string{}
	}
	return f, nil
}

func (s *Store) write(f *file) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
