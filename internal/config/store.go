package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store is the persisted key-value settings store handed to components.
type Store interface {
	Get(key string) string
	GetBool(key string, def bool) bool
	Set(key string, value any) error
	Unset(key string) error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// FileStore persists settings in a YAML file. Environment and --config
// overrides shadow file values until the key is written again.
type FileStore struct {
	mu        sync.Mutex
	path      string
	data      map[string]any
	overrides map[string]string
}

// Load resolves the config file, loads .env from the working directory and
// applies PROJCPP_* environment overrides.
func Load(configPath string) (*FileStore, error) {
	_ = godotenv.Load()

	path, err := ResolvePath(configPath)
	if err != nil {
		return nil, err
	}
	store, err := NewFileStore(path)
	if err != nil {
		return nil, err
	}
	store.applyEnv(os.Getenv)
	return store, nil
}

// NewFileStore reads path if it exists. A missing file yields an empty store.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:      path,
		data:      map[string]any{},
		overrides: map[string]string{},
	}

	// #nosec G304 -- path is resolved inside the config directory or supplied by tests
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if s.data == nil {
		s.data = map[string]any{}
	}
	return s, nil
}

func (s *FileStore) applyEnv(getenv func(string) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range envOverrides(getenv) {
		s.overrides[key] = value
	}
}

// ApplyOverrides applies --config pc.key=value flags for this session only.
func (s *FileStore) ApplyOverrides(raw []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range raw {
		key, value, err := parseOverride(item)
		if err != nil {
			return err
		}
		s.overrides[key] = value
	}
	return nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the setting as a string, or "" when unset.
func (s *FileStore) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value, ok := s.overrides[key]; ok {
		return value
	}
	return stringValue(s.data[key])
}

// GetBool returns the setting coerced to a bool.
func (s *FileStore) GetBool(key string, def bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value, ok := s.overrides[key]; ok {
		return coerceBool(value, def)
	}
	return coerceBool(s.data[key], def)
}

// Set writes the setting and persists the file.
func (s *FileStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, key)
	s.data[key] = value
	return s.save()
}

// Unset removes the setting and persists the file.
func (s *FileStore) Unset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, key)
	delete(s.data, key)
	return s.save()
}

// Config returns a typed snapshot with overrides applied.
func (s *FileStore) Config() *AppConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged := make(map[string]any, len(s.data)+len(s.overrides))
	for k, v := range s.data {
		merged[k] = v
	}
	for k, v := range s.overrides {
		merged[k] = v
	}
	return parseConfig(merged)
}

func (s *FileStore) save() error {
	const (
		defaultDirPerms  = 0o750
		defaultFilePerms = 0o600
	)
	if err := os.MkdirAll(filepath.Dir(s.path), defaultDirPerms); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	out, err := yaml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(s.path, out, defaultFilePerms); err != nil {
		return fmt.Errorf("failed to write config %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]any
	// Writes counts Set and Unset calls.
	Writes int
}

// NewMemoryStore returns a store seeded with values.
func NewMemoryStore(values map[string]any) *MemoryStore {
	data := make(map[string]any, len(values))
	for k, v := range values {
		data[k] = v
	}
	return &MemoryStore{data: data}
}

// Get returns the setting as a string.
func (m *MemoryStore) Get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return stringValue(m.data[key])
}

// GetBool returns the setting coerced to a bool.
func (m *MemoryStore) GetBool(key string, def bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return coerceBool(m.data[key], def)
}

// Set stores the setting.
func (m *MemoryStore) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.Writes++
	return nil
}

// Unset removes the setting.
func (m *MemoryStore) Unset(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.Writes++
	return nil
}

// Config returns a typed snapshot.
func (m *MemoryStore) Config() *AppConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return parseConfig(m.data)
}
