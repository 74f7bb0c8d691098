package tokenstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultPath is where the CLI keeps its session file.
const DefaultPath = "~/.config/farmdash/session.toml"

// FileStore persists credentials in a TOML file readable only by the owner.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore resolves path (empty means DefaultPath, "~" is expanded).
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve token path: %w", err)
	}
	return &FileStore{path: resolved}, nil
}

// Path returns the resolved file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(key Key) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	return values[string(key)], nil
}

func (s *FileStore) Set(key Key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if value == "" {
		delete(values, string(key))
	} else {
		values[string(key)] = value
	}
	return s.save(values)
}

func (s *FileStore) Delete(key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[string(key)]; !ok {
		return nil
	}
	delete(values, string(key))
	return s.save(values)
}

// Clear removes the session file altogether.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (s *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}

	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", s.path, err)
	}
	return values, nil
}

func (s *FileStore) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	data, err := toml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
