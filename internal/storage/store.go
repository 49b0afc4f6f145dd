// Package storage persists editor state under a fixed namespace.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrStorage wraps every backend failure.
var ErrStorage = errors.New("storage")

// Well-known keys.
const (
	DefaultNamespace = "gridfind"
	KeyMap           = "map"
	KeyBackground    = "background"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Store is a namespaced key/value store. A missing key is not an error: Load
// returns (nil, false, nil).
type Store interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Clear(ctx context.Context, key string) error
	Close() error
}

var validName = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func checkName(kind, name string) error {
	if !validName.MatchString(name) || name == "." || name == ".." {
		return fmt.Errorf("%w: invalid %s %q", ErrStorage, kind, name)
	}
	return nil
}

// Open creates the backend named by backend rooted at dir.
func Open(backend, dir, namespace string) (Store, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if err := checkName("namespace", namespace); err != nil {
		return nil, err
	}
	switch backend {
	case BackendFile, "":
		return NewFileStore(dir, namespace)
	case BackendSQLite:
		return OpenSQLite(dir, namespace)
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("%w: unknown backend %q", ErrStorage, backend)
}

// MemoryStore keeps values in a map. It backs tests and sessions run with
// persistence disabled.
type MemoryStore struct {
	data map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	if err := checkName("key", key); err != nil {
		return err
	}
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
