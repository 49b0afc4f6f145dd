package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps one file per key in dir/namespace. Writes go to a temp file
// that is renamed into place, so a crash never leaves a half-written value.
type FileStore struct {
	dir string
}

// NewFileStore creates dir/namespace if needed.
func NewFileStore(dir, namespace string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty storage dir", ErrStorage)
	}
	root := filepath.Join(dir, namespace)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrStorage, root, err)
	}
	return &FileStore{dir: root}, nil
}

func (s *FileStore) path(key string) string { return filepath.Join(s.dir, key) }

func (s *FileStore) Save(ctx context.Context, key string, data []byte) error {
	if err := checkName("key", key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: save %q: %v", ErrStorage, key, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: save %q: %v", ErrStorage, key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: save %q: %v", ErrStorage, key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: save %q: %v", ErrStorage, key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: save %q: %v", ErrStorage, key, err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkName("key", key); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: load %q: %v", ErrStorage, key, err)
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: load %q: %v", ErrStorage, key, err)
	}
	return data, true, nil
}

func (s *FileStore) Clear(_ context.Context, key string) error {
	if err := checkName("key", key); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: clear %q: %v", ErrStorage, key, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
