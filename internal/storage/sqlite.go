package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const busyTimeout = 5000 // milliseconds

// SQLiteStore keeps values in a kv_store table keyed by (namespace, key).
type SQLiteStore struct {
	conn      *sql.DB
	namespace string
}

// OpenSQLite opens (or creates) dir/gridfind.db.
func OpenSQLite(dir, namespace string) (*SQLiteStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty storage dir", ErrStorage)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrStorage, dir, err)
	}
	dbPath := filepath.Join(dir, "gridfind.db")
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", dbPath, busyTimeout)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", ErrStorage, err)
	}
	conn.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: connect: %v", ErrStorage, err)
	}
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: initialize schema: %v", ErrStorage, err)
	}
	return &SQLiteStore{conn: conn, namespace: namespace}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, data []byte) error {
	if err := checkName("key", key); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	now := time.Now().UnixNano()
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO kv_store (namespace, key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		s.namespace, key, data, now, now)
	if err != nil {
		return fmt.Errorf("%w: kv set %q: %v", ErrStorage, key, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := s.conn.QueryRowContext(ctx,
		`SELECT value FROM kv_store WHERE namespace = ? AND key = ?`,
		s.namespace, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: kv get %q: %v", ErrStorage, key, err)
	}
	return data, true, nil
}

func (s *SQLiteStore) Clear(ctx context.Context, key string) error {
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM kv_store WHERE namespace = ? AND key = ?`, s.namespace, key)
	if err != nil {
		return fmt.Errorf("%w: kv delete %q: %v", ErrStorage, key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrStorage, err)
	}
	return nil
}
