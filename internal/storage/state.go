// Package storage persists client state between runs in a small sqlite
// database. Today that is only the bearer token.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"spendwise/internal/log"
)

// KeyToken is the row holding the bearer token.
const KeyToken = "token"

// StateStore is a key/value table of client state.
type StateStore struct {
	db      *sql.DB
	version uint
}

type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger reports migrations through l.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Open creates the database file and its directory if needed and applies
// migrations.
func Open(dbPath string, opts ...Option) (*StateStore, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath, o.logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &StateStore{db: db, version: version}, nil
}

// SchemaVersion is the migration version the database was opened at.
func (s *StateStore) SchemaVersion() uint { return s.version }

func (s *StateStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the value under key, or "" when absent.
func (s *StateStore) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM client_state WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (s *StateStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM client_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// TokenStore adapts StateStore to the session's token persistence.
type TokenStore struct {
	*StateStore
}

func NewTokenStore(s *StateStore) TokenStore {
	return TokenStore{StateStore: s}
}

func (t TokenStore) Load(ctx context.Context) (string, error) {
	return t.Get(ctx, KeyToken)
}

func (t TokenStore) Save(ctx context.Context, token string) error {
	return t.Set(ctx, KeyToken, token)
}

func (t TokenStore) Clear(ctx context.Context) error {
	return t.Delete(ctx, KeyToken)
}
