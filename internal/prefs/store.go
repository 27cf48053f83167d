// Package prefs is a small persistent key/value store for instance-local
// state such as the last gacha pull per user. Values never expire.
package prefs

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"glaminator/internal/prefs/migrations"
)

// Store is a SQLite-backed preference store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the preference database at path and
// applies pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open prefs db: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping prefs db: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate prefs db: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference[%s]: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set preference[%s]: %w", key, err)
	}
	return nil
}

// GetString returns the string stored under key, or def when absent.
func (s *Store) GetString(ctx context.Context, key, def string) (string, error) {
	v, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

// SetString stores a string under key.
func (s *Store) SetString(ctx context.Context, key, value string) error {
	return s.set(ctx, key, value)
}

// GetBool returns the bool stored under key, or def when absent.
func (s *Store) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	v, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("preference[%s] is not a bool: %w", key, err)
	}
	return b, nil
}

// SetBool stores a bool under key.
func (s *Store) SetBool(ctx context.Context, key string, value bool) error {
	return s.set(ctx, key, strconv.FormatBool(value))
}

// GetLong returns the int64 stored under key, or def when absent.
func (s *Store) GetLong(ctx context.Context, key string, def int64) (int64, error) {
	v, ok, err := s.get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def, fmt.Errorf("preference[%s] is not a long: %w", key, err)
	}
	return n, nil
}

// SetLong stores an int64 under key.
func (s *Store) SetLong(ctx context.Context, key string, value int64) error {
	return s.set(ctx, key, strconv.FormatInt(value, 10))
}

// Remove deletes key; removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete preference[%s]: %w", key, err)
	}
	return nil
}
