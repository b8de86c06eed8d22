package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/macrolens/diettracker/internal/domain"
)

// PostgresStore implements domain.KeyValueStore on a Postgres table
type PostgresStore struct {
	sql *sql.DB
}

var _ domain.KeyValueStore = (*PostgresStore)(nil)

// NewPostgresStore connects to connStr, pings it and creates the key-value table
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS diet_tracker_kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &PostgresStore{sql: db}, nil
}

// Close closes the connection pool
func (p *PostgresStore) Close() error {
	return p.sql.Close()
}

// Get returns the value of key or domain.ErrKeyNotFound
func (p *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := p.sql.QueryRowContext(ctx, "SELECT value FROM diet_tracker_kv WHERE key=$1;", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrKeyNotFound
	}
	return value, err
}

// Set upserts value under key
func (p *PostgresStore) Set(ctx context.Context, key string, value string) error {
	_, err := p.sql.ExecContext(ctx,
		`INSERT INTO diet_tracker_kv(key, value, updated_at) VALUES($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at;`,
		key, value,
	)
	return err
}

// Delete removes key
func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := p.sql.ExecContext(ctx, "DELETE FROM diet_tracker_kv WHERE key=$1;", key)
	return err
}

// Exists reports whether key has a value
func (p *PostgresStore) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := p.sql.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM diet_tracker_kv WHERE key=$1);", key).Scan(&exists)
	return exists, err
}
