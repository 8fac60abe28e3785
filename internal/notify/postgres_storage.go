package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	createStorageTable = `
CREATE TABLE IF NOT EXISTS local_storage (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	selectStorageValue = `SELECT value FROM local_storage WHERE key = $1`
	upsertStorageValue = `
INSERT INTO local_storage (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// PostgresStorage keeps values in a single key/value table.
type PostgresStorage struct {
	DB *sql.DB
}

// OpenPostgres opens databaseURL with the pgx driver and ensures the table exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}
	if _, err := db.ExecContext(ctx, createStorageTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create local_storage table: %w", err)
	}
	return &PostgresStorage{DB: db}, nil
}

// Load implements Storage.
func (p *PostgresStorage) Load(ctx context.Context, key string) ([]byte, error) {
	if p.DB == nil {
		return nil, errors.New("postgres storage: db is nil")
	}
	var v string
	err := p.DB.QueryRowContext(ctx, selectStorageValue, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

// Save implements Storage.
func (p *PostgresStorage) Save(ctx context.Context, key string, data []byte) error {
	if p.DB == nil {
		return errors.New("postgres storage: db is nil")
	}
	_, err := p.DB.ExecContext(ctx, upsertStorageValue, key, string(data))
	return err
}

// Close closes the database handle.
func (p *PostgresStorage) Close() error {
	if p.DB == nil {
		return nil
	}
	return p.DB.Close()
}
