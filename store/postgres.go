package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lvillar/rtldoc/record"
)

// NewPool constructs a pgx connection pool using the provided connection string.
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	if connString == "" {
		return nil, fmt.Errorf("store: empty connection string")
	}
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("store: parse config: %w", err)
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Postgres keeps records as JSONB documents keyed by kind and id.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Source = (*Postgres)(nil)

// NewPostgres returns a Postgres source backed by pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS document_records (
    kind       text        NOT NULL,
    id         text        NOT NULL,
    body       jsonb       NOT NULL,
    updated_at timestamptz NOT NULL DEFAULT now(),
    PRIMARY KEY (kind, id)
);`

// Migrate creates the records table when it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Save inserts or replaces the record stored under its kind and id.
func (p *Postgres) Save(ctx context.Context, id string, r record.Record) error {
	if id == "" {
		return ErrInvalidID
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("store: encode %s %s: %w", r.Kind(), id, err)
	}
	const upsertSQL = `
INSERT INTO document_records (kind, id, body) VALUES ($1, $2, $3)
ON CONFLICT (kind, id) DO UPDATE SET body = EXCLUDED.body, updated_at = now();`
	if _, err := p.pool.Exec(ctx, upsertSQL, string(r.Kind()), id, body); err != nil {
		return fmt.Errorf("store: save %s %s: %w", r.Kind(), id, err)
	}
	return nil
}

// Load returns the record stored under kind and id.
func (p *Postgres) Load(ctx context.Context, kind record.Kind, id string) (record.Record, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	var body []byte
	err := p.pool.QueryRow(ctx,
		`SELECT body FROM document_records WHERE kind = $1 AND id = $2`,
		string(kind), id,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s %s: %w", kind, id, err)
	}
	return record.Decode(kind, bytes.NewReader(body))
}
