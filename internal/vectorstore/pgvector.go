package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

var pgMigrations = []string{
	`CREATE TABLE IF NOT EXISTS sow_collections (
		name TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sow_chunks (
		collection TEXT NOT NULL REFERENCES sow_collections (name) ON DELETE CASCADE,
		id TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}',
		embedding vector NOT NULL,
		PRIMARY KEY (collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sow_chunks_metadata ON sow_chunks USING gin (metadata)`,
}

// PgVector stores collections in PostgreSQL with the pgvector extension.
// Distances use the cosine operator (<=>).
type PgVector struct {
	pool *pgxpool.Pool
}

// NewPgVector creates the vector extension if needed and opens a pool.
func NewPgVector(ctx context.Context, dsn string) (*PgVector, error) {
	if err := createExtension(ctx, dsn); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	cfg.AfterConnect = pgxvec.RegisterTypes

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, m := range pgMigrations {
		if _, err := pool.Exec(ctx, m); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}

	return &PgVector{pool: pool}, nil
}

// createExtension runs on a plain connection: the pool registers vector types
// on connect, which needs the extension to exist already.
func createExtension(ctx context.Context, dsn string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}
	return nil
}

const insertCollection = `INSERT INTO sow_collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`

func (s *PgVector) GetOrCreateCollection(ctx context.Context, name string) error {
	if _, err := s.pool.Exec(ctx, insertCollection, name); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// DeleteCollection removes the collection and, by cascade, its chunks.
func (s *PgVector) DeleteCollection(ctx context.Context, name string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sow_collections WHERE name = $1`, name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	return nil
}

// Upsert writes all records in one transaction.
func (s *PgVector) Upsert(ctx context.Context, collection string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(insertCollection, collection)
	for _, r := range records {
		metadata := r.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		batch.Queue(`
			INSERT INTO sow_chunks (collection, id, content, metadata, embedding)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (collection, id) DO UPDATE SET
				content = EXCLUDED.content,
				metadata = EXCLUDED.metadata,
				embedding = EXCLUDED.embedding
		`, collection, r.ID, r.Content, metadata, pgvector.NewVector(r.Embedding))
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", collection, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

func (s *PgVector) Query(ctx context.Context, collection string, embedding []float32, n int, filter Filter) ([]Match, error) {
	if n <= 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, content, metadata, embedding <=> $2 AS distance
		FROM sow_chunks
		WHERE collection = $1`)
	args := []any{collection, pgvector.NewVector(embedding)}

	for _, cond := range Conditions(filter) {
		args = append(args, cond.Key, cond.Value)
		fmt.Fprintf(&sb, " AND metadata->>$%d = $%d", len(args)-1, len(args))
	}

	args = append(args, n)
	fmt.Fprintf(&sb, " ORDER BY distance LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			m        Match
			distance float64
		)
		if err := rows.Scan(&m.ID, &m.Content, &m.Metadata, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m.Distance = float32(distance)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *PgVector) Count(ctx context.Context, collection string) (int, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM sow_chunks WHERE collection = $1`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return int(n), nil
}

func (s *PgVector) Close() error {
	s.pool.Close()
	return nil
}
