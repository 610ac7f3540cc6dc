package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresStore implements Store on a single jsonb documents table, keyed
// by (collection, id).
type PostgresStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents (collection);
`

// NewPostgresStore connects a pgx pool and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, documentsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init documents schema: %w", err)
	}
	logger.Info("PostgreSQL connected")
	return &PostgresStore{db: pool, logger: logger}, nil
}

// GetDocument implements Store.
func (s *PostgresStore) GetDocument(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var data json.RawMessage
	err := s.db.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return data, nil
}

// GetCollection implements Store.
func (s *PostgresStore) GetCollection(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, data FROM documents WHERE collection = $1`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var id string
		var data json.RawMessage
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		out[id] = data
	}
	return out, rows.Err()
}

// SetDocument implements Store. Merge writes preserve unspecified top-level
// fields via jsonb concatenation.
func (s *PostgresStore) SetDocument(ctx context.Context, collection, id string, data any, merge bool) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	assign := `data = EXCLUDED.data`
	if merge {
		assign = `data = documents.data || EXCLUDED.data`
	}
	_, err = s.db.Exec(ctx, fmt.Sprintf(`
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (collection, id) DO UPDATE SET %s, updated_at = NOW()`, assign),
		collection, id, raw,
	)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

// BatchWrite implements Store. All ops run in one transaction so the batch
// applies together or not at all.
func (s *PostgresStore) BatchWrite(ctx context.Context, ops []Op) error {
	if len(ops) == 0 {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, op := range ops {
		if op.Delete {
			if _, err := tx.Exec(ctx,
				`DELETE FROM documents WHERE collection = $1 AND id = $2`,
				op.Collection, op.ID); err != nil {
				return fmt.Errorf("batch delete %s/%s: %w", op.Collection, op.ID, err)
			}
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO documents (collection, id, data, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
			op.Collection, op.ID, op.Data); err != nil {
			return fmt.Errorf("batch upsert %s/%s: %w", op.Collection, op.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Close shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.db.Close()
}
