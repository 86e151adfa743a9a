package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"bmcnav/internal/session"
)

// PostgresStore keeps each session as one JSONB row.
type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS bmc_sessions (
  id TEXT PRIMARY KEY,
  stage TEXT NOT NULL,
  state JSONB NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_bmc_sessions_updated_at ON bmc_sessions (updated_at);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Get(ctx context.Context, id string) (session.State, error) {
	id, err := normalizeID(id)
	if err != nil {
		return session.State{}, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return session.State{}, err
	}
	var raw []byte
	err = s.db.QueryRowContext(ctx, `SELECT state FROM bmc_sessions WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return session.State{}, ErrNotFound
	}
	if err != nil {
		return session.State{}, err
	}
	var st session.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return session.State{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return st, nil
}

func (s *PostgresStore) Put(ctx context.Context, st session.State) error {
	id, err := normalizeID(st.ID)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO bmc_sessions (id, stage, state, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id)
DO UPDATE SET stage=EXCLUDED.stage, state=EXCLUDED.state, updated_at=EXCLUDED.updated_at`,
		id, string(st.Stage), string(raw), st.CreatedAt, st.UpdatedAt)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	id, err := normalizeID(id)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM bmc_sessions WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
