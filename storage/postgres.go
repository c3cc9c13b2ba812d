package storage

import (
	"context"
	"errors"
	"fmt"

	"contestacao-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Schema creates the results table and its index
const Schema = `
CREATE TABLE IF NOT EXISTS contestation_results (
    id UUID PRIMARY KEY,
    content TEXT NOT NULL,
    size BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_contestation_results_created_at ON contestation_results(created_at);`

// PostgresStorage implements ResultStore on the contestation_results table
type PostgresStorage struct {
	db *pgxpool.Pool
}

// NewPostgresStorage creates a store on an existing pool
func NewPostgresStorage(db *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// NewPostgresStorageFromURL opens a pool and checks the connection
func NewPostgresStorageFromURL(ctx context.Context, connString string) (*PostgresStorage, error) {
	if connString == "" {
		return nil, errors.New("DATABASE_URL environment variable is required for postgres storage")
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	zap.L().Info("Postgres connection established")
	return NewPostgresStorage(pool), nil
}

// EnsureSchema creates the results table if it does not exist
func (s *PostgresStorage) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create contestation_results table: %w", err)
	}
	return nil
}

// Put inserts a new row
func (s *PostgresStorage) Put(ctx context.Context, content string) (string, error) {
	id := uuid.New()
	query := `
		INSERT INTO contestation_results (id, content, size)
		VALUES ($1, $2, $3)`

	if _, err := s.db.Exec(ctx, query, id, content, len(content)); err != nil {
		return "", fmt.Errorf("failed to insert result: %w", err)
	}

	zap.L().Info("result saved", zap.String("backend", "postgres"), zap.String("id", id.String()), zap.Int("chars", len(content)))
	return id.String(), nil
}

// Get retrieves a row by id
func (s *PostgresStorage) Get(ctx context.Context, id string) (*models.StoredResult, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	result := &models.StoredResult{}
	query := `
		SELECT id, content, size, created_at
		FROM contestation_results
		WHERE id = $1`

	err = s.db.QueryRow(ctx, query, parsed).Scan(
		&result.ID,
		&result.Content,
		&result.Size,
		&result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query result: %w", err)
	}

	return result, nil
}

// Delete removes a row by id
func (s *PostgresStorage) Delete(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return nil
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM contestation_results WHERE id = $1`, parsed); err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}

// Close releases the pool
func (s *PostgresStorage) Close() {
	s.db.Close()
}
