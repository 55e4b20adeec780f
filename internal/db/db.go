package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrExportNotFound is returned when no stored export has the requested id.
var ErrExportNotFound = errors.New("export not found")

// Export is one serialized document kept in the exports table.
type Export struct {
	ID         uuid.UUID
	JobID      string
	SchemaPath string
	Root       string
	XML        string
	RuleCount  int
	CreatedAt  time.Time
}

// Store binds the export queries to a pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// SaveExport inserts e. See SaveExport.
func (s *Store) SaveExport(ctx context.Context, e *Export) error {
	return SaveExport(ctx, s.pool, e)
}

// Connect creates a connection pool to PostgreSQL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate runs the SQL migration files against the database.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrationsDir string) error {
	sqlFile := filepath.Join(migrationsDir, "001_initial.sql")
	sql, err := os.ReadFile(sqlFile)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

// SaveExport inserts e, assigning a fresh id when e.ID is zero.
func SaveExport(ctx context.Context, pool *pgxpool.Pool, e *Export) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	err := pool.QueryRow(ctx, `
		INSERT INTO exports (id, job_id, schema_path, root, xml, rule_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, e.ID, e.JobID, e.SchemaPath, e.Root, e.XML, e.RuleCount).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("save export %s: %w", e.ID, err)
	}
	return nil
}

// GetExport loads one export including its XML.
func GetExport(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*Export, error) {
	var e Export
	err := pool.QueryRow(ctx, `
		SELECT id, job_id, schema_path, root, xml, rule_count, created_at
		FROM exports WHERE id = $1
	`, id).Scan(&e.ID, &e.JobID, &e.SchemaPath, &e.Root, &e.XML, &e.RuleCount, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrExportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch export %s: %w", id, err)
	}
	return &e, nil
}

// ListExports returns the newest exports first, without their XML bodies.
func ListExports(ctx context.Context, pool *pgxpool.Pool, limit int) ([]Export, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := pool.Query(ctx, `
		SELECT id, job_id, schema_path, root, rule_count, created_at
		FROM exports
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var out []Export
	for rows.Next() {
		var e Export
		if err := rows.Scan(&e.ID, &e.JobID, &e.SchemaPath, &e.Root, &e.RuleCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
