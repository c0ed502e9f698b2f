package stores

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/openfroyo/inventory/pkg/engine"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db  *sql.DB
	cfg Config
}

// Config holds SQLite store configuration
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	// Set defaults
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	// Every connection to :memory: opens its own database.
	if cfg.Path == MemoryPath {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
		cfg.ConnMaxLifetime = 0
	}

	return &SQLiteStore{cfg: cfg}, nil
}

// Init initializes the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate", s.cfg.Path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(s.cfg.MaxOpenConns)
	db.SetMaxIdleConns(s.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
}

// CreateRun records the start of a run
func (s *SQLiteStore) CreateRun(ctx context.Context, run *engine.Run) error {
	query := `
		INSERT INTO runs (id, status, started_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, query, run.ID, run.Status, run.StartedAt.UTC(), now, now)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// CompleteRun stores the final status and summary of a run, creating the
// record if the run was never announced.
func (s *SQLiteStore) CompleteRun(ctx context.Context, run *engine.Run) error {
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode run summary: %w", err)
	}

	query := `
		INSERT INTO runs (id, status, started_at, completed_at, duration_ms, summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			completed_at = excluded.completed_at,
			duration_ms = excluded.duration_ms,
			summary = excluded.summary,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	completedAt := now
	if run.CompletedAt != nil {
		completedAt = run.CompletedAt.UTC()
	}

	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		run.Status,
		run.StartedAt.UTC(),
		completedAt,
		run.Duration.Milliseconds(),
		string(summary),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `
		SELECT id, status, started_at, completed_at, duration_ms, summary, metadata, created_at, updated_at
		FROM runs
		WHERE id = ?
	`

	run := &Run{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Status,
		&run.StartedAt,
		&run.CompletedAt,
		&run.DurationMS,
		&run.Summary,
		&run.Metadata,
		&run.CreatedAt,
		&run.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// ListRuns lists runs with pagination, newest first
func (s *SQLiteStore) ListRuns(ctx context.Context, limit, offset int) ([]*Run, error) {
	query := `
		SELECT id, status, started_at, completed_at, duration_ms, summary, metadata, created_at, updated_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run := &Run{}
		err := rows.Scan(
			&run.ID,
			&run.Status,
			&run.StartedAt,
			&run.CompletedAt,
			&run.DurationMS,
			&run.Summary,
			&run.Metadata,
			&run.CreatedAt,
			&run.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// DeleteRun deletes a run and its results
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	query := `DELETE FROM runs WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}

	return nil
}

// Report implements engine.Sink. The type result and its instances are
// written in one transaction.
func (s *SQLiteStore) Report(ctx context.Context, result *engine.TypeResult) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()

	// Results may arrive before CompleteRun during a run.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, status, started_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, result.RunID, engine.RunStatusRunning, result.StartedAt.UTC(), now, now)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	var errMsg *string
	if result.Err != nil {
		msg := result.Err.Error()
		errMsg = &msg
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO type_results (
			run_id, resource_type, status, reason, error,
			instance_count, started_at, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, resource_type) DO UPDATE SET
			status = excluded.status,
			reason = excluded.reason,
			error = excluded.error,
			instance_count = excluded.instance_count,
			started_at = excluded.started_at,
			duration_ms = excluded.duration_ms
	`,
		result.RunID,
		string(result.Type),
		result.Status,
		result.Reason,
		errMsg,
		len(result.Instances),
		result.StartedAt.UTC(),
		result.Duration.Milliseconds(),
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to record type result: %w", err)
	}

	if len(result.Instances) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO resources (run_id, resource_type, identifier, properties, created_at)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare resource insert: %w", err)
		}
		defer stmt.Close()

		for _, inst := range result.Instances {
			props, err := json.Marshal(inst.Properties)
			if err != nil {
				return fmt.Errorf("failed to encode properties of %s: %w", inst.Identifier, err)
			}
			if _, err := stmt.ExecContext(ctx, result.RunID, string(result.Type), inst.Identifier, string(props), now); err != nil {
				return fmt.Errorf("failed to record resource %s: %w", inst.Identifier, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit type result: %w", err)
	}

	return nil
}

// ListTypeResults lists the type outcomes of a run ordered by type
func (s *SQLiteStore) ListTypeResults(ctx context.Context, runID string) ([]*TypeResult, error) {
	query := `
		SELECT id, run_id, resource_type, status, reason, error, instance_count, started_at, duration_ms, created_at
		FROM type_results
		WHERE run_id = ?
		ORDER BY resource_type
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list type results: %w", err)
	}
	defer rows.Close()

	results := []*TypeResult{}
	for rows.Next() {
		r := &TypeResult{}
		err := rows.Scan(
			&r.ID,
			&r.RunID,
			&r.ResourceType,
			&r.Status,
			&r.Reason,
			&r.Error,
			&r.Instances,
			&r.StartedAt,
			&r.DurationMS,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan type result: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating type results: %w", err)
	}

	return results, nil
}

// ListResources lists the resources of a run with pagination.
// An empty resourceType lists every type.
func (s *SQLiteStore) ListResources(ctx context.Context, runID string, resourceType string, limit, offset int) ([]*Resource, error) {
	query := `
		SELECT run_id, resource_type, identifier, properties, created_at
		FROM resources
		WHERE run_id = ?
	`
	args := []interface{}{runID}

	if resourceType != "" {
		query += " AND resource_type = ?"
		args = append(args, resourceType)
	}

	query += " ORDER BY resource_type, identifier LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	resources := []*Resource{}
	for rows.Next() {
		r := &Resource{}
		if err := rows.Scan(&r.RunID, &r.ResourceType, &r.Identifier, &r.Properties, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resources: %w", err)
	}

	return resources, nil
}

// HealthCheck checks if the database is accessible
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return s.db.PingContext(ctx)
}
