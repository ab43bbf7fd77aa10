package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hannes/kiji-ner/pii/dataset"
	"github.com/hannes/kiji-ner/pii/entities"
)

// SQLDatasetStore implements DatasetStore for SQLite and PostgreSQL. Queries
// are written with ? placeholders and rebound for PostgreSQL.
type SQLDatasetStore struct {
	db      *sql.DB
	dialect string
}

// OpenSQLite creates or opens a SQLite database at path.
func OpenSQLite(path string) (*SQLDatasetStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	s := &SQLDatasetStore{db: db, dialect: DriverSQLite}
	if err := s.createTablesIfNotExist(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// OpenPostgres connects to PostgreSQL and creates the tables if needed.
func OpenPostgres(config DatabaseConfig) (*SQLDatasetStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.Username, config.Password, config.Database, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.MaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLDatasetStore{db: db, dialect: DriverPostgres}
	if err := s.createTablesIfNotExist(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS dataset_runs (
	id TEXT PRIMARY KEY,
	seed INTEGER NOT NULL,
	per_label INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL,
	train_count INTEGER NOT NULL,
	validation_count INTEGER NOT NULL,
	test_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS dataset_examples (
	run_id TEXT NOT NULL REFERENCES dataset_runs(id) ON DELETE CASCADE,
	split TEXT NOT NULL,
	position INTEGER NOT NULL,
	tokens TEXT NOT NULL,
	labels TEXT NOT NULL,
	PRIMARY KEY (run_id, split, position)
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS dataset_runs (
	id UUID PRIMARY KEY,
	seed BIGINT NOT NULL,
	per_label INTEGER NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	train_count INTEGER NOT NULL,
	validation_count INTEGER NOT NULL,
	test_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS dataset_examples (
	run_id UUID NOT NULL REFERENCES dataset_runs(id) ON DELETE CASCADE,
	split VARCHAR(16) NOT NULL,
	position INTEGER NOT NULL,
	tokens JSONB NOT NULL,
	labels JSONB NOT NULL,
	PRIMARY KEY (run_id, split, position)
);

CREATE INDEX IF NOT EXISTS idx_dataset_runs_created_at ON dataset_runs(created_at);
`

func (s *SQLDatasetStore) createTablesIfNotExist() error {
	schema := sqliteSchema
	if s.dialect == DriverPostgres {
		schema = postgresSchema
	}
	_, err := s.db.Exec(schema)
	return err
}

// rebind turns ? placeholders into $1, $2, ... for PostgreSQL.
func (s *SQLDatasetStore) rebind(query string) string {
	if s.dialect != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// SaveDataset stores all partitions in one transaction
func (s *SQLDatasetStore) SaveDataset(ctx context.Context, ds *dataset.Dataset, meta RunMeta) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("[Store] Warning: rollback failed: %v", err)
		}
	}()

	_, err = tx.ExecContext(ctx, s.rebind(`
	INSERT INTO dataset_runs (id, seed, per_label, created_at, train_count, validation_count, test_count)
	VALUES (?, ?, ?, ?, ?, ?, ?)`),
		runID, meta.Seed, meta.PerLabel, time.Now().UTC(), len(ds.Train), len(ds.Validation), len(ds.Test))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
	INSERT INTO dataset_examples (run_id, split, position, tokens, labels)
	VALUES (?, ?, ?, ?, ?)`))
	if err != nil {
		return "", fmt.Errorf("failed to prepare example insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range dataset.Partitions() {
		for i, ex := range ds.Get(p) {
			tokens, err := json.Marshal(ex.Tokens)
			if err != nil {
				return "", err
			}
			labels, err := json.Marshal(entities.Strings(ex.Labels))
			if err != nil {
				return "", err
			}
			if _, err := stmt.ExecContext(ctx, runID, string(p), i, string(tokens), string(labels)); err != nil {
				return "", fmt.Errorf("failed to insert %s example %d: %w", p, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit dataset: %w", err)
	}
	log.Printf("[Store] Saved run %s (%d examples)", runID, ds.Size())
	return runID, nil
}

func (s *SQLDatasetStore) runExists(ctx context.Context, runID string) error {
	if _, err := uuid.Parse(runID); err != nil {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	var one int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM dataset_runs WHERE id = ?`), runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return err
}

// LoadDataset reads every partition of a run
func (s *SQLDatasetStore) LoadDataset(ctx context.Context, runID string) (*dataset.Dataset, error) {
	if err := s.runExists(ctx, runID); err != nil {
		return nil, err
	}
	return loadAll(ctx, s, runID)
}

// LoadPartition reads one partition of a run in stored order
func (s *SQLDatasetStore) LoadPartition(ctx context.Context, runID string, p dataset.Partition) ([]dataset.Example, error) {
	if err := s.runExists(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
	SELECT tokens, labels FROM dataset_examples
	WHERE run_id = ? AND split = ?
	ORDER BY position`), runID, string(p))
	if err != nil {
		return nil, fmt.Errorf("failed to query examples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	examples := []dataset.Example{}
	for rows.Next() {
		var tokensJSON, labelsJSON []byte
		if err := rows.Scan(&tokensJSON, &labelsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan example: %w", err)
		}
		var ex dataset.Example
		if err := json.Unmarshal(tokensJSON, &ex.Tokens); err != nil {
			return nil, fmt.Errorf("failed to decode tokens: %w", err)
		}
		if err := json.Unmarshal(labelsJSON, &ex.Labels); err != nil {
			return nil, fmt.Errorf("failed to decode labels: %w", err)
		}
		examples = append(examples, ex)
	}
	return examples, rows.Err()
}

// ListRuns returns runs newest first
func (s *SQLDatasetStore) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, seed, per_label, created_at, train_count, validation_count, test_count
	FROM dataset_runs
	ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Seed, &r.PerLabel, &r.CreatedAt, &r.Train, &r.Validation, &r.Test); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run; examples go with it through the foreign key
func (s *SQLDatasetStore) DeleteRun(ctx context.Context, runID string) error {
	if err := s.runExists(ctx, runID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM dataset_runs WHERE id = ?`), runID)
	return err
}

// Close closes the database connection
func (s *SQLDatasetStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
