// Package store persists generated datasets so a run can be reloaded,
// compared and exported without regenerating it.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hannes/kiji-ner/pii/dataset"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver       string        `json:"driver" yaml:"driver"`
	Path         string        `json:"path" yaml:"path"` // sqlite file
	Host         string        `json:"host" yaml:"host"`
	Port         int           `json:"port" yaml:"port"`
	Database     string        `json:"database" yaml:"database"`
	Username     string        `json:"username" yaml:"username"`
	Password     string        `json:"password" yaml:"password"`
	SSLMode      string        `json:"ssl_mode" yaml:"ssl_mode"`
	MaxOpenConns int           `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxLifetime  time.Duration `json:"max_lifetime" yaml:"max_lifetime"`
}

// RunMeta describes how a dataset was produced.
type RunMeta struct {
	Seed     int64
	PerLabel int
}

// Run is a stored dataset summary.
type Run struct {
	ID         string    `json:"id"`
	Seed       int64     `json:"seed"`
	PerLabel   int       `json:"per_label"`
	CreatedAt  time.Time `json:"created_at"`
	Train      int       `json:"train"`
	Validation int       `json:"validation"`
	Test       int       `json:"test"`
}

// DatasetStore defines the interface for dataset persistence
type DatasetStore interface {
	// SaveDataset stores all partitions and returns the new run id
	SaveDataset(ctx context.Context, ds *dataset.Dataset, meta RunMeta) (string, error)

	// LoadDataset reads every partition of a run
	LoadDataset(ctx context.Context, runID string) (*dataset.Dataset, error)

	// LoadPartition reads one partition of a run in stored order
	LoadPartition(ctx context.Context, runID string, p dataset.Partition) ([]dataset.Example, error)

	// ListRuns returns runs newest first
	ListRuns(ctx context.Context) ([]Run, error)

	// DeleteRun removes a run and its examples
	DeleteRun(ctx context.Context, runID string) error

	// Close closes the database connection
	Close() error
}

// Open creates the store selected by cfg.Driver.
func Open(cfg DatabaseConfig) (DatasetStore, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return OpenSQLite(cfg.Path)
	case DriverPostgres:
		return OpenPostgres(cfg)
	case DriverMemory:
		return NewInMemoryDatasetStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

func loadAll(ctx context.Context, s DatasetStore, runID string) (*dataset.Dataset, error) {
	ds := &dataset.Dataset{}
	for _, p := range dataset.Partitions() {
		examples, err := s.LoadPartition(ctx, runID, p)
		if err != nil {
			return nil, err
		}
		switch p {
		case dataset.Train:
			ds.Train = examples
		case dataset.Validation:
			ds.Validation = examples
		case dataset.Test:
			ds.Test = examples
		}
	}
	return ds, nil
}
