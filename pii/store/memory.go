package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hannes/kiji-ner/pii/dataset"
)

// InMemoryDatasetStore implements DatasetStore in memory (fallback and tests)
type InMemoryDatasetStore struct {
	mu       sync.RWMutex
	runs     map[string]Run
	datasets map[string]*dataset.Dataset
}

// NewInMemoryDatasetStore creates an empty in-memory store
func NewInMemoryDatasetStore() *InMemoryDatasetStore {
	return &InMemoryDatasetStore{
		runs:     make(map[string]Run),
		datasets: make(map[string]*dataset.Dataset),
	}
}

func cloneExamples(in []dataset.Example) []dataset.Example {
	out := make([]dataset.Example, len(in))
	for i, ex := range in {
		out[i] = dataset.Example{
			Tokens: append([]string(nil), ex.Tokens...),
			Labels: append(ex.Labels[:0:0], ex.Labels...),
		}
	}
	return out
}

// SaveDataset stores a copy of ds
func (m *InMemoryDatasetStore) SaveDataset(ctx context.Context, ds *dataset.Dataset, meta RunMeta) (string, error) {
	runID := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs[runID] = Run{
		ID:         runID,
		Seed:       meta.Seed,
		PerLabel:   meta.PerLabel,
		CreatedAt:  time.Now().UTC(),
		Train:      len(ds.Train),
		Validation: len(ds.Validation),
		Test:       len(ds.Test),
	}
	m.datasets[runID] = &dataset.Dataset{
		Train:      cloneExamples(ds.Train),
		Validation: cloneExamples(ds.Validation),
		Test:       cloneExamples(ds.Test),
	}
	return runID, nil
}

// LoadDataset returns a copy of every partition
func (m *InMemoryDatasetStore) LoadDataset(ctx context.Context, runID string) (*dataset.Dataset, error) {
	return loadAll(ctx, m, runID)
}

// LoadPartition returns a copy of one partition
func (m *InMemoryDatasetStore) LoadPartition(ctx context.Context, runID string, p dataset.Partition) ([]dataset.Example, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ds, ok := m.datasets[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return cloneExamples(ds.Get(p)), nil
}

// ListRuns returns runs newest first
func (m *InMemoryDatasetStore) ListRuns(ctx context.Context) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]Run, 0, len(m.runs))
	for _, r := range m.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs, nil
}

// DeleteRun removes a run
func (m *InMemoryDatasetStore) DeleteRun(ctx context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[runID]; !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	delete(m.runs, runID)
	delete(m.datasets, runID)
	return nil
}

// Close is a no-op for in-memory storage
func (m *InMemoryDatasetStore) Close() error {
	return nil
}
