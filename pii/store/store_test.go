package store

import (
	"bufio"
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannes/kiji-ner/pii/dataset"
	"github.com/hannes/kiji-ner/pii/entities"
	"github.com/hannes/kiji-ner/pii/tagging"
)

func sampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	sentences := []struct {
		text, mention string
		typ           entities.EntityType
	}{
		{"Client NRIC is S1234567D.", "S1234567D", entities.NRIC},
		{"Invoice INV-2024-000123 should not leave the company.", "INV-2024-000123", entities.InvoiceID},
		{"Salary is S$12,000.50.", "S$12,000.50", entities.Salary},
		{"PO-100200 is confidential.", "PO-100200", entities.PONumber},
		{"The weather in Singapore is sunny.", "", entities.NRIC},
		{"Access token eyJabc_def-123 must not leave secure channels.", "eyJabc_def-123", entities.AccessToken},
		{"Our commission rate is 12 %.", "12 %", entities.CommissionRate},
	}
	var examples []dataset.Example
	for _, s := range sentences {
		tokens, labels := tagging.Label(s.text, s.mention, s.typ)
		examples = append(examples, dataset.Example{Tokens: tokens, Labels: labels})
	}
	return dataset.Assemble(rand.New(rand.NewSource(1)), examples, dataset.DefaultSplit())
}

func openStores(t *testing.T) map[string]DatasetStore {
	t.Helper()
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "datasets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]DatasetStore{
		DriverSQLite: sqlite,
		DriverMemory: NewInMemoryDatasetStore(),
	}
}

func TestDatasetStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ds := sampleDataset(t)
			runID, err := s.SaveDataset(ctx, ds, RunMeta{Seed: 7, PerLabel: 20})
			require.NoError(t, err)
			require.NotEmpty(t, runID)

			loaded, err := s.LoadDataset(ctx, runID)
			require.NoError(t, err)
			assert.Equal(t, ds.Train, loaded.Train)
			assert.Equal(t, ds.Validation, loaded.Validation)
			assert.Equal(t, ds.Test, loaded.Test)

			test, err := s.LoadPartition(ctx, runID, dataset.Test)
			require.NoError(t, err)
			assert.Equal(t, ds.Test, test)

			runs, err := s.ListRuns(ctx)
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, runID, runs[0].ID)
			assert.Equal(t, int64(7), runs[0].Seed)
			assert.Equal(t, 20, runs[0].PerLabel)
			assert.Equal(t, len(ds.Train), runs[0].Train)
			assert.Equal(t, len(ds.Test), runs[0].Test)
			assert.False(t, runs[0].CreatedAt.IsZero())
		})
	}
}

func TestDatasetStore_UnknownRun(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.LoadPartition(ctx, "00000000-0000-0000-0000-000000000000", dataset.Train)
			assert.ErrorIs(t, err, ErrRunNotFound)

			_, err = s.LoadDataset(ctx, "not-a-uuid")
			assert.ErrorIs(t, err, ErrRunNotFound)

			assert.ErrorIs(t, s.DeleteRun(ctx, "00000000-0000-0000-0000-000000000000"), ErrRunNotFound)
		})
	}
}

func TestDatasetStore_DeleteRun(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			first, err := s.SaveDataset(ctx, sampleDataset(t), RunMeta{Seed: 1})
			require.NoError(t, err)
			second, err := s.SaveDataset(ctx, sampleDataset(t), RunMeta{Seed: 2})
			require.NoError(t, err)

			require.NoError(t, s.DeleteRun(ctx, first))

			runs, err := s.ListRuns(ctx)
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, second, runs[0].ID)

			_, err = s.LoadPartition(ctx, first, dataset.Train)
			assert.ErrorIs(t, err, ErrRunNotFound)
		})
	}
}

func TestSQLiteStore_CascadeDeletesExamples(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cascade.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	runID, err := s.SaveDataset(ctx, sampleDataset(t), RunMeta{})
	require.NoError(t, err)
	require.NoError(t, s.DeleteRun(ctx, runID))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM dataset_examples`).Scan(&n))
	assert.Zero(t, n)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	runID, err := s.SaveDataset(ctx, sampleDataset(t), RunMeta{Seed: 3})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	ds, err := s.LoadDataset(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, 7, ds.Size())
}

func TestOpen_Drivers(t *testing.T) {
	s, err := Open(DatabaseConfig{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &InMemoryDatasetStore{}, s)

	s, err = Open(DatabaseConfig{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.NoError(t, s.Close())

	_, err = Open(DatabaseConfig{Driver: DriverSQLite})
	assert.Error(t, err)

	_, err = Open(DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := &SQLDatasetStore{dialect: DriverPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := &SQLDatasetStore{dialect: DriverSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestExportJSONL(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")
	ds := sampleDataset(t)
	require.NoError(t, ExportJSONL(dir, ds))

	total := 0
	for _, p := range dataset.Partitions() {
		f, err := os.Open(filepath.Join(dir, string(p)+".jsonl"))
		require.NoError(t, err)

		scanner := bufio.NewScanner(f)
		i := 0
		for scanner.Scan() {
			var rec exportRecord
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
			want := ds.Get(p)[i]
			assert.Equal(t, want.Tokens, rec.Tokens)
			require.Len(t, rec.NERTags, len(want.Labels))
			for j, l := range want.Labels {
				assert.Equal(t, l.ID(), rec.NERTags[j])
			}
			i++
		}
		require.NoError(t, scanner.Err())
		_ = f.Close()
		assert.Equal(t, len(ds.Get(p)), i)
		total += i
	}
	assert.Equal(t, ds.Size(), total)

	data, err := os.ReadFile(filepath.Join(dir, LabelsFileName))
	require.NoError(t, err)
	var maps labelMaps
	require.NoError(t, json.Unmarshal(data, &maps))
	assert.Equal(t, "O", maps.ID2Label["0"])
	assert.Equal(t, 1, maps.Label2ID["B-NRIC"])
	assert.Len(t, maps.ID2Label, 1+2*len(entities.All()))
}
