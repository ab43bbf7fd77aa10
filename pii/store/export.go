package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hannes/kiji-ner/pii/dataset"
	"github.com/hannes/kiji-ner/pii/entities"
)

// LabelsFileName is the label map written next to the partition files.
const LabelsFileName = "labels.json"

type exportRecord struct {
	Tokens  []string `json:"tokens"`
	NERTags []int    `json:"ner_tags"`
}

type labelMaps struct {
	ID2Label map[string]string `json:"id2label"`
	Label2ID map[string]int    `json:"label2id"`
}

// ExportJSONL writes <partition>.jsonl for every partition, one
// {"tokens", "ner_tags"} record per line with integer label ids, plus
// labels.json holding id2label and label2id.
func ExportJSONL(dir string, ds *dataset.Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	for _, p := range dataset.Partitions() {
		if err := writePartition(filepath.Join(dir, string(p)+".jsonl"), ds.Get(p)); err != nil {
			return fmt.Errorf("failed to export %s: %w", p, err)
		}
	}

	maps := labelMaps{ID2Label: map[string]string{}, Label2ID: entities.Label2ID()}
	for id, label := range entities.ID2Label() {
		maps.ID2Label[strconv.Itoa(id)] = label
	}
	data, err := json.MarshalIndent(maps, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, LabelsFileName), append(data, '\n'), 0o644)
}

func writePartition(path string, examples []dataset.Example) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, ex := range examples {
		rec := exportRecord{Tokens: ex.Tokens, NERTags: make([]int, len(ex.Labels))}
		for i, l := range ex.Labels {
			rec.NERTags[i] = l.ID()
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}
