package detectors

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// Files a token-classification model directory must contain.
const (
	ModelFileName     = "model_quantized.onnx"
	TokenizerFileName = "tokenizer.json"
	LabelMapFileName  = "label_mappings.json"
)

// ModelConfig holds paths to required model files
type ModelConfig struct {
	ModelPath     string
	TokenizerPath string
	LabelMapPath  string
}

// ValidateModelDirectory checks that the directory exists and contains all
// required files
func ValidateModelDirectory(dir string) (*ModelConfig, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory does not exist: %s", dir)
		}
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	var missingFiles []string
	for _, filename := range []string{ModelFileName, TokenizerFileName, LabelMapFileName} {
		if _, err := os.Stat(filepath.Join(dir, filename)); os.IsNotExist(err) {
			missingFiles = append(missingFiles, filename)
		}
	}
	if len(missingFiles) > 0 {
		return nil, fmt.Errorf("missing required files in directory: %v", missingFiles)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir // Fall back to original if abs fails
	}

	log.Printf("[Detector] Validated model directory: %s", absDir)
	return &ModelConfig{
		ModelPath:     filepath.Join(absDir, ModelFileName),
		TokenizerPath: filepath.Join(absDir, TokenizerFileName),
		LabelMapPath:  filepath.Join(absDir, LabelMapFileName),
	}, nil
}

// LoadLabelMappings reads an id2label table. Both a flat
// {"id2label": {...}} file and one nested under "pii" are accepted.
func LoadLabelMappings(path string) (map[int]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read label mappings: %w", err)
	}

	var mappings struct {
		ID2Label map[string]string `json:"id2label"`
		PII      struct {
			ID2Label map[string]string `json:"id2label"`
		} `json:"pii"`
	}
	if err := json.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("failed to parse label mappings: %w", err)
	}

	raw := mappings.ID2Label
	if len(raw) == 0 {
		raw = mappings.PII.ID2Label
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("label mappings in %s contain no id2label entries", path)
	}

	id2label := make(map[int]string, len(raw))
	for k, v := range raw {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("label mappings: invalid id %q: %w", k, err)
		}
		id2label[id] = v
	}
	return id2label, nil
}
