package detectors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testID2Label = map[int]string{0: "O", 1: "B-PHONE", 2: "I-PHONE", 3: "B-EMAIL", 4: "I-EMAIL"}

// oneHot returns logits that put almost all probability on class.
func oneHot(class, n int) []float32 {
	out := make([]float32, n)
	out[class] = 10
	return out
}

func logitsFor(classes ...int) []float32 {
	var out []float32
	for _, c := range classes {
		out = append(out, oneHot(c, len(testID2Label))...)
	}
	return out
}

func TestDecodeEntities_GroupsBIO(t *testing.T) {
	text := "call 555 123 x@y.z"
	offsets := []charSpan{{0, 0}, {0, 4}, {5, 8}, {9, 12}, {13, 18}, {18, 18}}
	logits := logitsFor(0, 0, 1, 2, 3, 0)

	entities := decodeEntities(text, logits, len(testID2Label), testID2Label, offsets)
	require.Len(t, entities, 2)
	assert.Equal(t, "PHONE", entities[0].Label)
	assert.Equal(t, "555 123", entities[0].Text)
	assert.Equal(t, 5, entities[0].StartPos)
	assert.Equal(t, 12, entities[0].EndPos)
	assert.Equal(t, "EMAIL", entities[1].Label)
	assert.Equal(t, "x@y.z", entities[1].Text)
	assert.Greater(t, entities[0].Confidence, 0.99)
}

func TestDecodeEntities_OrphanInsideStartsEntity(t *testing.T) {
	text := "aa bb"
	offsets := []charSpan{{0, 2}, {3, 5}}
	entities := decodeEntities(text, logitsFor(2, 4), len(testID2Label), testID2Label, offsets)
	require.Len(t, entities, 2)
	assert.Equal(t, "PHONE", entities[0].Label)
	assert.Equal(t, "EMAIL", entities[1].Label)
}

func TestDecodeEntities_LowConfidenceIsOutside(t *testing.T) {
	flat := make([]float32, len(testID2Label))
	entities := decodeEntities("abc", flat, len(testID2Label), testID2Label, []charSpan{{0, 3}})
	assert.Empty(t, entities)
}

func TestDecodeEntities_SpecialTokensIgnored(t *testing.T) {
	entities := decodeEntities("abc", logitsFor(1), len(testID2Label), testID2Label, []charSpan{{0, 0}})
	assert.Empty(t, entities)
}

func TestSoftmaxArgmax(t *testing.T) {
	best, conf := softmaxArgmax([]float32{0, 0})
	assert.Equal(t, 0, best)
	assert.InDelta(t, 0.5, conf, 1e-9)

	best, conf = softmaxArgmax([]float32{1, 3, 2})
	assert.Equal(t, 1, best)
	assert.InDelta(t, 0.665, conf, 1e-3)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestValidateModelDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := ValidateModelDirectory(filepath.Join(dir, "missing"))
	assert.ErrorContains(t, err, "does not exist")

	writeFile(t, filepath.Join(dir, ModelFileName), "onnx")
	_, err = ValidateModelDirectory(dir)
	assert.ErrorContains(t, err, TokenizerFileName)
	assert.ErrorContains(t, err, LabelMapFileName)

	_, err = ValidateModelDirectory(filepath.Join(dir, ModelFileName))
	assert.ErrorContains(t, err, "not a directory")

	writeFile(t, filepath.Join(dir, TokenizerFileName), "{}")
	writeFile(t, filepath.Join(dir, LabelMapFileName), "{}")
	cfg, err := ValidateModelDirectory(dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.ModelPath))
	assert.Equal(t, ModelFileName, filepath.Base(cfg.ModelPath))
}

func TestLoadLabelMappings(t *testing.T) {
	dir := t.TempDir()

	flat := filepath.Join(dir, "flat.json")
	writeFile(t, flat, `{"id2label": {"0": "O", "1": "B-NRIC", "2": "I-NRIC"}, "label2id": {"O": 0}}`)
	m, err := LoadLabelMappings(flat)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "O", 1: "B-NRIC", 2: "I-NRIC"}, m)

	nested := filepath.Join(dir, "nested.json")
	writeFile(t, nested, `{"pii": {"id2label": {"0": "O", "1": "B-EMAIL"}}, "coref": {"id2label": {"0": "NONE"}}}`)
	m, err = LoadLabelMappings(nested)
	require.NoError(t, err)
	assert.Equal(t, "B-EMAIL", m[1])

	empty := filepath.Join(dir, "empty.json")
	writeFile(t, empty, `{}`)
	_, err = LoadLabelMappings(empty)
	assert.Error(t, err)

	badID := filepath.Join(dir, "bad.json")
	writeFile(t, badID, `{"id2label": {"x": "O"}}`)
	_, err = LoadLabelMappings(badID)
	assert.Error(t, err)
}
