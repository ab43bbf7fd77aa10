//go:build integration && onnx

package detectors

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: MODEL_DIR=model/quantized go test -tags "integration onnx" ./pii/detectors/
func TestONNXModelDetector_Integration(t *testing.T) {
	modelDir := os.Getenv("MODEL_DIR")
	if modelDir == "" {
		t.Skip("MODEL_DIR not set")
	}

	detector, err := NewONNXModelDetector(modelDir, "")
	require.NoError(t, err)
	defer func() { _ = detector.Close() }()

	texts := []string{
		"Client NRIC is S1234567D.",
		"Invoice INV-2024-000123 should not leave the company.",
		"The weather in Singapore is sunny.",
	}
	for _, text := range texts {
		output, err := detector.Detect(context.Background(), DetectorInput{Text: text})
		require.NoError(t, err)
		assert.Equal(t, text, output.Text)
		for _, e := range output.Entities {
			assert.Equal(t, text[e.StartPos:e.EndPos], e.Text)
			assert.GreaterOrEqual(t, e.Confidence, confidenceThreshold)
		}
	}
}
