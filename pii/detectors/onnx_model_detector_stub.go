//go:build !onnx

package detectors

import (
	"context"
	"errors"
)

// ErrONNXUnavailable is returned when the binary was built without the onnx
// tag and therefore without the tokenizer and runtime libraries.
var ErrONNXUnavailable = errors.New("ONNX model detector not available: build with -tags onnx")

// ONNXModelDetector is a placeholder so the factory compiles without the
// native libraries.
type ONNXModelDetector struct{}

// NewONNXModelDetector validates the model directory, then reports that
// inference is unavailable in this build.
func NewONNXModelDetector(modelDir string, libraryPath string) (*ONNXModelDetector, error) {
	cfg, err := ValidateModelDirectory(modelDir)
	if err != nil {
		return nil, err
	}
	if _, err := LoadLabelMappings(cfg.LabelMapPath); err != nil {
		return nil, err
	}
	return nil, ErrONNXUnavailable
}

func (d *ONNXModelDetector) GetName() string {
	return DetectorNameONNXModel
}

func (d *ONNXModelDetector) Detect(ctx context.Context, input DetectorInput) (DetectorOutput, error) {
	return DetectorOutput{}, ErrONNXUnavailable
}

func (d *ONNXModelDetector) Close() error {
	return nil
}
