//go:build !onnx

package align

import "errors"

// ErrTokenizerUnavailable is returned when the binary was built without the
// onnx tag and therefore without the native tokenizer library.
var ErrTokenizerUnavailable = errors.New("subword tokenizer not available: build with -tags onnx")

// HFEncoder is a placeholder for builds without the native tokenizer.
type HFEncoder struct{}

func NewHFEncoder(path string) (*HFEncoder, error) {
	return nil, ErrTokenizerUnavailable
}

func (h *HFEncoder) Encode(text string) (Encoding, error) {
	return Encoding{}, ErrTokenizerUnavailable
}

func (h *HFEncoder) Close() error {
	return nil
}
