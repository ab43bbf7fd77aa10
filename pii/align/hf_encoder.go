//go:build onnx

package align

import (
	"fmt"

	"github.com/daulet/tokenizers"
)

// HFEncoder wraps a HuggingFace tokenizer.json.
type HFEncoder struct {
	tk *tokenizers.Tokenizer
}

// NewHFEncoder loads a tokenizer.json file.
func NewHFEncoder(path string) (*HFEncoder, error) {
	tk, err := tokenizers.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}
	return &HFEncoder{tk: tk}, nil
}

// Encode adds special tokens and returns offsets and the special mask.
func (h *HFEncoder) Encode(text string) (Encoding, error) {
	e := h.tk.EncodeWithOptions(text, true,
		tokenizers.WithReturnOffsets(),
		tokenizers.WithReturnSpecialTokensMask())

	out := Encoding{
		IDs:     e.IDs,
		Offsets: make([][2]uint, len(e.Offsets)),
		Special: make([]bool, len(e.SpecialTokensMask)),
	}
	for i, o := range e.Offsets {
		out.Offsets[i] = [2]uint(o)
	}
	for i, m := range e.SpecialTokensMask {
		out.Special[i] = m == 1
	}
	return out, nil
}

// Close releases the native tokenizer.
func (h *HFEncoder) Close() error {
	return h.tk.Close()
}
