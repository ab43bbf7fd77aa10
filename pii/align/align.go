// Package align projects word-level BIO labels onto the subword tokens of
// a pretrained tokenizer, producing model-ready label ids.
package align

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hannes/kiji-ner/pii/dataset"
	"github.com/hannes/kiji-ner/pii/entities"
)

// IgnoreIndex marks positions the loss function must skip.
const IgnoreIndex = -100

// Encoding is a subword encoding of a text. Offsets are byte ranges into
// the encoded text; Special marks tokens added by the tokenizer.
type Encoding struct {
	IDs     []uint32
	Offsets [][2]uint
	Special []bool
}

// Encoder turns text into subword tokens.
type Encoder interface {
	Encode(text string) (Encoding, error)
}

// Aligned is one example ready for token classification training.
type Aligned struct {
	InputIDs []uint32 `json:"input_ids"`
	Labels   []int    `json:"labels"`
	WordIDs  []int    `json:"word_ids"`
}

// Align encodes the words joined by single spaces and gives every subword
// the label id of the word it falls in. Special tokens, and subwords that
// cover no word, get IgnoreIndex and word id -1.
func Align(enc Encoder, ex dataset.Example) (Aligned, error) {
	if len(ex.Tokens) != len(ex.Labels) {
		return Aligned{}, fmt.Errorf("example has %d tokens but %d labels", len(ex.Tokens), len(ex.Labels))
	}

	text := strings.Join(ex.Tokens, " ")
	starts := make([]uint, len(ex.Tokens))
	var pos uint
	for i, w := range ex.Tokens {
		starts[i] = pos
		pos += uint(len(w)) + 1
	}

	encoding, err := enc.Encode(text)
	if err != nil {
		return Aligned{}, fmt.Errorf("failed to encode: %w", err)
	}

	out := Aligned{
		InputIDs: encoding.IDs,
		Labels:   make([]int, len(encoding.IDs)),
		WordIDs:  make([]int, len(encoding.IDs)),
	}
	for i := range encoding.IDs {
		out.Labels[i] = IgnoreIndex
		out.WordIDs[i] = -1

		if i < len(encoding.Special) && encoding.Special[i] {
			continue
		}
		if i >= len(encoding.Offsets) {
			continue
		}
		off := encoding.Offsets[i]
		if off[0] == off[1] {
			continue
		}
		w := wordAt(starts, ex.Tokens, off[0])
		if w < 0 {
			continue
		}
		out.WordIDs[i] = w
		out.Labels[i] = ex.Labels[w].ID()
	}
	return out, nil
}

// wordAt returns the index of the word whose byte range contains p, or -1
// when p falls on a separator.
func wordAt(starts []uint, words []string, p uint) int {
	lo, hi := 0, len(starts)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case p < starts[mid]:
			hi = mid - 1
		case p >= starts[mid]+uint(len(words[mid])):
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}

// WriteAlignedJSONL aligns every example and writes one record per line.
func WriteAlignedJSONL(path string, enc Encoder, examples []dataset.Example) (err error) {
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
	jenc := json.NewEncoder(w)
	for i, ex := range examples {
		a, err := Align(enc, ex)
		if err != nil {
			return fmt.Errorf("example %d: %w", i, err)
		}
		if err := jenc.Encode(a); err != nil {
			return err
		}
	}
	return w.Flush()
}

// LabelOf maps an aligned label id back to its label; IgnoreIndex and
// unknown ids report false.
func LabelOf(id int) (entities.Label, bool) {
	if id == IgnoreIndex {
		return entities.Label{}, false
	}
	s, ok := entities.ID2Label()[id]
	if !ok {
		return entities.Label{}, false
	}
	l, err := entities.ParseLabel(s)
	return l, err == nil
}
