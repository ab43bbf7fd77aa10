// Package noise applies light character-level corruption to labeled
// examples so a recognizer sees realistic formatting drift.
package noise

import (
	"math/rand"
	"strings"
	"unicode"

	"github.com/hannes/kiji-ner/pii/dataset"
	"github.com/hannes/kiji-ner/pii/entities"
	"github.com/hannes/kiji-ner/pii/tokenizer"
)

// Default mutation probabilities.
const (
	DefaultDigitSpaceProb  = 0.08
	DefaultZeroToOProb     = 0.10
	DefaultHyphenSpaceProb = 0.08
)

// Perturber mutates text with three independent randomized passes. All
// draws come from rng in a fixed order.
type Perturber struct {
	rng *rand.Rand

	DigitSpaceProb  float64 // per digit: append a space
	ZeroToOProb     float64 // per text: replace every '0' with 'O'
	HyphenSpaceProb float64 // per text: replace every '-' with " - "
}

// NewPerturber creates a perturber with the default probabilities.
func NewPerturber(rng *rand.Rand) *Perturber {
	return &Perturber{
		rng:             rng,
		DigitSpaceProb:  DefaultDigitSpaceProb,
		ZeroToOProb:     DefaultZeroToOProb,
		HyphenSpaceProb: DefaultHyphenSpaceProb,
	}
}

// Perturb returns a mutated copy of text. One draw is made per digit,
// then one for the zero swap, then one for the hyphen spacing.
func (p *Perturber) Perturb(text string) string {
	var sb strings.Builder
	sb.Grow(len(text) + 8)
	for _, r := range text {
		sb.WriteRune(r)
		if unicode.IsDigit(r) && p.rng.Float64() < p.DigitSpaceProb {
			sb.WriteByte(' ')
		}
	}
	out := sb.String()

	if p.rng.Float64() < p.ZeroToOProb {
		out = strings.ReplaceAll(out, "0", "O")
	}
	if p.rng.Float64() < p.HyphenSpaceProb {
		out = strings.ReplaceAll(out, "-", " - ")
	}
	return out
}

// Apply perturbs the space-joined tokens of ex and re-tokenizes the result.
// Labels are not re-located: the old labels are truncated to the new token
// count, and if the text grew the extra tokens are labeled O. Spans shifted
// by the mutation are therefore mislabeled; callers accept that loss.
func (p *Perturber) Apply(ex dataset.Example) dataset.Example {
	text := p.Perturb(strings.Join(ex.Tokens, " "))
	tokens := tokenizer.Tokenize(text)
	return dataset.Example{
		Tokens: tokens,
		Labels: fitLabels(ex.Labels, len(tokens)),
	}
}

func fitLabels(labels []entities.Label, n int) []entities.Label {
	out := make([]entities.Label, n)
	for i := copy(out, labels); i < n; i++ {
		out[i] = entities.O
	}
	return out
}
