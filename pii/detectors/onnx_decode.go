package detectors

import (
	"math"
	"strings"
)

const confidenceThreshold = 0.5

// charSpan is a token's [start, end) byte range in the input text.
type charSpan [2]uint

// safeUintToInt safely converts a uint to int with bounds checking
func safeUintToInt(val uint) int {
	const maxInt = int(^uint(0) >> 1)
	if val <= uint(maxInt) {
		// #nosec G115 - Safe conversion with bounds checking
		return int(val)
	}
	return maxInt
}

// decodeEntities turns per-token logits into entities. Tokens are labeled
// by argmax; a softmax confidence under the threshold counts as O. A B- tag,
// or an I- tag that does not continue the open entity, starts a new entity.
// Confidence of a multi-token entity is a running average.
func decodeEntities(text string, logits []float32, numLabels int, id2label map[int]string, offsets []charSpan) []Entity {
	entities := []Entity{}
	if numLabels == 0 {
		return entities
	}

	var current *Entity
	var first, last charSpan
	flush := func() {
		if current == nil {
			return
		}
		current.StartPos = safeUintToInt(first[0])
		current.EndPos = safeUintToInt(last[1])
		if current.StartPos <= current.EndPos && current.EndPos <= len(text) {
			current.Text = text[current.StartPos:current.EndPos]
		}
		entities = append(entities, *current)
		current = nil
	}

	for i := range offsets {
		end := (i + 1) * numLabels
		if end > len(logits) {
			break
		}
		tokenLogits := logits[i*numLabels : end]

		bestClass, confidence := softmaxArgmax(tokenLogits)
		label, ok := id2label[bestClass]
		if !ok || confidence < confidenceThreshold {
			label = "O"
		}
		// special tokens carry an empty offset
		if offsets[i][0] == offsets[i][1] {
			label = "O"
		}

		isBeginning := strings.HasPrefix(label, "B-")
		isInside := strings.HasPrefix(label, "I-")
		baseLabel := strings.TrimPrefix(strings.TrimPrefix(label, "B-"), "I-")

		switch {
		case label != "O" && isInside && current != nil && current.Label == baseLabel:
			last = offsets[i]
			current.Confidence = (current.Confidence + confidence) / 2
		case label != "O" && (isBeginning || isInside):
			flush()
			current = &Entity{Label: baseLabel, Confidence: confidence}
			first, last = offsets[i], offsets[i]
		default:
			flush()
		}
	}
	flush()
	return entities
}

func softmaxArgmax(logits []float32) (int, float64) {
	best := 0
	maxLogit := float64(-math.MaxFloat64)
	for j, logit := range logits {
		if float64(logit) > maxLogit {
			maxLogit = float64(logit)
			best = j
		}
	}
	var sum float64
	for _, logit := range logits {
		sum += math.Exp(float64(logit) - maxLogit)
	}
	return best, 1 / sum
}

