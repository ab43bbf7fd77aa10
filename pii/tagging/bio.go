package tagging

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hannes/kiji-ner/pii/entities"
)

// ErrOverlappingSpans is returned by TagSpans when two spans share a token.
var ErrOverlappingSpans = errors.New("overlapping spans")

// ErrSpanOutOfRange is returned by TagSpans when a span index is outside the
// token sequence.
var ErrSpanOutOfRange = errors.New("span index out of range")

// ErrNonContiguousSpan is returned by TagSpans when the sorted indices of a
// span are not consecutive.
var ErrNonContiguousSpan = errors.New("non-contiguous span")

// Tag returns one label per token: B-t at the lowest in-range span index,
// I-t at the other in-range indices, O everywhere else. Out-of-range and
// repeated indices are ignored. An empty span yields all O.
func Tag(tokens []string, span []int, t entities.EntityType) []entities.Label {
	labels := make([]entities.Label, len(tokens))
	for i := range labels {
		labels[i] = entities.O
	}

	idx := append([]int(nil), span...)
	sort.Ints(idx)
	begun := false
	for j, i := range idx {
		if i < 0 || i >= len(labels) || (j > 0 && idx[j-1] == i) {
			continue
		}
		if !begun {
			labels[i] = entities.B(t)
			begun = true
		} else {
			labels[i] = entities.I(t)
		}
	}
	return labels
}

// SpanTag is one located mention to be merged by TagSpans.
type SpanTag struct {
	Span []int
	Type entities.EntityType
}

// TagSpans tags several spans into a single label sequence. Empty spans are
// skipped. Each span must cover consecutive tokens (ErrNonContiguousSpan).
// Spans that share any token are rejected with ErrOverlappingSpans rather
// than resolved by priority.
func TagSpans(tokens []string, spans []SpanTag) ([]entities.Label, error) {
	labels := Tag(tokens, nil, 0)
	owner := make([]int, len(tokens))
	for i := range owner {
		owner[i] = -1
	}

	for k, st := range spans {
		if len(st.Span) == 0 {
			continue
		}
		idx := append([]int(nil), st.Span...)
		sort.Ints(idx)
		for j, i := range idx {
			if i < 0 || i >= len(tokens) {
				return nil, fmt.Errorf("%w: span %d index %d (tokens: %d)", ErrSpanOutOfRange, k, i, len(tokens))
			}
			if j > 0 && i != idx[j-1]+1 {
				return nil, fmt.Errorf("%w: span %d jumps from index %d to %d", ErrNonContiguousSpan, k, idx[j-1], i)
			}
		}
		for _, i := range idx {
			if owner[i] >= 0 {
				return nil, fmt.Errorf("%w: spans %d and %d both cover token %d (%q)", ErrOverlappingSpans, owner[i], k, i, tokens[i])
			}
			owner[i] = k
		}
		for j, i := range idx {
			if j == 0 {
				labels[i] = entities.B(st.Type)
			} else {
				labels[i] = entities.I(st.Type)
			}
		}
	}
	return labels, nil
}
