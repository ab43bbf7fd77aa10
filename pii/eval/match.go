// Package eval scores detector output against gold entity annotations by
// exact match on (category, normalized value) pairs.
package eval

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize lower-cases s and drops every character outside [a-z0-9].
// It is idempotent.
func Normalize(s string) string {
	s = cases.Lower(language.Und).String(s)
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// CategoryAliases maps detector category names onto the gold vocabulary.
// Unlisted names pass through unchanged. Gold categories are never aliased.
var CategoryAliases = map[string]string{
	"PHONENUMBER": "PHONE",
	"PERSON":      "NAME",
	"KEY":         "API_KEY",
}

// CanonicalCategory applies CategoryAliases to a predicted category.
func CanonicalCategory(group string) string {
	if alias, ok := CategoryAliases[group]; ok {
		return alias
	}
	return group
}

// Pair is the comparison key of an entity record.
type Pair struct {
	Category string `json:"category"`
	Value    string `json:"value"`
}

func (p Pair) String() string {
	return "(" + p.Category + ", " + p.Value + ")"
}

// PairSet is a set of pairs. Duplicates collapse.
type PairSet map[Pair]struct{}

// Add inserts p.
func (s PairSet) Add(p Pair) { s[p] = struct{}{} }

// Has reports whether p is in the set.
func (s PairSet) Has(p Pair) bool {
	_, ok := s[p]
	return ok
}

// Intersect returns the pairs present in both sets.
func (s PairSet) Intersect(other PairSet) PairSet {
	out := PairSet{}
	for p := range s {
		if other.Has(p) {
			out.Add(p)
		}
	}
	return out
}

// Sorted returns the pairs ordered by category, then value.
func (s PairSet) Sorted() []Pair {
	out := make([]Pair, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Value < out[j].Value
	})
	return out
}

func (s PairSet) String() string {
	parts := make([]string, 0, len(s))
	for _, p := range s.Sorted() {
		parts = append(parts, p.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// PredictedPair canonicalizes one detector record: aliased category and
// normalized value.
func PredictedPair(group, word string) Pair {
	return Pair{Category: CanonicalCategory(group), Value: Normalize(word)}
}

// GoldPair canonicalizes one gold record: category as given, normalized
// value.
func GoldPair(group, word string) Pair {
	return Pair{Category: group, Value: Normalize(word)}
}

// SampleResult is the outcome for one text.
type SampleResult struct {
	Text     string
	Detected PairSet
	Expected PairSet
	Matched  PairSet
}

// Match builds both pair sets and intersects them.
func Match(text string, predicted, gold []Pair) SampleResult {
	detected, expected := PairSet{}, PairSet{}
	for _, p := range predicted {
		detected.Add(p)
	}
	for _, g := range gold {
		expected.Add(g)
	}
	return SampleResult{
		Text:     text,
		Detected: detected,
		Expected: expected,
		Matched:  detected.Intersect(expected),
	}
}
