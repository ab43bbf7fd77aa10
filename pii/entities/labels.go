package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Prefix is the BIO position marker of a label.
type Prefix byte

const (
	Outside Prefix = 'O'
	Begin   Prefix = 'B'
	Inside  Prefix = 'I'
)

// Label is a per-token BIO tag. The zero value is not valid; use O.
type Label struct {
	prefix Prefix
	typ    EntityType
}

// O is the label for tokens outside any entity.
var O = Label{prefix: Outside}

// B returns the label that opens a span of type t.
func B(t EntityType) Label { return Label{prefix: Begin, typ: t} }

// I returns the label that continues a span of type t.
func I(t EntityType) Label { return Label{prefix: Inside, typ: t} }

// Prefix returns the BIO position marker.
func (l Label) Prefix() Prefix { return l.prefix }

// Type returns the entity type. It is meaningless for O.
func (l Label) Type() EntityType { return l.typ }

// IsOutside reports whether l is O.
func (l Label) IsOutside() bool { return l.prefix == Outside }

// String renders the label as "O", "B-NRIC" or "I-NRIC".
func (l Label) String() string {
	switch l.prefix {
	case Outside:
		return "O"
	case Begin, Inside:
		return string(l.prefix) + "-" + l.typ.String()
	default:
		return fmt.Sprintf("Label(%q)", string(l.prefix))
	}
}

// ParseLabel validates a label string against the closed vocabulary.
func ParseLabel(s string) (Label, error) {
	if s == "O" {
		return O, nil
	}
	head, name, ok := strings.Cut(s, "-")
	if !ok || (head != "B" && head != "I") {
		return Label{}, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
	}
	t, err := ParseEntityType(name)
	if err != nil {
		return Label{}, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
	}
	return Label{prefix: Prefix(head[0]), typ: t}, nil
}

// MarshalJSON encodes the label as its string form.
func (l Label) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes and validates a label string.
func (l *Label) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLabel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Vocabulary returns every label in id order: O, then B-T and I-T for each
// entity type in vocabulary order.
func Vocabulary() []Label {
	types := All()
	out := make([]Label, 0, 1+2*len(types))
	out = append(out, O)
	for _, t := range types {
		out = append(out, B(t), I(t))
	}
	return out
}

// ID returns the integer id of the label used in training exports.
func (l Label) ID() int {
	switch l.prefix {
	case Begin:
		return 1 + 2*int(l.typ)
	case Inside:
		return 2 + 2*int(l.typ)
	default:
		return 0
	}
}

// Label2ID maps label strings to ids.
func Label2ID() map[string]int {
	vocab := Vocabulary()
	m := make(map[string]int, len(vocab))
	for _, l := range vocab {
		m[l.String()] = l.ID()
	}
	return m
}

// ID2Label maps ids to label strings.
func ID2Label() map[int]string {
	vocab := Vocabulary()
	m := make(map[int]string, len(vocab))
	for _, l := range vocab {
		m[l.ID()] = l.String()
	}
	return m
}

// WellFormed reports whether every I-T in labels directly follows a B-T or
// I-T of the same type. It returns the index of the first violation, or -1.
func WellFormed(labels []Label) (bool, int) {
	for i, l := range labels {
		if l.prefix != Inside {
			continue
		}
		if i == 0 {
			return false, i
		}
		prev := labels[i-1]
		if prev.IsOutside() || prev.typ != l.typ {
			return false, i
		}
	}
	return true, -1
}

// Strings renders a label sequence as strings.
func Strings(labels []Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.String()
	}
	return out
}
