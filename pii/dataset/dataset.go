// Package dataset holds labeled examples and partitions them into
// train/validation/test splits.
package dataset

import (
	"fmt"
	"math/rand"

	"github.com/hannes/kiji-ner/pii/entities"
)

// Example is one labeled sentence. Tokens and Labels always have the same
// length.
type Example struct {
	Tokens []string         `json:"tokens"`
	Labels []entities.Label `json:"ner_tags"`
}

// Len returns the number of tokens.
func (e Example) Len() int { return len(e.Tokens) }

// Validate checks the length invariant and BIO well-formedness.
func (e Example) Validate() error {
	if len(e.Tokens) != len(e.Labels) {
		return fmt.Errorf("example has %d tokens but %d labels", len(e.Tokens), len(e.Labels))
	}
	if ok, idx := entities.WellFormed(e.Labels); !ok {
		return fmt.Errorf("label %s at index %d does not continue a span", e.Labels[idx], idx)
	}
	return nil
}

// Partition names a dataset split.
type Partition string

const (
	Train      Partition = "train"
	Validation Partition = "validation"
	Test       Partition = "test"
)

// Partitions lists the splits in export order.
func Partitions() []Partition {
	return []Partition{Train, Validation, Test}
}

// Dataset is the partitioned result of a synthesis run.
type Dataset struct {
	Train      []Example `json:"train"`
	Validation []Example `json:"validation"`
	Test       []Example `json:"test"`
}

// Get returns the examples of partition p, or nil for an unknown name.
func (d *Dataset) Get(p Partition) []Example {
	switch p {
	case Train:
		return d.Train
	case Validation:
		return d.Validation
	case Test:
		return d.Test
	}
	return nil
}

// Size returns the total number of examples over all partitions.
func (d *Dataset) Size() int {
	return len(d.Train) + len(d.Validation) + len(d.Test)
}

// Split holds the cumulative cut points of the partitioning. TrainEnd and
// ValidationEnd are fractions of the example count, not per-split sizes.
type Split struct {
	TrainEnd      float64 `json:"train_end" yaml:"train_end"`
	ValidationEnd float64 `json:"validation_end" yaml:"validation_end"`
}

// DefaultSplit is the 70/15/15 partitioning.
func DefaultSplit() Split {
	return Split{TrainEnd: 0.70, ValidationEnd: 0.85}
}

// Validate checks 0 <= TrainEnd <= ValidationEnd <= 1.
func (s Split) Validate() error {
	if s.TrainEnd < 0 || s.TrainEnd > 1 {
		return fmt.Errorf("train_end must be between 0 and 1 (current value: %v)", s.TrainEnd)
	}
	if s.ValidationEnd < s.TrainEnd || s.ValidationEnd > 1 {
		return fmt.Errorf("validation_end must be between train_end and 1 (current value: %v)", s.ValidationEnd)
	}
	return nil
}

// Assemble shuffles examples in place with rng and cuts them at
// int(TrainEnd*n) and int(ValidationEnd*n). The test split takes the rest.
func Assemble(rng *rand.Rand, examples []Example, split Split) *Dataset {
	rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})

	n := len(examples)
	trainEnd := int(split.TrainEnd * float64(n))
	valEnd := int(split.ValidationEnd * float64(n))
	if valEnd < trainEnd {
		valEnd = trainEnd
	}

	return &Dataset{
		Train:      examples[:trainEnd:trainEnd],
		Validation: examples[trainEnd:valEnd:valEnd],
		Test:       examples[valEnd:],
	}
}

// CountEntities counts labeled spans per entity type, one per B- tag.
func CountEntities(examples []Example) map[entities.EntityType]int {
	counts := make(map[entities.EntityType]int)
	for _, ex := range examples {
		for _, l := range ex.Labels {
			if l.Prefix() == entities.Begin {
				counts[l.Type()]++
			}
		}
	}
	return counts
}
