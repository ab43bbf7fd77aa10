package detectors

import (
	"context"
	"regexp"
)

// RegexDetector implements Detector using regular expressions
type RegexDetector struct {
	patterns map[string]*regexp.Regexp
}

func NewRegexDetector(patterns map[string]string) *RegexDetector {
	regexMap := make(map[string]*regexp.Regexp)
	for label, pattern := range patterns {
		regexMap[label] = regexp.MustCompile(pattern)
	}

	return &RegexDetector{
		patterns: regexMap,
	}
}

// GetName returns the name of this detector
func (r *RegexDetector) GetName() string {
	return DetectorNameRegex
}

// Detect processes the input and returns detected entities
func (r *RegexDetector) Detect(ctx context.Context, input DetectorInput) (DetectorOutput, error) {
	entities := []Entity{}

	for label, pattern := range r.patterns {
		if err := ctx.Err(); err != nil {
			return DetectorOutput{}, err
		}
		for _, match := range pattern.FindAllStringSubmatchIndex(input.Text, -1) {
			startPos, endPos := match[0], match[1]
			if len(match) >= 4 && match[2] >= 0 {
				startPos, endPos = match[2], match[3]
			}
			entities = append(entities, Entity{
				Text:       input.Text[startPos:endPos],
				Label:      label,
				StartPos:   startPos,
				EndPos:     endPos,
				Confidence: 1.0,
			})
		}
	}
	sortEntities(entities)

	return DetectorOutput{
		Text:     input.Text,
		Entities: entities,
	}, nil
}

// Close implements the Detector interface
func (r *RegexDetector) Close() error {
	// Regex detector doesn't need cleanup
	return nil
}
