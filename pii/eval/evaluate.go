package eval

import (
	"context"
	"fmt"
	"io"

	"github.com/hannes/kiji-ner/pii/detectors"
)

// Evaluate runs detector over every case, prints per-sample sets and the
// summary line to w, and returns the aggregated report.
func Evaluate(ctx context.Context, detector detectors.Detector, cases []TestCase, w io.Writer) (*Report, error) {
	report := &Report{}
	for i, c := range cases {
		output, err := detector.Detect(ctx, detectors.DetectorInput{Text: c.Text})
		if err != nil {
			return report, fmt.Errorf("case %d: %s failed: %w", i+1, detector.GetName(), err)
		}

		predicted := make([]Pair, 0, len(output.Entities))
		for _, e := range output.Entities {
			predicted = append(predicted, PredictedPair(e.Label, e.Text))
		}

		res := Match(c.Text, predicted, c.Gold())
		report.Add(res)
		if err := WriteSample(w, i+1, res); err != nil {
			return report, err
		}
	}

	if _, err := fmt.Fprintf(w, "\n%s\n", report.Summary()); err != nil {
		return report, err
	}
	return report, nil
}
