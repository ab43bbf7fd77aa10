package eval

import (
	"fmt"
	"io"
)

// NoExpectedMessage is reported instead of an accuracy when no sample had
// gold entities.
const NoExpectedMessage = "No expected entities to evaluate."

// Report aggregates sample results.
type Report struct {
	Samples  []SampleResult
	Correct  int
	Expected int
}

// Add accumulates one sample.
func (r *Report) Add(res SampleResult) {
	r.Samples = append(r.Samples, res)
	r.Correct += len(res.Matched)
	r.Expected += len(res.Expected)
}

// Accuracy returns Correct/Expected. ok is false when nothing was expected.
func (r *Report) Accuracy() (acc float64, ok bool) {
	if r.Expected == 0 {
		return 0, false
	}
	return float64(r.Correct) / float64(r.Expected), true
}

// Summary is the final line: "Accuracy: c/t (p.pp%)" or NoExpectedMessage.
func (r *Report) Summary() string {
	acc, ok := r.Accuracy()
	if !ok {
		return NoExpectedMessage
	}
	return fmt.Sprintf("Accuracy: %d/%d (%.2f%%)", r.Correct, r.Expected, acc*100)
}

// WriteSample prints one sample block in evaluation log format, ending with
// the matched/expected count of the sample.
func WriteSample(w io.Writer, index int, res SampleResult) error {
	_, err := fmt.Fprintf(w, "\nTest %d: %s\nDetected: %s\nExpected: %s\nMatched: %s\nScore: %d/%d\n",
		index, res.Text, res.Detected, res.Expected, res.Matched, len(res.Matched), len(res.Expected))
	return err
}
