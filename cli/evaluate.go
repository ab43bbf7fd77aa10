package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/hannes/kiji-ner/pii/detectors"
	"github.com/hannes/kiji-ner/pii/eval"
)

type evaluateOptions struct {
	detector  string
	cases     string
	fragments string
	limit     int
	modelDir  string
	baseURL   string
}

// NewEvaluateCommand creates the evaluate command.
func NewEvaluateCommand(rootOpts *RootOptions) *cobra.Command {
	e := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a PII detector against labelled samples",
		Long: `Run a detector over labelled samples and compare normalized
(category, value) pairs. Without --cases or --fragments the built-in
samples are used. Prints per-sample Detected/Expected/Matched sets and
the aggregate accuracy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			flags := cmd.Flags()
			if flags.Changed("detector") {
				cfg.Detector.Name = e.detector
			}
			if flags.Changed("model-dir") {
				cfg.Detector.ModelDir = e.modelDir
			}
			if flags.Changed("base-url") {
				cfg.Detector.BaseURL = e.baseURL
			}
			if flags.Changed("cases") {
				cfg.Evaluation.CasesFile = e.cases
			}
			if flags.Changed("fragments") {
				cfg.Evaluation.FragmentsFile = e.fragments
			}
			if flags.Changed("limit") {
				cfg.Evaluation.Limit = e.limit
			}
			if err := cfg.ValidateEvaluation(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			cases, err := loadEvaluationCases(cfg.Evaluation.CasesFile, cfg.Evaluation.FragmentsFile, cfg.Evaluation.Limit)
			if err != nil {
				return err
			}

			det, err := detectors.NewDetector(cfg.Detector.Name, cfg.DetectorParams())
			if err != nil {
				return fmt.Errorf("failed to create detector: %w", err)
			}
			defer func() {
				if err := detectors.CloseDetector(det); err != nil {
					log.Printf("[Detector] Warning: failed to close %s: %v", det.GetName(), err)
				}
			}()

			if cfg.Logging.Verbose {
				log.Printf("[Eval] Evaluating %s on %d samples", det.GetName(), len(cases))
			}
			_, err = eval.Evaluate(cmd.Context(), det, cases, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVarP(&e.detector, "detector", "d", "", "detector name (overrides config)")
	cmd.Flags().StringVar(&e.cases, "cases", "", "YAML or JSON file of text/expected samples")
	cmd.Flags().StringVar(&e.fragments, "fragments", "", "JSONL file of text/fragments samples")
	cmd.Flags().IntVar(&e.limit, "limit", 100, "maximum fragment samples to read (0 reads all)")
	cmd.Flags().StringVar(&e.modelDir, "model-dir", "", "model directory for the ONNX detector")
	cmd.Flags().StringVar(&e.baseURL, "base-url", "", "base URL for the HTTP model detector")

	return cmd
}

func loadEvaluationCases(casesFile, fragmentsFile string, limit int) ([]eval.TestCase, error) {
	switch {
	case casesFile != "" && fragmentsFile != "":
		return nil, fmt.Errorf("--cases and --fragments are mutually exclusive")
	case fragmentsFile != "":
		return eval.LoadFragmentsJSONL(fragmentsFile, limit)
	case casesFile != "":
		return eval.LoadCases(casesFile)
	default:
		return eval.DefaultCases(), nil
	}
}
