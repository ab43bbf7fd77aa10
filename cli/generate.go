package cli

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hannes/kiji-ner/config"
	"github.com/hannes/kiji-ner/pii/align"
	"github.com/hannes/kiji-ner/pii/dataset"
	"github.com/hannes/kiji-ner/pii/entities"
	"github.com/hannes/kiji-ner/pii/store"
	"github.com/hannes/kiji-ner/pii/synth"
)

type generateOptions struct {
	seed       int64
	perLabel   int
	outDir     string
	noContact  bool
	save       bool
	tokenizer  string
	showCounts bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	g := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Synthesize a labelled dataset and export it as JSONL",
		Long: `Synthesize template sentences for every entity family, add adversarial
obfuscation and noise, shuffle once and split into train, validation and
test partitions. Each partition is written as <partition>.jsonl with
integer ner_tags, alongside labels.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			flags := cmd.Flags()
			if flags.Changed("seed") {
				cfg.Generation.Seed = g.seed
			}
			if flags.Changed("per-label") {
				cfg.Generation.PerLabel = g.perLabel
			}
			if flags.Changed("out") {
				cfg.Generation.OutputDir = g.outDir
			}
			if g.noContact {
				cfg.Generation.Contact = false
			}
			return runGenerate(cmd, cfg, g)
		},
	}

	cmd.Flags().Int64Var(&g.seed, "seed", 0, "random seed (overrides config)")
	cmd.Flags().IntVar(&g.perLabel, "per-label", 0, "examples per template family (overrides config)")
	cmd.Flags().StringVarP(&g.outDir, "out", "o", "", "output directory (overrides config)")
	cmd.Flags().BoolVar(&g.noContact, "no-contact", false, "skip phone and email examples")
	cmd.Flags().BoolVar(&g.save, "save", false, "also save the run to the dataset store")
	cmd.Flags().StringVar(&g.tokenizer, "tokenizer", "", "tokenizer.json for writing subword-aligned partitions")
	cmd.Flags().BoolVar(&g.showCounts, "counts", false, "print entity counts per type for the train split")

	return cmd
}

func runGenerate(cmd *cobra.Command, cfg *config.Config, g *generateOptions) error {
	if err := cfg.ValidateGeneration(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	out := cmd.OutOrStdout()

	rng := rand.New(rand.NewSource(cfg.Generation.Seed))
	s := synth.New(rng, cfg.SynthOptions())
	cfg.ApplyNoise(s.Perturber())
	ds := s.Build(cfg.Split)

	dir := cfg.Generation.OutputDir
	if err := store.ExportJSONL(dir, ds); err != nil {
		return err
	}
	fmt.Fprintf(out, "✅ Wrote %d examples to %s (train=%d, validation=%d, test=%d)\n",
		ds.Size(), dir, len(ds.Train), len(ds.Validation), len(ds.Test))

	if g.showCounts {
		writeCounts(out, dataset.CountEntities(ds.Train))
	}

	if g.tokenizer != "" {
		if err := writeAligned(out, g.tokenizer, dir, ds); err != nil {
			return err
		}
	}

	if g.save {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore(st)

		id, err := st.SaveDataset(cmd.Context(), ds, store.RunMeta{
			Seed:     cfg.Generation.Seed,
			PerLabel: cfg.Generation.PerLabel,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "💾 Saved run %s\n", id)
	}
	return nil
}

func writeAligned(out io.Writer, tokenizerPath, dir string, ds *dataset.Dataset) error {
	enc, err := align.NewHFEncoder(tokenizerPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := enc.Close(); err != nil {
			log.Printf("[Align] Warning: failed to close tokenizer: %v", err)
		}
	}()

	for _, p := range dataset.Partitions() {
		path := filepath.Join(dir, "aligned_"+string(p)+".jsonl")
		if err := align.WriteAlignedJSONL(path, enc, ds.Get(p)); err != nil {
			return fmt.Errorf("failed to align %s: %w", p, err)
		}
	}
	fmt.Fprintf(out, "✅ Wrote subword-aligned partitions to %s\n", dir)
	return nil
}

func writeCounts(out io.Writer, counts map[entities.EntityType]int) {
	names := make([]string, 0, len(counts))
	byName := make(map[string]int, len(counts))
	for t, n := range counts {
		names = append(names, t.String())
		byName[t.String()] = n
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-16s %d\n", name, byName[name])
	}
}
