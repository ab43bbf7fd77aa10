package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hannes/kiji-ner/pii/store"
)

// NewRunsCommand creates the runs command group for stored datasets.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage datasets saved with generate --save",
	}

	cmd.AddCommand(newRunsListCommand(rootOpts))
	cmd.AddCommand(newRunsExportCommand(rootOpts))
	cmd.AddCommand(newRunsDeleteCommand(rootOpts))

	return cmd
}

func newRunsListCommand(rootOpts *RootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(rootOpts.Config)
			if err != nil {
				return err
			}
			defer closeStore(st)

			runs, err := st.ListRuns(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if runs == nil {
					runs = []store.Run{}
				}
				return enc.Encode(runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No stored runs.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSEED\tPER_LABEL\tTRAIN\tVALIDATION\tTEST")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
					r.ID, r.CreatedAt.Local().Format(time.RFC3339), r.Seed, r.PerLabel,
					r.Train, r.Validation, r.Test)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print runs as JSON")
	return cmd
}

func newRunsExportCommand(rootOpts *RootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Export a stored run as JSONL partitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(rootOpts.Config)
			if err != nil {
				return err
			}
			defer closeStore(st)

			ds, err := st.LoadDataset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = rootOpts.Config.Generation.OutputDir
			}
			if err := store.ExportJSONL(outDir, ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Exported run %s (%d examples) to %s\n", args[0], ds.Size(), outDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (defaults to the configured output dir)")
	return cmd
}

func newRunsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored run and its examples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(rootOpts.Config)
			if err != nil {
				return err
			}
			defer closeStore(st)

			if err := st.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted run %s\n", args[0])
			return nil
		},
	}
}
