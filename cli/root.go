package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hannes/kiji-ner/config"
	"github.com/hannes/kiji-ner/pii/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	// Config is resolved before any subcommand runs: defaults, then the
	// config file, then environment variables, then flags.
	Config *config.Config

	reporting bool
}

// NewRootCommand creates the root command for the kiji-ner CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kiji-ner",
		Short: "Synthetic PII NER datasets and detector evaluation",
		Long: `Generate BIO-tagged token classification datasets for sensitive data
(identity numbers, secrets, financial figures, corporate documents, contact
details) and evaluate PII detectors against labelled samples.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolveConfig()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML or JSON config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewEvaluateCommand(opts))
	cmd.AddCommand(NewTokenizeCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))

	return cmd
}

func (o *RootOptions) resolveConfig() error {
	cfg := config.DefaultConfig()
	if o.ConfigPath != "" {
		loaded, err := config.LoadFromFile(o.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)
	if o.Verbose {
		cfg.Logging.Verbose = true
	}
	o.Config = cfg
	o.reporting = initErrorReporting(cfg.SentryDSN)
	return nil
}

// openStore opens the configured dataset store, creating the SQLite
// parent directory when needed.
func openStore(cfg *config.Config) (store.DatasetStore, error) {
	db := cfg.Database
	if (db.Driver == store.DriverSQLite || db.Driver == "") && db.Path != "" {
		if err := os.MkdirAll(filepath.Dir(db.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return store.Open(db)
}

func closeStore(s store.DatasetStore) {
	if err := s.Close(); err != nil {
		log.Printf("[Store] Warning: failed to close dataset store: %v", err)
	}
}
