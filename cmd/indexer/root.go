package main

import (
	"fmt"

	"github.com/eargollo/indexer/internal/config"
	"github.com/eargollo/indexer/internal/db"
	"github.com/eargollo/indexer/internal/logging"
	"github.com/eargollo/indexer/internal/report"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags and env are resolved.
type app struct {
	logLevel string
	output   string

	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "indexer",
		Short: "Find files by glob and fingerprint them with BLAKE3",
		Long: `Indexer expands glob patterns into sorted file lists and computes a BLAKE3
digest for each file. Runs can be recorded in a catalog (SQLite, or PostgreSQL
when DATABASE_URL is set) and queried from the command line or over HTTP.

Configuration comes from INDEXER_* environment variables and an optional .env file.`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVarP(&a.logLevel, "log-level", "l", "", "log level (debug, info, warn, error); default from INDEXER_LOG_LEVEL")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", report.FormatText, "output format (text, json, yaml)")

	root.AddCommand(
		newDiscoverCmd(a),
		newHashCmd(a),
		newIndexCmd(a),
		newRunsCmd(a),
		newDuplicatesCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup loads config and builds the logger. Logs go to stderr so stdout stays
// parseable.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg
	if !report.ValidFormat(a.output) {
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", a.output)
	}
	level := a.logLevel
	if level == "" {
		level = cfg.LogLevel()
	}
	log, err := logging.New(level, cfg.LogFormat(), cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	a.log = log
	return nil
}

// write renders v to the command's stdout in the selected format.
func (a *app) write(cmd *cobra.Command, v any) error {
	return report.Write(cmd.OutOrStdout(), a.output, v)
}

func (a *app) openStore() (*db.Store, error) {
	store, err := db.OpenStore(a.cfg.DataDir(), a.cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return store, nil
}

// boolFlag returns the flag value when set on the command line, else def.
func boolFlag(cmd *cobra.Command, name string, def bool) bool {
	if !cmd.Flags().Changed(name) {
		return def
	}
	v, _ := cmd.Flags().GetBool(name)
	return v
}

// stringFlag returns the flag value when set on the command line, else def.
func stringFlag(cmd *cobra.Command, name, def string) string {
	if !cmd.Flags().Changed(name) {
		return def
	}
	v, _ := cmd.Flags().GetString(name)
	return v
}
