package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eargollo/indexer/internal/index"
	"github.com/eargollo/indexer/internal/scan"
	"github.com/spf13/cobra"
)

func newIndexCmd(a *app) *cobra.Command {
	var (
		record      bool
		failFast    bool
		includeDirs bool
		noIgnore    bool
		exclude     []string
	)
	cmd := &cobra.Command{
		Use:   "index <pattern>",
		Short: "Discover files and hash each one",
		Long: `Expand the pattern, hash every matching file in path order and print the
results. With --record the run is written to the catalog for later queries.

Paths listed in .indexignore in the base directory, plus a built-in list
(.git, node_modules, ...), are skipped unless --no-ignore is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := &index.Options{
				Pattern:            args[0],
				BaseDir:            stringFlag(cmd, "base-dir", a.cfg.BaseDir()),
				StrictText:         boolFlag(cmd, "strict-text", a.cfg.StrictText()),
				FilesOnly:          !includeDirs,
				MaxHashesPerSecond: a.cfg.MaxHashesPerSecond(),
				FailFast:           failFast,
				Logger:             a.log,
			}
			if !noIgnore {
				patterns, err := scan.ExcludePatternsFor(opts.BaseDir)
				if err != nil {
					return fmt.Errorf("ignore file: %w", err)
				}
				exclude = append(patterns, exclude...)
			}
			opts.Exclude = exclude

			if record {
				store, err := a.openStore()
				if err != nil {
					return err
				}
				defer store.Close()
				opts.Sink = index.NewCatalogSink(store, a.log)
			}

			res, err := index.Run(ctx, opts)
			if res != nil {
				if werr := a.write(cmd, res); werr != nil && err == nil {
					err = werr
				}
			}
			if err != nil {
				return err
			}
			if res.ErrorCount > 0 {
				return fmt.Errorf("%d of %d files could not be hashed", res.ErrorCount, len(res.Entries))
			}
			return nil
		},
	}
	cmd.Flags().String("base-dir", "", "directory relative patterns resolve against (default INDEXER_BASE_DIR or working directory)")
	cmd.Flags().Bool("strict-text", false, "require valid UTF-8 content (default INDEXER_STRICT_TEXT)")
	cmd.Flags().BoolVar(&record, "record", false, "write the run to the catalog")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first file that cannot be hashed")
	cmd.Flags().BoolVar(&includeDirs, "include-dirs", false, "keep directory matches (they fail to hash)")
	cmd.Flags().BoolVar(&noIgnore, "no-ignore", false, "do not apply .indexignore or the built-in exclude list")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "extra exclude pattern (repeatable)")
	return cmd
}
