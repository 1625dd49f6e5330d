package main

import (
	"github.com/eargollo/indexer/internal/scan"
	"github.com/spf13/cobra"
)

func newDiscoverCmd(a *app) *cobra.Command {
	var exclude []string
	cmd := &cobra.Command{
		Use:   "discover <pattern>",
		Short: "List paths matching a glob pattern, sorted",
		Long: `Expand a glob pattern ('*', '?', '**', '[...]', '{a,b}') and print every
matching path in sorted order. No match prints nothing and is not an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := &scan.Discoverer{
				BaseDir:   stringFlag(cmd, "base-dir", a.cfg.BaseDir()),
				FilesOnly: boolFlag(cmd, "files-only", false),
				Exclude:   exclude,
			}
			paths, err := d.Discover(args[0])
			if err != nil {
				return err
			}
			return a.write(cmd, paths)
		},
	}
	cmd.Flags().String("base-dir", "", "directory relative patterns resolve against (default INDEXER_BASE_DIR or working directory)")
	cmd.Flags().Bool("files-only", false, "omit directories from the result")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "exclude pattern (repeatable); see .indexignore syntax")
	return cmd
}
