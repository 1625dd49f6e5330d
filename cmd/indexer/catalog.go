package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newRunsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return a.write(cmd, runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list (0 = all)")
	return cmd
}

func newDuplicatesCmd(a *app) *cobra.Command {
	var showEntries bool
	cmd := &cobra.Command{
		Use:   "duplicates <run-id>",
		Short: "Show files with identical content in a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			id := args[0]
			if _, err := store.GetRun(cmd.Context(), id); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("run %s not found", id)
				}
				return err
			}
			if showEntries {
				entries, err := store.EntriesByRun(cmd.Context(), id)
				if err != nil {
					return err
				}
				return a.write(cmd, entries)
			}
			groups, err := store.DuplicateGroups(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.write(cmd, groups)
		},
	}
	cmd.Flags().BoolVar(&showEntries, "all", false, "list every entry of the run instead of duplicate groups")
	return cmd
}
