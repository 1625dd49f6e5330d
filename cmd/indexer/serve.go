package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eargollo/indexer/internal/db"
	"github.com/eargollo/indexer/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP (JSON)",
		Long: `Serve the catalog API on INDEXER_PORT:

  GET  /health
  GET  /runs
  POST /runs                  {"pattern": "...", "strict_text": false, "files_only": true}
  GET  /runs/{id}
  GET  /runs/{id}/entries
  GET  /runs/{id}/duplicates`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			// Read-only pool so GETs stay responsive while a run records (WAL allows concurrent readers).
			var readStore *db.Store
			if store.Dialect() == db.SQLite {
				ro, err := db.OpenReadOnly(db.SQLitePath(a.cfg.DataDir()))
				if err != nil {
					return fmt.Errorf("open read-only catalog: %w", err)
				}
				if ro != nil {
					readStore = db.NewStore(ro, db.SQLite)
					defer readStore.Close()
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a.log.Infof("catalog API at http://localhost:%d (%s)", a.cfg.Port(), store.Dialect())
			return server.NewServer(a.cfg, store, readStore, a.log).Run(ctx)
		},
	}
}
