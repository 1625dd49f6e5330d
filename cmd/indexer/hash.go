package main

import (
	"fmt"

	"github.com/eargollo/indexer/internal/hash"
	"github.com/eargollo/indexer/internal/report"
	"github.com/spf13/cobra"
)

func newHashCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash <path>...",
		Short: "Print the BLAKE3 digest of each file",
		Long: `Print "<digest>  <path>" for every argument. Files that cannot be hashed are
reported and make the command exit non-zero after all paths are processed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := hash.Hasher{StrictText: boolFlag(cmd, "strict-text", a.cfg.StrictText())}
			out := make([]report.Digest, 0, len(args))
			failed := 0
			for _, p := range args {
				digest, err := h.HashFile(p)
				if err != nil {
					failed++
					out = append(out, report.Digest{Path: p, Error: err.Error()})
					continue
				}
				out = append(out, report.Digest{Path: p, Digest: digest})
			}
			if err := a.write(cmd, out); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be hashed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().Bool("strict-text", false, "require valid UTF-8 content (default INDEXER_STRICT_TEXT)")
	return cmd
}
