// Package report renders command results as text, JSON or YAML.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/eargollo/indexer/internal/db"
	"github.com/eargollo/indexer/internal/index"
	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// Output formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Digest pairs a path with its content digest, or the error that prevented
// hashing it.
type Digest struct {
	Path   string `json:"path" yaml:"path"`
	Digest string `json:"digest,omitempty" yaml:"digest,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ValidFormat reports whether f is a format Write understands.
func ValidFormat(f string) bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// Write renders v to w. JSON and YAML accept any value; text understands
// []string, []Digest, *index.Result, *db.Run, []db.Run, []db.Entry and
// []db.DuplicateGroup.
func Write(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	case FormatYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case FormatText, "":
		return writeText(w, v)
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

func writeText(w io.Writer, v any) error {
	switch x := v.(type) {
	case []string:
		for _, p := range x {
			if _, err := fmt.Fprintln(w, p); err != nil {
				return err
			}
		}
		return nil
	case []Digest:
		for _, d := range x {
			if err := writeDigestLine(w, d.Path, d.Digest, d.Error); err != nil {
				return err
			}
		}
		return nil
	case *index.Result:
		return writeResult(w, x)
	case *db.Run:
		return writeRuns(w, []db.Run{*x})
	case []db.Run:
		return writeRuns(w, x)
	case []db.Entry:
		for _, e := range x {
			if err := writeDigestLine(w, e.Path, e.Digest, e.Error); err != nil {
				return err
			}
		}
		return nil
	case []db.DuplicateGroup:
		return writeDuplicates(w, x)
	default:
		return fmt.Errorf("no text rendering for %T", v)
	}
}

// writeDigestLine prints "<digest>  <path>" like b3sum, or "error: <path>: <msg>".
func writeDigestLine(w io.Writer, path, digest, errMsg string) error {
	var err error
	if errMsg != "" {
		_, err = fmt.Fprintf(w, "error: %s: %s\n", path, errMsg)
	} else {
		_, err = fmt.Fprintf(w, "%s  %s\n", digest, path)
	}
	return err
}

func writeResult(w io.Writer, r *index.Result) error {
	for _, e := range r.Entries {
		if err := writeDigestLine(w, e.Path, e.Digest, e.Err); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "run %s: %d files, %s, %d errors\n",
		r.RunID, r.FileCount, humanize.Bytes(uint64(r.ByteCount)), r.ErrorCount)
	return err
}

func writeRuns(w io.Writer, runs []db.Run) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tFILES\tSIZE\tERRORS\tPATTERN")
	for _, r := range runs {
		started := r.StartedAt.Local().Format(time.DateTime)
		if r.CompletedAt == nil {
			started += " (incomplete)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%s\n",
			r.ID, started, r.FileCount, humanize.Bytes(uint64(r.ByteCount)), r.ErrorCount, r.Pattern)
	}
	return tw.Flush()
}

func writeDuplicates(w io.Writer, groups []db.DuplicateGroup) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "no duplicates")
		return err
	}
	for i, g := range groups {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s  %d files, %s\n", g.Digest, g.Count, humanize.Bytes(uint64(g.Size))); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  %s\n", strings.Join(g.Paths, "\n  ")); err != nil {
			return err
		}
	}
	return nil
}
