// Package index drives a full indexing run: expand a glob pattern, hash every
// match in path order and hand each result to an optional sink.
package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/eargollo/indexer/internal/hash"
	"github.com/eargollo/indexer/internal/indexerr"
	"github.com/eargollo/indexer/internal/logging"
	"github.com/eargollo/indexer/internal/scan"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Options configures a run. Pattern is required.
type Options struct {
	RunID      string // optional; a new UUID when empty
	Pattern    string
	BaseDir    string // relative patterns resolve here; "" = working directory
	StrictText bool   // hash as validated UTF-8 text
	FilesOnly  bool   // drop directory matches before hashing
	Exclude    []string

	MaxHashesPerSecond int  // 0 = no throttle
	FailFast           bool // stop at the first file that cannot be hashed

	Sink   Sink               // optional; receives the run and every entry
	Logger logrus.FieldLogger // optional; nil discards
}

// Entry is the outcome for one discovered path: a digest, or the kind and
// message of the error that prevented hashing it.
type Entry struct {
	Path    string `json:"path" yaml:"path"`
	Size    int64  `json:"size" yaml:"size"`
	Digest  string `json:"digest,omitempty" yaml:"digest,omitempty"`
	ErrKind string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Err     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the entry has no digest.
func (e Entry) Failed() bool {
	return e.ErrKind != ""
}

// Result is the in-memory record of a run. Entries are in path order.
type Result struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	Pattern     string    `json:"pattern" yaml:"pattern"`
	BaseDir     string    `json:"base_dir,omitempty" yaml:"base_dir,omitempty"`
	StrictText  bool      `json:"strict_text" yaml:"strict_text"`
	Entries     []Entry   `json:"entries" yaml:"entries"`
	FileCount   int64     `json:"file_count" yaml:"file_count"`
	ByteCount   int64     `json:"byte_count" yaml:"byte_count"`
	ErrorCount  int64     `json:"error_count" yaml:"error_count"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// Run discovers opts.Pattern and hashes each match sequentially.
//
// A discovery failure aborts before anything is hashed and returns a nil
// Result. Per-file hash failures are recorded on the entry and counted; with
// FailFast the first one ends the run. Cancelling ctx stops between files.
// On FailFast, cancellation or a sink error the partial Result is returned
// together with the error, and the sink's Complete is not called.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	if opts == nil || opts.Pattern == "" {
		return nil, errors.New("index: pattern is required")
	}
	log := logging.Component(opts.Logger, "index")

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	res := &Result{
		RunID:      runID,
		Pattern:    opts.Pattern,
		BaseDir:    opts.BaseDir,
		StrictText: opts.StrictText,
		Entries:    []Entry{},
		StartedAt:  time.Now().UTC(),
	}
	log = log.WithField("run", res.RunID)

	d := &scan.Discoverer{BaseDir: opts.BaseDir, FilesOnly: opts.FilesOnly, Exclude: opts.Exclude}
	paths, err := d.Discover(opts.Pattern)
	if err != nil {
		log.WithError(err).Error("discovery failed")
		return nil, err
	}
	total := int64(len(paths))
	log.Infof("run started: %d paths match %q", total, opts.Pattern)

	if opts.Sink != nil {
		if err := opts.Sink.Begin(ctx, res); err != nil {
			return nil, fmt.Errorf("begin run: %w", err)
		}
	}

	var limiter *rate.Limiter
	if opts.MaxHashesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.MaxHashesPerSecond), 1)
	}
	hasher := hash.Hasher{StrictText: opts.StrictText}
	progress := newProgress(log, total)

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return res, err
			}
		}

		e, hashErr := hashOne(hasher, p)
		res.Entries = append(res.Entries, e)
		if hashErr != nil {
			res.ErrorCount++
			log.WithField("path", p).WithField("kind", e.ErrKind).Debug(e.Err)
		} else {
			res.FileCount++
			res.ByteCount += e.Size
		}

		if opts.Sink != nil {
			if err := opts.Sink.Record(ctx, res.RunID, e); err != nil {
				return res, fmt.Errorf("record %s: %w", p, err)
			}
		}
		if hashErr != nil && opts.FailFast {
			log.WithError(hashErr).Error("run stopped at first failure")
			return res, hashErr
		}
		progress.step()
	}

	res.CompletedAt = time.Now().UTC()
	if opts.Sink != nil {
		if err := opts.Sink.Complete(ctx, res); err != nil {
			return res, fmt.Errorf("complete run: %w", err)
		}
	}
	log.WithFields(logrus.Fields{
		"files":  res.FileCount,
		"bytes":  humanize.Bytes(uint64(res.ByteCount)),
		"errors": res.ErrorCount,
	}).Infof("run completed in %s", formatDuration(res.CompletedAt.Sub(res.StartedAt)))
	return res, nil
}

// hashOne hashes p and fills in its size. Size is left 0 when hashing fails.
func hashOne(h hash.Hasher, p string) (Entry, error) {
	e := Entry{Path: p}
	digest, err := h.HashFile(p)
	if err != nil {
		e.ErrKind = indexerr.KindOf(err).String()
		e.Err = err.Error()
		return e, err
	}
	e.Digest = digest
	if st, statErr := scan.Stat(p); statErr == nil {
		e.Size = st.Size
	}
	return e, nil
}
