package index

import (
	"context"
	"time"

	"github.com/eargollo/indexer/internal/db"
	"github.com/eargollo/indexer/internal/logging"
	"github.com/sirupsen/logrus"
)

// Sink receives a run as it progresses. Begin is called once after discovery
// succeeds, Record once per entry in path order, Complete once when every
// entry has been recorded.
type Sink interface {
	Begin(ctx context.Context, res *Result) error
	Record(ctx context.Context, runID string, e Entry) error
	Complete(ctx context.Context, res *Result) error
}

// CatalogSink writes runs and entries to the catalog. It only writes; runs
// never consult earlier digests.
type CatalogSink struct {
	store *db.Store
	log   *logrus.Entry
}

// NewCatalogSink returns a sink writing to store. log may be nil.
func NewCatalogSink(store *db.Store, log logrus.FieldLogger) *CatalogSink {
	return &CatalogSink{store: store, log: logging.Component(log, "catalog")}
}

func (c *CatalogSink) Begin(ctx context.Context, res *Result) error {
	db.ResetBusyRetryCount()
	return c.store.CreateRun(ctx, &db.Run{
		ID:         res.RunID,
		Pattern:    res.Pattern,
		BaseDir:    res.BaseDir,
		StrictText: res.StrictText,
		StartedAt:  res.StartedAt,
	})
}

func (c *CatalogSink) Record(ctx context.Context, runID string, e Entry) error {
	return c.store.InsertEntry(ctx, &db.Entry{
		RunID:     runID,
		Path:      e.Path,
		Size:      e.Size,
		Digest:    e.Digest,
		ErrorKind: e.ErrKind,
		Error:     e.Err,
		HashedAt:  time.Now().UTC(),
	})
}

func (c *CatalogSink) Complete(ctx context.Context, res *Result) error {
	if err := c.store.CompleteRun(ctx, res.RunID, res.CompletedAt, res.FileCount, res.ByteCount, res.ErrorCount); err != nil {
		return err
	}
	c.log.WithFields(logrus.Fields{
		"run":     res.RunID,
		"backend": c.store.Dialect().String(),
	}).Infof("run recorded (SQLITE_BUSY retries: %d)", db.BusyRetryCount())
	return nil
}
