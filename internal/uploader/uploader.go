// Package uploader drives the per-record pipeline: pull, normalize,
// fingerprint, dedup check, deliver, record the outcome.
package uploader

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/adifpush/adifpush/internal/adif"
	"github.com/adifpush/adifpush/internal/cloudlog"
	"github.com/adifpush/adifpush/internal/dedup"
	"github.com/adifpush/adifpush/internal/qso"
	"github.com/adifpush/adifpush/internal/storage/sqlite"
	"github.com/adifpush/adifpush/internal/wsjtx"
	"github.com/adifpush/adifpush/pkg/logger"
)

// Outcome labels, persisted to the upload history.
const (
	outcomeDelivered = "delivered"
	outcomeFailed    = "failed"
	outcomeSkipped   = "skipped"
)

// Summary is the final accounting of one run.
type Summary struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Malformed int `json:"malformed"`
}

// Source yields raw records one at a time. io.EOF ends a finite source;
// wsjtx.ErrClosed ends the live stream; any other error is a per-record
// problem the caller counts and moves past.
type Source interface {
	Next(ctx context.Context) (qso.Raw, error)
}

// Uploader owns the dedup store and delivery client for the duration of a
// run. The upload history is optional.
type Uploader struct {
	store   *dedup.Store
	client  *cloudlog.Client
	history *sqlite.UploadStorage
	logger  *logger.Logger

	mu       sync.Mutex
	counters Summary
}

// New creates an uploader. history may be nil.
func New(store *dedup.Store, client *cloudlog.Client, history *sqlite.UploadStorage, log *logger.Logger) *Uploader {
	return &Uploader{
		store:   store,
		client:  client,
		history: history,
		logger:  log.Named("uploader"),
	}
}

// Counters returns a snapshot of the current run's accounting so far.
func (u *Uploader) Counters() Summary {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.counters
}

// Drain processes records from src serially until the source is exhausted
// or, for a live source, until ctx is cancelled. One record's failure
// never aborts the run; every disposition lands in a counter. The
// returned Summary covers this run only, starting from zero.
func (u *Uploader) Drain(ctx context.Context, src Source) (Summary, error) {
	u.mu.Lock()
	u.counters = Summary{}
	u.mu.Unlock()

	for {
		raw, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, wsjtx.ErrClosed) {
				return u.Counters(), nil
			}
			var malformed *qso.MalformedError
			if errors.As(err, &malformed) {
				u.logger.Debug("Skipping malformed entry", logger.Error(err))
				u.count(func(s *Summary) { s.Malformed++ })
				continue
			}
			return u.Counters(), err
		}
		u.process(ctx, raw)
	}
}

// PushFile drains one ADIF log file. A missing file aborts before any
// record is processed.
func (u *Uploader) PushFile(ctx context.Context, path string) (Summary, error) {
	reader, err := adif.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer reader.Close()

	u.logger.Info("Uploading log file",
		logger.String("path", path),
		logger.String("endpoint", u.client.Endpoint()),
	)
	return u.Drain(ctx, fileSource{reader})
}

// fileSource adapts the ADIF reader to the Source contract.
type fileSource struct {
	r *adif.Reader
}

func (f fileSource) Next(ctx context.Context) (qso.Raw, error) {
	if err := ctx.Err(); err != nil {
		return qso.Raw{}, io.EOF
	}
	return f.r.Next()
}

// process decides and records the disposition of one raw record.
func (u *Uploader) process(ctx context.Context, raw qso.Raw) {
	rec, err := qso.Normalize(raw)
	if err != nil {
		u.logger.Debug("Skipping malformed record", logger.Error(err))
		u.count(func(s *Summary) { s.Malformed++ })
		return
	}

	fp := rec.Fingerprint()
	if u.store.Contains(fp) {
		u.logger.Debug("Skipping duplicate",
			logger.String("call", rec.Call),
			logger.String("fingerprint", string(fp)),
		)
		u.count(func(s *Summary) { s.Skipped++ })
		u.record(rec, fp, outcomeSkipped, nil)
		return
	}

	if err := u.client.Send(ctx, rec); err != nil {
		u.logger.Warn("Upload failed",
			logger.String("call", rec.Call),
			logger.Error(err),
		)
		u.count(func(s *Summary) { s.Failed++ })
		u.record(rec, fp, outcomeFailed, err)
		return
	}

	if err := u.store.Add(fp); err != nil {
		// The record was delivered; losing the fingerprint only risks a
		// duplicate next run, so count the delivery and say so loudly.
		u.logger.Error("Delivered but failed to record fingerprint",
			logger.String("call", rec.Call),
			logger.Error(err),
		)
	}
	u.logger.Info("Uploaded QSO",
		logger.String("call", rec.Call),
		logger.String("mode", rec.Mode),
		logger.String("freq", rec.Freq),
	)
	u.count(func(s *Summary) { s.Delivered++ })
	u.record(rec, fp, outcomeDelivered, nil)
}

func (u *Uploader) count(mutate func(*Summary)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	mutate(&u.counters)
}

// record writes one disposition to the upload history, when configured.
func (u *Uploader) record(rec *qso.Record, fp qso.Fingerprint, outcome string, cause error) {
	if u.history == nil {
		return
	}
	entry := &sqlite.UploadRecord{
		Callsign:    rec.Call,
		QSODate:     rec.Date,
		TimeOn:      rec.Time,
		Freq:        rec.Freq,
		Mode:        rec.Mode,
		Band:        rec.Band,
		Fingerprint: string(fp),
		Outcome:     outcome,
		CreatedAt:   time.Now().UTC(),
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if _, err := u.history.StoreUpload(entry); err != nil {
		u.logger.Warn("Failed to record upload history", logger.Error(err))
	}
}
