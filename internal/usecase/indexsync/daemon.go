// Package indexsync runs the index sync daemon: a single-threaded loop that
// drains the index queue and mirrors the primary store into the index.
package indexsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchr/internal/domain"
	"github.com/kailas-cloud/searchr/internal/index"
	logpkg "github.com/kailas-cloud/searchr/internal/logger"
)

// Outcome classifies one processed message.
type Outcome string

// Message outcomes.
const (
	OutcomeUpserted  Outcome = "upserted"
	OutcomeDeleted   Outcome = "deleted"
	OutcomeMissing   Outcome = "missing"
	OutcomeMalformed Outcome = "malformed"
	OutcomeFailed    Outcome = "failed"
)

type nopObserver struct{}

func (nopObserver) ObserveMessage(string) {}

// Daemon applies queued document changes to the index.
type Daemon struct {
	docs     DocumentGetter
	queue    Consumer
	writer   Writer
	observer Observer
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a daemon. It takes ownership of w and closes it when Run returns.
func New(docs DocumentGetter, q Consumer, w Writer, logger *zap.Logger) *Daemon {
	return &Daemon{
		docs:     docs,
		queue:    q,
		writer:   w,
		observer: nopObserver{},
		logger:   logger,
		now:      time.Now,
	}
}

// WithObserver sets the message observer.
func (d *Daemon) WithObserver(o Observer) *Daemon {
	if o != nil {
		d.observer = o
	}
	return d
}

// Run consumes until ctx is cancelled. Per-message failures are logged and
// skipped. The writer is closed, with a final flush, on every exit path.
func (d *Daemon) Run(ctx context.Context) (err error) {
	d.logger.Info("index_sync_started")
	defer func() {
		if cerr := d.writer.Close(); cerr != nil {
			d.logger.Error("index_final_flush_failed", zap.Error(cerr))
			if err == nil {
				err = fmt.Errorf("close index writer: %w", cerr)
			}
		}
		d.logger.Info("index_sync_stopped")
	}()

	err = d.queue.Consume(ctx, d.handle, d.tick)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (d *Daemon) handle(ctx context.Context, id int64, err error) {
	if err != nil {
		outcome := OutcomeFailed
		if errors.Is(err, domain.ErrMalformedMessage) {
			outcome = OutcomeMalformed
		}
		d.observer.ObserveMessage(string(outcome))
		d.logger.Warn("sync_message_failed", zap.String("outcome", string(outcome)), zap.Error(err))
		return
	}

	ctx = logpkg.WithFields(logpkg.ContextWithLogger(ctx, d.logger), zap.Int64("document_id", id))
	log := logpkg.FromContext(ctx)

	outcome, err := d.Process(ctx, id)
	d.observer.ObserveMessage(string(outcome))
	if err != nil {
		log.Warn("sync_message_failed", zap.String("outcome", string(outcome)), zap.Error(err))
		return
	}
	if outcome == OutcomeMissing {
		log.Info("sync_document_missing")
		return
	}
	log.Debug("sync_message", zap.String("outcome", string(outcome)))
}

// Process syncs one document id into the index writer.
func (d *Daemon) Process(ctx context.Context, id int64) (Outcome, error) {
	doc, err := d.docs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return OutcomeMissing, nil
		}
		return OutcomeFailed, fmt.Errorf("get document %d: %w", id, err)
	}

	if doc.Deleted() {
		if err := d.writer.Delete(id); err != nil {
			return OutcomeFailed, fmt.Errorf("delete from index: %w", err)
		}
		return OutcomeDeleted, nil
	}

	if err := d.writer.Upsert(index.Project(&doc)); err != nil {
		return OutcomeFailed, fmt.Errorf("upsert into index: %w", err)
	}
	return OutcomeUpserted, nil
}

// tick commits a buffer that has waited longer than the flush period.
func (d *Daemon) tick(_ context.Context) {
	if !d.writer.Due(d.now()) {
		return
	}
	if err := d.writer.Flush(); err != nil {
		d.logger.Warn("index_periodic_flush_failed", zap.Error(err))
	}
}
