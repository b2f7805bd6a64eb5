// Package queue is the index queue: a Redis list of document ids with
// at-most-once delivery. An id leaves the broker the moment it is popped,
// before the consumer has processed it.
package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/kailas-cloud/searchr/internal/db"
	"github.com/kailas-cloud/searchr/internal/domain"
)

// Defaults for the broker layout and consumer polling.
const (
	DefaultPrefix      = "hotqueue:"
	DefaultPollTimeout = time.Second
)

// store is the consumer interface for the broker (ISP).
type store interface {
	RPush(ctx context.Context, key string, values ...string) error
	BLPop(ctx context.Context, key string, timeout time.Duration) (string, error)
	LLen(ctx context.Context, key string) (int64, error)
}

// Queue publishes and consumes document ids.
type Queue struct {
	store store
	name  string
	key   string
	poll  time.Duration
}

// New creates a queue named name on the given broker.
func New(s store, name string) *Queue {
	return &Queue{store: s, name: name, key: DefaultPrefix + name, poll: DefaultPollTimeout}
}

// WithPrefix changes the broker key prefix.
func (q *Queue) WithPrefix(prefix string) *Queue {
	q.key = prefix + q.name
	return q
}

// WithPollTimeout sets how long one blocking pop waits before the consumer
// re-checks its context.
func (q *Queue) WithPollTimeout(d time.Duration) *Queue {
	if d > 0 {
		q.poll = d
	}
	return q
}

// Key returns the broker key holding the queue.
func (q *Queue) Key() string { return q.key }

// Enqueue appends ids in one command. It does not wait for consumption.
func (q *Queue) Enqueue(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	values := lo.Map(ids, func(id int64, _ int) string { return strconv.FormatInt(id, 10) })
	if err := q.store.RPush(ctx, q.key, values...); err != nil {
		return fmt.Errorf("enqueue %d ids: %w", len(ids), err)
	}
	return nil
}

// Len returns the number of ids waiting.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.store.LLen(ctx, q.key)
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}

// Dequeue blocks until an id arrives or ctx is done. A payload that is not a
// decimal id is consumed and reported as domain.ErrMalformedMessage.
func (q *Queue) Dequeue(ctx context.Context) (int64, error) {
	for {
		id, ok, err := q.poll1(ctx)
		if err != nil || ok {
			return id, err
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}
}

// poll1 waits at most one poll interval; ok is false when nothing arrived.
func (q *Queue) poll1(ctx context.Context) (int64, bool, error) {
	raw, err := q.store.BLPop(ctx, q.key, q.poll)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, false, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, false, ctxErr
		}
		return 0, false, fmt.Errorf("dequeue: %w", err)
	}
	id, err := parseID(raw)
	if err != nil {
		return 0, true, err
	}
	return id, true, nil
}

// Consume delivers ids to fn until ctx is cancelled, then returns ctx.Err().
// fn gets a non-nil err for a malformed payload or a broker failure; id is
// meaningful only when err is nil. Broker failures are retried after one poll
// interval. idle, when set, runs after every poll whether or not an id arrived.
func (q *Queue) Consume(
	ctx context.Context,
	fn func(ctx context.Context, id int64, err error),
	idle func(ctx context.Context),
) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		id, ok, err := q.poll1(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil && !errors.Is(err, domain.ErrMalformedMessage):
			fn(ctx, 0, err)
			q.backoff(ctx)
		case err != nil:
			fn(ctx, 0, err)
		case ok:
			fn(ctx, id, nil)
		}

		if idle != nil {
			idle(ctx)
		}
	}
}

func (q *Queue) backoff(ctx context.Context) {
	t := time.NewTimer(q.poll)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrMalformedMessage, raw)
	}
	return id, nil
}
