package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchr/internal/db"
)

// RPush appends values to the tail of the list.
func (s *Store) RPush(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	cmd := s.b().Rpush().Key(key).Element(values...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return listErr(db.OpRPush, err)
	}
	return nil
}

// BLPop pops the head of the list, blocking up to timeout.
// A timeout of zero blocks until an element arrives or ctx ends.
func (s *Store) BLPop(ctx context.Context, key string, timeout time.Duration) (string, error) {
	cmd := s.b().Blpop().Key(key).Timeout(timeout.Seconds()).Build()
	kv, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", db.ErrKeyNotFound
		}
		return "", listErr(db.OpBLPop, err)
	}
	// reply is [key, value]
	if len(kv) != 2 {
		return "", &db.Error{Op: db.OpBLPop, Err: rueidis.Nil}
	}
	return kv[1], nil
}

// LLen returns the number of elements in the list.
func (s *Store) LLen(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Llen().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, listErr(db.OpLLen, err)
	}
	return n, nil
}

func listErr(op string, err error) error {
	if isRedisErr(err, "wrongtype") {
		return &db.Error{Op: op, Err: db.ErrWrongType}
	}
	return &db.Error{Op: op, Err: err}
}
