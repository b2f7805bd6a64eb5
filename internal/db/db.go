package db

import (
	"context"
	"time"
)

// Store is the broker facade combining all sub-interfaces.
type Store interface {
	Pinger
	ListStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ListStore provides list operations used as a FIFO queue.
type ListStore interface {
	// RPush appends values to the tail of the list at key.
	RPush(ctx context.Context, key string, values ...string) error
	// BLPop removes and returns the head of the list, waiting up to timeout
	// for one to arrive. Returns ErrKeyNotFound when the wait times out.
	BLPop(ctx context.Context, key string, timeout time.Duration) (string, error)
	// LLen returns the list length (0 for a missing key).
	LLen(ctx context.Context, key string) (int64, error)
}
