package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrWrongType   = errors.New("db: key holds the wrong kind of value")
)

// Op constants map to Redis command names for error context.
const (
	OpPing  = "PING"
	OpRPush = "RPUSH"
	OpBLPop = "BLPOP"
	OpLLen  = "LLEN"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
