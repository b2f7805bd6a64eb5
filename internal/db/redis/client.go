package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"
	"github.com/samber/lo"

	"github.com/kailas-cloud/searchr/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const (
	clientName = "searchr"

	readyBackoffMin = 50 * time.Millisecond
	readyBackoffMax = time.Second
)

// Config holds connection parameters for the broker.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store is the broker behind the index queue. Only list commands are used,
// so client-side caching is off.
type Store struct {
	client rueidis.Client
}

// NewStore creates a broker client. Blank addresses are ignored.
func NewStore(cfg Config) (*Store, error) {
	addrs := lo.Filter(
		lo.Map(cfg.Addrs, func(a string, _ int) string { return strings.TrimSpace(a) }),
		func(a string, _ int) bool { return a != "" },
	)
	if len(addrs) == 0 {
		return nil, errors.New("at least one broker address is required")
	}

	// BLPOP runs on a dedicated connection, so a waiting consumer never
	// stalls pipelined RPUSH from the API.
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   clientName,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create broker client: %w", err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings right away, then with growing pauses, until the broker
// answers or timeout expires. The last ping error is reported on timeout.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wait := readyBackoffMin
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("broker not ready after %s: %w", timeout, err)
		case <-time.After(wait):
		}
		wait = min(wait*2, readyBackoffMax)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr reports whether err is a server error whose message contains
// substr, ignoring case.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
