package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/searchr/internal/db"
)

// mockStore implements the consumer interface with an in-memory list.
// BLPop never blocks; an empty list times out immediately.
type mockStore struct {
	mu      sync.Mutex
	lists   map[string][]string
	pushErr error
	popErrs []error
	pops    int
}

func (m *mockStore) RPush(_ context.Context, key string, values ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pushErr != nil {
		return m.pushErr
	}
	if m.lists == nil {
		m.lists = map[string][]string{}
	}
	m.lists[key] = append(m.lists[key], values...)
	return nil
}

func (m *mockStore) BLPop(_ context.Context, key string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pops++
	if len(m.popErrs) > 0 {
		err := m.popErrs[0]
		m.popErrs = m.popErrs[1:]
		return "", err
	}
	l := m.lists[key]
	if len(l) == 0 {
		return "", db.ErrKeyNotFound
	}
	m.lists[key] = l[1:]
	return l[0], nil
}

func (m *mockStore) LLen(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.lists[key])), nil
}

func newTestQueue(t *testing.T) (*Queue, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "index").WithPollTimeout(time.Millisecond), ms
}
