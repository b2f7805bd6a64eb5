package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchr/internal/config"
	dbRedis "github.com/kailas-cloud/searchr/internal/db/redis"
	"github.com/kailas-cloud/searchr/internal/db/sqlite"
	"github.com/kailas-cloud/searchr/internal/index"
	logpkg "github.com/kailas-cloud/searchr/internal/logger"
	"github.com/kailas-cloud/searchr/internal/metrics"
	documentrepo "github.com/kailas-cloud/searchr/internal/repository/document"
	"github.com/kailas-cloud/searchr/internal/repository/queue"
	"github.com/kailas-cloud/searchr/internal/usecase/indexsync"
)

// app is the composition root shared by the commands.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
}

func newApp(env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return &app{env: env, cfg: cfg, logger: logger}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// openPrimary opens the primary store and brings its schema up to date.
func (a *app) openPrimary(ctx context.Context) (*sqlite.Store, error) {
	store, err := sqlite.Open(sqlite.Config{Path: a.cfg.Database.Path})
	if err != nil {
		return nil, fmt.Errorf("open primary store: %w", err)
	}
	v, err := store.Migrate(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate primary store: %w", err)
	}
	a.logger.Info("primary_store_ready", zap.String("path", store.Path()), zap.Int("migrations_applied", v))
	return store, nil
}

// openQueue connects to the broker and waits until it answers.
func (a *app) openQueue(ctx context.Context) (*dbRedis.Store, *queue.Queue, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    a.cfg.Queue.Addrs,
		Password: a.cfg.Queue.Password,
		DB:       a.cfg.Queue.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create broker client: %w", err)
	}
	timeout := time.Duration(a.cfg.Queue.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("wait for broker: %w", err)
	}
	q := queue.New(store, a.cfg.Queue.Name).
		WithPrefix(a.cfg.Queue.KeyPrefix).
		WithPollTimeout(a.cfg.Queue.PollTimeout())
	a.logger.Info("queue_ready", zap.Strings("addrs", a.cfg.Queue.Addrs), zap.String("key", q.Key()))
	return store, q, nil
}

// newDaemon takes the index write lock and assembles the sync daemon.
func (a *app) newDaemon(ix *index.Index, docs *documentrepo.Repo, q *queue.Queue) (*indexsync.Daemon, error) {
	metrics.RegisterIndexMetrics()
	obs := metrics.SyncObserver{}

	w, err := index.NewWriter(ix, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open index writer: %w", err)
	}
	w.WithLimit(a.cfg.Index.BufferLimit).
		WithPeriod(a.cfg.Index.FlushPeriod()).
		WithObserver(obs)

	return indexsync.New(docs, q, w, a.logger).WithObserver(obs), nil
}
