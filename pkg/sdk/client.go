package searchr

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbRedis "github.com/kailas-cloud/searchr/internal/db/redis"
	"github.com/kailas-cloud/searchr/internal/db/sqlite"
	"github.com/kailas-cloud/searchr/internal/domain/page"
	"github.com/kailas-cloud/searchr/internal/domain/search/result"
	domtag "github.com/kailas-cloud/searchr/internal/domain/tag"
	documentrepo "github.com/kailas-cloud/searchr/internal/repository/document"
	"github.com/kailas-cloud/searchr/internal/repository/queue"
	tagrepo "github.com/kailas-cloud/searchr/internal/repository/tag"
	documentuc "github.com/kailas-cloud/searchr/internal/usecase/document"
	healthuc "github.com/kailas-cloud/searchr/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/searchr/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/searchr/internal/usecase/search"
	taguc "github.com/kailas-cloud/searchr/internal/usecase/tag"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for fakes in tests.
type documentUseCase interface {
	Create(ctx context.Context, title, text string, tagIDs []int64) (documentuc.Detail, error)
	Put(ctx context.Context, id int64, title, text string, tagIDs []int64) (documentuc.Detail, bool, error)
	Get(ctx context.Context, id int64) (documentuc.Detail, error)
	List(ctx context.Context, pg, perPage int, withTags bool) ([]documentuc.Detail, page.Meta, error)
	Delete(ctx context.Context, id int64) error
	AddTag(ctx context.Context, docID, tagID int64) (documentuc.Detail, error)
	RemoveTag(ctx context.Context, docID, tagID int64) (documentuc.Detail, error)
}

type tagUseCase interface {
	Create(ctx context.Context, title, description string) (taguc.Detail, error)
	Put(ctx context.Context, id int64, title, description string) (taguc.Detail, bool, error)
	Get(ctx context.Context, id int64) (taguc.Detail, error)
	List(ctx context.Context, pg, perPage int) ([]domtag.Tag, page.Meta, error)
	Delete(ctx context.Context, id int64) error
}

type searchUseCase interface {
	Search(ctx context.Context, p searchuc.Params) (result.Page, error)
}

type indexUseCase interface {
	Status(ctx context.Context) (indexinguc.Report, error)
	Reindex(ctx context.Context) ([]int64, error)
}

// Client is the searchr SDK entry point.
type Client struct {
	primary   *sqlite.Store
	broker    *dbRedis.Store
	docSvc    documentUseCase
	tagSvc    tagUseCase
	searchSvc searchUseCase
	indexSvc  indexUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New opens the primary store, connects to the broker and wires the
// services. The provided context is used for migrations and the initial
// readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("searchr: broker address required (use WithRedis)")
	}
	if cfg.dbPath == "" {
		return nil, errors.New("searchr: database path required (use WithDatabase)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	primary, err := sqlite.Open(sqlite.Config{Path: cfg.dbPath})
	if err != nil {
		return nil, fmt.Errorf("searchr: open database: %w", err)
	}
	if _, err := primary.Migrate(ctx); err != nil {
		_ = primary.Close()
		return nil, fmt.Errorf("searchr: migrate database: %w", err)
	}

	broker, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
		DB:       cfg.redisDB,
	})
	if err != nil {
		_ = primary.Close()
		return nil, fmt.Errorf("searchr: create broker client: %w", err)
	}
	if err := broker.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		broker.Close()
		_ = primary.Close()
		return nil, fmt.Errorf("searchr: wait for broker: %w", err)
	}

	return wireClient(primary, broker, cfg, obs), nil
}

func wireClient(primary *sqlite.Store, broker *dbRedis.Store, cfg *clientConfig, obs *observer) *Client {
	q := queue.New(broker, cfg.queueName).WithPrefix(cfg.keyPrefix)
	docRepo := documentrepo.New(primary.DB())
	tagRepo := tagrepo.New(primary.DB())
	snap := snapshot{dir: cfg.indexDir, maxPageSize: cfg.maxPageSize}

	docSvc := documentuc.New(docRepo, tagRepo, q)
	tagSvc := taguc.New(tagRepo, docRepo)
	if cfg.maxPageSize > 0 {
		docSvc = docSvc.WithMaxPageSize(cfg.maxPageSize)
		tagSvc = tagSvc.WithMaxPageSize(cfg.maxPageSize)
	}

	return &Client{
		primary:   primary,
		broker:    broker,
		docSvc:    docSvc,
		tagSvc:    tagSvc,
		searchSvc: snap,
		indexSvc:  indexinguc.New(docRepo, q, snap),
		healthSvc: healthuc.New(primary).
			WithComponent(healthuc.ComponentQueue, broker).
			WithComponent(healthuc.ComponentIndex, snap),
		obs: obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.broker != nil {
		c.broker.Close()
	}
	if c.primary != nil {
		_ = c.primary.Close()
	}
}

// Ping checks primary store and broker connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.primary.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err = c.broker.Ping(ctx); err != nil {
		return fmt.Errorf("ping broker: %w", err)
	}
	return nil
}

// Documents returns the document service.
func (c *Client) Documents() *DocumentService {
	return &DocumentService{svc: c.docSvc, obs: c.obs}
}

// Tags returns the tag service.
func (c *Client) Tags() *TagService {
	return &TagService{svc: c.tagSvc, obs: c.obs}
}
