package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/searchr/internal/index"
	"github.com/kailas-cloud/searchr/internal/metrics"
	documentrepo "github.com/kailas-cloud/searchr/internal/repository/document"
	searchrepo "github.com/kailas-cloud/searchr/internal/repository/search"
	tagrepo "github.com/kailas-cloud/searchr/internal/repository/tag"
	chiTransport "github.com/kailas-cloud/searchr/internal/transport/chi"
	documentuc "github.com/kailas-cloud/searchr/internal/usecase/document"
	healthuc "github.com/kailas-cloud/searchr/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/searchr/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/searchr/internal/usecase/search"
	taguc "github.com/kailas-cloud/searchr/internal/usecase/tag"
	"github.com/kailas-cloud/searchr/internal/version"
)

func newServeCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the REST API. The process owns the index, so it cannot run
alongside indexd on the same index directory. Unless daemon.embedded is
false the sync daemon runs in-process; with it off the queue accumulates
until indexing is resumed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*env)
			if err != nil {
				return err
			}
			defer a.close()
			return runServe(cmd.Context(), a)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger
	logger.Info("Starting searchr API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("embedded_daemon", cfg.Daemon.IsEmbedded()),
	)

	primary, err := a.openPrimary(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = primary.Close() }()

	broker, q, err := a.openQueue(ctx)
	if err != nil {
		return err
	}
	defer broker.Close()

	ix, err := index.Open(cfg.Index.Dir, logger)
	if err != nil {
		return err
	}
	defer func() { _ = ix.Close() }()

	metrics.RegisterSearchMetrics()

	docRepo := documentrepo.New(primary.DB())
	tagRepo := tagrepo.New(primary.DB())

	docSvc := documentuc.New(docRepo, tagRepo, q).WithMaxPageSize(cfg.Index.MaxPageSize)
	tagSvc := taguc.New(tagRepo, docRepo).WithMaxPageSize(cfg.Index.MaxPageSize)
	searchSvc := searchuc.New(searchrepo.New(ix)).
		WithCacheSize(cfg.Index.QueryCacheSize).
		WithMaxPageSize(cfg.Index.MaxPageSize)
	indexSvc := indexinguc.New(docRepo, q, ix)
	healthSvc := healthuc.New(primary).
		WithComponent(healthuc.ComponentQueue, broker).
		WithComponent(healthuc.ComponentIndex, ix)

	server := chiTransport.NewServer(docSvc, tagSvc, searchSvc, indexSvc, healthSvc).
		WithDefaultPageSize(cfg.Index.DefaultPageSize)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware("/metrics", "/health"))
	server.Routes(r)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Daemon.IsEmbedded() {
		daemon, err := a.newDaemon(ix, docRepo, q)
		if err != nil {
			return err
		}
		g.Go(func() error {
			logger.Info("Starting index sync daemon", zap.String("queue", q.Key()))
			if err := daemon.Run(gctx); err != nil {
				return fmt.Errorf("index sync daemon: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")
		return shutdown(srv, time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

func shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
