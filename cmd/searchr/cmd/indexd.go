package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/searchr/internal/index"
	documentrepo "github.com/kailas-cloud/searchr/internal/repository/document"
	healthuc "github.com/kailas-cloud/searchr/internal/usecase/health"
)

func newIndexdCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "indexd",
		Short: "Run the index sync daemon",
		Long: `Consume the index queue and apply document changes to the index
without serving the API, for example to drain a reindex backlog. The
process owns the index, so serve must not run on the same index directory.
/metrics and /health are served on daemon.metrics_addr.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*env)
			if err != nil {
				return err
			}
			defer a.close()
			return runIndexd(cmd.Context(), a)
		},
	}
}

func runIndexd(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger

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

	daemon, err := a.newDaemon(ix, documentrepo.New(primary.DB()), q)
	if err != nil {
		return err
	}

	health := healthuc.New(primary).
		WithComponent(healthuc.ComponentQueue, broker).
		WithComponent(healthuc.ComponentIndex, ix)

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		report := health.Check(r.Context())
		if report.Status != healthuc.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_, _ = fmt.Fprintln(w, report.Status)
	})
	srv := &http.Server{Addr: cfg.Daemon.MetricsAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting index sync daemon", zap.String("queue", q.Key()), zap.String("index", cfg.Index.Dir))
		if err := daemon.Run(gctx); err != nil {
			return fmt.Errorf("index sync daemon: %w", err)
		}
		// Run only returns early on shutdown; stop the listener too.
		return context.Canceled
	})
	g.Go(func() error {
		logger.Info("Starting metrics listener", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics listener: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(srv, time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Index sync daemon stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Index sync daemon stopped")
	return nil
}
