package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	documentrepo "github.com/kailas-cloud/searchr/internal/repository/document"
	indexinguc "github.com/kailas-cloud/searchr/internal/usecase/indexing"
)

func newReindexCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Queue every document for indexing",
		Long: `Push the id of every stored document, deleted ones included, onto the
index queue. The sync daemon rebuilds the index entries as it drains it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*env)
			if err != nil {
				return err
			}
			defer a.close()
			return runReindex(cmd.Context(), cmd.OutOrStdout(), a)
		},
	}
}

func runReindex(ctx context.Context, out io.Writer, a *app) error {
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

	// Reindex never reads index status; the daemon owns the index.
	svc := indexinguc.New(documentrepo.New(primary.DB()), q, nil)
	ids, err := svc.Reindex(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Queued %d documents on %s\n", len(ids), q.Key())
	return err
}
