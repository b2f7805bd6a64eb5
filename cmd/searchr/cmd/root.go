// Package cmd provides the searchr CLI commands.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchr/internal/config"
	"github.com/kailas-cloud/searchr/internal/version"
)

// NewRootCmd creates the root command for the searchr CLI.
func NewRootCmd() *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:   "searchr",
		Short: "Document store with asynchronous full-text indexing",
		Long: `searchr stores documents and tags, queues every change for indexing and
serves full-text search over the committed index.

The sync daemon runs inside 'serve' by default, or on its own with 'indexd'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.SetVersionTemplate("searchr version {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "Config environment (config/<env>.yaml)")

	cmd.AddCommand(newServeCmd(&env))
	cmd.AddCommand(newIndexdCmd(&env))
	cmd.AddCommand(newReindexCmd(&env))
	cmd.AddCommand(newMigrateCmd(&env))
	cmd.AddCommand(newStatusCmd(&env))
	cmd.AddCommand(newSearchCmd(&env))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command until it finishes or a shutdown signal arrives.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
