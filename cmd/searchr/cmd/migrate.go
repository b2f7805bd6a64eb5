package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/searchr/internal/db/sqlite"
)

func newMigrateCmd(env *string) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the document database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				cfg, err := loadConfig(*env)
				if err != nil {
					return err
				}
				dbPath = cfg.Database.Path
			}
			return runMigrate(cmd.Context(), cmd.OutOrStdout(), dbPath)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "Database path (defaults to database.path from config)")
	return cmd
}

func runMigrate(ctx context.Context, out io.Writer, path string) error {
	store, err := sqlite.Open(sqlite.Config{Path: path})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	applied, err := store.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	v, err := store.Version(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s: applied %d migrations, schema version %d\n", store.Path(), applied, v)
	return err
}
