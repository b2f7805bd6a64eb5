package sqlite

import (
	"context"
	"fmt"
)

// migrations are applied in order; the slice index + 1 is the schema version.
// Never edit a released migration, append a new one.
var migrations = []string{
	`
	CREATE TABLE document (
		id      INTEGER PRIMARY KEY,
		title   TEXT    NOT NULL,
		text    TEXT    NOT NULL,
		created TEXT    NOT NULL,
		updated TEXT    NOT NULL,
		deleted INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX idx_document_deleted ON document(deleted, id);

	CREATE TABLE tag (
		id          INTEGER PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE tags_to_documents (
		tag_id      INTEGER NOT NULL REFERENCES tag(id),
		document_id INTEGER NOT NULL REFERENCES document(id),
		position    INTEGER NOT NULL,
		PRIMARY KEY (tag_id, document_id)
	);
	CREATE INDEX idx_tags_to_documents_document ON tags_to_documents(document_id, position);
	`,
}

// Version returns the applied schema version (0 for an empty database).
func (s *Store) Version(ctx context.Context) (int, error) {
	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return 0, fmt.Errorf("create schema_version: %w", err)
	}
	var v int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// Migrate applies pending migrations, each in its own transaction.
// It returns the number applied.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	current, err := s.Version(ctx)
	if err != nil {
		return 0, err
	}
	if current > len(migrations) {
		return 0, fmt.Errorf("database schema version %d is newer than supported %d", current, len(migrations))
	}

	applied := 0
	for v := current + 1; v <= len(migrations); v++ {
		if err := s.apply(ctx, v, migrations[v-1]); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

func (s *Store) apply(ctx context.Context, version int, stmt string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("apply migration %d: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, version); err != nil {
		return fmt.Errorf("record migration %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", version, err)
	}
	return nil
}
