package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/searchr/internal/domain"
	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
)

// timeLayout keeps timestamps sortable as text.
const timeLayout = time.RFC3339Nano

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repo implements usecase/document.Repository over SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a document repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts a new document and assigns its id.
func (r *Repo) Create(ctx context.Context, doc *domdoc.Document) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO document (title, text, created, updated, deleted) VALUES (?, ?, ?, ?, ?)`,
			doc.Title(), doc.Text(), formatTime(doc.Created()), formatTime(doc.Updated()), doc.Deleted())
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		doc.SetID(id)
		return replaceTags(ctx, tx, id, doc.Tags())
	})
}

// Save writes the document under its id, inserting or replacing the row.
// Tag links are replaced by the document's tag list.
func (r *Repo) Save(ctx context.Context, doc *domdoc.Document) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO document (id, title, text, created, updated, deleted)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				text = excluded.text,
				updated = excluded.updated,
				deleted = excluded.deleted`,
			doc.ID(), doc.Title(), doc.Text(),
			formatTime(doc.Created()), formatTime(doc.Updated()), doc.Deleted())
		if err != nil {
			return fmt.Errorf("save document %d: %w", doc.ID(), err)
		}
		return replaceTags(ctx, tx, doc.ID(), doc.Tags())
	})
}

// Get returns a document by id, including soft-deleted ones.
func (r *Repo) Get(ctx context.Context, id int64) (domdoc.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, text, created, updated, deleted FROM document WHERE id = ?`, id)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, fmt.Errorf("get document %d: %w", id, err)
	}

	tags, err := loadTags(ctx, r.db, []int64{id})
	if err != nil {
		return domdoc.Document{}, err
	}
	return d.build(tags[id]), nil
}

// List returns live documents ordered by id, and the live total.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]domdoc.Document, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM document WHERE deleted = 0`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	docs, err := r.query(ctx, `
		SELECT id, title, text, created, updated, deleted FROM document
		WHERE deleted = 0 ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// ListByTag returns live documents carrying the tag, ordered by id.
func (r *Repo) ListByTag(ctx context.Context, tagID int64) ([]domdoc.Document, error) {
	return r.query(ctx, `
		SELECT d.id, d.title, d.text, d.created, d.updated, d.deleted
		FROM document d JOIN tags_to_documents t ON t.document_id = d.id
		WHERE t.tag_id = ? AND d.deleted = 0 ORDER BY d.id`, tagID)
}

// ListIDs returns every document id, soft-deleted included, ascending.
func (r *Repo) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM document ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list document ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repo) query(ctx context.Context, q string, args ...any) ([]domdoc.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	var rowsOut []row
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan document: %w", err)
		}
		rowsOut = append(rowsOut, d)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	// rows must be closed before the next query on the single connection
	ids := make([]int64, len(rowsOut))
	for i, d := range rowsOut {
		ids[i] = d.id
	}
	tags, err := loadTags(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	docs := make([]domdoc.Document, len(rowsOut))
	for i, d := range rowsOut {
		docs[i] = d.build(tags[d.id])
	}
	return docs, nil
}

func (r *Repo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func replaceTags(ctx context.Context, q querier, docID int64, tags []int64) error {
	if _, err := q.ExecContext(ctx,
		`DELETE FROM tags_to_documents WHERE document_id = ?`, docID); err != nil {
		return fmt.Errorf("clear tags of %d: %w", docID, err)
	}
	for pos, tagID := range tags {
		if _, err := q.ExecContext(ctx,
			`INSERT INTO tags_to_documents (tag_id, document_id, position) VALUES (?, ?, ?)`,
			tagID, docID, pos); err != nil {
			return fmt.Errorf("link tag %d to %d: %w", tagID, docID, err)
		}
	}
	return nil
}

// loadTags returns tag ids per document in attachment order.
func loadTags(ctx context.Context, q querier, docIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(docIDs))
	if len(docIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(docIDs))
	for i, id := range docIDs {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(docIDs)), ",")
	rows, err := q.QueryContext(ctx, `
		SELECT document_id, tag_id FROM tags_to_documents
		WHERE document_id IN (`+placeholders+`) ORDER BY document_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var docID, tagID int64
		if err := rows.Scan(&docID, &tagID); err != nil {
			return nil, fmt.Errorf("scan tag link: %w", err)
		}
		out[docID] = append(out[docID], tagID)
	}
	return out, rows.Err()
}
