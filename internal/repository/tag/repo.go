package tag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/kailas-cloud/searchr/internal/domain"
	domtag "github.com/kailas-cloud/searchr/internal/domain/tag"
)

// Repo implements usecase/tag.Repository over SQLite.
type Repo struct {
	db *sql.DB
}

// New creates a tag repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Create inserts a tag and assigns its id.
func (r *Repo) Create(ctx context.Context, t *domtag.Tag) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tag (title, description) VALUES (?, ?)`, t.Title(), t.Description())
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	t.SetID(id)
	return nil
}

// Save inserts or replaces the tag under its id.
func (r *Repo) Save(ctx context.Context, t *domtag.Tag) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tag (id, title, description) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, description = excluded.description`,
		t.ID(), t.Title(), t.Description())
	if err != nil {
		return fmt.Errorf("save tag %d: %w", t.ID(), err)
	}
	return nil
}

// Get returns a tag by id.
func (r *Repo) Get(ctx context.Context, id int64) (domtag.Tag, error) {
	var title, desc string
	err := r.db.QueryRowContext(ctx,
		`SELECT title, description FROM tag WHERE id = ?`, id).Scan(&title, &desc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domtag.Tag{}, domain.ErrTagNotFound
		}
		return domtag.Tag{}, fmt.Errorf("get tag %d: %w", id, err)
	}
	return domtag.Reconstruct(id, title, desc), nil
}

// List returns tags ordered by id, and the total.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]domtag.Tag, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tag`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tags: %w", err)
	}
	tags, err := r.query(ctx,
		`SELECT id, title, description FROM tag ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return tags, total, nil
}

// GetMany returns the existing tags among ids, in the order of ids.
func (r *Repo) GetMany(ctx context.Context, ids []int64) ([]domtag.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := lo.Map(ids, func(id int64, _ int) any { return id })
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	found, err := r.query(ctx,
		`SELECT id, title, description FROM tag WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(found, func(t domtag.Tag) int64 { return t.ID() })
	out := make([]domtag.Tag, 0, len(found))
	for _, id := range lo.Uniq(ids) {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Missing returns the ids that name no tag.
func (r *Repo) Missing(ctx context.Context, ids []int64) ([]int64, error) {
	found, err := r.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	have := lo.Map(found, func(t domtag.Tag, _ int) int64 { return t.ID() })
	return lo.Uniq(lo.Without(ids, have...)), nil
}

func (r *Repo) query(ctx context.Context, q string, args ...any) ([]domtag.Tag, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []domtag.Tag
	for rows.Next() {
		var (
			id          int64
			title, desc string
		)
		if err := rows.Scan(&id, &title, &desc); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, domtag.Reconstruct(id, title, desc))
	}
	return tags, rows.Err()
}
