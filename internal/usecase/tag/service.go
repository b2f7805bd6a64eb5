package tag

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/searchr/internal/domain"
	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
	"github.com/kailas-cloud/searchr/internal/domain/page"
	domtag "github.com/kailas-cloud/searchr/internal/domain/tag"
)

// Detail is a tag with the live documents that carry it.
type Detail struct {
	Tag       domtag.Tag
	Documents []domdoc.Document
}

// Service manages tags. Tags are not indexed on their own; documents
// reference them by id.
type Service struct {
	repo        Repository
	docs        DocumentLister
	maxPageSize int
}

// New creates a tag service.
func New(repo Repository, docs DocumentLister) *Service {
	return &Service{repo: repo, docs: docs, maxPageSize: 100}
}

// WithMaxPageSize caps per_page for listings.
func (s *Service) WithMaxPageSize(n int) *Service {
	if n > 0 {
		s.maxPageSize = n
	}
	return s
}

// Create stores a new tag.
func (s *Service) Create(ctx context.Context, title, description string) (Detail, error) {
	t, err := domtag.New(title, description)
	if err != nil {
		return Detail{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if err := s.repo.Create(ctx, &t); err != nil {
		return Detail{}, fmt.Errorf("create tag: %w", err)
	}
	return Detail{Tag: t}, nil
}

// Put updates the tag with id, or inserts it under that id. Returns true if created.
func (s *Service) Put(ctx context.Context, id int64, title, description string) (Detail, bool, error) {
	t, err := s.repo.Get(ctx, id)
	created := false
	switch {
	case errors.Is(err, domain.ErrTagNotFound):
		if t, err = domtag.New(title, description); err != nil {
			return Detail{}, false, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		t.SetID(id)
		created = true
	case err != nil:
		return Detail{}, false, fmt.Errorf("get tag: %w", err)
	default:
		if err := t.Update(title, description); err != nil {
			return Detail{}, false, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
	}

	if err := s.repo.Save(ctx, &t); err != nil {
		return Detail{}, false, fmt.Errorf("save tag: %w", err)
	}
	d, err := s.detail(ctx, t)
	return d, created, err
}

// Get returns a tag with its documents.
func (s *Service) Get(ctx context.Context, id int64) (Detail, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("get tag: %w", err)
	}
	return s.detail(ctx, t)
}

// List returns a page of tags.
func (s *Service) List(ctx context.Context, pg, perPage int) ([]domtag.Tag, page.Meta, error) {
	req, err := page.NewRequest(pg, perPage, s.maxPageSize)
	if err != nil {
		return nil, page.Meta{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	tags, total, err := s.repo.List(ctx, req.Offset(), req.PerPage())
	if err != nil {
		return nil, page.Meta{}, fmt.Errorf("list tags: %w", err)
	}
	return tags, page.NewMeta(req, total), nil
}

// Delete is not supported: documents keep referencing tag ids in the index.
func (s *Service) Delete(_ context.Context, _ int64) error {
	return fmt.Errorf("delete tag: %w", domain.ErrNotImplemented)
}

func (s *Service) detail(ctx context.Context, t domtag.Tag) (Detail, error) {
	docs, err := s.docs.ListByTag(ctx, t.ID())
	if err != nil {
		return Detail{}, fmt.Errorf("list tag documents: %w", err)
	}
	return Detail{Tag: t, Documents: docs}, nil
}
