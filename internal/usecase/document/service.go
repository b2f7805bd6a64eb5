package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchr/internal/domain"
	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
	"github.com/kailas-cloud/searchr/internal/domain/page"
	domtag "github.com/kailas-cloud/searchr/internal/domain/tag"
	"github.com/kailas-cloud/searchr/internal/logger"
)

// Detail is a document with its tags resolved.
type Detail struct {
	Document domdoc.Document
	Tags     []domtag.Tag
}

// Service handles document mutations and reads. Every committed mutation is
// followed by a change notification for the index.
type Service struct {
	repo        Repository
	tags        TagReader
	notifier    Notifier
	maxPageSize int
	now         func() time.Time
}

// New creates a document service.
func New(repo Repository, tags TagReader, notifier Notifier) *Service {
	return &Service{
		repo:        repo,
		tags:        tags,
		notifier:    notifier,
		maxPageSize: 100,
		now:         time.Now,
	}
}

// WithMaxPageSize caps per_page for listings.
func (s *Service) WithMaxPageSize(n int) *Service {
	if n > 0 {
		s.maxPageSize = n
	}
	return s
}

// Create stores a new document.
func (s *Service) Create(ctx context.Context, title, text string, tagIDs []int64) (Detail, error) {
	if err := s.checkTags(ctx, tagIDs); err != nil {
		return Detail{}, err
	}
	doc, err := domdoc.New(title, text, tagIDs, s.now())
	if err != nil {
		return Detail{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if err := s.repo.Create(ctx, &doc); err != nil {
		return Detail{}, fmt.Errorf("create document: %w", err)
	}
	s.notify(ctx, doc.ID())
	return s.detail(ctx, doc)
}

// Put updates the document with id, or inserts it under that id.
// Update keeps existing tags and adds tagIDs. Returns true if created.
func (s *Service) Put(ctx context.Context, id int64, title, text string, tagIDs []int64) (Detail, bool, error) {
	if err := s.checkTags(ctx, tagIDs); err != nil {
		return Detail{}, false, err
	}

	doc, err := s.repo.Get(ctx, id)
	created := false
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		doc, err = domdoc.New(title, text, tagIDs, s.now())
		if err != nil {
			return Detail{}, false, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		doc.SetID(id)
		created = true
	case err != nil:
		return Detail{}, false, fmt.Errorf("get document: %w", err)
	default:
		if err := doc.Update(title, text, tagIDs, s.now()); err != nil {
			return Detail{}, false, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
	}

	if err := s.repo.Save(ctx, &doc); err != nil {
		return Detail{}, false, fmt.Errorf("save document: %w", err)
	}
	s.notify(ctx, id)
	d, err := s.detail(ctx, doc)
	return d, created, err
}

// Get returns a document by id. Soft-deleted documents are returned with
// their deleted flag set.
func (s *Service) Get(ctx context.Context, id int64) (Detail, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("get document: %w", err)
	}
	return s.detail(ctx, doc)
}

// List returns a page of live documents. Tags are resolved only when
// withTags is set.
func (s *Service) List(ctx context.Context, pg, perPage int, withTags bool) ([]Detail, page.Meta, error) {
	req, err := page.NewRequest(pg, perPage, s.maxPageSize)
	if err != nil {
		return nil, page.Meta{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	docs, total, err := s.repo.List(ctx, req.Offset(), req.PerPage())
	if err != nil {
		return nil, page.Meta{}, fmt.Errorf("list documents: %w", err)
	}

	out := make([]Detail, 0, len(docs))
	for _, doc := range docs {
		if !withTags {
			out = append(out, Detail{Document: doc})
			continue
		}
		d, err := s.detail(ctx, doc)
		if err != nil {
			return nil, page.Meta{}, err
		}
		out = append(out, d)
	}
	return out, page.NewMeta(req, total), nil
}

// Delete soft-deletes the document so the index drops it on next sync.
func (s *Service) Delete(ctx context.Context, id int64) error {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	doc.Delete(s.now())
	if err := s.repo.Save(ctx, &doc); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.notify(ctx, id)
	return nil
}

// AddTag attaches an existing tag to a document.
func (s *Service) AddTag(ctx context.Context, docID, tagID int64) (Detail, error) {
	return s.retag(ctx, docID, tagID, func(d *domdoc.Document) { d.AddTag(tagID, s.now()) })
}

// RemoveTag detaches a tag from a document.
func (s *Service) RemoveTag(ctx context.Context, docID, tagID int64) (Detail, error) {
	return s.retag(ctx, docID, tagID, func(d *domdoc.Document) { d.RemoveTag(tagID, s.now()) })
}

func (s *Service) retag(ctx context.Context, docID, tagID int64, change func(*domdoc.Document)) (Detail, error) {
	if _, err := s.tags.Get(ctx, tagID); err != nil {
		return Detail{}, fmt.Errorf("get tag: %w", err)
	}
	doc, err := s.repo.Get(ctx, docID)
	if err != nil {
		return Detail{}, fmt.Errorf("get document: %w", err)
	}
	change(&doc)
	if err := s.repo.Save(ctx, &doc); err != nil {
		return Detail{}, fmt.Errorf("save document: %w", err)
	}
	s.notify(ctx, docID)
	return s.detail(ctx, doc)
}

func (s *Service) checkTags(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := s.tags.Missing(ctx, ids)
	if err != nil {
		return fmt.Errorf("check tags: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: unknown tags %v", domain.ErrValidation, missing)
	}
	return nil
}

func (s *Service) detail(ctx context.Context, doc domdoc.Document) (Detail, error) {
	if !doc.HasTags() {
		return Detail{Document: doc}, nil
	}
	tags, err := s.tags.GetMany(ctx, doc.Tags())
	if err != nil {
		return Detail{}, fmt.Errorf("resolve tags: %w", err)
	}
	return Detail{Document: doc, Tags: tags}, nil
}

// notify is fire-and-forget: the mutation is already committed, so a
// broker failure is logged and the request still succeeds.
func (s *Service) notify(ctx context.Context, id int64) {
	if err := s.notifier.Enqueue(ctx, id); err != nil {
		logger.FromContext(ctx).Warn("index_enqueue_failed",
			zap.Int64("document_id", id),
			zap.Error(err),
		)
	}
}
