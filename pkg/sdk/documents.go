package searchr

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
	"github.com/kailas-cloud/searchr/internal/domain/page"
	domtag "github.com/kailas-cloud/searchr/internal/domain/tag"
	documentuc "github.com/kailas-cloud/searchr/internal/usecase/document"
)

// DocumentService manages documents. Every successful mutation queues the
// document for indexing.
type DocumentService struct {
	svc documentUseCase
	obs *observer
}

// Create stores a new document with the given tags.
func (s *DocumentService) Create(
	ctx context.Context, title, text string, tagIDs ...int64,
) (doc Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.create", start, err) }()

	d, err := s.svc.Create(ctx, title, text, tagIDs)
	if err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	return fromDetail(d), nil
}

// Put updates the document with id, or creates it with that id.
// Existing tags are kept and tagIDs are added. Returns true if created.
func (s *DocumentService) Put(
	ctx context.Context, id int64, title, text string, tagIDs ...int64,
) (doc Document, created bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.put", start, err) }()

	d, created, err := s.svc.Put(ctx, id, title, text, tagIDs)
	if err != nil {
		return Document{}, false, fmt.Errorf("put document: %w", err)
	}
	return fromDetail(d), created, nil
}

// Get retrieves a document by id, soft-deleted ones included.
func (s *DocumentService) Get(ctx context.Context, id int64) (doc Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.get", start, err) }()

	d, err := s.svc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromDetail(d), nil
}

// List returns one page of live documents. Tags are resolved when withTags
// is set.
func (s *DocumentService) List(
	ctx context.Context, pg, perPage int, withTags bool,
) (list DocumentList, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.list", start, err) }()

	docs, meta, err := s.svc.List(ctx, pg, perPage, withTags)
	if err != nil {
		return DocumentList{}, fmt.Errorf("list documents: %w", err)
	}
	return DocumentList{
		Documents: lo.Map(docs, func(d documentuc.Detail, _ int) Document { return fromDetail(d) }),
		Page:      fromMeta(meta),
	}, nil
}

// Delete soft-deletes a document; it disappears from the index on the
// daemon's next flush.
func (s *DocumentService) Delete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.delete", start, err) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// AddTag attaches a tag to a document.
func (s *DocumentService) AddTag(ctx context.Context, docID, tagID int64) (doc Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.add_tag", start, err) }()

	d, err := s.svc.AddTag(ctx, docID, tagID)
	if err != nil {
		return Document{}, fmt.Errorf("add tag: %w", err)
	}
	return fromDetail(d), nil
}

// RemoveTag detaches a tag from a document.
func (s *DocumentService) RemoveTag(ctx context.Context, docID, tagID int64) (doc Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document.remove_tag", start, err) }()

	d, err := s.svc.RemoveTag(ctx, docID, tagID)
	if err != nil {
		return Document{}, fmt.Errorf("remove tag: %w", err)
	}
	return fromDetail(d), nil
}

func fromDetail(d documentuc.Detail) Document {
	doc := fromDocument(d.Document)
	if len(d.Tags) > 0 {
		doc.Tags = lo.Map(d.Tags, func(t domtag.Tag, _ int) Tag { return fromTag(t) })
	}
	return doc
}

func fromDocument(d domdoc.Document) Document {
	return Document{
		ID:      d.ID(),
		Title:   d.Title(),
		Text:    d.Text(),
		Created: d.Created(),
		Updated: d.Updated(),
		Deleted: d.Deleted(),
	}
}

func fromMeta(m page.Meta) Page {
	return Page{Page: m.Page, Pages: m.Pages, PerPage: m.PerPage, Total: m.Total}
}
