package searchr

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
	domtag "github.com/kailas-cloud/searchr/internal/domain/tag"
	taguc "github.com/kailas-cloud/searchr/internal/usecase/tag"
)

// TagService manages tags.
type TagService struct {
	svc tagUseCase
	obs *observer
}

// Create stores a new tag.
func (s *TagService) Create(ctx context.Context, title, description string) (tag TagDetail, err error) {
	start := time.Now()
	defer func() { s.obs.observe("tag.create", start, err) }()

	d, err := s.svc.Create(ctx, title, description)
	if err != nil {
		return TagDetail{}, fmt.Errorf("create tag: %w", err)
	}
	return fromTagDetail(d), nil
}

// Put updates the tag with id, or creates it with that id. Returns true if created.
func (s *TagService) Put(
	ctx context.Context, id int64, title, description string,
) (tag TagDetail, created bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("tag.put", start, err) }()

	d, created, err := s.svc.Put(ctx, id, title, description)
	if err != nil {
		return TagDetail{}, false, fmt.Errorf("put tag: %w", err)
	}
	return fromTagDetail(d), created, nil
}

// Get retrieves a tag and the live documents carrying it.
func (s *TagService) Get(ctx context.Context, id int64) (tag TagDetail, err error) {
	start := time.Now()
	defer func() { s.obs.observe("tag.get", start, err) }()

	d, err := s.svc.Get(ctx, id)
	if err != nil {
		return TagDetail{}, fmt.Errorf("get tag: %w", err)
	}
	return fromTagDetail(d), nil
}

// List returns one page of tags.
func (s *TagService) List(ctx context.Context, pg, perPage int) (list TagList, err error) {
	start := time.Now()
	defer func() { s.obs.observe("tag.list", start, err) }()

	tags, meta, err := s.svc.List(ctx, pg, perPage)
	if err != nil {
		return TagList{}, fmt.Errorf("list tags: %w", err)
	}
	return TagList{
		Tags: lo.Map(tags, func(t domtag.Tag, _ int) Tag { return fromTag(t) }),
		Page: fromMeta(meta),
	}, nil
}

// Delete is not supported and always returns ErrNotImplemented.
func (s *TagService) Delete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("tag.delete", start, err) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

func fromTag(t domtag.Tag) Tag {
	return Tag{ID: t.ID(), Title: t.Title(), Description: t.Description()}
}

func fromTagDetail(d taguc.Detail) TagDetail {
	return TagDetail{
		Tag:       fromTag(d.Tag),
		Documents: lo.Map(d.Documents, func(doc domdoc.Document, _ int) Document { return fromDocument(doc) }),
	}
}
