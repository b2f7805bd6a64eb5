package searchr

import (
	"context"
	"time"

	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
	"github.com/kailas-cloud/searchr/internal/domain/page"
	"github.com/kailas-cloud/searchr/internal/domain/search/result"
	domtag "github.com/kailas-cloud/searchr/internal/domain/tag"
	documentuc "github.com/kailas-cloud/searchr/internal/usecase/document"
	indexinguc "github.com/kailas-cloud/searchr/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/searchr/internal/usecase/search"
	taguc "github.com/kailas-cloud/searchr/internal/usecase/tag"
)

var testTime = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

// --- documentUseCase mock ---

type mockDocumentUC struct {
	createFn    func(ctx context.Context, title, text string, tagIDs []int64) (documentuc.Detail, error)
	putFn       func(ctx context.Context, id int64, title, text string, tagIDs []int64) (documentuc.Detail, bool, error)
	getFn       func(ctx context.Context, id int64) (documentuc.Detail, error)
	listFn      func(ctx context.Context, pg, perPage int, withTags bool) ([]documentuc.Detail, page.Meta, error)
	deleteFn    func(ctx context.Context, id int64) error
	addTagFn    func(ctx context.Context, docID, tagID int64) (documentuc.Detail, error)
	removeTagFn func(ctx context.Context, docID, tagID int64) (documentuc.Detail, error)
}

func (m *mockDocumentUC) Create(ctx context.Context, title, text string, tagIDs []int64) (documentuc.Detail, error) {
	return m.createFn(ctx, title, text, tagIDs)
}

func (m *mockDocumentUC) Put(
	ctx context.Context, id int64, title, text string, tagIDs []int64,
) (documentuc.Detail, bool, error) {
	return m.putFn(ctx, id, title, text, tagIDs)
}

func (m *mockDocumentUC) Get(ctx context.Context, id int64) (documentuc.Detail, error) {
	return m.getFn(ctx, id)
}

func (m *mockDocumentUC) List(
	ctx context.Context, pg, perPage int, withTags bool,
) ([]documentuc.Detail, page.Meta, error) {
	return m.listFn(ctx, pg, perPage, withTags)
}

func (m *mockDocumentUC) Delete(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}

func (m *mockDocumentUC) AddTag(ctx context.Context, docID, tagID int64) (documentuc.Detail, error) {
	return m.addTagFn(ctx, docID, tagID)
}

func (m *mockDocumentUC) RemoveTag(ctx context.Context, docID, tagID int64) (documentuc.Detail, error) {
	return m.removeTagFn(ctx, docID, tagID)
}

// --- tagUseCase mock ---

type mockTagUC struct {
	createFn func(ctx context.Context, title, description string) (taguc.Detail, error)
	putFn    func(ctx context.Context, id int64, title, description string) (taguc.Detail, bool, error)
	getFn    func(ctx context.Context, id int64) (taguc.Detail, error)
	listFn   func(ctx context.Context, pg, perPage int) ([]domtag.Tag, page.Meta, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (m *mockTagUC) Create(ctx context.Context, title, description string) (taguc.Detail, error) {
	return m.createFn(ctx, title, description)
}

func (m *mockTagUC) Put(ctx context.Context, id int64, title, description string) (taguc.Detail, bool, error) {
	return m.putFn(ctx, id, title, description)
}

func (m *mockTagUC) Get(ctx context.Context, id int64) (taguc.Detail, error) {
	return m.getFn(ctx, id)
}

func (m *mockTagUC) List(ctx context.Context, pg, perPage int) ([]domtag.Tag, page.Meta, error) {
	return m.listFn(ctx, pg, perPage)
}

func (m *mockTagUC) Delete(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, p searchuc.Params) (result.Page, error)
}

func (m *mockSearchUC) Search(ctx context.Context, p searchuc.Params) (result.Page, error) {
	return m.searchFn(ctx, p)
}

// --- indexUseCase mock ---

type mockIndexUC struct {
	statusFn  func(ctx context.Context) (indexinguc.Report, error)
	reindexFn func(ctx context.Context) ([]int64, error)
}

func (m *mockIndexUC) Status(ctx context.Context) (indexinguc.Report, error) {
	return m.statusFn(ctx)
}

func (m *mockIndexUC) Reindex(ctx context.Context) ([]int64, error) {
	return m.reindexFn(ctx)
}

// --- helpers ---

func testDoc(id int64, title string, tags ...int64) domdoc.Document {
	return domdoc.Reconstruct(id, title, "body of "+title, testTime, testTime, false, tags)
}

func testClient(docSvc documentUseCase, tagSvc tagUseCase, searchSvc searchUseCase, indexSvc indexUseCase) *Client {
	return &Client{
		docSvc:    docSvc,
		tagSvc:    tagSvc,
		searchSvc: searchSvc,
		indexSvc:  indexSvc,
	}
}
