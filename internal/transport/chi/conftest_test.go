package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gochi "github.com/go-chi/chi/v5"

	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
	"github.com/kailas-cloud/searchr/internal/domain/page"
	"github.com/kailas-cloud/searchr/internal/domain/search/result"
	domtag "github.com/kailas-cloud/searchr/internal/domain/tag"
	documentuc "github.com/kailas-cloud/searchr/internal/usecase/document"
	healthuc "github.com/kailas-cloud/searchr/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/searchr/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/searchr/internal/usecase/search"
	taguc "github.com/kailas-cloud/searchr/internal/usecase/tag"
)

var testTime = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func testDetail(id int64, tags ...domtag.Tag) documentuc.Detail {
	ids := make([]int64, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID())
	}
	return documentuc.Detail{
		Document: domdoc.Reconstruct(id, "Title", "Body text", testTime, testTime, false, ids),
		Tags:     tags,
	}
}

// --- Mocks ---

type mockDocuments struct {
	detail    documentuc.Detail
	list      []documentuc.Detail
	meta      page.Meta
	created   bool
	err       error
	lastID    int64
	lastTitle string
	lastTags  []int64
	withTags  bool
	lastPage  int
}

func (m *mockDocuments) Create(_ context.Context, title, _ string, tagIDs []int64) (documentuc.Detail, error) {
	m.lastTitle, m.lastTags = title, tagIDs
	return m.detail, m.err
}

func (m *mockDocuments) Put(_ context.Context, id int64, title, _ string, tagIDs []int64) (documentuc.Detail, bool, error) {
	m.lastID, m.lastTitle, m.lastTags = id, title, tagIDs
	return m.detail, m.created, m.err
}

func (m *mockDocuments) Get(_ context.Context, id int64) (documentuc.Detail, error) {
	m.lastID = id
	return m.detail, m.err
}

func (m *mockDocuments) List(_ context.Context, pg, _ int, withTags bool) ([]documentuc.Detail, page.Meta, error) {
	m.lastPage, m.withTags = pg, withTags
	return m.list, m.meta, m.err
}

func (m *mockDocuments) Delete(_ context.Context, id int64) error {
	m.lastID = id
	return m.err
}

func (m *mockDocuments) AddTag(_ context.Context, docID, tagID int64) (documentuc.Detail, error) {
	m.lastID, m.lastTags = docID, []int64{tagID}
	return m.detail, m.err
}

func (m *mockDocuments) RemoveTag(_ context.Context, docID, tagID int64) (documentuc.Detail, error) {
	m.lastID, m.lastTags = docID, []int64{tagID}
	return m.detail, m.err
}

type mockTags struct {
	detail  taguc.Detail
	list    []domtag.Tag
	meta    page.Meta
	created bool
	err     error
	lastID  int64
}

func (m *mockTags) Create(_ context.Context, _, _ string) (taguc.Detail, error) { return m.detail, m.err }

func (m *mockTags) Put(_ context.Context, id int64, _, _ string) (taguc.Detail, bool, error) {
	m.lastID = id
	return m.detail, m.created, m.err
}

func (m *mockTags) Get(_ context.Context, id int64) (taguc.Detail, error) {
	m.lastID = id
	return m.detail, m.err
}

func (m *mockTags) List(_ context.Context, _, _ int) ([]domtag.Tag, page.Meta, error) {
	return m.list, m.meta, m.err
}

func (m *mockTags) Delete(_ context.Context, id int64) error {
	m.lastID = id
	return m.err
}

type mockSearch struct {
	page result.Page
	err  error
	last searchuc.Params
}

func (m *mockSearch) Search(_ context.Context, p searchuc.Params) (result.Page, error) {
	m.last = p
	return m.page, m.err
}

type mockIndex struct {
	report indexinguc.Report
	ids    []int64
	err    error
}

func (m *mockIndex) Status(_ context.Context) (indexinguc.Report, error) { return m.report, m.err }

func (m *mockIndex) Reindex(_ context.Context) ([]int64, error) { return m.ids, m.err }

type mockHealth struct{ report healthuc.Report }

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

// --- Harness ---

type testServer struct {
	docs   *mockDocuments
	tags   *mockTags
	search *mockSearch
	index  *mockIndex
	health *mockHealth
	router http.Handler
}

func newTestServer() *testServer {
	ts := &testServer{
		docs:   &mockDocuments{},
		tags:   &mockTags{},
		search: &mockSearch{},
		index:  &mockIndex{},
		health: &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}},
	}
	r := gochi.NewRouter()
	NewServer(ts.docs, ts.tags, ts.search, ts.index, ts.health).Routes(r)
	ts.router = r
	return ts
}

func (ts *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		if s, ok := body.(string); ok {
			rd = bytes.NewBufferString(s)
		} else {
			b, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("marshal body: %v", err)
			}
			rd = bytes.NewReader(b)
		}
	}
	req := httptest.NewRequest(method, target, rd)
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code ErrorCode) ErrorResponse {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	resp := decode[ErrorResponse](t, rr)
	if resp.Code != code {
		t.Errorf("code: got %s, want %s", resp.Code, code)
	}
	return resp
}
