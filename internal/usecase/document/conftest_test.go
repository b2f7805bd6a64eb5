package document

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/kailas-cloud/searchr/internal/domain"
	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
	domtag "github.com/kailas-cloud/searchr/internal/domain/tag"
)

var testNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

// --- Mocks ---

type mockDocRepo struct {
	docs    map[int64]domdoc.Document
	nextID  int64
	saveErr error
	listErr error
	saved   int
}

func newMockDocRepo(docs ...domdoc.Document) *mockDocRepo {
	m := &mockDocRepo{docs: map[int64]domdoc.Document{}, nextID: 100}
	for _, d := range docs {
		m.docs[d.ID()] = d
	}
	return m
}

func (m *mockDocRepo) Create(_ context.Context, doc *domdoc.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.nextID++
	doc.SetID(m.nextID)
	m.docs[doc.ID()] = *doc
	m.saved++
	return nil
}

func (m *mockDocRepo) Save(_ context.Context, doc *domdoc.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.docs[doc.ID()] = *doc
	m.saved++
	return nil
}

func (m *mockDocRepo) Get(_ context.Context, id int64) (domdoc.Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return d, nil
}

func (m *mockDocRepo) List(_ context.Context, offset, limit int) ([]domdoc.Document, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var live []domdoc.Document
	for id := int64(0); id <= m.nextID+1000; id++ {
		if d, ok := m.docs[id]; ok && !d.Deleted() {
			live = append(live, d)
		}
	}
	return lo.Subset(live, offset, uint(limit)), len(live), nil
}

type mockTags struct {
	tags map[int64]domtag.Tag
}

func newMockTags(ids ...int64) *mockTags {
	m := &mockTags{tags: map[int64]domtag.Tag{}}
	for _, id := range ids {
		m.tags[id] = domtag.Reconstruct(id, "tag", "")
	}
	return m
}

func (m *mockTags) Get(_ context.Context, id int64) (domtag.Tag, error) {
	t, ok := m.tags[id]
	if !ok {
		return domtag.Tag{}, domain.ErrTagNotFound
	}
	return t, nil
}

func (m *mockTags) GetMany(_ context.Context, ids []int64) ([]domtag.Tag, error) {
	var out []domtag.Tag
	for _, id := range ids {
		if t, ok := m.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTags) Missing(_ context.Context, ids []int64) ([]int64, error) {
	return lo.Filter(ids, func(id int64, _ int) bool {
		_, ok := m.tags[id]
		return !ok
	}), nil
}

type mockNotifier struct {
	ids []int64
	err error
}

func (m *mockNotifier) Enqueue(_ context.Context, ids ...int64) error {
	if m.err != nil {
		return m.err
	}
	m.ids = append(m.ids, ids...)
	return nil
}

func newTestService(repo *mockDocRepo, tags *mockTags, n *mockNotifier) *Service {
	s := New(repo, tags, n)
	s.now = func() time.Time { return testNow }
	return s
}

func existing(id int64, title string, deleted bool, tags ...int64) domdoc.Document {
	created := testNow.Add(-24 * time.Hour)
	return domdoc.Reconstruct(id, title, "text of "+title, created, created, deleted, tags)
}
