package search

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchr/internal/domain"
	"github.com/kailas-cloud/searchr/internal/domain/search/query"
	"github.com/kailas-cloud/searchr/internal/domain/search/request"
	"github.com/kailas-cloud/searchr/internal/domain/search/result"
	"github.com/kailas-cloud/searchr/internal/index"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

// newTestRepo indexes three documents into an in-memory index.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	return newRepoWith(t,
		index.Projection{
			ID: 1, Title: "Go concurrency",
			Text:    "Goroutines and channels make concurrency approachable",
			Created: date(2024, 1, 10), Updated: date(2024, 3, 1), Tags: []int64{1},
		},
		index.Projection{
			ID: 2, Title: "Rust ownership",
			Text:    "Ownership and borrowing keep memory safe without a garbage collector",
			Created: date(2024, 2, 20), Updated: date(2024, 2, 20), Tags: []int64{2},
		},
		index.Projection{
			ID: 3, Title: "Search engines",
			Text:    "Inverted indexes power full text search engines like bleve",
			Created: date(2023, 12, 1), Updated: date(2024, 3, 14), Tags: []int64{1, 2},
		},
	)
}

func newRepoWith(t *testing.T, docs ...index.Projection) *Repo {
	t.Helper()
	ix, err := index.OpenMem()
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })

	w, err := index.NewWriter(ix, zap.NewNop())
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	for _, d := range docs {
		if err := w.Upsert(d); err != nil {
			t.Fatalf("upsert %d: %v", d.ID, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	r := New(ix)
	r.now = func() time.Time { return fixedNow }
	return r
}

func run(t *testing.T, r *Repo, q string, pg, perPage int, sortField string, reverse bool) result.Page {
	t.Helper()
	parsed, err := query.Parse(q, index.QuerySchema())
	if err != nil {
		t.Fatalf("parse %q: %v", q, err)
	}
	req, err := request.New(q, pg, perPage, 100, sortField, reverse)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	res, err := r.Search(context.Background(), parsed, req)
	if err != nil {
		t.Fatalf("search %q: %v", q, err)
	}
	return res
}

func ids(p result.Page) []int64 {
	out := make([]int64, 0, len(p.Hits))
	for _, h := range p.Hits {
		out = append(out, h.ID)
	}
	return out
}

func TestSearch_Matching(t *testing.T) {
	r := newTestRepo(t)

	tests := []struct {
		query string
		want  []int64
	}{
		{"channel", []int64{1}},
		{"oroutin", []int64{1}},
		{"approachable", []int64{1}},
		{"CONCURRENCY", []int64{1}},
		{"and NOT title:rust", []int64{1}},
		{"borrowing OR bleve", []int64{2, 3}},
		{"title:engines", []int64{3}},
		{`"full text search"`, []int64{3}},
		{`"search full"`, nil},
		{"tags:1", []int64{1, 3}},
		{"id:2", []int64{2}},
		{"id:>=2", []int64{2, 3}},
		{"id:[1 TO 3}", []int64{1, 2}},
		{"created:2024", []int64{1, 2}},
		{"created:<2024", []int64{3}},
		{"created:[2024-01-01 TO 2024-01-31]", []int64{1}},
		{"updated:yesterday", []int64{3}},
		{"updated:>=-1w", []int64{3}},
		{"garb*", []int64{2}},
		{"a b c", nil},
		{"go channel", []int64{1}},
		{"channel OR an", []int64{1}},
		{"memory NOT a", []int64{2}},
		{"zzzzzz", nil},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			res := run(t, r, tc.query, 1, 25, "id", false)
			got := ids(res)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("query %q: got ids %v, want %v", tc.query, got, tc.want)
			}
		})
	}
}

func TestSearch_Pagination(t *testing.T) {
	r := newTestRepo(t)

	p1 := run(t, r, "id:>=1", 1, 2, "id", false)
	if p1.Total != 3 || p1.Pages != 2 || p1.Page != 1 || p1.PerPage != 2 {
		t.Fatalf("unexpected meta: %+v", p1)
	}
	if !reflect.DeepEqual(ids(p1), []int64{1, 2}) {
		t.Errorf("page 1 ids: %v", ids(p1))
	}
	if p1.Hits[0].Rank != 0 || p1.Hits[1].Rank != 1 {
		t.Errorf("unexpected ranks: %d %d", p1.Hits[0].Rank, p1.Hits[1].Rank)
	}

	p2 := run(t, r, "id:>=1", 2, 2, "id", false)
	if !reflect.DeepEqual(ids(p2), []int64{3}) || p2.Hits[0].Rank != 2 {
		t.Errorf("page 2: ids %v", ids(p2))
	}

	clamped := run(t, r, "id:>=1", 9, 2, "id", false)
	if clamped.Page != 2 || !reflect.DeepEqual(ids(clamped), []int64{3}) {
		t.Errorf("expected clamp to last page, got page=%d ids=%v", clamped.Page, ids(clamped))
	}
}

func TestSearch_NoHits(t *testing.T) {
	r := newTestRepo(t)
	res := run(t, r, "nothinghere", 3, 10, "", false)
	if res.Total != 0 || res.Pages != 0 || res.Page != 0 || len(res.Hits) != 0 {
		t.Errorf("unexpected empty page: %+v", res)
	}
}

func TestSearch_SortOrder(t *testing.T) {
	r := newTestRepo(t)

	if got := ids(run(t, r, "id:>=1", 1, 10, "created", false)); !reflect.DeepEqual(got, []int64{3, 1, 2}) {
		t.Errorf("created asc: %v", got)
	}
	if got := ids(run(t, r, "id:>=1", 1, 10, "created", true)); !reflect.DeepEqual(got, []int64{2, 1, 3}) {
		t.Errorf("created desc: %v", got)
	}
	if got := ids(run(t, r, "id:>=1", 1, 10, "id", true)); !reflect.DeepEqual(got, []int64{3, 2, 1}) {
		t.Errorf("id desc: %v", got)
	}
}

func TestSearch_HitFields(t *testing.T) {
	r := newTestRepo(t)
	res := run(t, r, "channel", 1, 10, "", false)
	if len(res.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(res.Hits))
	}
	h := res.Hits[0]
	if h.ID != 1 || h.Title != "Go concurrency" {
		t.Errorf("unexpected hit: %+v", h)
	}
	if h.Score <= 0 {
		t.Errorf("expected positive score, got %f", h.Score)
	}
	if !strings.Contains(h.Snippet, "<mark>") {
		t.Errorf("expected highlighted snippet, got %q", h.Snippet)
	}
	found := false
	for _, term := range h.Terms {
		if term == "text:channel" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected matched term text:channel in %v", h.Terms)
	}
}

func TestSearch_RelevanceOrder(t *testing.T) {
	r := newTestRepo(t)
	res := run(t, r, "concurrency OR ownership", 1, 10, "", false)
	if len(res.Hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(res.Hits))
	}
	if res.Hits[0].Score < res.Hits[1].Score {
		t.Error("hits must be ordered best first")
	}
	rev := run(t, r, "concurrency OR ownership", 1, 10, "", true)
	if rev.Hits[0].Score > rev.Hits[1].Score {
		t.Error("reversed hits must be ordered worst first")
	}
}

func TestSearch_CompileErrorIsInvalidQuery(t *testing.T) {
	r := newTestRepo(t)
	bad := &query.Query{}

	req, _ := request.New("abc", 1, 10, 100, "", false)
	_, err := r.Search(context.Background(), bad, req)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestSortOrder(t *testing.T) {
	tests := []struct {
		field   string
		reverse bool
		want    []string
	}{
		{"", false, []string{"-_score", "_id"}},
		{"", true, []string{"_score", "_id"}},
		{"updated", false, []string{"updated", "_id"}},
		{"updated", true, []string{"-updated", "_id"}},
	}
	for _, tc := range tests {
		if got := sortOrder(tc.field, tc.reverse); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("sortOrder(%q, %v) = %v, want %v", tc.field, tc.reverse, got, tc.want)
		}
	}
}

func TestSearch_SingleDocumentExample(t *testing.T) {
	r := newRepoWith(t, index.Projection{
		ID: 1, Title: "Test Title", Text: "Test Text",
		Created: date(2024, 3, 1), Updated: date(2024, 3, 1),
	})

	res := run(t, r, "test", 1, 25, "", false)
	if res.Total != 1 || res.Pages != 1 || res.Page != 1 || len(res.Hits) != 1 {
		t.Fatalf("expected one hit on one page, got %+v", res)
	}
	h := res.Hits[0]
	if h.ID != 1 || h.Title != "Test Title" || h.Rank != 0 {
		t.Errorf("unexpected hit %+v", h)
	}
	if !strings.Contains(h.Snippet, "Test") {
		t.Errorf("expected snippet to contain Test, got %q", h.Snippet)
	}
}
