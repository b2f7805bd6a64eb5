package chi

import (
	"strconv"
	"time"

	"github.com/samber/lo"

	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
	"github.com/kailas-cloud/searchr/internal/domain/page"
	"github.com/kailas-cloud/searchr/internal/domain/search/result"
	domtag "github.com/kailas-cloud/searchr/internal/domain/tag"
	documentuc "github.com/kailas-cloud/searchr/internal/usecase/document"
	indexinguc "github.com/kailas-cloud/searchr/internal/usecase/indexing"
	taguc "github.com/kailas-cloud/searchr/internal/usecase/tag"
)

// BasePath prefixes every API route.
const BasePath = "/api/v1"

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeInvalidQuery     ErrorCode = "invalid_query"
	ErrorCodeDocumentNotFound ErrorCode = "document_not_found"
	ErrorCodeTagNotFound      ErrorCode = "tag_not_found"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeNotImplemented   ErrorCode = "not_implemented"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// DocumentRequest is the body of document create and update calls.
type DocumentRequest struct {
	Title *string `json:"title"`
	Text  *string `json:"text"`
	Tags  []int64 `json:"tags"`
}

// TagRequest is the body of tag create and update calls.
type TagRequest struct {
	Title       *string `json:"title"`
	Description string  `json:"description"`
}

// DocumentMin is the short document representation.
type DocumentMin struct {
	ID    int64  `json:"id"`
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// TagMin is the short tag representation.
type TagMin struct {
	ID    int64  `json:"id"`
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// DocumentAll is the full document representation.
type DocumentAll struct {
	DocumentMin
	Text    string    `json:"text"`
	Deleted bool      `json:"deleted"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	Tags    []TagMin  `json:"tags"`
}

// TagAll is the full tag representation.
type TagAll struct {
	TagMin
	Description string        `json:"description"`
	Documents   []DocumentMin `json:"documents"`
}

// ListResponse is a page of a listing.
type ListResponse struct {
	Results any       `json:"results"`
	Meta    page.Meta `json:"meta"`
}

// IndexStatusResponse describes the committed index.
type IndexStatusResponse struct {
	DocCount     uint64     `json:"doc_count"`
	LastModified *time.Time `json:"last_modified"`
	IsEmpty      bool       `json:"is_empty"`
	Queued       *int64     `json:"queued,omitempty"`
}

// ReindexResponse confirms a full reindex.
type ReindexResponse struct {
	Message string  `json:"message"`
	IDs     []int64 `json:"ids"`
	Total   int     `json:"total"`
}

// SearchMeta is the pagination block of a search response.
type SearchMeta struct {
	Page      int     `json:"page"`
	Pages     int     `json:"pages"`
	PerPage   int     `json:"per_page"`
	Total     int     `json:"total"`
	Reverse   bool    `json:"reverse"`
	SortField *string `json:"sort_field"`
}

// SearchHit is one search hit.
type SearchHit struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Snippet string   `json:"snippet"`
	Score   float64  `json:"score"`
	Rank    int      `json:"rank"`
	Terms   []string `json:"terms,omitempty"`
}

// SearchResponse is a page of search hits.
type SearchResponse struct {
	Meta  SearchMeta  `json:"meta"`
	Hits  []SearchHit `json:"hits"`
	Query string      `json:"query"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Failing []string          `json:"failing,omitempty"`
}

func documentURI(id int64) string { return BasePath + "/documents/" + strconv.FormatInt(id, 10) }

func tagURI(id int64) string { return BasePath + "/tags/" + strconv.FormatInt(id, 10) }

func documentMin(d *domdoc.Document) DocumentMin {
	return DocumentMin{ID: d.ID(), URI: documentURI(d.ID()), Title: d.Title()}
}

func tagMin(t domtag.Tag) TagMin {
	return TagMin{ID: t.ID(), URI: tagURI(t.ID()), Title: t.Title()}
}

func documentAll(d documentuc.Detail) DocumentAll {
	return DocumentAll{
		DocumentMin: documentMin(&d.Document),
		Text:        d.Document.Text(),
		Deleted:     d.Document.Deleted(),
		Created:     d.Document.Created().UTC(),
		Updated:     d.Document.Updated().UTC(),
		Tags:        lo.Map(d.Tags, func(t domtag.Tag, _ int) TagMin { return tagMin(t) }),
	}
}

func tagAll(d taguc.Detail) TagAll {
	return TagAll{
		TagMin:      tagMin(d.Tag),
		Description: d.Tag.Description(),
		Documents: lo.Map(d.Documents, func(doc domdoc.Document, _ int) DocumentMin {
			return documentMin(&doc)
		}),
	}
}

func indexStatus(r indexinguc.Report) IndexStatusResponse {
	resp := IndexStatusResponse{DocCount: r.DocCount, IsEmpty: r.IsEmpty}
	if !r.LastModified.IsZero() {
		lm := r.LastModified.UTC()
		resp.LastModified = &lm
	}
	if r.Queued >= 0 {
		q := r.Queued
		resp.Queued = &q
	}
	return resp
}

func searchResponse(p result.Page) SearchResponse {
	meta := SearchMeta{
		Page:    p.Page,
		Pages:   p.Pages,
		PerPage: p.PerPage,
		Total:   p.Total,
		Reverse: p.Reverse,
	}
	if p.SortField != "" {
		sf := p.SortField
		meta.SortField = &sf
	}
	return SearchResponse{
		Meta: meta,
		Hits: lo.Map(p.Hits, func(h result.Hit, _ int) SearchHit {
			return SearchHit{
				ID:      h.ID,
				Title:   h.Title,
				Snippet: h.Snippet,
				Score:   h.Score,
				Rank:    h.Rank,
				Terms:   h.Terms,
			}
		}),
		Query: p.Query,
	}
}
