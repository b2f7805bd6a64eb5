package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchr/internal/domain"
	domtag "github.com/kailas-cloud/searchr/internal/domain/tag"
	"github.com/kailas-cloud/searchr/internal/logger"
	documentuc "github.com/kailas-cloud/searchr/internal/usecase/document"
	healthuc "github.com/kailas-cloud/searchr/internal/usecase/health"
	searchuc "github.com/kailas-cloud/searchr/internal/usecase/search"
)

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the REST API over the use case services.
type Server struct {
	documents     DocumentService
	tags          TagService
	search        SearchService
	index         IndexService
	health        HealthChecker
	perPage       int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	documents DocumentService,
	tags TagService,
	search SearchService,
	index IndexService,
	health HealthChecker,
) *Server {
	s := &Server{
		documents: documents,
		tags:      tags,
		search:    search,
		index:     index,
		health:    health,
	}
	s.errorHandlers = []errorHandler{
		paramErrorHandler,
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, ErrorCodeDocumentNotFound),
		sentinelHandler(domain.ErrTagNotFound, http.StatusNotFound, ErrorCodeTagNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		detailedSentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeInvalidQuery),
		detailedSentinelHandler(domain.ErrValidation, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, ErrorCodeNotImplemented),
	}
	return s
}

// WithDefaultPageSize sets per_page for requests that omit it.
func (s *Server) WithDefaultPageSize(n int) *Server {
	if n > 0 {
		s.perPage = n
	}
	return s
}

func (s *Server) pageSize(p *int) int {
	if p == nil {
		return s.perPage
	}
	return *p
}

// Routes mounts the API, health and metrics endpoints on r.
func (s *Server) Routes(r gochi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})

	r.Route(BasePath, func(r gochi.Router) {
		r.Get("/ping", s.Ping)

		r.Get("/documents", s.ListDocuments)
		r.Post("/documents", s.CreateDocument)
		r.Get("/documents/{id}", s.GetDocument)
		r.Post("/documents/{id}", s.PutDocument)
		r.Put("/documents/{id}", s.PutDocument)
		r.Delete("/documents/{id}", s.DeleteDocument)
		r.Post("/documents/{id}/tags/{tag_id}", s.AddDocumentTag)
		r.Delete("/documents/{id}/tags/{tag_id}", s.RemoveDocumentTag)

		r.Get("/tags", s.ListTags)
		r.Post("/tags", s.CreateTag)
		r.Get("/tags/{id}", s.GetTag)
		r.Post("/tags/{id}", s.PutTag)
		r.Put("/tags/{id}", s.PutTag)
		r.Delete("/tags/{id}", s.DeleteTag)

		r.Get("/index", s.IndexStatus)
		r.Post("/index", s.Reindex)

		r.Get("/search", s.Search)
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Ping handles GET /ping.
func (s *Server) Ping(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Connection tested ok"})
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	all := params.allDetails()
	docs, meta, err := s.documents.List(r.Context(), derefInt(params.Page), s.pageSize(params.PerPage), all)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var results any
	if all {
		results = lo.Map(docs, func(d documentuc.Detail, _ int) DocumentAll { return documentAll(d) })
	} else {
		results = lo.Map(docs, func(d documentuc.Detail, _ int) DocumentMin { return documentMin(&d.Document) })
	}
	writeJSON(w, http.StatusOK, ListResponse{Results: results, Meta: meta})
}

// CreateDocument handles POST /documents.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.missing(); msg != "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, msg)
		return
	}

	d, err := s.documents.Create(r.Context(), *req.Title, *req.Text, req.Tags)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", documentURI(d.Document.ID()))
	writeJSON(w, http.StatusCreated, documentAll(d))
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	d, err := s.documents.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentAll(d))
}

// PutDocument handles POST and PUT /documents/{id}: update, or insert with that id.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	var req DocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.missing(); msg != "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, msg)
		return
	}

	d, created, err := s.documents.Put(r.Context(), id, *req.Title, *req.Text, req.Tags)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", documentURI(id))
	}
	writeJSON(w, status, documentAll(d))
}

// DeleteDocument handles DELETE /documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := s.documents.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Document %d has been deleted", id)})
}

// AddDocumentTag handles POST /documents/{id}/tags/{tag_id}.
func (s *Server) AddDocumentTag(w http.ResponseWriter, r *http.Request) {
	s.retag(w, r, s.documents.AddTag)
}

// RemoveDocumentTag handles DELETE /documents/{id}/tags/{tag_id}.
func (s *Server) RemoveDocumentTag(w http.ResponseWriter, r *http.Request) {
	s.retag(w, r, s.documents.RemoveTag)
}

func (s *Server) retag(
	w http.ResponseWriter, r *http.Request,
	change func(ctx context.Context, docID, tagID int64) (documentuc.Detail, error),
) {
	docID, err := pathID(r, "id")
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	tagID, err := pathID(r, "tag_id")
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	d, err := change(r.Context(), docID, tagID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentAll(d))
}

// ListTags handles GET /tags.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	tags, meta, err := s.tags.List(r.Context(), derefInt(params.Page), s.pageSize(params.PerPage))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	results := lo.Map(tags, func(t domtag.Tag, _ int) TagMin { return tagMin(t) })
	writeJSON(w, http.StatusOK, ListResponse{Results: results, Meta: meta})
}

// CreateTag handles POST /tags.
func (s *Server) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "title is required")
		return
	}

	d, err := s.tags.Create(r.Context(), *req.Title, req.Description)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", tagURI(d.Tag.ID()))
	writeJSON(w, http.StatusCreated, tagAll(d))
}

// GetTag handles GET /tags/{id}.
func (s *Server) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	d, err := s.tags.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tagAll(d))
}

// PutTag handles POST and PUT /tags/{id}.
func (s *Server) PutTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	var req TagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "title is required")
		return
	}

	d, created, err := s.tags.Put(r.Context(), id, *req.Title, req.Description)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", tagURI(id))
	}
	writeJSON(w, status, tagAll(d))
}

// DeleteTag handles DELETE /tags/{id}.
func (s *Server) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := s.tags.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// IndexStatus handles GET /index.
func (s *Server) IndexStatus(w http.ResponseWriter, r *http.Request) {
	report, err := s.index.Status(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, indexStatus(report))
}

// Reindex handles POST /index.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	ids, err := s.index.Reindex(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReindexResponse{
		Message: "Full Index command issued",
		IDs:     ids,
		Total:   len(ids),
	})
}

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if params.Query == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "query is required")
		return
	}

	res, err := s.search.Search(r.Context(), searchuc.Params{
		Query:     *params.Query,
		Page:      derefInt(params.Page),
		PerPage:   s.pageSize(params.PerPage),
		SortField: derefString(params.SortField),
		Reverse:   derefBool(params.Reverse),
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse(res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks, Failing: report.Failing})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (req DocumentRequest) missing() string {
	switch {
	case req.Title == nil:
		return "title is required"
	case req.Text == nil:
		return "text is required"
	}
	return ""
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error
// and reports only the sentinel text.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// detailedSentinelHandler is sentinelHandler for input errors, whose full
// message describes the caller's own input.
func detailedSentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func paramErrorHandler(w http.ResponseWriter, err error) bool {
	var pe *paramError
	if !errors.As(err, &pe) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, pe.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Debug("request_rejected", zap.Error(err))
			return
		}
	}
	log.Error("internal_error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
