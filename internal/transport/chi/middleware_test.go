package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	logpkg "github.com/kailas-cloud/searchr/internal/logger"
)

func TestJSONRecoverer(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rr := httptest.NewRecorder()
	JSONRecoverer(zap.NewNop())(panicky).ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	expectError(t, rr, http.StatusInternalServerError, ErrorCodeInternalError)
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	var ctxLogger *zap.Logger
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = logpkg.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	handler := chiMiddleware.RequestID(WideEventMiddleware(zap.New(core))(inner))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/ping", http.NoBody))

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if ctxLogger == nil {
		t.Fatal("expected request logger in context")
	}
	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one canonical line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) || fields["path"] != "/api/v1/ping" {
		t.Errorf("unexpected fields %v", fields)
	}
	if fields["request_id"] == "" {
		t.Error("expected request_id field")
	}
}

func TestJSONRecoverer_UsesRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	handler := JSONRecoverer(zap.NewNop())(
		chiMiddleware.RequestID(WideEventMiddleware(zap.New(core))(panicky)),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/documents/1", http.NoBody))

	expectError(t, rr, http.StatusInternalServerError, ErrorCodeInternalError)
	entries := logs.FilterMessage("http_panic_recovered").All()
	if len(entries) != 1 {
		t.Fatalf("expected panic logged through request logger, got %d entries", len(entries))
	}
	if entries[0].ContextMap()["request_id"] == "" {
		t.Error("expected request_id on panic entry")
	}
}

func TestWideEventMiddleware_LevelsAndQuery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "" {
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	handler := chiMiddleware.RequestID(WideEventMiddleware(zap.New(core))(inner))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/search?query=report", http.NoBody))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/search", http.NoBody))

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zap.InfoLevel || entries[0].ContextMap()["search_query"] != "report" {
		t.Errorf("unexpected first entry: %v %v", entries[0].Level, entries[0].ContextMap())
	}
	if entries[1].Level != zap.WarnLevel {
		t.Errorf("client error must log at warn, got %v", entries[1].Level)
	}
}
