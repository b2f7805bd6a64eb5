package document

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/searchr/internal/db/sqlite"
	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.UTC)

// newTestRepo returns a repository over a migrated in-memory database with
// tags 1..3 present.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	ctx := context.Background()
	s, err := sqlite.OpenMem(ctx)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	for _, title := range []string{"go", "rust", "search"} {
		if _, err := s.DB().ExecContext(ctx, `INSERT INTO tag (title) VALUES (?)`, title); err != nil {
			t.Fatalf("seed tag: %v", err)
		}
	}
	return New(s.DB())
}

func testDocument(t *testing.T, title string, tags ...int64) domdoc.Document {
	t.Helper()
	d, err := domdoc.New(title, "body of "+title, tags, testNow)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return d
}
