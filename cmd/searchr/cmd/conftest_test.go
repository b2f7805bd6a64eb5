package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchr/internal/index"
)

// buildIndex writes docs into a fresh on-disk index and closes it so it
// can be reopened read-only.
func buildIndex(t *testing.T, docs ...index.Projection) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "index")
	ix, err := index.Open(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
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
		t.Fatalf("close writer: %v", err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("close index: %v", err)
	}
	return dir
}

func sampleDocs() []index.Projection {
	day := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return []index.Projection{
		{ID: 1, Title: "Quarterly report", Text: "Revenue grew in the second quarter", Created: day, Updated: day, Tags: []int64{1}},
		{ID: 2, Title: "Meeting notes", Text: "Discussed the roadmap and hiring plans", Created: day, Updated: day},
		{ID: 3, Title: "Annual report", Text: "A summary of the whole year", Created: day, Updated: day, Tags: []int64{1}},
	}
}
