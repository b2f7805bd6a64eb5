// Package index owns the on-disk full-text index: its schema, lifecycle,
// document projection and the buffered writer that commits to it.
package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"go.uber.org/zap"
)

// dataDir is the bleve index directory inside the configured index dir.
// The parent also holds the writer lock file.
const dataDir = "bleve"

// Index is an open full-text index.
type Index struct {
	idx bleve.Index
	dir string // empty for in-memory indexes
}

// openTimeout bounds the wait for another process's storage lock. Only one
// process may hold the index open for writing.
const openTimeout = "5s"

// Open opens the index under dir, creating dir and a fresh index with
// the document schema when none exists yet. It fails when another process
// already has the index open.
func Open(dir string, logger *zap.Logger) (*Index, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, dataDir)

	idx, err := bleve.OpenUsing(path, map[string]interface{}{"bolt_timeout": openTimeout})
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		m, mErr := NewMapping()
		if mErr != nil {
			return nil, mErr
		}
		idx, err = bleve.New(path, m)
		if err != nil {
			return nil, fmt.Errorf("create index at %s: %w", path, err)
		}
		logger.Info("index_created", zap.String("path", path))
		return &Index{idx: idx, dir: dir}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open index at %s: %w", path, err)
	}
	logger.Info("index_opened", zap.String("path", path))
	return &Index{idx: idx, dir: dir}, nil
}

// readOnlyTimeout bounds the wait for a live writer's storage lock.
const readOnlyTimeout = "2s"

// OpenReadOnly opens an existing index for searching only. It fails rather
// than waits when a running writer process holds the storage.
func OpenReadOnly(dir string) (*Index, error) {
	path := filepath.Join(dir, dataDir)
	idx, err := bleve.OpenUsing(path, map[string]interface{}{
		"read_only":    true,
		"bolt_timeout": readOnlyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open index at %s read-only: %w", path, err)
	}
	return &Index{idx: idx, dir: dir}, nil
}

// OpenMem creates an in-memory index with the document schema.
func OpenMem() (*Index, error) {
	m, err := NewMapping()
	if err != nil {
		return nil, err
	}
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("create in-memory index: %w", err)
	}
	return &Index{idx: idx}, nil
}

// Bleve exposes the underlying index for searching.
func (ix *Index) Bleve() bleve.Index { return ix.idx }

// Mapping returns the index mapping, including its registered analyzers.
func (ix *Index) Mapping() mapping.IndexMapping { return ix.idx.Mapping() }

// Dir returns the index directory, empty for in-memory indexes.
func (ix *Index) Dir() string { return ix.dir }

// NewBatch starts a batch against this index.
func (ix *Index) NewBatch() *bleve.Batch { return ix.idx.NewBatch() }

// Batch commits b atomically.
func (ix *Index) Batch(b *bleve.Batch) error {
	if err := ix.idx.Batch(b); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Ping checks that the index answers.
func (ix *Index) Ping(_ context.Context) error {
	if _, err := ix.idx.DocCount(); err != nil {
		return fmt.Errorf("index doc count: %w", err)
	}
	return nil
}

// Close closes the index.
func (ix *Index) Close() error {
	if err := ix.idx.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	return nil
}

// Status is a point-in-time summary of the committed index.
type Status struct {
	DocCount     uint64
	LastModified time.Time
	IsEmpty      bool
}

// Status reports document count, last commit time and emptiness.
// LastModified is the newest file mtime under the index directory,
// zero for in-memory indexes.
func (ix *Index) Status() (Status, error) {
	n, err := ix.idx.DocCount()
	if err != nil {
		return Status{}, fmt.Errorf("index doc count: %w", err)
	}
	st := Status{DocCount: n, IsEmpty: n == 0}
	if ix.dir == "" {
		return st, nil
	}
	last, err := newestModTime(filepath.Join(ix.dir, dataDir))
	if err != nil {
		return Status{}, err
	}
	st.LastModified = last
	return st, nil
}

func newestModTime(root string) (time.Time, error) {
	var newest time.Time
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			// segments may be merged away while walking
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("scan index dir: %w", err)
	}
	return newest.UTC(), nil
}
