package searchr

import (
	"context"

	"github.com/kailas-cloud/searchr/internal/domain/search/result"
	"github.com/kailas-cloud/searchr/internal/index"
	searchrepo "github.com/kailas-cloud/searchr/internal/repository/search"
	searchuc "github.com/kailas-cloud/searchr/internal/usecase/search"
)

// snapshot opens the committed index read-only for each call, so every
// search sees the latest flush. Opening fails while a serve or indexd
// process holds the index; search through the REST API in that case.
type snapshot struct {
	dir         string
	maxPageSize int
}

func (s snapshot) Search(ctx context.Context, p searchuc.Params) (result.Page, error) {
	var res result.Page
	err := s.with(func(ix *index.Index) error {
		svc := searchuc.New(searchrepo.New(ix)).WithCacheSize(0).WithMaxPageSize(s.maxPageSize)
		var err error
		res, err = svc.Search(ctx, p)
		return err
	})
	return res, err
}

func (s snapshot) Status() (index.Status, error) {
	var st index.Status
	err := s.with(func(ix *index.Index) error {
		var err error
		st, err = ix.Status()
		return err
	})
	return st, err
}

func (s snapshot) Ping(ctx context.Context) error {
	return s.with(func(ix *index.Index) error { return ix.Ping(ctx) })
}

func (s snapshot) with(fn func(*index.Index) error) error {
	ix, err := index.OpenReadOnly(s.dir)
	if err != nil {
		return err
	}
	defer func() { _ = ix.Close() }()
	return fn(ix)
}
