package document

import (
	"fmt"
	"time"

	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
)

// row is a scanned document row before its tags are attached.
type row struct {
	id               int64
	title, text      string
	created, updated time.Time
	deleted          bool
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (row, error) {
	var (
		r                row
		created, updated string
	)
	if err := s.Scan(&r.id, &r.title, &r.text, &created, &updated, &r.deleted); err != nil {
		return row{}, err
	}
	var err error
	if r.created, err = parseTime(created); err != nil {
		return row{}, fmt.Errorf("document %d created: %w", r.id, err)
	}
	if r.updated, err = parseTime(updated); err != nil {
		return row{}, fmt.Errorf("document %d updated: %w", r.id, err)
	}
	return r, nil
}

func (r row) build(tags []int64) domdoc.Document {
	return domdoc.Reconstruct(r.id, r.title, r.text, r.created, r.updated, r.deleted, tags)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
