package document

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
)

// MaxTitleLength is the maximum title length in characters.
const MaxTitleLength = 64

// Document is the searchable document aggregate.
// Deletion is soft: the row stays in the primary store with deleted set,
// so the sync daemon can remove its index record.
type Document struct {
	id      int64
	title   string
	text    string
	created time.Time
	updated time.Time
	deleted bool
	tags    []int64
}

// New validates and creates a live Document stamped with now.
// The id is assigned by storage unless set explicitly with SetID.
func New(title, text string, tags []int64, now time.Time) (Document, error) {
	if err := validate(title, text); err != nil {
		return Document{}, err
	}
	now = now.UTC()
	return Document{
		title:   title,
		text:    text,
		created: now,
		updated: now,
		tags:    lo.Uniq(tags),
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id int64, title, text string, created, updated time.Time, deleted bool, tags []int64,
) Document {
	return Document{
		id: id, title: title, text: text,
		created: created, updated: updated, deleted: deleted, tags: tags,
	}
}

func validate(title, text string) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return fmt.Errorf("title is longer than %d characters (%d)", MaxTitleLength, n)
	}
	if text == "" {
		return fmt.Errorf("text is required")
	}
	return nil
}

// Update replaces title and text, refreshes the updated stamp and adds tags.
// Existing tags are kept; tags already present are not duplicated.
func (d *Document) Update(title, text string, tags []int64, now time.Time) error {
	if err := validate(title, text); err != nil {
		return err
	}
	d.title = title
	d.text = text
	d.updated = now.UTC()
	for _, t := range tags {
		if !lo.Contains(d.tags, t) {
			d.tags = append(d.tags, t)
		}
	}
	return nil
}

// AddTag attaches a tag and refreshes the updated stamp. Returns false if
// the tag was already attached.
func (d *Document) AddTag(tagID int64, now time.Time) bool {
	d.updated = now.UTC()
	if lo.Contains(d.tags, tagID) {
		return false
	}
	d.tags = append(d.tags, tagID)
	return true
}

// RemoveTag detaches a tag and refreshes the updated stamp. Returns false if
// the tag was not attached.
func (d *Document) RemoveTag(tagID int64, now time.Time) bool {
	d.updated = now.UTC()
	if !lo.Contains(d.tags, tagID) {
		return false
	}
	d.tags = lo.Without(d.tags, tagID)
	return true
}

// Delete marks the document deleted and refreshes the updated stamp.
func (d *Document) Delete(now time.Time) {
	d.deleted = true
	d.updated = now.UTC()
}

// SetID assigns the identifier (insert-with-id, or after storage assigns one).
func (d *Document) SetID(id int64) { d.id = id }

// ID returns the document identifier.
func (d *Document) ID() int64 { return d.id }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Text returns the document body.
func (d *Document) Text() string { return d.text }

// Created returns the creation time (UTC).
func (d *Document) Created() time.Time { return d.created }

// Updated returns the last modification time (UTC).
func (d *Document) Updated() time.Time { return d.updated }

// Deleted reports whether the document is soft-deleted.
func (d *Document) Deleted() bool { return d.deleted }

// Tags returns attached tag ids in attachment order.
func (d *Document) Tags() []int64 { return d.tags }

// HasTags reports whether at least one tag is attached.
func (d *Document) HasTags() bool { return len(d.tags) > 0 }
