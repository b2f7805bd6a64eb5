package tag

import (
	"fmt"
	"unicode/utf8"
)

// Field length limits.
const (
	MaxTitleLength       = 64
	MaxDescriptionLength = 256
)

// Tag labels documents. In the search index a tag is referenced by id only.
type Tag struct {
	id          int64
	title       string
	description string
}

// New validates and creates a Tag.
func New(title, description string) (Tag, error) {
	t := Tag{}
	if err := t.Update(title, description); err != nil {
		return Tag{}, err
	}
	return t, nil
}

// Reconstruct creates a Tag without validation (storage hydration).
func Reconstruct(id int64, title, description string) Tag {
	return Tag{id: id, title: title, description: description}
}

// Update replaces title and description.
func (t *Tag) Update(title, description string) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return fmt.Errorf("title is longer than %d characters (%d)", MaxTitleLength, n)
	}
	if n := utf8.RuneCountInString(description); n > MaxDescriptionLength {
		return fmt.Errorf("description is longer than %d characters (%d)", MaxDescriptionLength, n)
	}
	t.title = title
	t.description = description
	return nil
}

// SetID assigns the identifier.
func (t *Tag) SetID(id int64) { t.id = id }

// ID returns the tag identifier.
func (t *Tag) ID() int64 { return t.id }

// Title returns the tag title.
func (t *Tag) Title() string { return t.title }

// Description returns the optional description.
func (t *Tag) Description() string { return t.description }
