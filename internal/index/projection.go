package index

import (
	"strconv"
	"time"

	"github.com/samber/lo"

	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
)

// Projection is the index-side view of a document. Each sync replaces the
// whole record under the document id.
type Projection struct {
	ID      int64
	Title   string
	Text    string
	Created time.Time
	Updated time.Time
	Tags    []int64
}

// Project derives the index projection of a live document.
func Project(d *domdoc.Document) Projection {
	return Projection{
		ID:      d.ID(),
		Title:   d.Title(),
		Text:    d.Text(),
		Created: d.Created(),
		Updated: d.Updated(),
		Tags:    d.Tags(),
	}
}

// DocID returns the index document identifier for a primary store id.
func DocID(id int64) string { return strconv.FormatInt(id, 10) }

// DocID returns the index document identifier.
func (p Projection) DocID() string { return DocID(p.ID) }

// Fields returns the indexed field values. tags is present only when the
// document has at least one tag; it is never indexed as an empty list.
func (p Projection) Fields() map[string]interface{} {
	f := map[string]interface{}{
		FieldID:      float64(p.ID),
		FieldTitle:   p.Title,
		FieldText:    p.Text,
		FieldCreated: p.Created.UTC(),
		FieldUpdated: p.Updated.UTC(),
	}
	if len(p.Tags) > 0 {
		f[FieldTags] = lo.Map(p.Tags, func(id int64, _ int) string {
			return strconv.FormatInt(id, 10)
		})
	}
	return f
}
