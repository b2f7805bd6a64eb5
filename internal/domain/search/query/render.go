package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnrenderable is returned by Render for queries that touch a numeric field.
var ErrUnrenderable = errors.New("query references a numeric field and cannot be rendered")

// Render returns the normalized string form of the query, e.g.
// "(text:foo AND NOT title:bar)".
func (q *Query) Render() (string, error) {
	var b strings.Builder
	if err := q.render(&b, q.Root); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (q *Query) render(b *strings.Builder, n Node) error {
	switch v := n.(type) {
	case And:
		return q.renderGroup(b, v.Nodes, " AND ")
	case Or:
		return q.renderGroup(b, v.Nodes, " OR ")
	case Not:
		b.WriteString("NOT ")
		return q.render(b, v.Node)
	case Term:
		return q.field(b, v.Field, v.Text)
	case Wildcard:
		return q.field(b, v.Field, v.Pattern)
	case Phrase:
		return q.field(b, v.Field, `"`+strings.Join(v.Words, " ")+`"`)
	case Compare:
		return q.field(b, v.Field, string(v.Op)+v.Value)
	case Range:
		open, closing := "{", "}"
		if v.StartIncl {
			open = "["
		}
		if v.EndIncl {
			closing = "]"
		}
		return q.field(b, v.Field, open+v.Start+" TO "+v.End+closing)
	default:
		return fmt.Errorf("unknown node %T", n)
	}
}

func (q *Query) renderGroup(b *strings.Builder, nodes []Node, sep string) error {
	b.WriteByte('(')
	for i, c := range nodes {
		if i > 0 {
			b.WriteString(sep)
		}
		if err := q.render(b, c); err != nil {
			return err
		}
	}
	b.WriteByte(')')
	return nil
}

func (q *Query) field(b *strings.Builder, field, value string) error {
	if q.Kind(field) == Numeric {
		return fmt.Errorf("%w: %s", ErrUnrenderable, field)
	}
	b.WriteString(field)
	b.WriteByte(':')
	b.WriteString(value)
	return nil
}
