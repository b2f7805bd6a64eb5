package search

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/mapping"
	bq "github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/searchr/internal/domain/search/query"
	"github.com/kailas-cloud/searchr/internal/index"
)

// compiler turns a parsed query into a bleve query against the document schema.
// Date literals resolve against now at compile time.
type compiler struct {
	q     *query.Query
	words analysis.Analyzer
	now   time.Time
}

func compile(q *query.Query, m mapping.IndexMapping, now time.Time) (bq.Query, error) {
	words := m.AnalyzerNamed(index.WordAnalyzer)
	if words == nil {
		return nil, fmt.Errorf("analyzer %q not registered", index.WordAnalyzer)
	}
	c := &compiler{q: q, words: words, now: now}
	out, err := c.node(q.Root)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return bleve.NewMatchNoneQuery(), nil
	}
	return out, nil
}

// A nil query from node means the clause analyzed to no indexable terms.
// It is dropped from its parent, so "go concurrency" means "concurrency".

func (c *compiler) node(n query.Node) (bq.Query, error) {
	switch v := n.(type) {
	case query.And:
		return c.and(v)
	case query.Or:
		subs := make([]bq.Query, 0, len(v.Nodes))
		for _, child := range v.Nodes {
			s, err := c.node(child)
			if err != nil {
				return nil, err
			}
			if s != nil {
				subs = append(subs, s)
			}
		}
		if len(subs) == 0 {
			return nil, nil
		}
		return bleve.NewDisjunctionQuery(subs...), nil
	case query.Not:
		inner, err := c.node(v.Node)
		if err != nil || inner == nil {
			return nil, err
		}
		b := bleve.NewBooleanQuery()
		b.AddMust(bleve.NewMatchAllQuery())
		b.AddMustNot(inner)
		return b, nil
	case query.Term:
		return c.term(v.Field, v.Text)
	case query.Phrase:
		return c.phrase(v.Field, v.Words), nil
	case query.Wildcard:
		w := bleve.NewWildcardQuery(strings.ToLower(v.Pattern))
		w.SetField(v.Field)
		return w, nil
	case query.Compare:
		return c.compare(v)
	case query.Range:
		return c.rangeQuery(v)
	default:
		return nil, fmt.Errorf("unsupported query node %T", n)
	}
}

// and folds NOT children into one boolean query so exclusions apply to the
// conjunction rather than to the whole index.
func (c *compiler) and(v query.And) (bq.Query, error) {
	var must, mustNot []bq.Query
	for _, child := range v.Nodes {
		if not, ok := child.(query.Not); ok {
			s, err := c.node(not.Node)
			if err != nil {
				return nil, err
			}
			if s != nil {
				mustNot = append(mustNot, s)
			}
			continue
		}
		s, err := c.node(child)
		if err != nil {
			return nil, err
		}
		if s != nil {
			must = append(must, s)
		}
	}
	if len(must) == 0 && len(mustNot) == 0 {
		return nil, nil
	}
	if len(mustNot) == 0 {
		return bleve.NewConjunctionQuery(must...), nil
	}
	b := bleve.NewBooleanQuery()
	if len(must) == 0 {
		must = append(must, bleve.NewMatchAllQuery())
	}
	b.AddMust(must...)
	b.AddMustNot(mustNot...)
	return b, nil
}

func (c *compiler) term(field, text string) (bq.Query, error) {
	switch c.q.Kind(field) {
	case query.Numeric:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		incl := true
		q := bleve.NewNumericRangeInclusiveQuery(&v, &v, &incl, &incl)
		q.SetField(field)
		return q, nil
	case query.Date:
		sp, err := query.ResolveDate(text, c.now)
		if err != nil {
			return nil, err
		}
		return dateRange(field, sp.Start, sp.End), nil
	case query.Keyword:
		q := bleve.NewTermQuery(text)
		q.SetField(field)
		return q, nil
	}
	if field != index.FieldText {
		q := bleve.NewMatchQuery(text)
		q.SetField(field)
		q.SetOperator(bq.MatchQueryOperatorAnd)
		return q, nil
	}
	return c.textWord(text), nil
}

// textWord matches a word against the gram-indexed text field: every word
// token must occur as a substring of some indexed word. Tokens shorter than
// the smallest gram produce no terms and are ignored; nil is returned when
// none is left.
func (c *compiler) textWord(text string) bq.Query {
	toks := c.words.Analyze([]byte(text))
	subs := make([]bq.Query, 0, len(toks))
	for _, tk := range toks {
		if utf8.RuneCount(tk.Term) < index.NgramMin {
			continue
		}
		subs = append(subs, gramQuery(string(tk.Term)))
	}
	switch len(subs) {
	case 0:
		return nil
	case 1:
		return subs[0]
	}
	return bleve.NewConjunctionQuery(subs...)
}

// gramQuery matches one lowercase word of at least NgramMin runes against
// 3..10 grams. Longer words require all of their 10-grams.
func gramQuery(word string) bq.Query {
	n := utf8.RuneCountInString(word)
	if n <= index.NgramMax {
		q := bleve.NewTermQuery(word)
		q.SetField(index.FieldText)
		return q
	}
	rs := []rune(word)
	subs := make([]bq.Query, 0, n-index.NgramMax+1)
	for i := 0; i+index.NgramMax <= n; i++ {
		q := bleve.NewTermQuery(string(rs[i : i+index.NgramMax]))
		q.SetField(index.FieldText)
		subs = append(subs, q)
	}
	return bleve.NewConjunctionQuery(subs...)
}

func (c *compiler) phrase(field string, words []string) bq.Query {
	if field != index.FieldText {
		q := bleve.NewMatchPhraseQuery(strings.Join(words, " "))
		q.SetField(field)
		return q
	}
	// Grams keep the position of their source word, so a phrase is the
	// sequence of each word's leading gram. Words too short to be indexed
	// become position placeholders.
	toks := c.words.Analyze([]byte(strings.Join(words, " ")))
	terms := make([]string, 0, len(toks))
	indexed := 0
	for _, tk := range toks {
		rs := []rune(string(tk.Term))
		switch {
		case len(rs) < index.NgramMin:
			terms = append(terms, "")
		case len(rs) > index.NgramMax:
			terms = append(terms, string(rs[:index.NgramMax]))
			indexed++
		default:
			terms = append(terms, string(rs))
			indexed++
		}
	}
	if indexed == 0 {
		return c.textWord(strings.Join(words, " "))
	}
	return bleve.NewPhraseQuery(terms, index.FieldText)
}

func (c *compiler) compare(v query.Compare) (bq.Query, error) {
	switch c.q.Kind(v.Field) {
	case query.Numeric:
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", v.Field, err)
		}
		var q *bq.NumericRangeQuery
		switch v.Op {
		case query.OpGT:
			q = bleve.NewNumericRangeInclusiveQuery(&f, nil, boolPtr(false), nil)
		case query.OpGTE:
			q = bleve.NewNumericRangeInclusiveQuery(&f, nil, boolPtr(true), nil)
		case query.OpLT:
			q = bleve.NewNumericRangeInclusiveQuery(nil, &f, nil, boolPtr(false))
		default:
			q = bleve.NewNumericRangeInclusiveQuery(nil, &f, nil, boolPtr(true))
		}
		q.SetField(v.Field)
		return q, nil
	case query.Date:
		sp, err := query.ResolveDate(v.Value, c.now)
		if err != nil {
			return nil, err
		}
		switch v.Op {
		case query.OpGT:
			return dateRange(v.Field, sp.End, time.Time{}), nil
		case query.OpGTE:
			return dateRange(v.Field, sp.Start, time.Time{}), nil
		case query.OpLT:
			return dateRange(v.Field, time.Time{}, sp.Start), nil
		default:
			return dateRange(v.Field, time.Time{}, sp.End), nil
		}
	default:
		var q *bq.TermRangeQuery
		switch v.Op {
		case query.OpGT:
			q = bleve.NewTermRangeInclusiveQuery(v.Value, "", boolPtr(false), nil)
		case query.OpGTE:
			q = bleve.NewTermRangeInclusiveQuery(v.Value, "", boolPtr(true), nil)
		case query.OpLT:
			q = bleve.NewTermRangeInclusiveQuery("", v.Value, nil, boolPtr(false))
		default:
			q = bleve.NewTermRangeInclusiveQuery("", v.Value, nil, boolPtr(true))
		}
		q.SetField(v.Field)
		return q, nil
	}
}

func (c *compiler) rangeQuery(v query.Range) (bq.Query, error) {
	switch c.q.Kind(v.Field) {
	case query.Numeric:
		var lo, hi *float64
		if v.Start != "" {
			f, err := strconv.ParseFloat(v.Start, 64)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", v.Field, err)
			}
			lo = &f
		}
		if v.End != "" {
			f, err := strconv.ParseFloat(v.End, 64)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", v.Field, err)
			}
			hi = &f
		}
		q := bleve.NewNumericRangeInclusiveQuery(lo, hi, boolPtr(v.StartIncl), boolPtr(v.EndIncl))
		q.SetField(v.Field)
		return q, nil
	case query.Date:
		var start, end time.Time
		if v.Start != "" {
			sp, err := query.ResolveDate(v.Start, c.now)
			if err != nil {
				return nil, err
			}
			start = sp.End
			if v.StartIncl {
				start = sp.Start
			}
		}
		if v.End != "" {
			sp, err := query.ResolveDate(v.End, c.now)
			if err != nil {
				return nil, err
			}
			end = sp.Start
			if v.EndIncl {
				end = sp.End
			}
		}
		return dateRange(v.Field, start, end), nil
	default:
		q := bleve.NewTermRangeInclusiveQuery(v.Start, v.End, boolPtr(v.StartIncl), boolPtr(v.EndIncl))
		q.SetField(v.Field)
		return q, nil
	}
}

// dateRange matches [start, end). A zero bound is open.
func dateRange(field string, start, end time.Time) bq.Query {
	q := bleve.NewDateRangeInclusiveQuery(start, end, boolPtr(true), boolPtr(false))
	q.SetField(field)
	return q
}

func boolPtr(b bool) *bool { return &b }
