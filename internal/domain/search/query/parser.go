package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("query syntax error")

// Parse parses input against schema. Unknown field prefixes are plain text
// in the default field.
func Parse(input string, s Schema) (*Query, error) {
	if _, ok := s.kind(s.Default); !ok {
		return nil, fmt.Errorf("default field %q not in schema", s.Default)
	}
	toks, err := lex(input, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	p := &parser{toks: toks, schema: s}
	root, err := p.parseOr(s.Default)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %s at position %d", ErrSyntax, t, t.pos)
	}
	return &Query{Root: root, raw: input, schema: s}, nil
}

type parser struct {
	toks   []token
	pos    int
	schema Schema
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseOr(field string) (Node, error) {
	first, err := p.parseAnd(field)
	if err != nil {
		return nil, err
	}
	nodes := []Node{first}
	for p.peek().kind == tokOr {
		p.next()
		n, err := p.parseAnd(field)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return first, nil
	}
	return Or{Nodes: nodes}, nil
}

// parseAnd collects operands joined by AND or by juxtaposition.
func (p *parser) parseAnd(field string) (Node, error) {
	var nodes []Node
	pendingAnd := false
	for {
		t := p.peek()
		switch t.kind {
		case tokEOF, tokRParen, tokOr:
			if pendingAnd {
				return nil, fmt.Errorf("AND at position %d has no right operand", t.pos)
			}
			if len(nodes) == 0 {
				return nil, fmt.Errorf("expected a term at position %d, got %s", t.pos, t)
			}
			if len(nodes) == 1 {
				return nodes[0], nil
			}
			return And{Nodes: nodes}, nil
		case tokAnd:
			if len(nodes) == 0 || pendingAnd {
				return nil, fmt.Errorf("AND at position %d has no left operand", t.pos)
			}
			p.next()
			pendingAnd = true
			continue
		}
		n, err := p.parseUnary(field)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
		pendingAnd = false
	}
}

func (p *parser) parseUnary(field string) (Node, error) {
	if p.peek().kind == tokNot {
		p.next()
		n, err := p.parseUnary(field)
		if err != nil {
			return nil, err
		}
		return Not{Node: n}, nil
	}
	return p.parsePrimary(field)
}

func (p *parser) parsePrimary(field string) (Node, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		n, err := p.parseOr(field)
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, fmt.Errorf("missing ) for ( at position %d", t.pos)
		}
		return n, nil
	case tokField:
		switch p.peek().kind {
		case tokEOF, tokRParen, tokAnd, tokOr, tokNot:
			return nil, fmt.Errorf("field %q at position %d has no value", t.text, t.pos)
		}
		return p.parsePrimary(t.text)
	case tokWord:
		return p.word(field, t.text)
	case tokPhrase:
		return p.phrase(field, t.text)
	case tokRange:
		return p.rangeNode(field, t.rng)
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of query")
	default:
		return nil, fmt.Errorf("unexpected %s at position %d", t, t.pos)
	}
}

var compareOps = []Op{OpGTE, OpLTE, OpGT, OpLT}

func (p *parser) word(field, text string) (Node, error) {
	kind, _ := p.schema.kind(field)
	for _, op := range compareOps {
		value, ok := strings.CutPrefix(text, string(op))
		if !ok || value == "" {
			continue
		}
		if kind == Text {
			return nil, fmt.Errorf("comparison %s not supported on text field %q", op, field)
		}
		if err := validateValue(field, kind, value); err != nil {
			return nil, err
		}
		return Compare{Field: field, Op: op, Value: value}, nil
	}
	if strings.ContainsAny(text, "*?") {
		if kind != Text && kind != Keyword {
			return nil, fmt.Errorf("wildcards not supported on field %q", field)
		}
		return Wildcard{Field: field, Pattern: text}, nil
	}
	if err := validateValue(field, kind, text); err != nil {
		return nil, err
	}
	return Term{Field: field, Text: text}, nil
}

func (p *parser) phrase(field, text string) (Node, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, fmt.Errorf("empty phrase")
	}
	kind, _ := p.schema.kind(field)
	if kind != Text {
		return p.word(field, strings.Join(words, " "))
	}
	if len(words) == 1 {
		return Term{Field: field, Text: words[0]}, nil
	}
	return Phrase{Field: field, Words: words}, nil
}

func (p *parser) rangeNode(field string, rl rangeLit) (Node, error) {
	kind, _ := p.schema.kind(field)
	if kind == Text {
		return nil, fmt.Errorf("range not supported on text field %q", field)
	}
	for _, v := range []string{rl.start, rl.end} {
		if v == "" {
			continue
		}
		if err := validateValue(field, kind, v); err != nil {
			return nil, err
		}
	}
	return Range{
		Field: field, Start: rl.start, End: rl.end,
		StartIncl: rl.startIncl, EndIncl: rl.endIncl,
	}, nil
}

func validateValue(field string, kind Kind, value string) error {
	switch kind {
	case Numeric:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("field %q expects an integer, got %q", field, value)
		}
	case Date:
		if _, err := ResolveDate(value, time.Time{}); err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
	}
	return nil
}
