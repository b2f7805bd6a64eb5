package query

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokNot
	tokField
	tokWord
	tokPhrase
	tokRange
)

type rangeLit struct {
	start, end         string
	startIncl, endIncl bool
}

type token struct {
	kind tokenKind
	text string
	rng  rangeLit
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of query"
	case tokLParen:
		return `"("`
	case tokRParen:
		return `")"`
	case tokField:
		return fmt.Sprintf("field %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

func isDelim(r rune) bool {
	return unicode.IsSpace(r) || r == '(' || r == ')' || r == '"'
}

// lex splits input into tokens. A "name:" prefix becomes a field token only
// when name is a schema field; otherwise the colon stays part of the word.
func lex(input string, s Schema) ([]token, error) {
	var toks []token
	rs := []rune(input)
	i := 0
	for i < len(rs) {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == '"':
			j := i + 1
			for j < len(rs) && rs[j] != '"' {
				j++
			}
			if j >= len(rs) {
				return nil, fmt.Errorf("unterminated phrase at position %d", i)
			}
			toks = append(toks, token{kind: tokPhrase, text: string(rs[i+1 : j]), pos: i})
			i = j + 1
		case r == '[' || r == '{':
			j := i + 1
			for j < len(rs) && rs[j] != ']' && rs[j] != '}' {
				j++
			}
			if j >= len(rs) {
				return nil, fmt.Errorf("unterminated range at position %d", i)
			}
			rl, err := parseRangeLit(string(rs[i+1:j]), r == '[', rs[j] == ']')
			if err != nil {
				return nil, fmt.Errorf("range at position %d: %w", i, err)
			}
			toks = append(toks, token{kind: tokRange, text: string(rs[i : j+1]), rng: rl, pos: i})
			i = j + 1
		default:
			j := i
			for j < len(rs) && !isDelim(rs[j]) {
				j++
			}
			word := string(rs[i:j])
			if name, _, ok := strings.Cut(word, ":"); ok && name != "" {
				if _, known := s.kind(name); known {
					toks = append(toks, token{kind: tokField, text: name, pos: i})
					i += len([]rune(name)) + 1
					continue
				}
			}
			toks = append(toks, classifyWord(word, i))
			i = j
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(rs)}), nil
}

func classifyWord(word string, pos int) token {
	switch word {
	case "AND":
		return token{kind: tokAnd, text: word, pos: pos}
	case "OR":
		return token{kind: tokOr, text: word, pos: pos}
	case "NOT":
		return token{kind: tokNot, text: word, pos: pos}
	}
	return token{kind: tokWord, text: word, pos: pos}
}

// parseRangeLit parses the inside of a bracketed range: "a TO b", "a TO", "TO b".
func parseRangeLit(body string, startIncl, endIncl bool) (rangeLit, error) {
	fields := strings.Fields(body)
	idx := -1
	for i, f := range fields {
		if f == "TO" {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rangeLit{}, fmt.Errorf("missing TO")
	}
	start := strings.Join(fields[:idx], " ")
	end := strings.Join(fields[idx+1:], " ")
	if start == "*" {
		start = ""
	}
	if end == "*" {
		end = ""
	}
	if start == "" && end == "" {
		return rangeLit{}, fmt.Errorf("range needs at least one bound")
	}
	return rangeLit{start: start, end: end, startIncl: startIncl, endIncl: endIncl}, nil
}
