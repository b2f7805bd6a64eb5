// Package query parses the search query language into a field-aware AST.
//
// Syntax: bare terms (implicit AND), AND, OR, NOT, parentheses, "phrases",
// field:value prefixes, * and ? wildcards, [a TO b] / {a TO b} ranges with
// open ends, and >, >=, <, <= comparisons on numeric, date and keyword fields.
// Date fields accept date literals (see ResolveDate).
package query

// Kind is the query-side type of an index field.
type Kind int

// Field kinds.
const (
	// Text fields are analyzed; terms, phrases and wildcards apply.
	Text Kind = iota
	// Keyword fields hold opaque tokens; ranges compare lexically.
	Keyword
	// Numeric fields hold integers; values must parse as int64.
	Numeric
	// Date fields hold timestamps; values are date literals.
	Date
)

// Schema lists the fields a query may reference.
type Schema struct {
	Default string
	Fields  map[string]Kind
}

func (s Schema) kind(field string) (Kind, bool) {
	k, ok := s.Fields[field]
	return k, ok
}

// Node is an element of a parsed query.
type Node interface {
	node()
}

// And matches documents matching every child.
type And struct{ Nodes []Node }

// Or matches documents matching at least one child.
type Or struct{ Nodes []Node }

// Not excludes documents matching Node.
type Not struct{ Node Node }

// Term is a single value in a field.
type Term struct {
	Field string
	Text  string
}

// Phrase is an ordered word sequence in a text field.
type Phrase struct {
	Field string
	Words []string
}

// Wildcard is a pattern with * (any run) and ? (any one character).
type Wildcard struct {
	Field   string
	Pattern string
}

// Op is a comparison operator.
type Op string

// Comparison operators.
const (
	OpGT  Op = ">"
	OpGTE Op = ">="
	OpLT  Op = "<"
	OpLTE Op = "<="
)

// Compare is a one-sided bound on a field.
type Compare struct {
	Field string
	Op    Op
	Value string
}

// Range bounds a field on both sides. An empty Start or End is open.
type Range struct {
	Field     string
	Start     string
	End       string
	StartIncl bool
	EndIncl   bool
}

func (And) node()      {}
func (Or) node()       {}
func (Not) node()      {}
func (Term) node()     {}
func (Phrase) node()   {}
func (Wildcard) node() {}
func (Compare) node()  {}
func (Range) node()    {}

// Query is a parsed query bound to its schema.
type Query struct {
	Root   Node
	raw    string
	schema Schema
}

// Raw returns the input the query was parsed from.
func (q *Query) Raw() string { return q.raw }

// Kind returns the kind of a field referenced by the query.
func (q *Query) Kind(field string) Kind {
	k, _ := q.schema.kind(field)
	return k
}
