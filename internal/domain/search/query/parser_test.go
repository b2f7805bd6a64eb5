package query

import (
	"errors"
	"reflect"
	"testing"
)

var testSchema = Schema{
	Default: "text",
	Fields: map[string]Kind{
		"id":      Numeric,
		"title":   Text,
		"text":    Text,
		"created": Date,
		"updated": Date,
		"tags":    Keyword,
	},
}

func mustParse(t *testing.T, input string) *Query {
	t.Helper()
	q, err := Parse(input, testSchema)
	if err != nil {
		t.Fatalf("Parse(%q): unexpected error: %v", input, err)
	}
	return q
}

func TestParse_Trees(t *testing.T) {
	tests := []struct {
		input string
		want  Node
	}{
		{"hello", Term{Field: "text", Text: "hello"}},
		{"hello world", And{Nodes: []Node{
			Term{Field: "text", Text: "hello"},
			Term{Field: "text", Text: "world"},
		}}},
		{"hello AND world", And{Nodes: []Node{
			Term{Field: "text", Text: "hello"},
			Term{Field: "text", Text: "world"},
		}}},
		{"a1 OR b2 c3", Or{Nodes: []Node{
			Term{Field: "text", Text: "a1"},
			And{Nodes: []Node{Term{Field: "text", Text: "b2"}, Term{Field: "text", Text: "c3"}}},
		}}},
		{"NOT spam", Not{Node: Term{Field: "text", Text: "spam"}}},
		{"title:go", Term{Field: "title", Text: "go"}},
		{"title:(go rust)", And{Nodes: []Node{
			Term{Field: "title", Text: "go"},
			Term{Field: "title", Text: "rust"},
		}}},
		{`"quick brown fox"`, Phrase{Field: "text", Words: []string{"quick", "brown", "fox"}}},
		{`"single"`, Term{Field: "text", Text: "single"}},
		{"foo*", Wildcard{Field: "text", Pattern: "foo*"}},
		{"tags:1", Term{Field: "tags", Text: "1"}},
		{"id:42", Term{Field: "id", Text: "42"}},
		{"id:>=10", Compare{Field: "id", Op: OpGTE, Value: "10"}},
		{"created:>2024-01-01", Compare{Field: "created", Op: OpGT, Value: "2024-01-01"}},
		{"created:[2020 TO 2021}", Range{
			Field: "created", Start: "2020", End: "2021", StartIncl: true, EndIncl: false,
		}},
		{"id:{5 TO]", Range{Field: "id", Start: "5", StartIncl: false, EndIncl: true}},
		{"foo:bar", Term{Field: "text", Text: "foo:bar"}},
		{"(a1 OR b2) c3", And{Nodes: []Node{
			Or{Nodes: []Node{Term{Field: "text", Text: "a1"}, Term{Field: "text", Text: "b2"}}},
			Term{Field: "text", Text: "c3"},
		}}},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			q := mustParse(t, tc.input)
			if !reflect.DeepEqual(q.Root, tc.want) {
				t.Errorf("Parse(%q)\n got  %#v\n want %#v", tc.input, q.Root, tc.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	inputs := []string{
		"",
		"(unclosed",
		"closed)",
		`"unterminated`,
		"AND foo",
		"foo AND",
		"foo OR",
		"foo NOT",
		"title:",
		"id:abc",
		"id:>x",
		"created:notadate",
		"created:[2020 2021]",
		"created:[2020 TO 2021",
		"text:[a TO b]",
		"text:>abc",
		"id:4*",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in, testSchema)
			if err == nil {
				t.Fatalf("Parse(%q): expected error", in)
			}
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("expected ErrSyntax, got %v", err)
			}
		})
	}
}

func TestParse_UnknownDefaultField(t *testing.T) {
	if _, err := Parse("abc", Schema{Default: "body"}); err == nil {
		t.Fatal("expected error for default field outside schema")
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello", "text:hello"},
		{"hello world", "(text:hello AND text:world)"},
		{"a1 OR NOT title:b2", "(text:a1 OR NOT title:b2)"},
		{`"quick fox"`, `text:"quick fox"`},
		{"created:>=2024", "created:>=2024"},
		{"updated:[2020 TO]", "updated:[2020 TO ]"},
		{"tags:3", "tags:3"},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := mustParse(t, tc.input).Render()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Render() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRender_NumericFieldFails(t *testing.T) {
	for _, in := range []string{"id:1", "hello OR id:>5", "NOT id:[1 TO 3]"} {
		_, err := mustParse(t, in).Render()
		if !errors.Is(err, ErrUnrenderable) {
			t.Errorf("Render(%q): expected ErrUnrenderable, got %v", in, err)
		}
	}
}
